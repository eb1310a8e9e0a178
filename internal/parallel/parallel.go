// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package parallel runs whole-column transforms as a set of independent
// morsels. A morsel is a contiguous range of rows whose length is a multiple
// of 64 (except for the final morsel), so that a morsel owns whole words of
// any row bitmap it writes.
package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultMorselRows is the default number of rows processed by a single
// morsel.
const DefaultMorselRows = 16 << 10

// Morsel describes the rows [Start, End) processed by one task. Index is the
// ordinal of the morsel within the run, in [0, Executor.Morsels(n)).
type Morsel struct {
	Index int
	Start int
	End   int
}

// Len returns the number of rows in the morsel.
func (m Morsel) Len() int { return m.End - m.Start }

// Executor splits row ranges into morsels and runs them on a bounded set of
// goroutines. The zero value runs with GOMAXPROCS workers and
// DefaultMorselRows rows per morsel.
type Executor struct {
	// Parallelism bounds the number of morsels processed concurrently. Values
	// ≤ 0 use runtime.GOMAXPROCS(0).
	Parallelism int
	// MorselRows is the number of rows per morsel. It is rounded up to a
	// multiple of 64. Values ≤ 0 use DefaultMorselRows.
	MorselRows int
}

func (e Executor) parallelism() int {
	if e.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return e.Parallelism
}

func (e Executor) morselRows() int {
	if e.MorselRows <= 0 {
		return DefaultMorselRows
	}
	return (e.MorselRows + 63) &^ 63
}

// Morsels returns the number of morsels that a run over n rows is split into.
func (e Executor) Morsels(n int) int {
	if n <= 0 {
		return 0
	}
	rows := e.morselRows()
	return (n + rows - 1) / rows
}

// Run invokes fn once for every morsel covering [0, n). Morsels may run
// concurrently and in any order; fn must only write state owned by its
// morsel. Run returns the first error returned by any invocation. If an
// invocation panics, Run re-panics with the same value on the calling
// goroutine once all morsels have finished.
func (e Executor) Run(n int, fn func(m Morsel) error) error {
	count := e.Morsels(n)
	if count == 0 {
		return nil
	}
	rows := e.morselRows()
	workers := e.parallelism()
	if count == 1 || workers == 1 {
		for i := 0; i < count; i++ {
			if err := fn(Morsel{Index: i, Start: i * rows, End: min((i+1)*rows, n)}); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		g         errgroup.Group
		panicOnce sync.Once
		panicVal  any
		panicked  bool
	)
	g.SetLimit(workers)
	for i := 0; i < count; i++ {
		m := Morsel{Index: i, Start: i * rows, End: min((i+1)*rows, n)}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() {
						panicVal = r
						panicked = true
					})
				}
			}()
			return fn(m)
		})
	}
	err := g.Wait()
	if panicked {
		panic(panicVal)
	}
	return err
}
