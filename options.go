// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/dictcol/internal/base"
	"github.com/cockroachdb/dictcol/internal/parallel"
)

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger = base.DefaultLogger

// NoopLogger discards all log messages.
type NoopLogger = base.NoopLogger

// DefaultHashDedupThreshold is the default value of
// Options.HashDedupThreshold.
const DefaultHashDedupThreshold = 4096

// Options holds the optional parameters for configuring dictionary
// operations. A nil *Options uses the defaults.
type Options struct {
	// Allocator provides the column buffers of the results of an operation
	// and of the intermediate columns it materializes. Nil uses
	// column.HeapAllocator.
	Allocator column.Allocator

	// Logger used to write log messages.
	//
	// The default logger uses the Go standard library log package.
	Logger Logger

	// Parallelism bounds the number of goroutines working on a single
	// operation. Values ≤ 0 use runtime.GOMAXPROCS(0).
	Parallelism int

	// MorselRows is the number of rows processed by one task. It is rounded up
	// to a multiple of 64. Values ≤ 0 use 16384.
	MorselRows int

	// HashDedupThreshold is the row count at or above which key normalization
	// first removes duplicates within each morsel using a hash set, before
	// sorting the remaining candidates. Below the threshold the input is
	// sorted directly. A negative value disables the hash pass.
	HashDedupThreshold int

	// Verbose enables logging of the shape of each operation: row and key
	// counts, morsels, and the number of rows nulled by a re-key.
	Verbose bool

	// Metrics receives operation latencies and row counts. Nil disables
	// metrics.
	Metrics *Metrics
}

// EnsureDefaults returns a copy of o with unset fields set to their default
// values. It is safe to call on a nil *Options.
func (o *Options) EnsureDefaults() *Options {
	var n Options
	if o != nil {
		n = *o
	}
	if n.Allocator == nil {
		n.Allocator = column.HeapAllocator{}
	}
	if n.Logger == nil {
		n.Logger = DefaultLogger{}
	}
	if n.MorselRows <= 0 {
		n.MorselRows = parallel.DefaultMorselRows
	}
	if n.HashDedupThreshold == 0 {
		n.HashDedupThreshold = DefaultHashDedupThreshold
	}
	return &n
}

func (o *Options) execOptions() *column.ExecOptions {
	return &column.ExecOptions{
		Allocator:   o.Allocator,
		Parallelism: o.Parallelism,
		MorselRows:  o.MorselRows,
	}
}

func (o *Options) executor() parallel.Executor {
	return parallel.Executor{Parallelism: o.Parallelism, MorselRows: o.MorselRows}
}
