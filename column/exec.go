// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import "github.com/cockroachdb/dictcol/internal/parallel"

// ExecOptions configures the bulk primitives of this package. A nil
// *ExecOptions uses the defaults.
type ExecOptions struct {
	// Allocator provides every buffer of the returned columns. Nil uses
	// HeapAllocator.
	Allocator Allocator
	// Parallelism bounds the number of goroutines working on a single call.
	// Values ≤ 0 use runtime.GOMAXPROCS(0).
	Parallelism int
	// MorselRows is the number of rows processed by one task. It is rounded up
	// to a multiple of 64. Values ≤ 0 use 16384.
	MorselRows int
}

func (o *ExecOptions) allocator() Allocator {
	if o == nil || o.Allocator == nil {
		return HeapAllocator{}
	}
	return o.Allocator
}

func (o *ExecOptions) executor() parallel.Executor {
	if o == nil {
		return parallel.Executor{}
	}
	return parallel.Executor{Parallelism: o.Parallelism, MorselRows: o.MorselRows}
}
