// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"math"
	"sync"
	"unsafe"

	"github.com/cockroachdb/crlib/crbytes"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// MaxRows is the maximum number of rows in a column. Row positions and key
// indices are stored as uint32 values; the limit leaves headroom so that a
// row count always fits in an int32.
const MaxRows = math.MaxInt32

// maxStringBytes is the maximum size of the concatenated string data of a
// String column, bounded by the uint32 offsets table.
const maxStringBytes = math.MaxUint32

// ErrAllocationFailure is returned when an Allocator cannot satisfy a buffer
// request, including requests for more rows than a column can address.
var ErrAllocationFailure = errors.New("column: allocation failure")

// Allocator is the capability through which every buffer returned by this
// module is obtained. Alloc returns a buffer of exactly size bytes whose
// starting address is 8-byte aligned. The contents of the returned buffer are
// unspecified; callers overwrite every byte they read. The returned memory is
// owned by the column that stores it and is reclaimed by the garbage collector.
type Allocator interface {
	Alloc(size int) ([]byte, error)
}

// HeapAllocator allocates buffers from the Go heap.
type HeapAllocator struct{}

var _ Allocator = HeapAllocator{}

// maxHeapAlloc bounds a single HeapAllocator request.
const maxHeapAlloc = 1 << 40

// Alloc implements Allocator.
func (HeapAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 || size > maxHeapAlloc {
		return nil, errors.Mark(
			errors.Newf("column: cannot allocate %s", humanizeBytes(size)), ErrAllocationFailure)
	}
	return crbytes.AllocAligned(size), nil
}

// BudgetAllocator is an Allocator that fails once the total size of the
// buffers it has handed out would exceed Limit bytes. Memory is never returned
// to the budget. A BudgetAllocator is safe for concurrent use.
type BudgetAllocator struct {
	// Limit is the total number of bytes the allocator may hand out.
	Limit int64
	// Allocator provides the underlying buffers. Nil uses HeapAllocator.
	Allocator Allocator

	mu   sync.Mutex
	used int64
}

var _ Allocator = (*BudgetAllocator)(nil)

// Alloc implements Allocator.
func (a *BudgetAllocator) Alloc(size int) ([]byte, error) {
	a.mu.Lock()
	if size < 0 || a.used+int64(size) > a.Limit {
		used := a.used
		a.mu.Unlock()
		return nil, errors.Mark(errors.Newf("column: allocating %s exceeds budget (%s of %s used)",
			humanizeBytes(size), humanizeBytes(used), humanizeBytes(a.Limit)), ErrAllocationFailure)
	}
	a.used += int64(size)
	a.mu.Unlock()

	if a.Allocator == nil {
		return HeapAllocator{}.Alloc(size)
	}
	return a.Allocator.Alloc(size)
}

// Used returns the number of bytes handed out so far.
func (a *BudgetAllocator) Used() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

func humanizeBytes[T constraints.Integer](n T) string {
	return string(crhumanize.Bytes(int64(n), crhumanize.Compact, crhumanize.OmitI))
}

// checkRows returns an allocation failure if n rows cannot be addressed by a
// column.
func checkRows(n int) error {
	if n < 0 || n > MaxRows {
		return errors.Mark(errors.Newf("column: %d rows exceeds the maximum of %d", n, MaxRows),
			ErrAllocationFailure)
	}
	return nil
}

// AllocSlice returns a slice of n elements of type T backed by a buffer
// obtained from a. The contents of the slice are unspecified.
func AllocSlice[T Scalar](a Allocator, n int) ([]T, error) {
	if err := checkRows(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return []T{}, nil
	}
	var zero T
	width := int(unsafe.Sizeof(zero))
	buf, err := a.Alloc(n * width)
	if err != nil {
		return nil, err
	}
	if len(buf) < n*width {
		return nil, errors.AssertionFailedf("allocator returned %d bytes; %d requested", len(buf), n*width)
	}
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	if uintptr(ptr)%unsafe.Alignof(zero) != 0 {
		return nil, errors.AssertionFailedf("allocator returned pointer %p not %d-byte aligned",
			ptr, unsafe.Alignof(zero))
	}
	return unsafe.Slice((*T)(ptr), n), nil
}

// AllocBytes returns a byte slice of length n obtained from a, for use as the
// data section of a String column. The contents of the slice are unspecified.
func AllocBytes(a Allocator, n int) ([]byte, error) {
	if n < 0 || n > maxStringBytes {
		return nil, errors.Mark(errors.Newf("column: %s of string data exceeds the maximum of %s",
			humanizeBytes(n), humanizeBytes(maxStringBytes)), ErrAllocationFailure)
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf, err := a.Alloc(n)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// AllocBitmapWords returns the words for a bitmap of n bits obtained from a.
// The contents of the words are unspecified.
func AllocBitmapWords(a Allocator, n int) ([]uint64, error) {
	if err := checkRows(n); err != nil {
		return nil, err
	}
	return AllocSlice[uint64](a, BitmapWords(n))
}
