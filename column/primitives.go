// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"github.com/cockroachdb/dictcol/internal/invariants"
	"github.com/cockroachdb/errors"
)

// Gather returns a new column whose row i is row indices[i] of c. Row i of the
// result is null if it is invalid in validity or if the row it selects is null
// in c; an empty validity marks every index valid. Null rows of the result
// hold the zero value or the empty string.
//
// Every valid index must be less than c.Len(); a valid index outside that
// range indicates a bug in the caller and Gather panics with an assertion
// failure.
func Gather(c Column, indices []uint32, validity Bitmap, opts *ExecOptions) (Column, error) {
	if !c.dataType.Valid() {
		return Column{}, errors.AssertionFailedf("gather from %s column", c.dataType)
	}
	if !validity.Empty() && validity.Len() != len(indices) {
		return Column{}, errors.AssertionFailedf("validity bitmap has %d bits; %d indices provided",
			validity.Len(), len(indices))
	}
	if err := checkRows(len(indices)); err != nil {
		return Column{}, err
	}
	return kernels[c.dataType].gather(c, indices, validity, opts.allocator(), opts.executor())
}

// SortUnique returns the distinct values of c sorted in ascending order. The
// column must not contain nulls.
//
// Integers and bools sort numerically, strings sort lexicographically by
// their bytes, and floats sort in the order defined by cmp.Compare: NaNs sort
// before all other values and are all equal to one another, and negative zero
// is equal to positive zero.
func SortUnique(c Column, opts *ExecOptions) (Column, error) {
	if !c.dataType.Valid() {
		return Column{}, errors.AssertionFailedf("sort %s column", c.dataType)
	}
	if c.HasNulls() {
		return Column{}, errors.AssertionFailedf("sort unique of a column with %d nulls", c.nulls)
	}
	out, err := kernels[c.dataType].sortUnique(c, opts.allocator())
	if err != nil {
		return Column{}, err
	}
	if invariants.Enabled {
		if i := FirstUnordered(out); i >= 0 {
			panic(errors.AssertionFailedf("sort unique produced unordered keys at row %d: %s", i, out))
		}
	}
	return out, nil
}

// FirstUnordered returns the first row i > 0 of c such that row i is not
// strictly greater than row i-1, or -1 if c is strictly ascending. Null rows
// are not permitted.
func FirstUnordered(c Column) int {
	for i := 1; i < c.rows; i++ {
		if Compare(c, i-1, c, i) >= 0 {
			return i
		}
	}
	return -1
}

// Concat returns the rows of cols concatenated in order. Every column must
// have the same data type.
func Concat(cols []Column, opts *ExecOptions) (Column, error) {
	if len(cols) == 0 {
		return Column{}, errors.AssertionFailedf("concatenating zero columns")
	}
	dt := cols[0].dataType
	var n int
	var hasNulls bool
	for i := range cols {
		if cols[i].dataType != dt {
			return Column{}, errors.AssertionFailedf("concatenating %s column with %s column",
				cols[i].dataType, dt)
		}
		n += cols[i].rows
		hasNulls = hasNulls || cols[i].HasNulls()
	}
	if err := checkRows(n); err != nil {
		return Column{}, err
	}
	alloc := opts.allocator()
	var validity Bitmap
	if hasNulls {
		words, err := AllocBitmapWords(alloc, n)
		if err != nil {
			return Column{}, err
		}
		clear(words)
		var row int
		for i := range cols {
			for j := 0; j < cols[i].rows; j++ {
				if cols[i].IsValid(j) {
					words[row>>6] |= 1 << uint(row&63)
				}
				row++
			}
		}
		validity = MakeBitmap(words, n)
	}
	return kernels[dt].concat(dt, cols, validity, alloc)
}
