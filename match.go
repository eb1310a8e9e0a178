// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"bytes"
	"cmp"
	"unsafe"

	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/dictcol/internal/invariants"
	"github.com/cockroachdb/dictcol/internal/parallel"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
)

// matchMode selects how resolve treats a valid row whose value is not among
// the keys.
type matchMode uint8

const (
	// matchExact requires every valid row to match a key exactly. A row that
	// does not is an invariant violation.
	matchExact matchMode = iota
	// matchNarrow nulls every valid row that does not match a key exactly.
	matchNarrow
)

// matcher implements the per-data-type parts of the dictionary operations.
// As with the column kernels, the matcher is selected once per call and the
// per-row loops inside are monomorphic.
type matcher interface {
	// resolve computes, for every row of values, the position of the first key
	// not less than the row's value. It fills idx and, if words is non-nil,
	// the validity words covering morsel m. It returns the number of rows of
	// the morsel that are null in the output.
	resolve(values, keys column.Column, mode matchMode, idx []uint32, words []uint64, m parallel.Morsel) int
	// dedup appends to reps the first row in morsel m holding each distinct
	// valid value of c.
	dedup(c column.Column, m parallel.Morsel, reps []uint32) []uint32
	// difference appends to keep the positions of the keys that are not
	// present in remove. Both columns must be sorted and distinct.
	difference(keys, remove column.Column, keep []uint32) []uint32
}

var matchers = [column.NumDataTypes]matcher{
	column.DataTypeInvalid: nil,
	column.DataTypeBool:    fixedMatcher[uint8]{},
	column.DataTypeInt8:    fixedMatcher[int8]{},
	column.DataTypeInt16:   fixedMatcher[int16]{},
	column.DataTypeInt32:   fixedMatcher[int32]{},
	column.DataTypeInt64:   fixedMatcher[int64]{},
	column.DataTypeUint8:   fixedMatcher[uint8]{},
	column.DataTypeUint16:  fixedMatcher[uint16]{},
	column.DataTypeUint32:  fixedMatcher[uint32]{},
	column.DataTypeUint64:  fixedMatcher[uint64]{},
	column.DataTypeFloat32: fixedMatcher[float32]{},
	column.DataTypeFloat64: fixedMatcher[float64]{},
	column.DataTypeString:  bytesMatcher{},
}

func matcherFor(dt column.DataType) (matcher, error) {
	if !dt.Valid() {
		return nil, errors.AssertionFailedf("dictcol: no matcher for %s columns", dt)
	}
	return matchers[dt], nil
}

func validAt(words []uint64, i int) bool {
	return words == nil || words[i>>6]&(1<<uint(i&63)) != 0
}

// lowerBound returns the position of the first key that is not less than v,
// or len(keys) if every key is less than v. The loop runs a fixed number of
// iterations for a given len(keys) and its body carries no data-dependent
// branch beyond the conditional move.
func lowerBound[T column.Scalar](keys []T, v T) int {
	n := len(keys)
	if n == 0 {
		return 0
	}
	base := 0
	for n > 1 {
		half := n >> 1
		if cmp.Less(keys[base+half-1], v) {
			base += half
		}
		n -= half
	}
	if cmp.Less(keys[base], v) {
		base++
	}
	return base
}

func lowerBoundBytes(keys column.Bytes, v []byte) int {
	n := keys.Len()
	if n == 0 {
		return 0
	}
	base := 0
	for n > 1 {
		half := n >> 1
		if bytes.Compare(keys.At(base+half-1), v) < 0 {
			base += half
		}
		n -= half
	}
	if bytes.Compare(keys.At(base), v) < 0 {
		base++
	}
	return base
}

// resolveMorsel is the row loop shared by the matchers. at(i) returns the
// lower bound of row i's value and whether that key equals the value.
func resolveMorsel(
	inWords []uint64,
	k int,
	mode matchMode,
	idx []uint32,
	words []uint64,
	m parallel.Morsel,
	at func(i int) (pos int, exact bool),
) int {
	var nulls int
	for w := m.Start >> 6; w < column.BitmapWords(m.End); w++ {
		var word uint64
		start, end := w<<6, min((w+1)<<6, m.End)
		for i := start; i < end; i++ {
			if !validAt(inWords, i) {
				idx[i] = 0
				nulls++
				continue
			}
			pos, exact := at(i)
			if pos < k {
				idx[i] = uint32(pos)
			} else {
				idx[i] = 0
			}
			if !exact {
				if mode == matchExact {
					panic(errors.AssertionFailedf("dictcol: row %d has no matching key among %d keys", i, k))
				}
				nulls++
				continue
			}
			word |= 1 << uint(i&63)
		}
		if words != nil {
			words[w] = word
		}
	}
	return nulls
}

type fixedMatcher[T column.Scalar] struct{}

func (fixedMatcher[T]) resolve(
	values, keys column.Column, mode matchMode, idx []uint32, words []uint64, m parallel.Morsel,
) int {
	vals := column.Values[T](values)
	ks := column.Values[T](keys)
	k := len(ks)
	return resolveMorsel(values.Validity().Words(), k, mode, idx, words, m, func(i int) (int, bool) {
		pos := lowerBound(ks, vals[i])
		return pos, pos < k && cmp.Compare(ks[pos], vals[i]) == 0
	})
}

func (fixedMatcher[T]) dedup(c column.Column, m parallel.Morsel, reps []uint32) []uint32 {
	vals := column.Values[T](c)
	inWords := c.Validity().Words()
	var seen swiss.Map[T, struct{}]
	seen.Init(min(m.Len(), 1024))
	var sawNaN bool
	for i := m.Start; i < m.End; i++ {
		if !validAt(inWords, i) {
			continue
		}
		v := vals[i]
		if v != v {
			// NaN never compares equal to itself, so it cannot be found in
			// the set. All NaNs are a single key.
			if !sawNaN {
				sawNaN = true
				reps = append(reps, uint32(i))
			}
			continue
		}
		if _, ok := seen.Get(v); ok {
			continue
		}
		seen.Put(v, struct{}{})
		reps = append(reps, uint32(i))
	}
	return reps
}

func (fixedMatcher[T]) difference(keys, remove column.Column, keep []uint32) []uint32 {
	a := column.Values[T](keys)
	b := column.Values[T](remove)
	var j int
	for i := range a {
		for j < len(b) && cmp.Less(b[j], a[i]) {
			j++
		}
		if j < len(b) && cmp.Compare(a[i], b[j]) == 0 {
			continue
		}
		keep = append(keep, uint32(i))
	}
	return keep
}

type bytesMatcher struct{}

func (bytesMatcher) resolve(
	values, keys column.Column, mode matchMode, idx []uint32, words []uint64, m parallel.Morsel,
) int {
	vals := values.Bytes()
	ks := keys.Bytes()
	k := ks.Len()
	return resolveMorsel(values.Validity().Words(), k, mode, idx, words, m, func(i int) (int, bool) {
		v := vals.At(i)
		pos := lowerBoundBytes(ks, v)
		return pos, pos < k && bytes.Equal(ks.At(pos), v)
	})
}

func (bytesMatcher) dedup(c column.Column, m parallel.Morsel, reps []uint32) []uint32 {
	vals := c.Bytes()
	inWords := c.Validity().Words()
	var seen swiss.Map[string, struct{}]
	seen.Init(min(m.Len(), 1024))
	for i := m.Start; i < m.End; i++ {
		if !validAt(inWords, i) {
			continue
		}
		// The set only lives for the duration of the morsel, so it may alias
		// the column's data.
		b := vals.At(i)
		s := unsafe.String(unsafe.SliceData(b), len(b))
		if _, ok := seen.Get(s); ok {
			continue
		}
		seen.Put(s, struct{}{})
		reps = append(reps, uint32(i))
	}
	return reps
}

func (bytesMatcher) difference(keys, remove column.Column, keep []uint32) []uint32 {
	a := keys.Bytes()
	b := remove.Bytes()
	var j int
	for i := 0; i < a.Len(); i++ {
		for j < b.Len() && bytes.Compare(b.At(j), a.At(i)) < 0 {
			j++
		}
		if j < b.Len() && bytes.Equal(a.At(i), b.At(j)) {
			continue
		}
		keep = append(keep, uint32(i))
	}
	return keep
}

// resolve computes the indices of values against keys, which must be sorted
// and distinct. In matchExact mode the output validity equals the input
// validity; in matchNarrow mode a valid row whose value is not among the
// keys becomes null. The stored index of a row is the lower bound of its
// value when the row was valid on input and the lower bound is in range, and
// 0 otherwise.
func resolve(values, keys column.Column, mode matchMode, o *Options) (column.Column, error) {
	if values.DataType() != keys.DataType() {
		return column.Column{}, errors.AssertionFailedf("dictcol: resolving %s values against %s keys",
			values.DataType(), keys.DataType())
	}
	mt, err := matcherFor(keys.DataType())
	if err != nil {
		return column.Column{}, err
	}
	n := values.Len()
	idx, err := column.AllocSlice[uint32](o.Allocator, n)
	if err != nil {
		return column.Column{}, err
	}
	var words []uint64
	if values.HasNulls() || mode == matchNarrow {
		if words, err = column.AllocBitmapWords(o.Allocator, n); err != nil {
			return column.Column{}, err
		}
	}
	exec := o.executor()
	nulls := make([]int, exec.Morsels(n))
	err = exec.Run(n, func(m parallel.Morsel) error {
		nulls[m.Index] = mt.resolve(values, keys, mode, idx, words, m)
		return nil
	})
	if err != nil {
		return column.Column{}, err
	}
	if invariants.Enabled {
		var total int
		for _, c := range nulls {
			total += c
		}
		if mode == matchExact && total != values.NullCount() {
			panic(errors.AssertionFailedf("dictcol: exact resolution produced %d nulls from %d",
				total, values.NullCount()))
		}
	}
	var validity column.Bitmap
	if words != nil {
		validity = column.MakeBitmap(words, n)
	}
	return column.MakeFixed(column.DataTypeUint32, idx, validity)
}
