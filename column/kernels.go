// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"bytes"
	"cmp"
	"slices"
	"strconv"

	"github.com/cockroachdb/dictcol/internal/parallel"
	"github.com/cockroachdb/errors"
)

// kernel implements the per-data-type primitives of the package. There is one
// kernel per DataType; selecting it costs a single table lookup per call, and
// the per-row loops inside are monomorphic.
type kernel interface {
	empty() Column
	format(c Column, i int) string
	equal(a, b Column) bool
	compare(a Column, i int, b Column, j int) int
	gather(c Column, indices []uint32, validity Bitmap, alloc Allocator, exec parallel.Executor) (Column, error)
	sortUnique(c Column, alloc Allocator) (Column, error)
	concat(dt DataType, cols []Column, validity Bitmap, alloc Allocator) (Column, error)
}

var kernels = [NumDataTypes]kernel{
	DataTypeInvalid: invalidKernel{},
	DataTypeBool:    fixedKernel[uint8]{dt: DataTypeBool},
	DataTypeInt8:    fixedKernel[int8]{dt: DataTypeInt8},
	DataTypeInt16:   fixedKernel[int16]{dt: DataTypeInt16},
	DataTypeInt32:   fixedKernel[int32]{dt: DataTypeInt32},
	DataTypeInt64:   fixedKernel[int64]{dt: DataTypeInt64},
	DataTypeUint8:   fixedKernel[uint8]{dt: DataTypeUint8},
	DataTypeUint16:  fixedKernel[uint16]{dt: DataTypeUint16},
	DataTypeUint32:  fixedKernel[uint32]{dt: DataTypeUint32},
	DataTypeUint64:  fixedKernel[uint64]{dt: DataTypeUint64},
	DataTypeFloat32: fixedKernel[float32]{dt: DataTypeFloat32},
	DataTypeFloat64: fixedKernel[float64]{dt: DataTypeFloat64},
	DataTypeString:  bytesKernel{},
}

// rowValid returns true if bit i of the validity words is set. A nil slice of
// words marks every row valid.
//
//gcassert:inline
func rowValid(words []uint64, i int) bool {
	return words == nil || words[i>>6]&(1<<uint(i&63)) != 0
}

// fixedKernel implements the kernel for a fixed-width data type backed by T.
type fixedKernel[T Scalar] struct {
	dt DataType
}

func (k fixedKernel[T]) empty() Column {
	return mustMake(MakeFixed(k.dt, []T{}, Bitmap{}))
}

func (k fixedKernel[T]) format(c Column, i int) string {
	v := Values[T](c)[i]
	switch x := any(v).(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case uint8:
		if k.dt == DataTypeBool {
			return strconv.FormatBool(x != 0)
		}
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		panic("unreachable")
	}
}

func (k fixedKernel[T]) equal(a, b Column) bool {
	av, bv := Values[T](a), Values[T](b)
	aw, bw := a.validity.Words(), b.validity.Words()
	for i := range av {
		va, vb := rowValid(aw, i), rowValid(bw, i)
		if va != vb {
			return false
		}
		if va && cmp.Compare(av[i], bv[i]) != 0 {
			return false
		}
	}
	return true
}

func (k fixedKernel[T]) compare(a Column, i int, b Column, j int) int {
	return cmp.Compare(Values[T](a)[i], Values[T](b)[j])
}

func (k fixedKernel[T]) gather(
	c Column, indices []uint32, validity Bitmap, alloc Allocator, exec parallel.Executor,
) (Column, error) {
	n := len(indices)
	dst, err := AllocSlice[T](alloc, n)
	if err != nil {
		return Column{}, err
	}
	outWords, err := gatherValidity(c, indices, validity, alloc)
	if err != nil {
		return Column{}, err
	}
	src := Values[T](c)
	inWords := validity.Words()
	srcWords := c.validity.Words()
	err = exec.Run(n, func(m parallel.Morsel) error {
		for i := m.Start; i < m.End; i++ {
			if !rowValid(inWords, i) {
				var zero T
				dst[i] = zero
				continue
			}
			j := indices[i]
			if int(j) >= len(src) {
				panic(errors.AssertionFailedf("row %d: index %d out of range [0, %d)", i, j, len(src)))
			}
			dst[i] = src[j]
		}
		if outWords != nil {
			fillGatherValidity(outWords, inWords, srcWords, indices, m)
		}
		return nil
	})
	if err != nil {
		return Column{}, err
	}
	return MakeFixed(k.dt, dst, bitmapOrEmpty(outWords, n))
}

func (k fixedKernel[T]) sortUnique(c Column, alloc Allocator) (Column, error) {
	src := Values[T](c)
	vals, err := AllocSlice[T](alloc, len(src))
	if err != nil {
		return Column{}, err
	}
	copy(vals, src)
	slices.Sort(vals)
	vals = slices.CompactFunc(vals, func(a, b T) bool { return cmp.Compare(a, b) == 0 })
	return MakeFixed(k.dt, vals, Bitmap{})
}

func (k fixedKernel[T]) concat(
	dt DataType, cols []Column, validity Bitmap, alloc Allocator,
) (Column, error) {
	var n int
	for i := range cols {
		n += cols[i].rows
	}
	vals, err := AllocSlice[T](alloc, n)
	if err != nil {
		return Column{}, err
	}
	var off int
	for i := range cols {
		off += copy(vals[off:], Values[T](cols[i]))
	}
	return MakeFixed(dt, vals, validity)
}

// bytesKernel implements the kernel for DataTypeString.
type bytesKernel struct{}

func (bytesKernel) empty() Column {
	return mustMake(MakeString(Bytes{}, Bitmap{}))
}

func (bytesKernel) format(c Column, i int) string {
	s := c.Bytes().At(i)
	if bytes.ContainsFunc(s, func(r rune) bool { return r < 32 || r > 126 }) {
		return strconv.Quote(string(s))
	}
	return string(s)
}

func (bytesKernel) equal(a, b Column) bool {
	ab, bb := a.Bytes(), b.Bytes()
	aw, bw := a.validity.Words(), b.validity.Words()
	for i := 0; i < a.rows; i++ {
		va, vb := rowValid(aw, i), rowValid(bw, i)
		if va != vb {
			return false
		}
		if va && !bytes.Equal(ab.At(i), bb.At(i)) {
			return false
		}
	}
	return true
}

func (bytesKernel) compare(a Column, i int, b Column, j int) int {
	return bytes.Compare(a.Bytes().At(i), b.Bytes().At(j))
}

func (bytesKernel) gather(
	c Column, indices []uint32, validity Bitmap, alloc Allocator, exec parallel.Executor,
) (Column, error) {
	n := len(indices)
	offsets, err := AllocSlice[uint32](alloc, n+1)
	if err != nil {
		return Column{}, err
	}
	outWords, err := gatherValidity(c, indices, validity, alloc)
	if err != nil {
		return Column{}, err
	}
	src := c.Bytes()
	inWords := validity.Words()
	srcWords := c.validity.Words()

	// Pass 1: record the length of every output string in offsets[i+1].
	offsets[0] = 0
	err = exec.Run(n, func(m parallel.Morsel) error {
		for i := m.Start; i < m.End; i++ {
			if !rowValid(inWords, i) {
				offsets[i+1] = 0
				continue
			}
			j := indices[i]
			if int(j) >= src.Len() {
				panic(errors.AssertionFailedf("row %d: index %d out of range [0, %d)", i, j, src.Len()))
			}
			if !rowValid(srcWords, int(j)) {
				offsets[i+1] = 0
				continue
			}
			offsets[i+1] = src.offsets[j+1] - src.offsets[j]
		}
		if outWords != nil {
			fillGatherValidity(outWords, inWords, srcWords, indices, m)
		}
		return nil
	})
	if err != nil {
		return Column{}, err
	}
	// Prefix sum the lengths into offsets, checking that the total size is
	// addressable by the offsets table.
	var total uint64
	for i := 1; i <= n; i++ {
		total += uint64(offsets[i])
		if total > maxStringBytes {
			return Column{}, errors.Mark(errors.Newf("column: gathered string data exceeds %s",
				humanizeBytes(maxStringBytes)), ErrAllocationFailure)
		}
		offsets[i] = uint32(total)
	}
	data, err := AllocBytes(alloc, int(total))
	if err != nil {
		return Column{}, err
	}
	// Pass 2: copy the string data.
	err = exec.Run(n, func(m parallel.Morsel) error {
		for i := m.Start; i < m.End; i++ {
			if offsets[i] == offsets[i+1] {
				continue
			}
			j := indices[i]
			copy(data[offsets[i]:offsets[i+1]], src.data[src.offsets[j]:src.offsets[j+1]])
		}
		return nil
	})
	if err != nil {
		return Column{}, err
	}
	return MakeString(MakeBytes(offsets, data), bitmapOrEmpty(outWords, n))
}

func (k bytesKernel) sortUnique(c Column, alloc Allocator) (Column, error) {
	src := c.Bytes()
	perm := make([]uint32, src.Len())
	for i := range perm {
		perm[i] = uint32(i)
	}
	slices.SortFunc(perm, func(a, b uint32) int {
		return bytes.Compare(src.At(int(a)), src.At(int(b)))
	})
	perm = slices.CompactFunc(perm, func(a, b uint32) bool {
		return bytes.Equal(src.At(int(a)), src.At(int(b)))
	})
	return k.gather(c, perm, Bitmap{}, alloc, parallel.Executor{Parallelism: 1})
}

func (bytesKernel) concat(
	dt DataType, cols []Column, validity Bitmap, alloc Allocator,
) (Column, error) {
	var n, size int
	for i := range cols {
		n += cols[i].rows
		size += cols[i].Bytes().Size()
	}
	offsets, err := AllocSlice[uint32](alloc, n+1)
	if err != nil {
		return Column{}, err
	}
	data, err := AllocBytes(alloc, size)
	if err != nil {
		return Column{}, err
	}
	offsets[0] = 0
	var row, off int
	for i := range cols {
		b := cols[i].Bytes()
		copy(data[off:], b.data)
		for j := 1; j <= b.Len(); j++ {
			offsets[row+j] = uint32(off) + b.offsets[j]
		}
		row += b.Len()
		off += b.Size()
	}
	return MakeString(MakeBytes(offsets, data), validity)
}

type invalidKernel struct{}

func (invalidKernel) empty() Column { return Column{} }

func (invalidKernel) format(c Column, i int) string { return "?" }

func (invalidKernel) equal(a, b Column) bool { return a.rows == b.rows }

func (invalidKernel) compare(a Column, i int, b Column, j int) int {
	panic(errors.AssertionFailedf("comparing values of an invalid column"))
}

func (invalidKernel) gather(Column, []uint32, Bitmap, Allocator, parallel.Executor) (Column, error) {
	return Column{}, errors.AssertionFailedf("gathering from an invalid column")
}

func (invalidKernel) sortUnique(Column, Allocator) (Column, error) {
	return Column{}, errors.AssertionFailedf("sorting an invalid column")
}

func (invalidKernel) concat(DataType, []Column, Bitmap, Allocator) (Column, error) {
	return Column{}, errors.AssertionFailedf("concatenating invalid columns")
}

// gatherValidity allocates the validity words of a gather's output, or returns
// nil if every output row is valid.
func gatherValidity(c Column, indices []uint32, validity Bitmap, alloc Allocator) ([]uint64, error) {
	if validity.Empty() && !c.HasNulls() {
		return nil, nil
	}
	return AllocBitmapWords(alloc, len(indices))
}

// fillGatherValidity computes the output validity words covering morsel m: a
// row is valid if it is valid in the gather's validity and the row it selects
// is valid in the source.
func fillGatherValidity(out, in, src []uint64, indices []uint32, m parallel.Morsel) {
	for w := m.Start >> 6; w < BitmapWords(m.End); w++ {
		var word uint64
		start, end := w<<6, min((w+1)<<6, m.End)
		for i := start; i < end; i++ {
			if rowValid(in, i) && rowValid(src, int(indices[i])) {
				word |= 1 << uint(i&63)
			}
		}
		out[w] = word
	}
}

func bitmapOrEmpty(words []uint64, n int) Bitmap {
	if words == nil {
		return Bitmap{}
	}
	return MakeBitmap(words, n)
}
