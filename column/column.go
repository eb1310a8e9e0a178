// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"bytes"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Column is an immutable, ordered sequence of values of a single DataType with
// an optional validity bitmap. A row is either valid, carrying a value, or
// null, carrying an unspecified value (the zero value or the empty string in
// columns produced by this package).
//
// Fixed-width values are stored in a []T for the Scalar type backing the data
// type (uint8 for DataTypeBool). String values are stored as Bytes.
//
// The zero Column is an empty column of DataTypeInvalid.
type Column struct {
	dataType DataType
	rows     int
	nulls    int
	// validity has a set bit for every valid row. An empty validity means
	// every row is valid.
	validity Bitmap
	// data is a []T for fixed-width data types or a Bytes for DataTypeString.
	data any
}

// MakeFixed returns a column of the fixed-width data type dt holding values.
// The column takes ownership of values and validity; the caller must not
// modify them afterwards. An empty validity marks every row valid.
func MakeFixed[T Scalar](dt DataType, values []T, validity Bitmap) (Column, error) {
	if !backs[T](dt) {
		return Column{}, errors.AssertionFailedf("%s column cannot be backed by %T values", dt, values)
	}
	return makeColumn(dt, len(values), values, validity)
}

// MakeString returns a String column holding the byte slices of b. The column
// takes ownership of b and validity.
func MakeString(b Bytes, validity Bitmap) (Column, error) {
	return makeColumn(DataTypeString, b.Len(), b, validity)
}

func makeColumn(dt DataType, rows int, data any, validity Bitmap) (Column, error) {
	if err := checkRows(rows); err != nil {
		return Column{}, err
	}
	c := Column{dataType: dt, rows: rows, data: data}
	if !validity.Empty() {
		if validity.Len() != rows {
			return Column{}, errors.AssertionFailedf("validity bitmap has %d bits; column has %d rows",
				validity.Len(), rows)
		}
		c.validity = validity
		c.nulls = rows - validity.Count()
	}
	return c, nil
}

// mustMake panics if err is non-nil. It is used by the convenience
// constructors whose inputs cannot produce a structural error.
func mustMake(c Column, err error) Column {
	if err != nil {
		panic(err)
	}
	return c
}

// FromSlice returns a column of the data type backed by T holding a copy of
// values. Every row is valid.
func FromSlice[T Scalar](values []T) Column {
	return mustMake(MakeFixed(DataTypeOf[T](), append([]T{}, values...), Bitmap{}))
}

// FromSliceWithNulls returns a column holding a copy of values in which row i
// is valid iff valid[i] is true. A nil valid marks every row valid.
func FromSliceWithNulls[T Scalar](values []T, valid []bool) Column {
	return mustMake(MakeFixed(DataTypeOf[T](), append([]T{}, values...), validityFromBools(valid, len(values))))
}

// FromBools returns a Bool column holding values. A nil valid marks every row
// valid.
func FromBools(values []bool, valid []bool) Column {
	v := make([]uint8, len(values))
	for i := range values {
		if values[i] {
			v[i] = 1
		}
	}
	return mustMake(MakeFixed(DataTypeBool, v, validityFromBools(valid, len(values))))
}

// FromStrings returns a String column holding values. A nil valid marks every
// row valid.
func FromStrings(values []string, valid []bool) Column {
	offsets := make([]uint32, len(values)+1)
	var data []byte
	for i, s := range values {
		data = append(data, s...)
		offsets[i+1] = uint32(len(data))
	}
	return mustMake(MakeString(MakeBytes(offsets, data), validityFromBools(valid, len(values))))
}

func validityFromBools(valid []bool, rows int) Bitmap {
	if valid == nil {
		return Bitmap{}
	}
	if len(valid) != rows {
		panic(errors.AssertionFailedf("%d validity flags for %d rows", len(valid), rows))
	}
	return BitmapFromBools(valid)
}

// Empty returns an empty column of the provided data type.
func Empty(dt DataType) Column {
	if dt >= NumDataTypes {
		return Column{}
	}
	return kernels[dt].empty()
}

// DataType returns the element type of the column.
func (c Column) DataType() DataType { return c.dataType }

// Len returns the number of rows in the column.
func (c Column) Len() int { return c.rows }

// NullCount returns the number of null rows.
func (c Column) NullCount() int { return c.nulls }

// HasNulls returns true if at least one row is null.
func (c Column) HasNulls() bool { return c.nulls > 0 }

// IsValid returns true if row i carries a value.
func (c Column) IsValid(i int) bool {
	return c.validity.Empty() || c.validity.Get(i)
}

// Validity returns the column's validity bitmap. The returned bitmap is empty
// if every row is valid.
func (c Column) Validity() Bitmap { return c.validity }

// Values returns the values of a fixed-width column. Values of null rows are
// unspecified. The returned slice must not be mutated. Values panics if the
// column is not backed by T.
func Values[T Scalar](c Column) []T {
	v, ok := c.data.([]T)
	if !ok || !backs[T](c.dataType) {
		panic(errors.AssertionFailedf("%s column is not backed by %T", c.dataType, v))
	}
	return v
}

// Bytes returns the values of a String column. Bytes panics if the column is
// not a String column.
func (c Column) Bytes() Bytes {
	b, ok := c.data.(Bytes)
	if !ok {
		panic(errors.AssertionFailedf("%s column does not hold strings", c.dataType))
	}
	return b
}

// Bools returns the values of a Bool column. The returned slice must not be
// mutated.
func (c Column) Bools() []bool {
	if c.dataType != DataTypeBool {
		panic(errors.AssertionFailedf("%s column does not hold bools", c.dataType))
	}
	v := c.data.([]uint8)
	return unsafe.Slice((*bool)(unsafe.Pointer(unsafe.SliceData(v))), len(v))
}

// Format returns a human-readable representation of row i, or "NULL" if the
// row is null.
func (c Column) Format(i int) string {
	if !c.IsValid(i) {
		return "NULL"
	}
	return kernels[c.dataType].format(c, i)
}

// String returns a human-readable representation of every row.
func (c Column) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < c.rows; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Format(i))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal returns true if a and b are observationally equal: they have the same
// data type and length, the same rows are valid, and valid rows hold equal
// values. Values of null rows are ignored.
func Equal(a, b Column) bool {
	if a.dataType != b.dataType || a.rows != b.rows || a.nulls != b.nulls {
		return false
	}
	if a.rows == 0 {
		return true
	}
	return kernels[a.dataType].equal(a, b)
}

// Compare compares row i of a with row j of b, which must have the same data
// type and both be valid. The result is negative, zero or positive as the
// first value sorts before, equal to or after the second.
func Compare(a Column, i int, b Column, j int) int {
	if a.dataType != b.dataType {
		panic(errors.AssertionFailedf("comparing %s with %s", a.dataType, b.dataType))
	}
	if a.dataType == DataTypeString {
		return bytes.Compare(a.Bytes().At(i), b.Bytes().At(j))
	}
	return kernels[a.dataType].compare(a, i, b, j)
}
