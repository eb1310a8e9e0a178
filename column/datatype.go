// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// DataType describes the logical element type of a column. The set of data
// types is closed; every algorithm in this module is instantiated once per
// data type and selected by a table lookup on the DataType.
type DataType uint8

const (
	// DataTypeInvalid represents an unset or invalid data type.
	DataTypeInvalid DataType = 0
	// DataTypeBool is a data type encoding a bool per row. Bools order false
	// before true.
	DataTypeBool DataType = 1
	// DataTypeInt8 is a data type encoding a signed 8-bit integer per row.
	DataTypeInt8 DataType = 2
	// DataTypeInt16 is a data type encoding a signed 16-bit integer per row.
	DataTypeInt16 DataType = 3
	// DataTypeInt32 is a data type encoding a signed 32-bit integer per row.
	DataTypeInt32 DataType = 4
	// DataTypeInt64 is a data type encoding a signed 64-bit integer per row.
	DataTypeInt64 DataType = 5
	// DataTypeUint8 is a data type encoding a fixed 8 bits per row.
	DataTypeUint8 DataType = 6
	// DataTypeUint16 is a data type encoding a fixed 16 bits per row.
	DataTypeUint16 DataType = 7
	// DataTypeUint32 is a data type encoding a fixed 32 bits per row.
	DataTypeUint32 DataType = 8
	// DataTypeUint64 is a data type encoding a fixed 64 bits per row.
	DataTypeUint64 DataType = 9
	// DataTypeFloat32 is a data type encoding an IEEE-754 single precision
	// float per row.
	DataTypeFloat32 DataType = 10
	// DataTypeFloat64 is a data type encoding an IEEE-754 double precision
	// float per row.
	DataTypeFloat64 DataType = 11
	// DataTypeString is a data type encoding a variable-length byte string per
	// row. Strings order lexicographically by their bytes.
	DataTypeString DataType = 12

	// NumDataTypes is the number of data types, including DataTypeInvalid.
	NumDataTypes DataType = 13
)

var dataTypeName = [NumDataTypes]string{
	DataTypeInvalid: "invalid",
	DataTypeBool:    "bool",
	DataTypeInt8:    "int8",
	DataTypeInt16:   "int16",
	DataTypeInt32:   "int32",
	DataTypeInt64:   "int64",
	DataTypeUint8:   "uint8",
	DataTypeUint16:  "uint16",
	DataTypeUint32:  "uint32",
	DataTypeUint64:  "uint64",
	DataTypeFloat32: "float32",
	DataTypeFloat64: "float64",
	DataTypeString:  "string",
}

var dataTypeWidth = [NumDataTypes]int{
	DataTypeBool:    1,
	DataTypeInt8:    1,
	DataTypeInt16:   2,
	DataTypeInt32:   4,
	DataTypeInt64:   8,
	DataTypeUint8:   1,
	DataTypeUint16:  2,
	DataTypeUint32:  4,
	DataTypeUint64:  8,
	DataTypeFloat32: 4,
	DataTypeFloat64: 8,
}

// String returns a human-readable string representation of the data type.
func (t DataType) String() string {
	if t >= NumDataTypes {
		return "unknown"
	}
	return dataTypeName[t]
}

// SafeValue implements redact.SafeValue. Data type names never contain user
// data.
func (t DataType) SafeValue() {}

var _ redact.SafeValue = DataType(0)

// Valid returns true if t is one of the supported element types.
func (t DataType) Valid() bool {
	return t > DataTypeInvalid && t < NumDataTypes
}

// FixedWidth returns true if every value of the data type occupies the same
// number of bytes.
func (t DataType) FixedWidth() bool {
	return t.Valid() && t != DataTypeString
}

// Width returns the number of bytes occupied by a single value of a fixed
// width data type, and zero for variable-length data types.
func (t DataType) Width() int {
	if t >= NumDataTypes {
		return 0
	}
	return dataTypeWidth[t]
}

// ParseDataType parses the name of a data type, as returned by
// DataType.String.
func ParseDataType(s string) (DataType, error) {
	for t := DataTypeBool; t < NumDataTypes; t++ {
		if strings.EqualFold(s, dataTypeName[t]) {
			return t, nil
		}
	}
	return DataTypeInvalid, errors.Newf("column: unknown data type %q", s)
}

// Scalar is the set of Go types backing the fixed-width data types. Bool
// columns are backed by uint8 values holding 0 or 1.
type Scalar interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// DataTypeOf returns the data type backed by T. Because uint8 backs both
// DataTypeUint8 and DataTypeBool, DataTypeOf[uint8] returns DataTypeUint8.
func DataTypeOf[T Scalar]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return DataTypeInt8
	case int16:
		return DataTypeInt16
	case int32:
		return DataTypeInt32
	case int64:
		return DataTypeInt64
	case uint8:
		return DataTypeUint8
	case uint16:
		return DataTypeUint16
	case uint32:
		return DataTypeUint32
	case uint64:
		return DataTypeUint64
	case float32:
		return DataTypeFloat32
	case float64:
		return DataTypeFloat64
	default:
		panic("unreachable")
	}
}

// backs returns true if values of the data type t are stored as []T.
func backs[T Scalar](t DataType) bool {
	dt := DataTypeOf[T]()
	return t == dt || (t == DataTypeBool && dt == DataTypeUint8)
}
