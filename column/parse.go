// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// Parse returns a column of data type dt with one row per token. A token equal
// to null produces a null row; if no token equals null the column has no
// validity bitmap.
func Parse(dt DataType, tokens []string, null string) (Column, error) {
	valid := make([]bool, len(tokens))
	var nulls int
	for i, tok := range tokens {
		valid[i] = tok != null
		if !valid[i] {
			nulls++
		}
	}
	if nulls == 0 {
		valid = nil
	}

	switch dt {
	case DataTypeBool:
		v := make([]bool, len(tokens))
		for i, tok := range tokens {
			if valid != nil && !valid[i] {
				continue
			}
			b, err := strconv.ParseBool(tok)
			if err != nil {
				return Column{}, errors.Wrapf(err, "row %d", i)
			}
			v[i] = b
		}
		return FromBools(v, valid), nil
	case DataTypeInt8:
		return parseInts[int8](tokens, valid, 8)
	case DataTypeInt16:
		return parseInts[int16](tokens, valid, 16)
	case DataTypeInt32:
		return parseInts[int32](tokens, valid, 32)
	case DataTypeInt64:
		return parseInts[int64](tokens, valid, 64)
	case DataTypeUint8:
		return parseUints[uint8](tokens, valid, 8)
	case DataTypeUint16:
		return parseUints[uint16](tokens, valid, 16)
	case DataTypeUint32:
		return parseUints[uint32](tokens, valid, 32)
	case DataTypeUint64:
		return parseUints[uint64](tokens, valid, 64)
	case DataTypeFloat32:
		return parseFloats[float32](tokens, valid, 32)
	case DataTypeFloat64:
		return parseFloats[float64](tokens, valid, 64)
	case DataTypeString:
		vals := make([]string, len(tokens))
		for i, tok := range tokens {
			if valid == nil || valid[i] {
				vals[i] = tok
			}
		}
		return FromStrings(vals, valid), nil
	default:
		return Column{}, errors.Newf("column: cannot parse values of type %s", dt)
	}
}

func parseInts[T int8 | int16 | int32 | int64](tokens []string, valid []bool, bitSize int) (Column, error) {
	v := make([]T, len(tokens))
	for i, tok := range tokens {
		if valid != nil && !valid[i] {
			continue
		}
		x, err := strconv.ParseInt(tok, 10, bitSize)
		if err != nil {
			return Column{}, errors.Wrapf(err, "row %d", i)
		}
		v[i] = T(x)
	}
	return FromSliceWithNulls(v, valid), nil
}

func parseUints[T uint8 | uint16 | uint32 | uint64](
	tokens []string, valid []bool, bitSize int,
) (Column, error) {
	v := make([]T, len(tokens))
	for i, tok := range tokens {
		if valid != nil && !valid[i] {
			continue
		}
		x, err := strconv.ParseUint(tok, 10, bitSize)
		if err != nil {
			return Column{}, errors.Wrapf(err, "row %d", i)
		}
		v[i] = T(x)
	}
	return FromSliceWithNulls(v, valid), nil
}

func parseFloats[T float32 | float64](tokens []string, valid []bool, bitSize int) (Column, error) {
	v := make([]T, len(tokens))
	for i, tok := range tokens {
		if valid != nil && !valid[i] {
			continue
		}
		x, err := strconv.ParseFloat(tok, bitSize)
		if err != nil {
			return Column{}, errors.Wrapf(err, "row %d", i)
		}
		v[i] = T(x)
	}
	return FromSliceWithNulls(v, valid), nil
}
