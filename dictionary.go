// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
)

// Dictionary is a dictionary-encoded column of N rows. The value of a valid
// row i is Keys()[Index(i)].
//
// The keys are strictly ascending, pairwise distinct and never null. The
// indices are a Uint32 column of N rows; a valid index is always less than
// the number of keys. A null row has a null index and its stored index is
// unspecified.
//
// A Dictionary is immutable and safe for concurrent use.
type Dictionary struct {
	keys    column.Column
	indices column.Column
}

// NewDictionary assembles a dictionary from a caller-supplied pair of keys
// and indices, validating every invariant of the representation. The
// dictionary retains both columns; they must not be modified afterwards.
//
// NewDictionary returns an error marked ErrInvalidKeys if keys contains a
// null or is not strictly ascending, an error marked ErrTypeMismatch if
// indices is not a Uint32 column, and an assertion failure if a valid index
// is out of range.
func NewDictionary(keys, indices column.Column) (*Dictionary, error) {
	if !keys.DataType().Valid() {
		return nil, errors.Mark(errors.Newf("dictcol: keys have invalid type %s", keys.DataType()),
			ErrTypeMismatch)
	}
	if keys.HasNulls() {
		return nil, errors.Mark(errors.Newf("dictcol: %d of %d keys are null",
			keys.NullCount(), keys.Len()), ErrInvalidKeys)
	}
	if i := column.FirstUnordered(keys); i >= 0 {
		return nil, errors.Mark(errors.Newf("dictcol: key %d (%s) does not sort after key %d (%s)",
			i, keys.Format(i), i-1, keys.Format(i-1)), ErrInvalidKeys)
	}
	if indices.DataType() != column.DataTypeUint32 {
		return nil, errors.Mark(errors.Newf("dictcol: indices have type %s; expected %s",
			indices.DataType(), column.DataTypeUint32), ErrTypeMismatch)
	}
	k := keys.Len()
	for i, idx := range column.Values[uint32](indices) {
		if indices.IsValid(i) && int(idx) >= k {
			return nil, errors.AssertionFailedf("dictcol: row %d: index %d out of range [0, %d)", i, idx, k)
		}
	}
	return &Dictionary{keys: keys, indices: indices}, nil
}

// Len returns the number of rows.
func (d *Dictionary) Len() int { return d.indices.Len() }

// NullCount returns the number of null rows.
func (d *Dictionary) NullCount() int { return d.indices.NullCount() }

// KeyType returns the element type of the keys, which is the element type of
// the decoded column.
func (d *Dictionary) KeyType() column.DataType { return d.keys.DataType() }

// Cardinality returns the number of keys.
func (d *Dictionary) Cardinality() int { return d.keys.Len() }

// IsValid returns true if row i carries a value.
func (d *Dictionary) IsValid(i int) bool { return d.indices.IsValid(i) }

// Index returns the stored index of row i. The index of a null row is
// unspecified.
func (d *Dictionary) Index(i int) uint32 { return column.Values[uint32](d.indices)[i] }

// Keys returns the keys column.
func (d *Dictionary) Keys() column.Column { return d.keys }

// Indices returns the indices column.
func (d *Dictionary) Indices() column.Column { return d.indices }

// String returns a human-readable representation of the dictionary for
// debugging and tests.
func (d *Dictionary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "keys: %s\n", d.keys)
	fmt.Fprintf(&sb, "indices: %s", formatIndices(d.indices))
	return sb.String()
}

// formatIndices renders the stored index of every row, including null rows,
// followed by the validity of the rows when some row is null.
func formatIndices(indices column.Column) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, idx := range column.Values[uint32](indices) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, idx)
	}
	sb.WriteByte(']')
	if indices.HasNulls() {
		fmt.Fprintf(&sb, " valid=%s", indices.Validity())
	}
	return sb.String()
}
