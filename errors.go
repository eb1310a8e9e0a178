// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidKeys is returned when a column supplied as keys contains a
	// null row. Nullability of a dictionary is expressed by its indices, so
	// keys may never be null.
	ErrInvalidKeys = errors.New("dictcol: invalid keys")

	// ErrTypeMismatch is returned when a column supplied as keys has a
	// different element type from the dictionary's keys.
	ErrTypeMismatch = errors.New("dictcol: key type mismatch")

	// ErrAllocationFailure is returned when the configured allocator cannot
	// satisfy a buffer request.
	ErrAllocationFailure = column.ErrAllocationFailure
)

// checkKeys performs the host-side validation of a key column supplied to a
// re-keying operation, before any parallel work is dispatched.
func checkKeys(op string, d *Dictionary, keys column.Column) error {
	if keys.HasNulls() {
		return errors.Mark(errors.Newf("dictcol: %s: %d of %d keys are null",
			errors.Safe(op), keys.NullCount(), keys.Len()), ErrInvalidKeys)
	}
	if keys.DataType() != d.KeyType() {
		return errors.Mark(errors.Newf("dictcol: %s: keys of type %s do not match dictionary keys of type %s",
			errors.Safe(op), keys.DataType(), d.KeyType()), ErrTypeMismatch)
	}
	return nil
}
