// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/dictcol/internal/parallel"
	"github.com/cockroachdb/errors"
)

// Normalize returns the distinct values of c sorted in ascending order: a
// column satisfying every invariant of dictionary keys. Normalize returns an
// error marked ErrInvalidKeys if c contains a null.
//
// Integers sort numerically and bools sort false before true. Strings sort
// lexicographically by their bytes. Floats sort in the order defined by
// cmp.Compare: every NaN is a single key that sorts before all other values,
// and negative zero and positive zero are a single key.
func Normalize(c column.Column, opts *Options) (column.Column, error) {
	if c.HasNulls() {
		return column.Column{}, errors.Mark(errors.Newf("dictcol: normalize: %d of %d keys are null",
			c.NullCount(), c.Len()), ErrInvalidKeys)
	}
	return distinct(c, opts.EnsureDefaults())
}

// distinct returns the sorted distinct values of the valid rows of c.
//
// Large inputs are first reduced by a parallel pass that keeps the first
// occurrence of each value within every morsel. The survivors of all morsels
// are then gathered together and sorted once.
func distinct(c column.Column, o *Options) (column.Column, error) {
	start := crtime.NowMono()
	defer func() { o.Metrics.normalized(start.Elapsed()) }()

	mt, err := matcherFor(c.DataType())
	if err != nil {
		return column.Column{}, err
	}
	eo := o.execOptions()
	candidates := c
	switch {
	case o.HashDedupThreshold >= 0 && c.Len() >= o.HashDedupThreshold:
		exec := o.executor()
		parts := make([][]uint32, exec.Morsels(c.Len()))
		err := exec.Run(c.Len(), func(m parallel.Morsel) error {
			parts[m.Index] = mt.dedup(c, m, nil)
			return nil
		})
		if err != nil {
			return column.Column{}, err
		}
		var n int
		for _, p := range parts {
			n += len(p)
		}
		reps := make([]uint32, 0, n)
		for _, p := range parts {
			reps = append(reps, p...)
		}
		if o.Verbose {
			o.Logger.Infof("dictcol: normalize: %d rows reduced to %d candidates in %d morsels",
				c.Len(), len(reps), len(parts))
		}
		if candidates, err = column.Gather(c, reps, column.Bitmap{}, eo); err != nil {
			return column.Column{}, err
		}
	case c.HasNulls():
		validity := c.Validity()
		reps := make([]uint32, 0, c.Len()-c.NullCount())
		for i := validity.Successor(0); i < c.Len(); i = validity.Successor(i + 1) {
			reps = append(reps, uint32(i))
		}
		if candidates, err = column.Gather(c, reps, column.Bitmap{}, eo); err != nil {
			return column.Column{}, err
		}
	}
	keys, err := column.SortUnique(candidates, eo)
	if err != nil {
		return column.Column{}, err
	}
	if o.Verbose {
		o.Logger.Infof("dictcol: normalize: %d %s keys", keys.Len(), keys.DataType())
	}
	return keys, nil
}
