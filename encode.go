// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
)

// Encode returns the dictionary encoding of c. The keys are the distinct
// values of c's valid rows in ascending order, and the indices have the same
// validity as c. If c has no null rows, the indices have no validity bitmap.
//
// Decode(Encode(c)) is observationally equal to c.
func Encode(c column.Column, opts *Options) (*Dictionary, error) {
	o := opts.EnsureDefaults()
	if !c.DataType().Valid() {
		return nil, errors.Newf("dictcol: cannot encode a column of type %s", c.DataType())
	}
	start := crtime.NowMono()
	keys, err := distinct(c, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: encode")
	}
	indices, err := resolve(c, keys, matchExact, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: encode")
	}
	o.Metrics.encoded(start.Elapsed(), c.Len())
	if o.Verbose {
		o.Logger.Infof("dictcol: encode: %d rows (%d null) into %d keys in %d morsels",
			c.Len(), c.NullCount(), keys.Len(), o.executor().Morsels(c.Len()))
	}
	return &Dictionary{keys: keys, indices: indices}, nil
}

// Decode returns the plain column represented by d. Row i holds the key
// selected by index i and has the validity of index i. Null rows hold the
// zero value or the empty string.
func Decode(d *Dictionary, opts *Options) (column.Column, error) {
	o := opts.EnsureDefaults()
	start := crtime.NowMono()
	c, err := decode(d, o)
	if err != nil {
		return column.Column{}, err
	}
	o.Metrics.decoded(start.Elapsed())
	return c, nil
}

func decode(d *Dictionary, o *Options) (column.Column, error) {
	c, err := column.Gather(d.keys, column.Values[uint32](d.indices), d.indices.Validity(), o.execOptions())
	if err != nil {
		return column.Column{}, errors.Wrap(err, "dictcol: decode")
	}
	return c, nil
}
