// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/dictcol/internal/invariants"
	"github.com/cockroachdb/dictcol/internal/parallel"
	"github.com/cockroachdb/errors"
)

// SetKeys returns a dictionary representing the logical values of d encoded
// against newKeys. newKeys need not be sorted or distinct; the keys of the
// result are the normalized newKeys.
//
// A row is valid in the result only if it is valid in d and its value is
// among newKeys. Re-keying therefore never turns a null row into a valid one.
// The stored index of a row that becomes null is the position of the first
// new key not less than its value, or 0 if there is none.
//
// SetKeys returns an error marked ErrInvalidKeys if newKeys contains a null,
// and an error marked ErrTypeMismatch if the element type of newKeys differs
// from d's key type. Neither d nor newKeys is modified.
func SetKeys(d *Dictionary, newKeys column.Column, opts *Options) (*Dictionary, error) {
	if err := checkKeys("set keys", d, newKeys); err != nil {
		return nil, err
	}
	o := opts.EnsureDefaults()
	start := crtime.NowMono()
	keys, err := distinct(newKeys, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: set keys")
	}
	return rekey("set keys", d, keys, o, start)
}

// AddKeys returns a dictionary representing the logical values of d with
// keys extended by keys. No row changes validity.
func AddKeys(d *Dictionary, keys column.Column, opts *Options) (*Dictionary, error) {
	if err := checkKeys("add keys", d, keys); err != nil {
		return nil, err
	}
	o := opts.EnsureDefaults()
	start := crtime.NowMono()
	combined, err := column.Concat([]column.Column{d.keys, keys}, o.execOptions())
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: add keys")
	}
	merged, err := distinct(combined, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: add keys")
	}
	return rekey("add keys", d, merged, o, start)
}

// RemoveKeys returns a dictionary representing the logical values of d with
// every key in keys removed. Rows holding a removed key become null. Values
// in keys that are not keys of d are ignored.
func RemoveKeys(d *Dictionary, keys column.Column, opts *Options) (*Dictionary, error) {
	if err := checkKeys("remove keys", d, keys); err != nil {
		return nil, err
	}
	o := opts.EnsureDefaults()
	start := crtime.NowMono()
	remove, err := distinct(keys, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: remove keys")
	}
	mt, err := matcherFor(d.KeyType())
	if err != nil {
		return nil, err
	}
	keep := mt.difference(d.keys, remove, make([]uint32, 0, d.keys.Len()))
	remaining, err := column.Gather(d.keys, keep, column.Bitmap{}, o.execOptions())
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: remove keys")
	}
	return rekey("remove keys", d, remaining, o, start)
}

// RemoveUnusedKeys returns a dictionary representing the logical values of d
// whose keys are only those referenced by at least one valid row.
func RemoveUnusedKeys(d *Dictionary, opts *Options) (*Dictionary, error) {
	o := opts.EnsureDefaults()
	start := crtime.NowMono()
	used, err := usedKeys(d, o)
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: remove unused keys")
	}
	k := d.keys.Len()
	keep := make([]uint32, 0, used.Count())
	for i := used.Successor(0); i < k; i = used.Successor(i + 1) {
		keep = append(keep, uint32(i))
	}
	remaining, err := column.Gather(d.keys, keep, column.Bitmap{}, o.execOptions())
	if err != nil {
		return nil, errors.Wrap(err, "dictcol: remove unused keys")
	}
	return rekey("remove unused keys", d, remaining, o, start)
}

// usedKeys returns a bitmap over d's keys with a bit set for every key
// referenced by a valid row. Each morsel marks a private bitmap; the
// per-morsel bitmaps are then combined.
func usedKeys(d *Dictionary, o *Options) (column.Bitmap, error) {
	k := d.keys.Len()
	n := d.Len()
	idx := column.Values[uint32](d.indices)
	inWords := d.indices.Validity().Words()
	exec := o.executor()
	parts := make([][]uint64, exec.Morsels(n))
	err := exec.Run(n, func(m parallel.Morsel) error {
		words := make([]uint64, column.BitmapWords(k))
		for i := m.Start; i < m.End; i++ {
			if !validAt(inWords, i) {
				continue
			}
			j := idx[i]
			words[j>>6] |= 1 << (j & 63)
		}
		parts[m.Index] = words
		return nil
	})
	if err != nil {
		return column.Bitmap{}, err
	}
	words, err := column.AllocBitmapWords(o.Allocator, k)
	if err != nil {
		return column.Bitmap{}, err
	}
	clear(words)
	for _, p := range parts {
		for w := range words {
			words[w] |= p[w]
		}
	}
	return column.MakeBitmap(words, k), nil
}

// rekey resolves the decoded values of d against keys, which must be
// normalized, nulling every row whose value is not among them.
func rekey(op string, d *Dictionary, keys column.Column, o *Options, start crtime.Mono) (*Dictionary, error) {
	values, err := decode(d, o)
	if err != nil {
		return nil, err
	}
	indices, err := resolve(values, keys, matchNarrow, o)
	if err != nil {
		return nil, errors.Wrapf(err, "dictcol: %s", errors.Safe(op))
	}
	if invariants.Sometimes(25) {
		for i := 0; i < d.Len(); i++ {
			if indices.IsValid(i) && !d.IsValid(i) {
				panic(errors.AssertionFailedf("dictcol: %s: null row %d became valid", errors.Safe(op), i))
			}
		}
	}
	narrowed := invariants.SafeSub(indices.NullCount(), d.NullCount())
	o.Metrics.rekeyed(start.Elapsed(), narrowed)
	if o.Verbose {
		o.Logger.Infof("dictcol: %s: %d rows from %d keys onto %d keys; %d rows narrowed",
			op, d.Len(), d.keys.Len(), keys.Len(), narrowed)
	}
	return &Dictionary{keys: keys, indices: indices}, nil
}
