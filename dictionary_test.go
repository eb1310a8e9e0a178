// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func parseColumn(t *testing.T, dt column.DataType, input string) column.Column {
	t.Helper()
	c, err := column.Parse(dt, strings.Fields(input), "NULL")
	require.NoError(t, err)
	return c
}

func scanDataType(t *testing.T, td *datadriven.TestData, def column.DataType) column.DataType {
	t.Helper()
	if !td.HasArg("type") {
		return def
	}
	var typ string
	td.ScanArgs(t, "type", &typ)
	dt, err := column.ParseDataType(typ)
	require.NoError(t, err)
	return dt
}

// checkDictionary verifies the representation invariants of d.
func checkDictionary(t *testing.T, d *Dictionary) {
	t.Helper()
	_, err := NewDictionary(d.Keys(), d.Indices())
	require.NoError(t, err)
}

// dirtyAllocator returns buffers filled with 0xff, so that any code relying
// on freshly allocated memory being zeroed produces wrong results.
type dirtyAllocator struct{}

func (dirtyAllocator) Alloc(size int) ([]byte, error) {
	b, err := column.HeapAllocator{}.Alloc(size)
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = 0xff
	}
	return b, nil
}

func TestDictionary(t *testing.T) {
	for _, tc := range []struct {
		name      string
		threshold int
		alloc     column.Allocator
	}{
		{name: "sort", threshold: -1},
		{name: "hash", threshold: 1},
		{name: "dirty", threshold: 1, alloc: dirtyAllocator{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			opts := &Options{
				Allocator:          tc.alloc,
				Logger:             NoopLogger{},
				Parallelism:        4,
				MorselRows:         64,
				HashDedupThreshold: tc.threshold,
			}
			runDictionaryTest(t, "testdata/dictionary", opts)
		})
	}
}

func runDictionaryTest(t *testing.T, path string, opts *Options) {
	var d *Dictionary
	datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
		var next *Dictionary
		var err error
		switch td.Cmd {
		case "encode":
			c := parseColumn(t, scanDataType(t, td, column.DataTypeInvalid), td.Input)
			next, err = Encode(c, opts)
			if err == nil {
				decoded, err := Decode(next, opts)
				require.NoError(t, err)
				require.True(t, column.Equal(c, decoded), "decoded %s != %s", decoded, c)
				require.Equal(t, c.HasNulls(), !next.Indices().Validity().Empty())
			}

		case "set-keys", "add-keys", "remove-keys":
			keys := parseColumn(t, scanDataType(t, td, d.KeyType()), td.Input)
			switch td.Cmd {
			case "set-keys":
				next, err = SetKeys(d, keys, opts)
			case "add-keys":
				next, err = AddKeys(d, keys, opts)
			case "remove-keys":
				next, err = RemoveKeys(d, keys, opts)
			}

		case "remove-unused-keys":
			next, err = RemoveUnusedKeys(d, opts)

		case "decode":
			c, err := Decode(d, opts)
			require.NoError(t, err)
			return c.String()

		case "normalize":
			c := parseColumn(t, scanDataType(t, td, column.DataTypeInvalid), td.Input)
			keys, err := Normalize(c, opts)
			if err != nil {
				return fmt.Sprintf("error: %s", err)
			}
			return keys.String()

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
		if err != nil {
			return fmt.Sprintf("error: %s", err)
		}
		checkDictionary(t, next)
		if d != nil && td.Cmd != "encode" {
			// Re-keying only ever narrows the set of valid rows.
			for i := 0; i < d.Len(); i++ {
				if next.IsValid(i) {
					require.True(t, d.IsValid(i), "row %d became valid", i)
				}
			}
		}
		d = next
		return d.String()
	})
}

func TestNewDictionary(t *testing.T) {
	idx := func(vals []uint32, valid []bool) column.Column {
		return column.FromSliceWithNulls(vals, valid)
	}
	keys := column.FromSlice([]int64{1, 5, 9})

	d, err := NewDictionary(keys, idx([]uint32{2, 0, 7}, []bool{true, true, false}))
	require.NoError(t, err)
	require.Equal(t, 3, d.Len())
	require.Equal(t, 1, d.NullCount())
	require.Equal(t, 3, d.Cardinality())
	require.Equal(t, column.DataTypeInt64, d.KeyType())
	require.Equal(t, uint32(2), d.Index(0))
	require.False(t, d.IsValid(2))
	decoded, err := Decode(d, nil)
	require.NoError(t, err)
	require.Equal(t, "[9 1 NULL]", decoded.String())

	_, err = NewDictionary(column.FromSlice([]int64{1, 1}), idx([]uint32{0}, nil))
	require.True(t, errors.Is(err, ErrInvalidKeys), "%v", err)
	_, err = NewDictionary(column.FromSlice([]int64{2, 1}), idx([]uint32{0}, nil))
	require.True(t, errors.Is(err, ErrInvalidKeys), "%v", err)
	_, err = NewDictionary(column.FromSliceWithNulls([]int64{1, 2}, []bool{true, false}), idx([]uint32{0}, nil))
	require.True(t, errors.Is(err, ErrInvalidKeys), "%v", err)
	_, err = NewDictionary(keys, column.FromSlice([]int32{0}))
	require.True(t, errors.Is(err, ErrTypeMismatch), "%v", err)
	_, err = NewDictionary(keys, idx([]uint32{3}, nil))
	require.True(t, errors.HasAssertionFailure(err), "%v", err)
}

func TestDecodeInvalidIndexPanics(t *testing.T) {
	// A dictionary whose valid index is out of range can only be built by
	// bypassing NewDictionary.
	d := &Dictionary{
		keys:    column.FromStrings([]string{"a", "b"}, nil),
		indices: column.FromSlice([]uint32{0, 2}),
	}
	require.Panics(t, func() { _, _ = Decode(d, nil) })
}

func TestSetKeysErrors(t *testing.T) {
	d, err := Encode(column.FromSlice([]int64{3, 1, 2}), nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		name string
		keys column.Column
		want error
	}{
		{"null", column.FromSliceWithNulls([]int64{1, 0}, []bool{true, false}), ErrInvalidKeys},
		{"type", column.FromSlice([]float64{1, 2}), ErrTypeMismatch},
		{"type-string", column.FromStrings([]string{"1"}, nil), ErrTypeMismatch},
		{"null-and-type", column.FromSliceWithNulls([]int32{1, 0}, []bool{true, false}), ErrInvalidKeys},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for _, op := range []func(*Dictionary, column.Column, *Options) (*Dictionary, error){
				SetKeys, AddKeys, RemoveKeys,
			} {
				out, err := op(d, tc.keys, nil)
				require.Nil(t, out)
				require.True(t, errors.Is(err, tc.want), "%v", err)
			}
		})
	}

	_, err = Normalize(column.FromStrings([]string{"a", ""}, []bool{true, false}), nil)
	require.True(t, errors.Is(err, ErrInvalidKeys))
}

func TestRemoveUnusedKeysDirtyAllocator(t *testing.T) {
	opts := &Options{Allocator: dirtyAllocator{}, Logger: NoopLogger{}}
	d, err := Encode(column.FromSlice([]int64{1, 2, 3}), opts)
	require.NoError(t, err)
	d, err = SetKeys(d, column.FromSlice([]int64{1, 2, 3, 7, 8, 9}), opts)
	require.NoError(t, err)
	require.Equal(t, "[1 2 3 7 8 9]", d.Keys().String())

	out, err := RemoveUnusedKeys(d, opts)
	require.NoError(t, err)
	require.Equal(t, "keys: [1 2 3]\nindices: [0 1 2]", out.String())
}

func TestEncodeInvalidColumn(t *testing.T) {
	_, err := Encode(column.Column{}, nil)
	require.Error(t, err)
}

func TestReKeyDoesNotMutateInputs(t *testing.T) {
	c := column.FromStrings([]string{"b", "a", "c", "a"}, []bool{true, true, false, true})
	d, err := Encode(c, nil)
	require.NoError(t, err)
	before := d.String()
	newKeys := column.FromStrings([]string{"c", "a"}, nil)

	out, err := SetKeys(d, newKeys, nil)
	require.NoError(t, err)
	require.Equal(t, before, d.String())
	require.Equal(t, "[c a]", newKeys.String())
	require.Equal(t, "keys: [a c]\nindices: [1 0 0 0] valid=0101", out.String())

	decoded, err := Decode(d, nil)
	require.NoError(t, err)
	require.True(t, column.Equal(c, decoded))
}

func TestOptionsEnsureDefaults(t *testing.T) {
	var nilOpts *Options
	o := nilOpts.EnsureDefaults()
	require.NotNil(t, o.Allocator)
	require.NotNil(t, o.Logger)
	require.Equal(t, DefaultHashDedupThreshold, o.HashDedupThreshold)
	require.Equal(t, 16<<10, o.MorselRows)

	in := &Options{MorselRows: 100, HashDedupThreshold: -1}
	o = in.EnsureDefaults()
	require.Equal(t, 100, o.MorselRows)
	require.Equal(t, -1, o.HashDedupThreshold)
	// EnsureDefaults returns a copy.
	require.Nil(t, in.Logger)
}
