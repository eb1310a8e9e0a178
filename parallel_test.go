// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/dictcol/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// TestRandomized encodes and re-keys large random columns across a range of
// morsel sizes and hash thresholds, comparing every row against a direct
// computation.
func TestRandomized(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 20; iter++ {
		n := rng.Intn(20000)
		card := 1 + rng.Intn(500)
		opts := &Options{
			Logger:             NoopLogger{},
			Parallelism:        1 + rng.Intn(8),
			MorselRows:         64 * (1 + rng.Intn(50)),
			HashDedupThreshold: []int{-1, 1, DefaultHashDedupThreshold}[rng.Intn(3)],
		}
		vals := make([]string, n)
		valid := make([]bool, n)
		for i := range vals {
			vals[i] = fmt.Sprintf("v%05d", rng.Intn(card))
			valid[i] = rng.Intn(10) != 0
			if !valid[i] {
				vals[i] = ""
			}
		}
		c := column.FromStrings(vals, valid)
		d, err := Encode(c, opts)
		require.NoError(t, err)
		require.Equal(t, -1, column.FirstUnordered(d.Keys()))
		decoded, err := Decode(d, opts)
		require.NoError(t, err)
		require.True(t, column.Equal(c, decoded), "opts: %+v", opts)

		// Re-key onto a random half of the keyspace plus some absent keys.
		var newKeys []string
		for i := 0; i < card; i++ {
			if rng.Intn(2) == 0 {
				newKeys = append(newKeys, fmt.Sprintf("v%05d", i))
			}
		}
		newKeys = append(newKeys, "unused", "v")
		present := make(map[string]bool, len(newKeys))
		for _, k := range newKeys {
			present[k] = true
		}
		out, err := SetKeys(d, column.FromStrings(newKeys, nil), opts)
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			want := valid[i] && present[vals[i]]
			require.Equal(t, want, out.IsValid(i), "row %d", i)
			if want {
				require.Equal(t, vals[i], out.Keys().Format(int(out.Index(i))))
			}
		}
	}
}

func TestEncodeLargeInt64(t *testing.T) {
	const n = 1 << 17
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = int64((i * 2654435761) % 1000)
	}
	c := column.FromSlice(vals)
	d, err := Encode(c, &Options{Logger: NoopLogger{}, Parallelism: 8, MorselRows: 1024})
	require.NoError(t, err)
	require.Equal(t, 1000, d.Cardinality())
	require.Equal(t, 0, d.NullCount())
	require.True(t, d.Indices().Validity().Empty())
	for i := 0; i < n; i += 97 {
		require.Equal(t, uint32(vals[i]), d.Index(i))
	}
}

func TestAllocationFailure(t *testing.T) {
	vals := make([]int64, 4096)
	for i := range vals {
		vals[i] = int64(i % 64)
	}
	c := column.FromSlice(vals)
	d, err := Encode(c, nil)
	require.NoError(t, err)

	for _, limit := range []int64{0, 64, 1 << 10, 1 << 14} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			opts := &Options{Allocator: &column.BudgetAllocator{Limit: limit}}
			out, err := Encode(c, opts)
			require.Nil(t, out)
			require.True(t, errors.Is(err, ErrAllocationFailure), "%v", err)

			opts = &Options{Allocator: &column.BudgetAllocator{Limit: limit}}
			out, err = SetKeys(d, column.FromSlice([]int64{1, 2, 3}), opts)
			require.Nil(t, out)
			require.True(t, errors.Is(err, ErrAllocationFailure), "%v", err)

			opts = &Options{Allocator: &column.BudgetAllocator{Limit: limit}}
			_, err = Decode(d, opts)
			require.True(t, errors.Is(err, ErrAllocationFailure), "%v", err)
		})
	}

	// A sufficient budget succeeds and accounts for every output buffer.
	a := &column.BudgetAllocator{Limit: 1 << 20}
	out, err := Encode(c, &Options{Allocator: a})
	require.NoError(t, err)
	require.Equal(t, 64, out.Cardinality())
	require.GreaterOrEqual(t, a.Used(), int64(4096*4+64*8))
}

func TestVerboseLogging(t *testing.T) {
	var logger base.InMemLogger
	opts := &Options{Logger: &logger, Verbose: true, HashDedupThreshold: 1, MorselRows: 64}
	c := column.FromSliceWithNulls([]int32{3, 1, 3, 2, 0}, []bool{true, true, true, true, false})
	d, err := Encode(c, opts)
	require.NoError(t, err)
	_, err = SetKeys(d, column.FromSlice([]int32{1, 3}), opts)
	require.NoError(t, err)

	require.Equal(t, `dictcol: normalize: 5 rows reduced to 3 candidates in 1 morsels
dictcol: normalize: 3 int32 keys
dictcol: encode: 5 rows (1 null) into 3 keys in 1 morsels
dictcol: normalize: 2 rows reduced to 2 candidates in 1 morsels
dictcol: normalize: 2 int32 keys
dictcol: set keys: 5 rows from 3 keys onto 2 keys; 1 rows narrowed
`, logger.String())

	logger.Reset()
	_, err = Encode(c, &Options{Logger: &logger})
	require.NoError(t, err)
	require.Empty(t, logger.String())
}
