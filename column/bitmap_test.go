// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"bytes"
	"fmt"
	"testing"
	"time"
	"unicode"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestBitmapFixed(t *testing.T) {
	var bitmap Bitmap
	var buf bytes.Buffer
	datadriven.RunTest(t, "testdata/bitmap", func(t *testing.T, td *datadriven.TestData) string {
		buf.Reset()
		switch td.Cmd {
		case "build":
			var builder BitmapBuilder
			var n int
			for _, r := range td.Input {
				if unicode.IsSpace(r) {
					continue
				}
				if r == '1' {
					builder.Set(n, true)
				}
				n++
			}
			td.MaybeScanArgs(t, "rows", &n)
			bitmap = builder.Finish(n)
			fmt.Fprintf(&buf, "%s\ncount: %d\n", bitmap, bitmap.Count())
			return buf.String()
		case "successor":
			var indexes []int
			td.ScanArgs(t, "indexes", &indexes)
			for _, idx := range indexes {
				fmt.Fprintf(&buf, "bitmap.Successor(%d) = %d\n", idx, bitmap.Successor(idx))
			}
			return buf.String()
		default:
			panic(fmt.Sprintf("unknown command: %s", td.Cmd))
		}
	})
}

func TestBitmapRandom(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))
	size := rng.Intn(4096) + 1

	testWithProbability := func(t *testing.T, p float64) {
		var builder BitmapBuilder
		v := make([]bool, size)
		var count int
		for i := 0; i < size; i++ {
			v[i] = rng.Float64() < p
			if v[i] {
				builder.Set(i, v[i])
				count++
			}
		}
		bitmap := builder.Finish(size)
		require.Equal(t, count, bitmap.Count())
		for i := 0; i < size; i++ {
			if got := bitmap.Get(i); got != v[i] {
				t.Fatalf("b.Get(%d) = %t; want %t", i, got, v[i])
			}
		}
		for i := 0; i < size; i++ {
			succ := bitmap.Successor(i)
			// Ensure that Successor always returns the index of a set bit.
			if succ != size && !bitmap.Get(succ) {
				t.Fatalf("b.Successor(%d) = %d; bit at index %d is not set", i, succ, succ)
			}
			// Ensure there are no set bits between i and succ.
			for j := i; j < succ; j++ {
				if bitmap.Get(j) {
					t.Fatalf("b.Successor(%d) = %d; bit at index %d is set", i, succ, j)
				}
			}
		}
		require.Equal(t, bitmap, BitmapFromBools(v))
	}

	fixedProbabilities := []float64{0.00001, 0.0001, 0.001, 0.1, 0.5, 0.9999}
	for _, p := range fixedProbabilities {
		t.Run(fmt.Sprintf("p=%05f", p), func(t *testing.T) {
			testWithProbability(t, p)
		})
	}
	for i := 0; i < 10; i++ {
		p := rng.ExpFloat64() * 0.1
		t.Run(fmt.Sprintf("p=%05f", p), func(t *testing.T) {
			testWithProbability(t, p)
		})
	}
}

func TestMakeBitmapClearsTail(t *testing.T) {
	words := []uint64{^uint64(0)}
	b := MakeBitmap(words, 3)
	require.Equal(t, 3, b.Count())
	require.Equal(t, "111", b.String())
	require.Equal(t, uint64(0b111), b.Words()[0])
	require.Panics(t, func() { MakeBitmap(nil, 1) })
}

func BenchmarkBitmapBuilder(b *testing.B) {
	seed := uint64(10024282523)
	rng := rand.New(rand.NewSource(seed))
	size := rng.Intn(4096) + 1
	v := make([]bool, size)
	for i := 0; i < size; i++ {
		v[i] = rng.Intn(2) == 0
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var builder BitmapBuilder
		for i := 0; i < size; i++ {
			if v[i] {
				builder.Set(i, v[i])
			}
		}
		_ = builder.Finish(size)
	}
}
