// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import (
	"math/bits"
	"strings"

	"github.com/cockroachdb/dictcol/internal/invariants"
	"github.com/cockroachdb/errors"
)

// Bitmap is a fixed-length bit vector built on a []uint64. Bit i is stored in
// word i/64 at position i%64. Bits beyond the bitmap's length in the final
// word are always zero.
//
// A column's validity is a Bitmap in which a set bit marks a valid row. The
// zero Bitmap has length zero; columns use it to indicate that every row is
// valid.
type Bitmap struct {
	words []uint64
	n     int
}

// BitmapWords returns the number of 64-bit words required to store n bits.
func BitmapWords(n int) int {
	return (n + 63) >> 6
}

// MakeBitmap returns a Bitmap of n bits reading from words. The caller must
// supply at least BitmapWords(n) words and must not modify them afterwards.
// Any set bits beyond n in the final word are cleared.
func MakeBitmap(words []uint64, n int) Bitmap {
	nWords := BitmapWords(n)
	if len(words) < nWords {
		panic(errors.AssertionFailedf("bitmap of %d bits requires %d words; %d provided", n, nWords, len(words)))
	}
	words = words[:nWords]
	if i := n % 64; i != 0 {
		words[nWords-1] &= (1 << i) - 1
	}
	return Bitmap{words: words, n: n}
}

// Len returns the number of bits in the bitmap.
func (b Bitmap) Len() int { return b.n }

// Empty returns true if the bitmap has no bits.
func (b Bitmap) Empty() bool { return b.n == 0 }

// Words returns the words backing the bitmap. The returned slice must not be
// mutated.
func (b Bitmap) Words() []uint64 { return b.words }

// Get returns true if the bit at position i is set and false otherwise.
func (b Bitmap) Get(i int) bool {
	invariants.CheckBounds(i, b.n)
	return (b.words[i>>6] & (1 << uint(i%64))) != 0
}

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	var n int
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Successor returns the next bit greater than or equal to i set in the bitmap.
// Returns the number of bits represented by the bitmap if no next bit is set.
func (b Bitmap) Successor(i int) int {
	if i >= b.n {
		return b.n
	}
	wordIdx := i >> 6
	// Clear the bits below i in the first word, then scan forward for the
	// first non-zero word.
	word := b.words[wordIdx] &^ ((1 << uint(i%64)) - 1)
	for word == 0 {
		wordIdx++
		if wordIdx >= len(b.words) {
			return b.n
		}
		word = b.words[wordIdx]
	}
	return wordIdx<<6 + bits.TrailingZeros64(word)
}

// String returns a string of '0' and '1' characters, one per bit.
func (b Bitmap) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// BitmapBuilder constructs a Bitmap. Bits are default false.
type BitmapBuilder struct {
	words []uint64
}

// Set sets the bit at position i if v is true and clears the bit at position i
// otherwise. Callers need not call Set if v is false and Set(i, true) has not
// been set yet.
func (b *BitmapBuilder) Set(i int, v bool) {
	w := i >> 6 // divide by 64
	for len(b.words) <= w {
		b.words = append(b.words, 0)
	}
	if v {
		b.words[w] |= 1 << uint(i%64)
	} else {
		b.words[w] &^= 1 << uint(i%64)
	}
}

// Reset resets the bitmap to the empty state.
func (b *BitmapBuilder) Reset() {
	clear(b.words)
	b.words = b.words[:0]
}

// Finish returns a Bitmap of n bits. Bits set at positions ≥ n are dropped.
// The builder must be Reset before it is reused.
func (b *BitmapBuilder) Finish(n int) Bitmap {
	nWords := BitmapWords(n)
	words := make([]uint64, nWords)
	copy(words, b.words)
	return MakeBitmap(words, n)
}

// BitmapFromBools returns a Bitmap with bit i set iff v[i] is true.
func BitmapFromBools(v []bool) Bitmap {
	var b BitmapBuilder
	for i := range v {
		if v[i] {
			b.Set(i, true)
		}
	}
	return b.Finish(len(v))
}
