// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package column

import "github.com/cockroachdb/dictcol/internal/invariants"

// Bytes holds an array of byte slices, stored as a concatenated data section
// and a series of offsets for each slice. An array of N slices holds N+1
// offsets; slice i is data[offsets[i]:offsets[i+1]].
//
//	+-------------------------------------------------------------------+
//	|                  uint32 offsets table (N+1 entries)               |
//	+-------------------------------------------------------------------+
//	|                           String Data                             |
//	|  abcabcada....                                                    |
//	+-------------------------------------------------------------------+
//
// Byte slices returned by At alias the Bytes' data and must not be mutated.
type Bytes struct {
	offsets []uint32
	data    []byte
}

// MakeBytes constructs a Bytes from an offsets table and the concatenated
// data. The offsets must be non-decreasing, begin at zero and end at
// len(data).
func MakeBytes(offsets []uint32, data []byte) Bytes {
	return Bytes{offsets: offsets, data: data}
}

// Len returns the number of byte slices.
func (b Bytes) Len() int {
	if len(b.offsets) == 0 {
		return 0
	}
	return len(b.offsets) - 1
}

// At returns the []byte at index i. The returned slice should not be mutated.
func (b Bytes) At(i int) []byte {
	invariants.CheckBounds(i, b.Len())
	return b.data[b.offsets[i]:b.offsets[i+1]:b.offsets[i+1]]
}

// Offsets returns the offsets table. The returned slice must not be mutated.
func (b Bytes) Offsets() []uint32 { return b.offsets }

// Data returns the concatenated data section. The returned slice must not be
// mutated.
func (b Bytes) Data() []byte { return b.data }

// Size returns the number of bytes in the data section.
func (b Bytes) Size() int { return len(b.data) }
