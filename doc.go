// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package dictcol implements dictionary-encoded columns.
//
// A dictionary column stores a column of N repeated values as a set of K
// unique keys, sorted in ascending order, plus a uint32 index per row into the
// keys. Row validity is carried by the index column: a null row has a null
// index.
//
// Encode builds a dictionary from a plain column and Decode reverses it.
// SetKeys re-keys a dictionary onto an independently supplied key set:
// indices are recomputed against the new keys, and any row whose value is not
// among the new keys becomes null. Re-keying can only narrow the set of valid
// rows, never widen it. AddKeys, RemoveKeys and RemoveUnusedKeys are re-keys
// onto key sets derived from the dictionary's current keys.
//
// Every operation is a bulk transform over whole columns, split into morsels
// of rows processed in parallel. Operations never mutate their inputs and
// every returned buffer is exclusively owned by the returned value.
package dictcol
