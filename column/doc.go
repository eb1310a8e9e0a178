// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package column implements typed, immutable columns with optional validity
// bitmaps, and the bulk primitives over them that dictionary encoding is
// built from: gathering rows by index, sorting a column into its distinct
// values, and concatenation.
//
// Every buffer of a column produced by this package is obtained through an
// Allocator. Operations never mutate their inputs, so columns may be shared
// read-only across goroutines.
package column
