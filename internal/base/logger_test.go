// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemLogger(t *testing.T) {
	var l InMemLogger
	l.Infof("encoded %d rows", 9)
	l.Errorf("bad key type %s\n", "float32")
	require.Equal(t, "encoded 9 rows\nerror: bad key type float32\n", l.String())
	require.Panics(t, func() { l.Fatalf("boom") })
	require.Contains(t, l.String(), "fatal: boom\n")
	l.Reset()
	require.Empty(t, l.String())
}

func TestNoopLogger(t *testing.T) {
	var l NoopLogger
	l.Infof("ignored")
	l.Errorf("ignored")
	require.Panics(t, func() { l.Fatalf("fatal") })
}
