// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestEncodeCommand(t *testing.T) {
	out := runCommand(t, "eee\naaa\nddd\nbbb\nccc\nNULL\nccc\neee\naaa\n", "encode", "--type=string")
	require.Contains(t, out, "5 keys: [aaa bbb ccc ddd eee]")
	require.Contains(t, out, "VALUE")
	require.Contains(t, out, "eee")
	require.Contains(t, out, "NULL")
	require.Contains(t, out, "false")
}

func TestSetKeysCommand(t *testing.T) {
	out := runCommand(t, "444\n0\n333\n111\n222\nNULL\n222\n444\n0\n",
		"set-keys", "--type=int64", "--keys=0,222,333,444")
	require.Contains(t, out, "4 keys: [0 222 333 444]")
	require.Contains(t, out, "1 of 9 rows narrowed")
}

func TestBenchCommand(t *testing.T) {
	out := runCommand(t, "", "bench", "--type=int64", "--rows=1000", "--cardinality=10",
		"--duration="+time.Millisecond.String())
	require.Contains(t, out, "1000 int64 rows, 10 distinct values")
	require.Contains(t, out, "encode")
	require.Contains(t, out, "set-keys")
	require.Contains(t, out, "decode")
}
