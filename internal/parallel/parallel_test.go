// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package parallel

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestExecutorMorsels(t *testing.T) {
	datadriven.RunTest(t, "testdata/morsels", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "split":
			var e Executor
			var n int
			td.ScanArgs(t, "n", &n)
			td.MaybeScanArgs(t, "morsel-rows", &e.MorselRows)
			e.Parallelism = 1
			var sb strings.Builder
			fmt.Fprintf(&sb, "morsels: %d\n", e.Morsels(n))
			require.NoError(t, e.Run(n, func(m Morsel) error {
				fmt.Fprintf(&sb, "%d: [%d,%d)\n", m.Index, m.Start, m.End)
				return nil
			}))
			return sb.String()
		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}

func TestExecutorCoversAllRows(t *testing.T) {
	for _, parallelism := range []int{1, 2, 8} {
		for _, n := range []int{0, 1, 63, 64, 65, 1000, 4097} {
			t.Run(fmt.Sprintf("p=%d/n=%d", parallelism, n), func(t *testing.T) {
				e := Executor{Parallelism: parallelism, MorselRows: 64}
				seen := make([]int32, n)
				var calls atomic.Int32
				require.NoError(t, e.Run(n, func(m Morsel) error {
					calls.Add(1)
					if m.Start%64 != 0 {
						return errors.Newf("morsel %d starts at unaligned row %d", m.Index, m.Start)
					}
					for i := m.Start; i < m.End; i++ {
						atomic.AddInt32(&seen[i], 1)
					}
					return nil
				}))
				require.Equal(t, int32(e.Morsels(n)), calls.Load())
				for i := range seen {
					require.Equal(t, int32(1), seen[i], "row %d", i)
				}
			})
		}
	}
}

func TestExecutorError(t *testing.T) {
	boom := errors.New("boom")
	e := Executor{Parallelism: 4, MorselRows: 64}
	err := e.Run(1000, func(m Morsel) error {
		if m.Index == 3 {
			return boom
		}
		return nil
	})
	require.True(t, errors.Is(err, boom))
}

func TestExecutorPanic(t *testing.T) {
	e := Executor{Parallelism: 4, MorselRows: 64}
	require.PanicsWithValue(t, "morsel 2", func() {
		_ = e.Run(1000, func(m Morsel) error {
			if m.Index == 2 {
				panic(fmt.Sprintf("morsel %d", m.Index))
			}
			return nil
		})
	})
}
