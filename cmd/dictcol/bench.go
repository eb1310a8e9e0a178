// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/dictcol"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

const (
	minLatency = 1 * time.Microsecond
	maxLatency = 100 * time.Second
)

var benchConfig = struct {
	rows         int
	cardinality  int
	duration     time.Duration
	nullFraction float64
	seed         uint64
}{
	rows:        1 << 20,
	cardinality: 1000,
	duration:    10 * time.Second,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "benchmark dictionary encoding, re-keying and decoding",
	Long: `
Repeatedly encodes a random column, re-keys the result onto half of its keys
and decodes it, for the configured duration. Prints latency quantiles and
throughput for each operation.
`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 3)
}

func record(h *hdrhistogram.Histogram, elapsed time.Duration) {
	elapsed = min(max(elapsed, minLatency), maxLatency)
	if err := h.RecordValue(elapsed.Nanoseconds()); err != nil {
		// The value is clamped to the histogram's range.
		panic(fmt.Sprintf("recording value: %s", err))
	}
}

// randomColumn returns a column of n rows holding values drawn uniformly from
// card distinct values, and the input size of the column in bytes.
func randomColumn(
	rng *rand.Rand, dt column.DataType, n, card int, nullFraction float64,
) (column.Column, int64, error) {
	valid := make([]bool, n)
	tokens := make([]string, n)
	size := int64(0)
	for i := range tokens {
		valid[i] = rng.Float64() >= nullFraction
		v := rng.Intn(card)
		switch dt {
		case column.DataTypeString:
			tokens[i] = fmt.Sprintf("value-%08d", v)
			size += int64(len(tokens[i])) + 4
		case column.DataTypeFloat32, column.DataTypeFloat64:
			tokens[i] = fmt.Sprintf("%d.5", v)
			size += int64(dt.Width())
		case column.DataTypeBool:
			tokens[i] = fmt.Sprint(v%2 == 0)
			size++
		default:
			tokens[i] = fmt.Sprint(v)
			size += int64(dt.Width())
		}
	}
	const null = "\x00null"
	for i := range tokens {
		if !valid[i] {
			tokens[i] = null
		}
	}
	c, err := column.Parse(dt, tokens, null)
	return c, size, err
}

func runBench(cmd *cobra.Command, args []string) error {
	dt, err := column.ParseDataType(dataType)
	if err != nil {
		return err
	}
	if benchConfig.rows < 0 || benchConfig.cardinality <= 0 {
		return errors.Newf("invalid --rows=%d or --cardinality=%d", benchConfig.rows, benchConfig.cardinality)
	}
	rng := rand.New(rand.NewSource(benchConfig.seed))
	c, size, err := randomColumn(rng, dt, benchConfig.rows, benchConfig.cardinality, benchConfig.nullFraction)
	if err != nil {
		return err
	}
	opts := options(cmd)

	ops := []benchOp{
		{name: "encode", hist: newHistogram()},
		{name: "set-keys", hist: newHistogram()},
		{name: "decode", hist: newHistogram()},
	}
	start := crtime.NowMono()
	for start.Elapsed() < benchConfig.duration {
		t := crtime.NowMono()
		d, err := dictcol.Encode(c, opts)
		if err != nil {
			return err
		}
		record(ops[0].hist, t.Elapsed())

		// Re-key onto every other key.
		keep := make([]uint32, 0, (d.Cardinality()+1)/2)
		for i := 0; i < d.Cardinality(); i += 2 {
			keep = append(keep, uint32(i))
		}
		half, err := column.Gather(d.Keys(), keep, column.Bitmap{}, nil)
		if err != nil {
			return err
		}
		t = crtime.NowMono()
		d, err = dictcol.SetKeys(d, half, opts)
		if err != nil {
			return err
		}
		record(ops[1].hist, t.Elapsed())

		t = crtime.NowMono()
		if _, err := dictcol.Decode(d, opts); err != nil {
			return err
		}
		record(ops[2].hist, t.Elapsed())
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d %s rows, %d distinct values, %s\n",
		benchConfig.rows, dt, benchConfig.cardinality, crhumanize.Bytes(size, crhumanize.Compact, crhumanize.OmitI))
	printBench(w, ops, size)
	return nil
}

type benchOp struct {
	name string
	hist *hdrhistogram.Histogram
}

func printBench(w io.Writer, ops []benchOp, size int64) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Op", "Ops", "p50", "p95", "p99", "Max", "Throughput"})
	for _, op := range ops {
		h := op.hist
		var throughput string
		if mean := h.Mean(); mean > 0 {
			perSec := float64(size) / (mean / float64(time.Second))
			throughput = string(crhumanize.Bytes(int64(perSec), crhumanize.Compact, crhumanize.OmitI)) + "/s"
		}
		tbl.Append([]string{
			op.name,
			fmt.Sprint(h.TotalCount()),
			time.Duration(h.ValueAtQuantile(50)).String(),
			time.Duration(h.ValueAtQuantile(95)).String(),
			time.Duration(h.ValueAtQuantile(99)).String(),
			time.Duration(h.Max()).String(),
			throughput,
		})
	}
	tbl.Render()
}
