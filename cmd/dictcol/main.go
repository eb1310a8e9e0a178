// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command dictcol encodes, re-keys and benchmarks dictionary-encoded columns.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	dataType    string
	nullMarker  string
	parallelism int
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "dictcol [command] (flags)",
	Short: "dictionary-encoded column tool",
	Long:  ``,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		encodeCmd,
		setKeysCmd,
		benchCmd,
	)

	for _, cmd := range []*cobra.Command{encodeCmd, setKeysCmd, benchCmd} {
		cmd.Flags().StringVarP(
			&dataType, "type", "t", "string", "element type of the column")
		cmd.Flags().IntVarP(
			&parallelism, "parallelism", "p", 0, "number of concurrent workers (0, GOMAXPROCS)")
		cmd.Flags().BoolVarP(
			&verbose, "verbose", "v", false, "log the shape of every operation")
	}
	for _, cmd := range []*cobra.Command{encodeCmd, setKeysCmd} {
		cmd.Flags().StringVar(
			&nullMarker, "null", "NULL", "input line denoting a null row")
	}

	setKeysCmd.Flags().StringVarP(
		&setKeysConfig.keys, "keys", "k", "", "comma-separated new keys")

	benchCmd.Flags().IntVarP(
		&benchConfig.rows, "rows", "n", benchConfig.rows, "number of rows in the column")
	benchCmd.Flags().IntVar(
		&benchConfig.cardinality, "cardinality", benchConfig.cardinality, "number of distinct values")
	benchCmd.Flags().DurationVarP(
		&benchConfig.duration, "duration", "d", benchConfig.duration, "the duration to run")
	benchCmd.Flags().Float64Var(
		&benchConfig.nullFraction, "null-fraction", 0, "fraction of rows that are null")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", 1, "random seed")
}

func main() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
