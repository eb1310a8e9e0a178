// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/dictcol"
	"github.com/cockroachdb/dictcol/column"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "dictionary encode a column read one value per line",
	Long: `
Reads a column with one value per line from the named file, or from standard
input if no file is given, and prints its dictionary encoding.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

var setKeysConfig struct {
	keys string
}

var setKeysCmd = &cobra.Command{
	Use:   "set-keys [file] --keys a,b,c",
	Short: "dictionary encode a column and re-key it onto new keys",
	Long: `
Reads a column with one value per line, dictionary encodes it, and re-keys the
dictionary onto the comma-separated --keys. Rows whose value is not among the
new keys become null.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetKeys,
}

func options(cmd *cobra.Command) *dictcol.Options {
	return &dictcol.Options{
		Logger:      cmdLogger{w: cmd.ErrOrStderr()},
		Parallelism: parallelism,
		Verbose:     verbose,
	}
}

// cmdLogger writes log messages to a command's error stream.
type cmdLogger struct {
	w io.Writer
}

func (l cmdLogger) Infof(format string, args ...interface{}) {
	fmt.Fprintf(l.w, format+"\n", args...)
}

func (l cmdLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, "error: "+format+"\n", args...)
}

func (l cmdLogger) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(l.w, "fatal: "+format+"\n", args...)
	os.Exit(1)
}

func readColumn(cmd *cobra.Command, args []string) (column.Column, error) {
	dt, err := column.ParseDataType(dataType)
	if err != nil {
		return column.Column{}, err
	}
	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return column.Column{}, errors.Wrap(err, "reading input")
	}
	return column.Parse(dt, crstrings.Lines(string(data)), nullMarker)
}

func runEncode(cmd *cobra.Command, args []string) error {
	c, err := readColumn(cmd, args)
	if err != nil {
		return err
	}
	d, err := dictcol.Encode(c, options(cmd))
	if err != nil {
		return err
	}
	printDictionary(cmd.OutOrStdout(), d, nil)
	return nil
}

func runSetKeys(cmd *cobra.Command, args []string) error {
	c, err := readColumn(cmd, args)
	if err != nil {
		return err
	}
	var tokens []string
	if setKeysConfig.keys != "" {
		tokens = strings.Split(setKeysConfig.keys, ",")
	}
	keys, err := column.Parse(c.DataType(), tokens, nullMarker)
	if err != nil {
		return errors.Wrap(err, "parsing --keys")
	}
	opts := options(cmd)
	d, err := dictcol.Encode(c, opts)
	if err != nil {
		return err
	}
	out, err := dictcol.SetKeys(d, keys, opts)
	if err != nil {
		return err
	}
	printDictionary(cmd.OutOrStdout(), out, d)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows narrowed\n", out.NullCount()-d.NullCount(), out.Len())
	return nil
}

// printDictionary writes the keys of d followed by a table of its rows. If
// prev is non-nil, the table also shows the value each row held in prev.
func printDictionary(w io.Writer, d, prev *dictcol.Dictionary) {
	keys := d.Keys()
	fmt.Fprintf(w, "%d keys: %s\n", keys.Len(), keys)

	tbl := tablewriter.NewWriter(w)
	header := []string{"Row", "Value", "Index", "Valid"}
	if prev != nil {
		header = []string{"Row", "Before", "Value", "Index", "Valid"}
	}
	tbl.SetHeader(header)
	value := func(d *dictcol.Dictionary, i int) string {
		if !d.IsValid(i) {
			return "NULL"
		}
		return d.Keys().Format(int(d.Index(i)))
	}
	for i := 0; i < d.Len(); i++ {
		row := []string{fmt.Sprint(i)}
		if prev != nil {
			row = append(row, value(prev, i))
		}
		row = append(row, value(d, i), fmt.Sprint(d.Index(i)), fmt.Sprint(d.IsValid(i)))
		tbl.Append(row)
	}
	tbl.Render()
}
