// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

var _ Logger = DefaultLogger{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Errorf implements the Logger.Errorf interface.
func (DefaultLogger) Errorf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Fatalf implements the Logger.Fatalf interface.
func (DefaultLogger) Fatalf(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
	os.Exit(1)
}

// NoopLogger is a Logger that discards all messages. Fatalf still panics so
// that a fatal condition is never silently ignored.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// Infof implements the Logger.Infof interface.
func (NoopLogger) Infof(format string, args ...interface{}) {}

// Errorf implements the Logger.Errorf interface.
func (NoopLogger) Errorf(format string, args ...interface{}) {}

// Fatalf implements the Logger.Fatalf interface.
func (NoopLogger) Fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// InMemLogger is a logger that buffers all messages in memory. It is used in
// tests to assert on the logging side effects of an operation.
type InMemLogger struct {
	mu  sync.Mutex
	buf strings.Builder
}

var _ Logger = (*InMemLogger)(nil)

// Reset clears the buffered messages.
func (b *InMemLogger) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// String returns the buffered messages, one per line.
func (b *InMemLogger) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *InMemLogger) logf(prefix, format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(prefix)
	fmt.Fprintf(&b.buf, format, args...)
	if !strings.HasSuffix(format, "\n") {
		b.buf.WriteByte('\n')
	}
}

// Infof implements the Logger.Infof interface.
func (b *InMemLogger) Infof(format string, args ...interface{}) {
	b.logf("", format, args...)
}

// Errorf implements the Logger.Errorf interface.
func (b *InMemLogger) Errorf(format string, args ...interface{}) {
	b.logf("error: ", format, args...)
}

// Fatalf implements the Logger.Fatalf interface.
func (b *InMemLogger) Fatalf(format string, args ...interface{}) {
	b.logf("fatal: ", format, args...)
	panic(fmt.Sprintf(format, args...))
}
