// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package dictcol

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instruments updated by dictionary operations. Every field
// is optional; a nil instrument is not updated. Latencies are recorded in
// nanoseconds.
type Metrics struct {
	// EncodeLatency records the latency of Encode.
	EncodeLatency prometheus.Histogram
	// DecodeLatency records the latency of Decode.
	DecodeLatency prometheus.Histogram
	// RekeyLatency records the latency of SetKeys, AddKeys, RemoveKeys and
	// RemoveUnusedKeys.
	RekeyLatency prometheus.Histogram
	// NormalizeLatency records the latency of key normalization, including
	// the normalization performed by Encode and the re-keys.
	NormalizeLatency prometheus.Histogram
	// RowsEncoded counts the rows processed by Encode.
	RowsEncoded prometheus.Counter
	// RowsNarrowed counts the rows that were valid before a re-key and null
	// after it.
	RowsNarrowed prometheus.Counter
}

// latencyBuckets span 1µs to 10s.
var latencyBuckets = prometheus.ExponentialBuckets(1e3, 10, 8)

// NewMetrics returns a Metrics with every instrument set. Instrument names
// are prefixed by namespace. The caller registers them using Collectors.
func NewMetrics(namespace string) *Metrics {
	histogram := func(name, help string) prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dictcol",
			Name:      name,
			Help:      help,
			Buckets:   latencyBuckets,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dictcol",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		EncodeLatency:    histogram("encode_latency_ns", "Latency of dictionary encoding."),
		DecodeLatency:    histogram("decode_latency_ns", "Latency of dictionary decoding."),
		RekeyLatency:     histogram("rekey_latency_ns", "Latency of dictionary re-keying."),
		NormalizeLatency: histogram("normalize_latency_ns", "Latency of key normalization."),
		RowsEncoded:      counter("rows_encoded_total", "Rows processed by dictionary encoding."),
		RowsNarrowed:     counter("rows_narrowed_total", "Rows nulled by dictionary re-keying."),
	}
}

// Collectors returns the non-nil instruments of m.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	var cs []prometheus.Collector
	for _, h := range []prometheus.Histogram{m.EncodeLatency, m.DecodeLatency, m.RekeyLatency, m.NormalizeLatency} {
		if h != nil {
			cs = append(cs, h)
		}
	}
	for _, c := range []prometheus.Counter{m.RowsEncoded, m.RowsNarrowed} {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return cs
}

func observe(h prometheus.Histogram, d time.Duration) {
	if h != nil {
		h.Observe(float64(d))
	}
}

func add(c prometheus.Counter, n int) {
	if c != nil && n > 0 {
		c.Add(float64(n))
	}
}

func (m *Metrics) encoded(d time.Duration, rows int) {
	if m == nil {
		return
	}
	observe(m.EncodeLatency, d)
	add(m.RowsEncoded, rows)
}

func (m *Metrics) decoded(d time.Duration) {
	if m != nil {
		observe(m.DecodeLatency, d)
	}
}

func (m *Metrics) rekeyed(d time.Duration, narrowed int) {
	if m == nil {
		return
	}
	observe(m.RekeyLatency, d)
	add(m.RowsNarrowed, narrowed)
}

func (m *Metrics) normalized(d time.Duration) {
	if m != nil {
		observe(m.NormalizeLatency, d)
	}
}
