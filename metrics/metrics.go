// Copyright 2018 The ZikiChombo Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package metrics exposes the kernel's compile-time and diagnostic
// activity as Prometheus metrics, on its own registry so embedding
// applications choose when and whether to serve them. Nothing here
// runs on the real-time thread: compile observations happen on the
// control thread inside sigkernel.Compile, and diagnostic counts are
// updated by whatever goroutine drains a Runtime's Diagnostics
// channel, never by ProcessBlock itself.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sigkernel "zikichombo.org/sigkernel"
)

// Recorder implements sigkernel.Recorder and collects per-event
// counts for a Runtime's Diagnostics channel. Registered metrics live
// on a private registry to keep embedding applications in control of
// what they expose at "/metrics".
type Recorder struct {
	registry *prometheus.Registry

	compileTotal    *prometheus.CounterVec
	compileDuration prometheus.Histogram

	events       *prometheus.CounterVec
	dropped      prometheus.Counter
	lastOverflow uint64
}

// New builds a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		compileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigkernel",
			Name:      "compile_total",
			Help:      "Number of Plan compiles, partitioned by outcome.",
		}, []string{"outcome"}),
		compileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sigkernel",
			Name:      "compile_duration_seconds",
			Help:      "sigkernel.Compile latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sigkernel",
			Name:      "diagnostic_events_total",
			Help:      "Diagnostic events drained from a Runtime, partitioned by code.",
		}, []string{"code"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sigkernel",
			Name:      "diagnostic_events_dropped_total",
			Help:      "Diagnostic events dropped because the ring buffer was full at emission time.",
		}),
	}

	reg.MustRegister(r.compileTotal, r.compileDuration, r.events, r.dropped)
	return r
}

// ObserveCompile implements sigkernel.Recorder.
func (r *Recorder) ObserveCompile(d time.Duration, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.compileTotal.WithLabelValues(outcome).Inc()
	r.compileDuration.Observe(d.Seconds())
}

// DrainInto drains diag into the Recorder's counters, one increment
// per event, plus however much the ring's cumulative overflow grew
// since the last call. Call it periodically from whatever goroutine
// owns a Runtime's control-thread side.
func (r *Recorder) DrainInto(diag *sigkernel.Diagnostics, scratch []sigkernel.EventCode) {
	n := diag.Drain(scratch)
	for i := 0; i < n; i++ {
		r.events.WithLabelValues(scratch[i].String()).Inc()
	}
	if cur := diag.Overflow(); cur > r.lastOverflow {
		r.dropped.Add(float64(cur - r.lastOverflow))
		r.lastOverflow = cur
	}
}

// Handler returns an http.Handler serving the Recorder's registry in
// the Prometheus text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
