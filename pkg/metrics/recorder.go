// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics records login flow events as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stacklok/twauth/pkg/authflow"
)

const namespace = "twauth"

// Recorder is an authflow.Observer backed by its own Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	flowsInProgress   prometheus.Gauge
	flowsStarted      *prometheus.CounterVec
	flowsCompleted    *prometheus.CounterVec
	redirectsRejected prometheus.Counter
}

var _ authflow.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder and registers its collectors, together
// with the Go runtime and process collectors.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		flowsInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flows_in_progress",
			Help:      "Login flows that have not delivered a result yet.",
		}),
		flowsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_started_total",
			Help:      "Login flows by the path they took.",
		}, []string{"path"}),
		flowsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_completed_total",
			Help:      "Login flows by terminal status.",
		}, []string{"status"}),
		redirectsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirects_rejected_total",
			Help:      "Inbound redirects that were not consumed by a flow.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.flowsInProgress,
		r.flowsStarted,
		r.flowsCompleted,
		r.redirectsRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// FlowStarted implements authflow.Observer.
func (r *Recorder) FlowStarted() {
	r.flowsInProgress.Inc()
}

// PathSelected implements authflow.Observer.
func (r *Recorder) PathSelected(path authflow.Path) {
	r.flowsStarted.WithLabelValues(string(path)).Inc()
}

// FlowCompleted implements authflow.Observer.
func (r *Recorder) FlowCompleted(status authflow.Status) {
	r.flowsInProgress.Dec()
	r.flowsCompleted.WithLabelValues(status.String()).Inc()
}

// RedirectRejected implements authflow.Observer.
func (r *Recorder) RedirectRejected() {
	r.redirectsRejected.Inc()
}
