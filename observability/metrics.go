//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FlowMetrics counts flow steps. A nil *FlowMetrics records nothing.
type FlowMetrics struct {
	Steps         *prometheus.CounterVec
	Cancellations *prometheus.CounterVec
	Active        *prometheus.GaugeVec
	Refreshes     *prometheus.CounterVec
	LedgerLatency *prometheus.HistogramVec
}

func MakeFlowMetrics(obs *Observability) *FlowMetrics {
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "memberclient_ledger_call_seconds",
		Help:    "Seconds spent waiting for the ledger per operation.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"operation"})
	if err := obs.Metrics().Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			obs.Log().WithField("metric_collector", "memberclient_ledger_call_seconds").
				Errorf("failed to register metric")
		}
	}
	return &FlowMetrics{
		Steps: obs.Counter(prometheus.CounterOpts{
			Name: "memberclient_flow_steps_total",
			Help: "Number of flow steps by action, step and outcome kind.",
		}, "action", "step", "outcome"),
		Cancellations: obs.Counter(prometheus.CounterOpts{
			Name: "memberclient_flow_cancellations_total",
			Help: "Number of flows abandoned by the member.",
		}, "action"),
		Active: obs.Gauge(prometheus.GaugeOpts{
			Name: "memberclient_flows_active",
			Help: "Number of flows outside the Idle phase.",
		}, "action"),
		Refreshes: obs.Counter(prometheus.CounterOpts{
			Name: "memberclient_refresh_total",
			Help: "Number of snapshot refreshes by outcome kind.",
		}, "outcome"),
		LedgerLatency: latency,
	}
}

func (m *FlowMetrics) Step(action, step, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.Steps.WithLabelValues(action, step, outcome).Inc()
}

func (m *FlowMetrics) Cancelled(action string) {
	if m == nil {
		return
	}
	m.Cancellations.WithLabelValues(action).Inc()
}

func (m *FlowMetrics) ActiveDelta(action string, delta float64) {
	if m == nil {
		return
	}
	m.Active.WithLabelValues(action).Add(delta)
}

func (m *FlowMetrics) Refreshed(outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *FlowMetrics) Since(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.LedgerLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
