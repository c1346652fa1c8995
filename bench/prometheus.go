// Copyright 2025 Poiesic Systems
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



package bench

import (
	"net/http"
	"time"

	"github.com/poiesic/cyberbench/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "cyberbench"

// PrometheusMonitor exports benchmark progress as Prometheus metrics.
// Each monitor owns its registry so several can coexist in one process.
type PrometheusMonitor struct {
	registry *prometheus.Registry

	entries       *prometheus.CounterVec
	queryFailures prometheus.Counter
	validation    *prometheus.CounterVec
	parse         *prometheus.CounterVec
	duration      prometheus.Histogram
	composite     prometheus.Histogram
	total         prometheus.Gauge
	averages      *prometheus.GaugeVec
}

var _ Monitor = (*PrometheusMonitor)(nil)

// NewPrometheusMonitor creates a monitor with a fresh registry.
func NewPrometheusMonitor() *PrometheusMonitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMonitor{
		registry: reg,
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "entries_total",
			Help:      "Benchmark entries scored, by category",
		}, []string{"category"}),
		queryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_failures_total",
			Help:      "Queries that failed and were replaced by an empty answer",
		}),
		validation: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "validation_fallbacks_total",
			Help:      "Validation fallbacks taken, by kind",
		}, []string{"kind"}),
		parse: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_fallbacks_total",
			Help:      "Answers that could not be parsed as JSON, by kind",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "entry_duration_seconds",
			Help:      "Time spent on one entry, excluding the inter-entry delay",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		composite: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "composite_score",
			Help:      "Composite score distribution",
			Buckets:   []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0},
		}),
		total: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_entries",
			Help:      "Entries in the dataset of the current run",
		}),
		averages: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "average_score",
			Help:      "Per-metric mean of the last finished run",
		}, []string{"metric"}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *PrometheusMonitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the monitor's metrics in the Prometheus exposition format.
func (m *PrometheusMonitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *PrometheusMonitor) RunStarted(_ string, total int) {
	m.total.Set(float64(total))
}

func (m *PrometheusMonitor) EntryStarted(_ int, _ *core.DatasetEntry) {}

func (m *PrometheusMonitor) QueryFailed(_ *core.DatasetEntry, _ error) {
	m.queryFailures.Inc()
}

func (m *PrometheusMonitor) ValidationFallback(_ *core.DatasetEntry, fallback core.Fallback) {
	m.validation.WithLabelValues(string(fallback)).Inc()
}

func (m *PrometheusMonitor) ParseFallback(_ *core.DatasetEntry, fallback core.Fallback) {
	m.parse.WithLabelValues(string(fallback)).Inc()
}

func (m *PrometheusMonitor) EntryFinished(_ int, result *core.BenchmarkEntry, elapsed time.Duration) {
	m.entries.WithLabelValues(result.Category).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.composite.Observe(result.Scores.Composite)
}

func (m *PrometheusMonitor) RunFinished(summary *core.Summary) {
	m.averages.WithLabelValues("relevance").Set(summary.Averages.Relevance)
	m.averages.WithLabelValues("accuracy").Set(summary.Averages.Accuracy)
	m.averages.WithLabelValues("completeness_score").Set(summary.Averages.CompletenessScore)
	m.averages.WithLabelValues("semantic_similarity").Set(summary.Averages.SemanticSimilarity)
	m.averages.WithLabelValues("composite").Set(summary.Averages.Composite)
}
