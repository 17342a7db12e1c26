// Package metrics holds the Prometheus collectors for quoting, chain reads
// and swap execution.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ove_swap"

type Metrics struct {
	QuoteRequests   prometheus.Counter
	QuoteDiscarded  prometheus.Counter
	QuoteFailures   prometheus.Counter
	QuoteLatency    prometheus.Histogram
	ReadFailures    *prometheus.CounterVec
	Swaps           *prometheus.CounterVec
	SwapInFlight    prometheus.Gauge
	ReferencePrices *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates a fresh registry with all collectors registered on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		QuoteRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "quote", Name: "requests_total",
			Help: "Quote computations issued.",
		}),
		QuoteDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "quote", Name: "discarded_total",
			Help: "Quote results dropped because a newer request was issued.",
		}),
		QuoteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "quote", Name: "failures_total",
			Help: "Pricing calls that failed and reset the quote.",
		}),
		QuoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "quote", Name: "latency_seconds",
			Help:    "Pricing call latency.",
			Buckets: prometheus.DefBuckets,
		}),
		ReadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "chain", Name: "read_failures_total",
			Help: "Read-only chain queries that fell back to cached values.",
		}, []string{"op"}),
		Swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "swap", Name: "executions_total",
			Help: "Swap executions by outcome.",
		}, []string{"outcome"}),
		SwapInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "swap", Name: "in_flight",
			Help: "1 while a swap is being executed.",
		}),
		ReferencePrices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "chain", Name: "reference_price_usd",
			Help: "Last known USD reference price per asset.",
		}, []string{"symbol"}),
		registry: reg,
	}

	reg.MustRegister(
		m.QuoteRequests, m.QuoteDiscarded, m.QuoteFailures, m.QuoteLatency,
		m.ReadFailures, m.Swaps, m.SwapInFlight, m.ReferencePrices,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
