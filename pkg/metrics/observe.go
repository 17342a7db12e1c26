package metrics

import "time"

// The helpers below are safe on a nil *Metrics so components can run without
// a registry.

func (m *Metrics) ObserveQuote(started time.Time, err error) {
	if m == nil {
		return
	}
	m.QuoteLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		m.QuoteFailures.Inc()
	}
}

func (m *Metrics) QuoteIssued() {
	if m != nil {
		m.QuoteRequests.Inc()
	}
}

func (m *Metrics) QuoteDropped() {
	if m != nil {
		m.QuoteDiscarded.Inc()
	}
}

func (m *Metrics) ReadFailed(op string) {
	if m != nil {
		m.ReadFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) SwapStarted() {
	if m != nil {
		m.SwapInFlight.Set(1)
	}
}

// SwapFinished records the outcome label ("success" or an error kind).
func (m *Metrics) SwapFinished(outcome string) {
	if m == nil {
		return
	}
	m.SwapInFlight.Set(0)
	m.Swaps.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetPrice(symbol string, usd float64) {
	if m != nil {
		m.ReferencePrices.WithLabelValues(symbol).Set(usd)
	}
}
