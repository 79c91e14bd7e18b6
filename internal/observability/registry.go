package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics.
// Handlers and services depend on this instead of the global Prometheus
// collectors so tests can run with a no-op implementation.
type MetricsRegistry interface {
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	IncrementEvent(eventType string)
	IncrementNoFit()
	RecordSelectionLatency(duration time.Duration)
	RecordSelectionCandidates(n int)

	SetSpendTotal(campaign string, amount float64)
	IncrementCensorship()
	SetCurrentDay(day uint32)
	IncrementTextGenRequests(outcome string)
	IncrementAnalyticsMirrorErrors()
}

// PrometheusRegistry implements MetricsRegistry on the package collectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementEvent(eventType string) {
	EventCount.WithLabelValues(eventType).Inc()
}

func (r *PrometheusRegistry) IncrementNoFit() {
	NoFitCount.Inc()
}

func (r *PrometheusRegistry) RecordSelectionLatency(duration time.Duration) {
	SelectionLatency.Observe(duration.Seconds())
}

func (r *PrometheusRegistry) RecordSelectionCandidates(n int) {
	SelectionCandidates.Observe(float64(n))
}

func (r *PrometheusRegistry) SetSpendTotal(campaign string, amount float64) {
	SpendTotal.WithLabelValues(campaign).Set(amount)
}

func (r *PrometheusRegistry) IncrementCensorship() {
	CensorshipCount.Inc()
}

func (r *PrometheusRegistry) SetCurrentDay(day uint32) {
	CurrentDay.Set(float64(day))
}

func (r *PrometheusRegistry) IncrementTextGenRequests(outcome string) {
	TextGenRequests.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementAnalyticsMirrorErrors() {
	AnalyticsMirrorErrors.Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementEvent(eventType string)                                      {}
func (r *NoOpRegistry) IncrementNoFit()                                                      {}
func (r *NoOpRegistry) RecordSelectionLatency(duration time.Duration)                        {}
func (r *NoOpRegistry) RecordSelectionCandidates(n int)                                      {}
func (r *NoOpRegistry) SetSpendTotal(campaign string, amount float64)                        {}
func (r *NoOpRegistry) IncrementCensorship()                                                 {}
func (r *NoOpRegistry) SetCurrentDay(day uint32)                                             {}
func (r *NoOpRegistry) IncrementTextGenRequests(outcome string)                              {}
func (r *NoOpRegistry) IncrementAnalyticsMirrorErrors()                                      {}
