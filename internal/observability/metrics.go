package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adengine_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adengine_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// impressions and clicks recorded, labelled by type
	EventCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adengine_events_total",
			Help: "Total ad events recorded",
		},
		[]string{"type"},
	)

	// ad requests that found no eligible campaign
	NoFitCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adengine_nofit_total",
			Help: "Total ad requests with no suitable campaign",
		},
	)

	// selection latency across the candidate scan
	SelectionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adengine_selection_duration_seconds",
			Help:    "Duration of ad selection",
			Buckets: prometheus.DefBuckets,
		},
	)

	// candidate pool size observed per selection
	SelectionCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adengine_selection_candidates",
			Help:    "Active campaigns examined per selection",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// spend tracked per campaign
	SpendTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adengine_spend_total",
			Help: "Total spend recorded",
		},
		[]string{"campaign"},
	)

	// moderation rejections
	CensorshipCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adengine_censorship_total",
			Help: "Total campaign texts rejected by moderation",
		},
	)

	// current simulated day
	CurrentDay = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "adengine_current_day",
			Help: "Current simulated day",
		},
	)

	// text generation requests labelled by outcome
	TextGenRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adengine_textgen_total",
			Help: "Total text generation requests",
		},
		[]string{"outcome"},
	)

	// errors mirroring events to the analytics sink
	AnalyticsMirrorErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adengine_analytics_mirror_errors_total",
			Help: "Total failures mirroring events to analytics",
		},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		EventCount,
		NoFitCount,
		SelectionLatency,
		SelectionCandidates,
		SpendTotal,
		CensorshipCount,
		CurrentDay,
		TextGenRequests,
		AnalyticsMirrorErrors,
	)
}
