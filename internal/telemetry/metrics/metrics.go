// Package metrics holds the Prometheus instrumentation for the feed engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles all feed engine metrics. A nil *Registry is a valid
// no-op so library code never needs to branch on instrumentation.
type Registry struct {
	FeedRequests         *prometheus.CounterVec
	FeedDuration         *prometheus.HistogramVec
	DegradedGenerations  prometheus.Counter
	ChannelItems         *prometheus.CounterVec
	CandidatesConsidered prometheus.Histogram
}

// NewRegistry creates and registers all metrics with the given registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		FeedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feediq_feed_requests_total",
				Help: "Feed requests by outcome",
			},
			[]string{"status"},
		),
		FeedDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feediq_feed_request_duration_seconds",
				Help:    "Feed request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"endpoint"},
		),
		DegradedGenerations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "feediq_degraded_generations_total",
				Help: "Candidate generations that ran on a single source",
			},
		),
		ChannelItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feediq_channel_items_total",
				Help: "Feed items emitted per channel",
			},
			[]string{"channel"},
		),
		CandidatesConsidered: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feediq_candidates_considered",
				Help:    "Candidate pool size before filtering",
				Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}

	reg.MustRegister(
		r.FeedRequests,
		r.FeedDuration,
		r.DegradedGenerations,
		r.ChannelItems,
		r.CandidatesConsidered,
	)
	return r
}

func (r *Registry) ObserveRequest(status string) {
	if r == nil {
		return
	}
	r.FeedRequests.WithLabelValues(status).Inc()
}

func (r *Registry) ObserveDuration(endpoint string, seconds float64) {
	if r == nil {
		return
	}
	r.FeedDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (r *Registry) ObserveDegraded() {
	if r == nil {
		return
	}
	r.DegradedGenerations.Inc()
}

func (r *Registry) ObserveChannelItems(channel string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.ChannelItems.WithLabelValues(channel).Add(float64(n))
}

func (r *Registry) ObserveCandidates(n int) {
	if r == nil {
		return
	}
	r.CandidatesConsidered.Observe(float64(n))
}
