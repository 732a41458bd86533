package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type metricSummary struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// handleMetricsSummary renders a compact JSON snapshot of the engine's
// counters and gauges for quick eyeballing without a Prometheus scrape.
func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to gather metrics")
		return
	}

	var summaries []metricSummary
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			summaries = append(summaries, metricSummary{
				Name:  mf.GetName(),
				Type:  mf.GetType().String(),
				Value: value,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"metrics":   summaries,
	})
}
