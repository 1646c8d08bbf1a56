package transport

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics counts the requests of one transport. Instances with the same side
// and name share their series.
type Metrics struct {
	requests *metrics.Counter
	failures *metrics.Counter
	duration *metrics.Histogram
}

// NewMetrics returns the metrics for the given side (client, server) and transport name
func NewMetrics(side, name string) *Metrics {
	labels := fmt.Sprintf(`{side=%q,transport=%q}`, side, name)
	return &Metrics{
		requests: metrics.GetOrCreateCounter("darr_rpc_requests_total" + labels),
		failures: metrics.GetOrCreateCounter("darr_rpc_request_errors_total" + labels),
		duration: metrics.GetOrCreateHistogram("darr_rpc_request_duration_seconds" + labels),
	}
}

// Observe records one finished request that started at start
func (m *Metrics) Observe(start time.Time, err error) {
	m.requests.Inc()
	if err != nil {
		m.failures.Inc()
	}
	m.duration.UpdateDuration(start)
}
