package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	PagesFetched   *prometheus.CounterVec
	RecordsEmitted prometheus.Counter
	BlocksDetected prometheus.Counter
	Retries        prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		PagesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Pages fetched, by task label",
		}, []string{"label"}),
		RecordsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_records_emitted_total",
			Help: "Listing records pushed to the sink",
		}),
		BlocksDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_blocks_detected_total",
			Help: "Fetched bodies matching the block/CAPTCHA heuristic",
		}),
		Retries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_task_retries_total",
			Help: "Tasks re-enqueued after a retryable failure",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Errors encountered, by type",
		}, []string{"type"}), // e.g. 'bad_status', 'malformed_payload', 'sink_failed'
	}
}

func (m *Metrics) IncPagesFetched(label string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(label).Inc()
}

func (m *Metrics) IncRecordsEmitted() {
	if m == nil {
		return
	}
	m.RecordsEmitted.Inc()
}

func (m *Metrics) IncBlocksDetected() {
	if m == nil {
		return
	}
	m.BlocksDetected.Inc()
}

func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) IncErrors(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
