package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the server's collectors. A nil *Metrics records nothing.
type Metrics struct {
	KanbanBatches     *prometheus.CounterVec
	KanbanBatchSize   prometheus.Histogram
	StatusChanges     *prometheus.CounterVec
	ApplicationsAdded prometheus.Counter
	BoardFetches      prometheus.Counter
	StreamSubscribers prometheus.Gauge
	RateLimited       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		KanbanBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "kanban_batches_total",
			Help:      "Kanban batch updates by result.",
		}, []string{"result"}),
		KanbanBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pipeline",
			Name:      "kanban_batch_size",
			Help:      "Number of updates per kanban batch.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		StatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "status_changes_total",
			Help:      "Applications moved into a status.",
		}, []string{"status"}),
		ApplicationsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "applications_created_total",
			Help:      "Applications submitted.",
		}),
		BoardFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "board_fetches_total",
			Help:      "Full application list fetches.",
		}),
		StreamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pipeline",
			Name:      "notification_subscribers",
			Help:      "Open notification streams.",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}
	reg.MustRegister(
		m.KanbanBatches,
		m.KanbanBatchSize,
		m.StatusChanges,
		m.ApplicationsAdded,
		m.BoardFetches,
		m.StreamSubscribers,
		m.RateLimited,
	)
	return m
}

func (m *Metrics) ObserveBatch(size int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.KanbanBatches.WithLabelValues(result).Inc()
	m.KanbanBatchSize.Observe(float64(size))
}

func (m *Metrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveApplicationCreated() {
	if m == nil {
		return
	}
	m.ApplicationsAdded.Inc()
}

func (m *Metrics) ObserveBoardFetch() {
	if m == nil {
		return
	}
	m.BoardFetches.Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.StreamSubscribers.Set(float64(n))
}

func (m *Metrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}
