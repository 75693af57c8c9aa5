package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveBatch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBatch(3, nil)
	m.ObserveBatch(1, errors.New("boom"))
	m.ObserveBatch(2, nil)

	require.Equal(t, 2.0, testutil.ToFloat64(m.KanbanBatches.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.KanbanBatches.WithLabelValues("error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBatch(1, nil)
	m.ObserveStatusChange("HIRED")
	m.ObserveApplicationCreated()
	m.ObserveBoardFetch()
	m.SetSubscribers(3)
	m.ObserveRateLimited("/api/v1/jobs")
}

func TestRateLimitedByRoute(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRateLimited("/api/v1/jobs/:jobId/applications/kanban")
	m.ObserveRateLimited("/api/v1/jobs/:jobId/applications/kanban")
	require.Equal(t, 2.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/v1/jobs/:jobId/applications/kanban")))
}

func TestSubscribersGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetSubscribers(4)
	require.Equal(t, 4.0, testutil.ToFloat64(m.StreamSubscribers))
}
