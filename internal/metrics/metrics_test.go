package metrics_test

import (
	"testing"

	"github.com/jrsteele09/venta-admin/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := metrics.NewPipeline(reg)

	p.ObserveRequest("GET", metrics.OutcomeSuccess)
	p.ObserveRequest("GET", metrics.OutcomeSuccess)
	p.ObserveRefresh(metrics.ResultFailure)
	p.ObserveRetry()

	require.Equal(t, 2.0, testutil.ToFloat64(p.Requests.WithLabelValues("GET", metrics.OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(p.Refreshes.WithLabelValues(metrics.ResultFailure)))
	require.Equal(t, 1.0, testutil.ToFloat64(p.Retries))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestPipeline_NilIsNoop(t *testing.T) {
	var p *metrics.Pipeline
	require.NotPanics(t, func() {
		p.ObserveRequest("GET", metrics.OutcomeSuccess)
		p.ObserveRefresh(metrics.ResultSuccess)
		p.ObserveRetry()
	})
}
