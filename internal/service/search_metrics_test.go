package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics, err := NewSearchMetrics(registry)
	require.NoError(t, err)

	metrics.Start("study")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SearchesInFlight.WithLabelValues("study")), 0)

	metrics.Complete("study", "success", time.Now())
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.SearchesInFlight.WithLabelValues("study")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SearchesTotal.WithLabelValues("study", "success")), 0)

	metrics.DirectoryLoaded("cache", nil)
	metrics.DirectoryLoaded("archive", errors.New("down"))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DirectoryLoads.WithLabelValues("cache", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DirectoryLoads.WithLabelValues("archive", "error")), 0)
}

func TestSearchMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewSearchMetrics(registry)
	require.NoError(t, err)

	_, err = NewSearchMetrics(registry)
	assert.Error(t, err)
}
