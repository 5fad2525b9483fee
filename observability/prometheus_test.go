package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hupe1980/roster"
	"github.com/hupe1980/roster/index"
	"github.com/hupe1980/roster/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg, "roster")

	c.RecordLoad(3, time.Millisecond, nil)
	c.RecordAdd(time.Millisecond, nil)
	c.RecordAdd(time.Millisecond, errors.New("boom"))
	c.RecordUpdate(time.Millisecond, nil)
	c.RecordDelete(time.Millisecond, nil)
	c.RecordFind(true)
	c.RecordFind(false)
	c.RecordFind(false)

	assert.InDelta(t, 3, testutil.ToFloat64(c.loaded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("add", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("add", "error")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.finds.WithLabelValues("miss")), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(c.opLatency))
}

func TestPrometheusCollector_WithManager(t *testing.T) {
	ctx := t.Context()
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg, "roster_items")

	keyOf := func(s string) string { return s }
	st := store.NewMemoryStore(keyOf, "a", "b")
	m := roster.New(st, index.New(keyOf), roster.WithMetricsCollector(c))

	require.NoError(t, m.Load(ctx))
	_, err := m.Add(ctx, "c")
	require.NoError(t, err)
	m.Find("a")
	m.Find("zzz")

	assert.InDelta(t, 2, testutil.ToFloat64(c.loaded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.finds.WithLabelValues("hit")), 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `roster_items_operations_total{op="add",status="success"} 1`)
	assert.Contains(t, string(body), "roster_items_indexed_records 2")
}
