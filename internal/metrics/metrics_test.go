package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCheckout(t *testing.T) {
	m := New()
	m.ObserveCheckout("ok", 10*time.Millisecond)
	m.ObserveCheckout("ok", 20*time.Millisecond)
	m.ObserveCheckout("insufficient_stock", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts.WithLabelValues("insufficient_stock")))
}

func TestSetLowStockResets(t *testing.T) {
	m := New()
	m.SetLowStock(map[int64]int{1: 3, 2: 1})
	m.SetLowStock(map[int64]int{2: 4})

	assert.Equal(t, 1, testutil.CollectAndCount(m.LowStock))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.LowStock.WithLabelValues("2")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest("/sales", http.StatusCreated, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `goldpos_http_requests_total{route="/sales",status="201"} 1`)
}
