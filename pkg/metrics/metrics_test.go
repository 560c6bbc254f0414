package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/productos", 200, 15*time.Millisecond)
	m.Observe("GET", "/api/productos", 200, 20*time.Millisecond)
	m.Observe("POST", "", 401, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/productos", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "unknown", "401")); got != 1 {
		t.Fatalf("expected empty route normalized to unknown, got %v", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 2 {
		t.Fatalf("expected 2 histogram series, got %d", got)
	}
}

func TestAuthMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAuthMetrics(reg)

	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginInvalid)
	m.IncLogin(LoginInvalid)
	m.IncRefresh(true)
	m.IncRefresh(false)

	if got := testutil.ToFloat64(m.logins.WithLabelValues(LoginInvalid)); got != 2 {
		t.Fatalf("expected 2 invalid logins, got %v", got)
	}
	if got := testutil.ToFloat64(m.refreshes.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("expected 1 rejected refresh, got %v", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	NewAuthMetrics(nil).IncLogin(LoginSuccess)

	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Millisecond)
	var a *AuthMetrics
	a.IncRefresh(true)
}
