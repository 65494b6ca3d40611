/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/suparena/dashboard/render"
)

var _ render.Observer = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	m := New("dashboard")

	m.ObserveRequest("products", http.StatusOK)
	m.ObserveRequest("products", http.StatusOK)
	m.ObserveRequest("products", http.StatusNotFound)
	m.ObserveItems("products", 25)
	m.ObserveItems("products", 5)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("products", "200")); got != 2 {
		t.Errorf("200 requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("products", "404")); got != 1 {
		t.Errorf("404 requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.items.WithLabelValues("products")); got != 30 {
		t.Errorf("items = %v, want 30", got)
	}
}

func TestFetchHistogram(t *testing.T) {
	m := New("dashboard")

	m.ObserveFetch("products", 20*time.Millisecond, nil)
	m.ObserveFetch("products", time.Second, errors.New("boom"))

	if n := testutil.CollectAndCount(m.fetch); n != 2 {
		t.Errorf("histogram series = %d, want 2", n)
	}
}

func TestHandler(t *testing.T) {
	m := New("dashboard")
	m.ObserveRequest("imports", http.StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `dashboard_page_requests_total{page="imports",status="200"} 1`) {
		t.Errorf("request counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("go collector missing from exposition")
	}
}
