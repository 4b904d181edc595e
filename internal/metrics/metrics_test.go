package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	registry := NewWithRegistry(prometheus.NewRegistry())
	if registry == nil {
		t.Fatal("expected non-nil Registry")
	}
	registry.RecordHTTPRequest("GET", "/optimize", 200, 0.1)
}

func TestObserveOptimizeRun_ExposedInHandler(t *testing.T) {
	registry := NewWithRegistry(prometheus.NewRegistry())

	registry.ObserveOptimizeRun(1.2, false)
	registry.ObserveOptimizeRun(0.05, true)

	body := scrape(t, registry.Handler())
	if !strings.Contains(body, "optimize_runs_total") {
		t.Error("expected optimize_runs_total in scrape output")
	}
	if !strings.Contains(body, "optimize_run_duration_seconds") {
		t.Error("expected optimize_run_duration_seconds in scrape output")
	}
}

func TestObserveEmergencyInsertion_ExposedInHandler(t *testing.T) {
	registry := NewWithRegistry(prometheus.NewRegistry())

	registry.ObserveEmergencyInsertion("bump", true)
	registry.ObserveEmergencyInsertion("manual", false)

	body := scrape(t, registry.Handler())
	if !strings.Contains(body, "emergency_inserts_total") {
		t.Error("expected emergency_inserts_total in scrape output")
	}
}

func TestSetWorkerPoolInUse(t *testing.T) {
	registry := NewWithRegistry(prometheus.NewRegistry())
	registry.SetWorkerPoolInUse(3)

	body := scrape(t, registry.Handler())
	if !strings.Contains(body, "engine_worker_pool_in_use 3") {
		t.Errorf("expected engine_worker_pool_in_use to read 3, got body:\n%s", body)
	}
}

func scrape(t *testing.T, handler http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	return w.Body.String()
}
