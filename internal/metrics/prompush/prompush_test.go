package prompush

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orderetl/internal/metrics"
)

func TestNewBackendRequiresGatewayURL(t *testing.T) {
	if _, err := NewBackend("job", ""); err == nil {
		t.Fatal("NewBackend with empty URL succeeded")
	}
}

func TestNewBackendDefaultJobName(t *testing.T) {
	b, err := NewBackend("", "http://gateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.jobName != "orderetl" {
		t.Fatalf("jobName = %q, want orderetl", b.jobName)
	}
}

func gatherValue(t *testing.T, b *Backend, family string) float64 {
	t.Helper()
	mfs, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != family {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				sum += c.GetValue()
			}
		}
		return sum
	}
	t.Fatalf("family %q not gathered", family)
	return 0
}

func TestCountersRoute(t *testing.T) {
	b, err := NewBackend("daily", "http://gateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("pipeline_step_total", 1, metrics.Labels{"step": "validate", "status": "success"})
	b.IncCounter("pipeline_rows_total", 42, metrics.Labels{"kind": "parsed"})
	b.IncCounter("some_other_metric", 5, nil)

	if got := gatherValue(t, b, "pipeline_step_total"); got != 1 {
		t.Fatalf("pipeline_step_total = %v, want 1", got)
	}
	if got := gatherValue(t, b, "pipeline_rows_total"); got != 42 {
		t.Fatalf("pipeline_rows_total = %v, want 42", got)
	}
}

func TestObserveHistogramIgnoresUnknownName(t *testing.T) {
	b, err := NewBackend("daily", "http://gateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	// must not panic or record anything
	b.ObserveHistogram("not_a_known_metric", 1.5, nil)
	b.ObserveHistogram("pipeline_step_duration_seconds", 0.25, metrics.Labels{"step": "load", "status": "success"})

	mfs, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "pipeline_step_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Fatal("duration summary not gathered after observe")
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("daily", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("pipeline_rows_total", 1, metrics.Labels{"kind": "parsed"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.Contains(gotPath, "/job/daily") {
		t.Fatalf("push path = %q, want job grouping", gotPath)
	}
}
