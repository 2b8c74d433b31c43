package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bara-directory/seeder/internal/pipeline"
)

func TestObserveCountsOutcomes(t *testing.T) {
	m := New()
	m.Observe("businesses", pipeline.OutcomeWritten, pipeline.StageWrite, 10*time.Millisecond)
	m.Observe("businesses", pipeline.OutcomeWritten, pipeline.StageWrite, 12*time.Millisecond)
	m.Observe("businesses", pipeline.OutcomeFailed, pipeline.StageResolve, time.Millisecond)

	if got := testutil.ToFloat64(m.records.WithLabelValues("businesses", "written", "write")); got != 2 {
		t.Fatalf("expected 2 written, got %v", got)
	}
	if got := testutil.ToFloat64(m.records.WithLabelValues("businesses", "failed", "resolve")); got != 1 {
		t.Fatalf("expected 1 resolve failure, got %v", got)
	}
}

func TestRunFinishedAndHandler(t *testing.T) {
	m := New()
	finished := time.Unix(1700000000, 0)
	m.RunFinished(pipeline.Stats{Pipeline: "events", Succeeded: 8, Failed: 2, Retries: 3}, finished)

	if got := testutil.ToFloat64(m.lastRun.WithLabelValues("events", "failed")); got != 2 {
		t.Fatalf("expected 2 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastSuccess.WithLabelValues("events")); got != 1700000000 {
		t.Fatalf("unexpected timestamp %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "seeder_write_retries_total") {
		t.Fatalf("expected seeder metrics in exposition output")
	}
}
