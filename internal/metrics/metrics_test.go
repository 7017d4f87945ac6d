package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOutcome(t *testing.T) {
	m := New()

	m.Outcome("posted")
	m.Outcome("posted")
	m.Outcome("no_lot")

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("posted")); got != 2 {
		t.Errorf("posted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues("no_lot")); got != 1 {
		t.Errorf("no_lot = %v, want 1", got)
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("select", time.Now().Add(-time.Second))

	if got := testutil.CollectAndCount(m.CallSeconds); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Outcome("posted")
	m.LastSuccess.Set(1700000000)

	path := filepath.Join(t.TempDir(), "everylot.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`everylot_runs_total{outcome="posted"} 1`,
		"everylot_last_success_timestamp_seconds 1.7e+09",
		"everylot_run_duration_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
