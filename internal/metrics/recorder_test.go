package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"onlinewatch/internal/models"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.SetOnline(true)
	r.SetRunning(true)
	r.ObserveProbe(true, 40*time.Millisecond)
	r.ObserveProbe(false, 2*time.Second)
	r.ObserveTransition(models.PhaseOnline)
	r.ObserveCycle("online")
	r.ObserveCycle("online")

	if got := testutil.ToFloat64(r.online); got != 1 {
		t.Errorf("online gauge = %v", got)
	}
	if got := testutil.ToFloat64(r.probes.WithLabelValues("offline")); got != 1 {
		t.Errorf("offline probes = %v", got)
	}
	if got := testutil.ToFloat64(r.cycles.WithLabelValues("online")); got != 2 {
		t.Errorf("online cycles = %v", got)
	}
	if got := testutil.ToFloat64(r.transitions.WithLabelValues("online")); got != 1 {
		t.Errorf("transitions = %v", got)
	}

	count, err := testutil.GatherAndCount(reg, "onlinewatch_probe_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one histogram series, got %d", count)
	}
}
