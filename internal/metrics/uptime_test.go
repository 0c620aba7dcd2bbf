package metrics

import (
	"testing"
	"time"

	"onlinewatch/internal/models"
)

func TestComputeUptime(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	transitions := []models.Transition{
		{From: models.PhaseUnknown, To: models.PhaseOnline, At: base.Add(-time.Hour)},
		{From: models.PhaseOnline, To: models.PhaseOffline, At: base.Add(30 * time.Minute)},
		{From: models.PhaseOffline, To: models.PhaseOnline, At: base.Add(45 * time.Minute)},
		{From: models.PhaseOnline, To: models.PhaseOffline, At: base.Add(2 * time.Hour)},
	}

	got := ComputeUptime(transitions, base, base.Add(time.Hour))

	if got.OnlineSeconds != 45*60 {
		t.Errorf("online seconds = %v", got.OnlineSeconds)
	}
	if got.OfflineSeconds != 15*60 {
		t.Errorf("offline seconds = %v", got.OfflineSeconds)
	}
	if got.UnknownSeconds != 0 {
		t.Errorf("unknown seconds = %v", got.UnknownSeconds)
	}
	if got.UptimePercent != 75 {
		t.Errorf("uptime = %v", got.UptimePercent)
	}
	if got.Transitions != 2 {
		t.Errorf("transitions = %d", got.Transitions)
	}
	if got.LastState != "online" {
		t.Errorf("last state = %q", got.LastState)
	}
	if got.LastChanged != base.Add(45*time.Minute).Format(time.RFC3339) {
		t.Errorf("last changed = %q", got.LastChanged)
	}
}

func TestComputeUptimeUnknownPrefix(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	transitions := []models.Transition{
		{From: models.PhaseUnknown, To: models.PhaseOffline, At: base.Add(10 * time.Minute)},
	}

	got := ComputeUptime(transitions, base, base.Add(20*time.Minute))
	if got.UnknownSeconds != 600 || got.OfflineSeconds != 600 {
		t.Fatalf("unexpected split %+v", got)
	}
	if got.UptimePercent != 0 {
		t.Fatalf("uptime should be 0, got %v", got.UptimePercent)
	}
}

func TestComputeUptimeEmptyWindow(t *testing.T) {
	now := time.Now()
	got := ComputeUptime(nil, now, now)
	if got.UptimePercent != 0 || got.Transitions != 0 || got.LastState != "" {
		t.Fatalf("empty window should be zero, got %+v", got)
	}
}
