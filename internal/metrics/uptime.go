package metrics

import (
	"math"
	"sort"
	"time"

	"onlinewatch/internal/models"
)

// Uptime summarises connectivity over a time window.
type Uptime struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	UptimePercent  float64   `json:"uptime_percent"`
	OnlineSeconds  float64   `json:"online_seconds"`
	OfflineSeconds float64   `json:"offline_seconds"`
	UnknownSeconds float64   `json:"unknown_seconds"`
	Transitions    int       `json:"transitions"`
	LastState      string    `json:"last_state,omitempty"`
	LastChanged    string    `json:"last_changed,omitempty"`
}

// ComputeUptime splits [start, end] into online, offline and unknown time
// using the phase changes in transitions. Uptime is the online share of the
// known time.
func ComputeUptime(transitions []models.Transition, start, end time.Time) Uptime {
	result := Uptime{Start: start, End: end}
	if !end.After(start) {
		return result
	}

	sorted := make([]models.Transition, len(transitions))
	copy(sorted, transitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	durations := map[models.Phase]time.Duration{}
	phase := models.PhaseUnknown
	cursor := start
	var lastChanged time.Time

	for _, t := range sorted {
		if !t.At.After(start) {
			phase = t.To
			lastChanged = t.At
			continue
		}
		if t.At.After(end) {
			break
		}
		durations[phase] += t.At.Sub(cursor)
		cursor = t.At
		phase = t.To
		lastChanged = t.At
		result.Transitions++
	}
	durations[phase] += end.Sub(cursor)

	result.OnlineSeconds = round2(durations[models.PhaseOnline].Seconds())
	result.OfflineSeconds = round2(durations[models.PhaseOffline].Seconds())
	result.UnknownSeconds = round2(durations[models.PhaseUnknown].Seconds())

	known := durations[models.PhaseOnline] + durations[models.PhaseOffline]
	if known > 0 {
		result.UptimePercent = round2(float64(durations[models.PhaseOnline]) / float64(known) * 100)
	}
	result.LastState = string(phase)
	if !lastChanged.IsZero() {
		result.LastChanged = lastChanged.UTC().Format(time.RFC3339)
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
