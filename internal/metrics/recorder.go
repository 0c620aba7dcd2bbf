package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"onlinewatch/internal/models"
)

// Recorder exports poller activity as Prometheus metrics.
type Recorder struct {
	online      prometheus.Gauge
	running     prometheus.Gauge
	probes      *prometheus.CounterVec
	probeTime   prometheus.Histogram
	transitions *prometheus.CounterVec
	cycles      *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onlinewatch_online",
			Help: "Last classified connectivity state (1=online, 0=offline).",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onlinewatch_poller_running",
			Help: "Whether the connectivity poller loop is running.",
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinewatch_probe_total",
			Help: "HTTP probes issued, by result.",
		}, []string{"result"}),
		probeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onlinewatch_probe_duration_seconds",
			Help:    "Latency of HTTP probes.",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2, 5},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinewatch_transitions_total",
			Help: "Connectivity phase changes, by destination phase.",
		}, []string{"to"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onlinewatch_cycles_total",
			Help: "Poll cycles, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(r.online, r.running, r.probes, r.probeTime, r.transitions, r.cycles)
	}
	return r
}

// ObserveProbe records one probe result.
func (r *Recorder) ObserveProbe(online bool, latency time.Duration) {
	result := "offline"
	if online {
		result = "online"
	}
	r.probes.WithLabelValues(result).Inc()
	r.probeTime.Observe(latency.Seconds())
}

// ObserveCycle records the outcome of a cycle: online, offline, no_radio or backgrounded.
func (r *Recorder) ObserveCycle(outcome string) {
	r.cycles.WithLabelValues(outcome).Inc()
}

// SetOnline updates the connectivity gauge.
func (r *Recorder) SetOnline(online bool) {
	r.online.Set(boolToFloat(online))
}

// SetRunning updates the poller gauge.
func (r *Recorder) SetRunning(running bool) {
	r.running.Set(boolToFloat(running))
}

// ObserveTransition counts a phase change.
func (r *Recorder) ObserveTransition(to models.Phase) {
	r.transitions.WithLabelValues(string(to)).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
