package cli

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"onlinewatch/internal/app"
	"onlinewatch/internal/config"
	"onlinewatch/internal/log"
	"onlinewatch/internal/metrics"
	"onlinewatch/internal/monitor"
	"onlinewatch/internal/probe"
	"onlinewatch/internal/radio"
	"onlinewatch/internal/storage"
)

// runtime is the fully wired poller with its shared services.
type runtime struct {
	app      *app.App
	history  *storage.TransitionStorage
	registry *prometheus.Registry
	poller   *monitor.Poller
}

func newRuntime(cfg config.Config, logger log.Logger) (*runtime, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	history, err := storage.NewTransitionStorage(cfg.HistoryPath(), cfg.History.MaxEntries)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open transition history: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	poller := monitor.New(monitor.Deps{
		Store:      a.Prefs(),
		Foreground: a.Lifecycle(),
		Radio:      radio.NewChecker(cfg.Radio.Interfaces),
		Prober: probe.NewHTTPProber(probe.Options{
			URL:            cfg.Probe.URL,
			UserAgent:      cfg.Probe.UserAgent,
			ConnectTimeout: time.Duration(cfg.Probe.ConnectTimeoutMs) * time.Millisecond,
		}),
		Publisher: a.Bus(),
		History:   history,
		Metrics:   metrics.NewRecorder(registry),
		Logger:    logger.WithName("poller"),
	}, monitor.Options{Interval: time.Duration(cfg.Poll.IntervalSeconds) * time.Second})

	return &runtime{app: a, history: history, registry: registry, poller: poller}, nil
}

func (r *runtime) Close() {
	r.poller.Stop()
	r.app.Close()
}
