package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"onlinewatch/internal/log"
	"onlinewatch/internal/models"
	"onlinewatch/internal/probe"
)

// DefaultInterval is the period between poll cycles.
const DefaultInterval = 15 * time.Second

// ForegroundDetector reports whether the host application is in the background.
type ForegroundDetector interface {
	Backgrounded() bool
}

// RadioChecker reports whether any network interface is connected.
type RadioChecker interface {
	Connected() bool
}

// Prober checks internet reachability.
type Prober interface {
	Probe(ctx context.Context) probe.Result
}

// Publisher delivers events to same-process listeners.
type Publisher interface {
	Publish(ev models.Event) error
}

// TransitionRecorder keeps the history of phase changes.
type TransitionRecorder interface {
	Append(t models.Transition) error
}

// Metrics receives poller observations.
type Metrics interface {
	ObserveProbe(online bool, latency time.Duration)
	ObserveCycle(outcome string)
	ObserveTransition(to models.Phase)
	SetOnline(online bool)
	SetRunning(running bool)
}

// Deps are the collaborators of a Poller. Store, Foreground, Radio, Prober
// and Publisher are required.
type Deps struct {
	Store      Store
	Foreground ForegroundDetector
	Radio      RadioChecker
	Prober     Prober
	Publisher  Publisher
	History    TransitionRecorder
	Metrics    Metrics
	Logger     log.Logger
}

// Options tunes a Poller.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
}

// CycleResult describes one poll cycle.
type CycleResult struct {
	At time.Time `json:"at"`
	// Backgrounded is set when the host was in the background and nothing was changed.
	Backgrounded bool `json:"backgrounded"`
	// Aborted is set when the cycle was cancelled before its outcome was persisted.
	Aborted    bool                     `json:"aborted"`
	RadioUp    bool                     `json:"radio_up"`
	Probed     bool                     `json:"probed"`
	StatusCode int                      `json:"status_code"`
	Latency    time.Duration            `json:"latency"`
	Online     bool                     `json:"online"`
	State      models.ConnectivityState `json:"state"`
	Err        error                    `json:"-"`
}

// Poller periodically classifies the host as online or offline, persists
// the result and broadcasts it. All state mutation happens inside RunOnce,
// which is serialized.
type Poller struct {
	deps     Deps
	interval time.Duration
	now      func() time.Time
	logger   log.Logger
	metrics  Metrics
	phase    *fsm.FSM

	cycleMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	trigger chan struct{}
}

// New creates a stopped poller. Call Attach to start it.
func New(deps Deps, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	p := &Poller{
		deps:     deps,
		interval: opts.Interval,
		now:      opts.Now,
		logger:   logger,
		metrics:  metrics,
	}
	p.phase = newPhaseMachine(p.onPhaseChange)
	return p
}

// Attach starts the poll loop if it is not running and reports whether it
// started one. The first cycle runs immediately.
func (p *Poller) Attach() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return false
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.trigger = make(chan struct{}, 1)
	p.metrics.SetRunning(true)

	go p.run(p.stopCh, p.doneCh, p.trigger)
	p.logger.Info("connectivity poller attached", "interval", p.interval)
	return true
}

// Stop cancels the loop, including an in-flight probe, and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	done := p.doneCh
	if p.running {
		close(p.stopCh)
		p.running = false
		p.metrics.SetRunning(false)
	}
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Trigger requests an extra cycle from the running loop. It returns false
// when the poller is not running.
func (p *Poller) Trigger() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return false
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
	return true
}

// State returns the persisted connectivity snapshot.
func (p *Poller) State() models.ConnectivityState {
	return ReadState(p.deps.Store)
}

// Phase returns the phase observed by this poller since it was created.
func (p *Poller) Phase() models.Phase {
	return models.Phase(p.phase.Current())
}

// RunOnce executes a single cycle.
func (p *Poller) RunOnce(ctx context.Context) CycleResult {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	now := p.now()
	res := CycleResult{At: now, StatusCode: probe.StatusUnset}

	if p.deps.Foreground.Backgrounded() {
		res.Backgrounded = true
		p.metrics.ObserveCycle("backgrounded")
		return res
	}

	res.RadioUp = p.deps.Radio.Connected()
	if res.RadioUp {
		result := p.deps.Prober.Probe(ctx)
		if ctx.Err() != nil {
			res.Aborted = true
			res.Err = ctx.Err()
			return res
		}
		res.Probed = true
		res.StatusCode = result.StatusCode
		res.Latency = result.Latency
		res.Online = result.Online()
		p.metrics.ObserveProbe(res.Online, result.Latency)
		if result.Err != nil {
			p.logger.Debug("probe failed", "error", result.Err.Error())
		}
	}

	prev := ReadState(p.deps.Store)
	res.State = nextState(prev, res.Online, now)
	if err := writeState(p.deps.Store, res.State); err != nil {
		res.Err = err
		p.logger.Error(err, "persist connectivity state")
	}
	p.metrics.SetOnline(res.Online)

	if err := advancePhase(ctx, p.phase, res.Online, res); err != nil {
		p.logger.Warn("phase change rejected", "error", err.Error())
	}

	p.publish(res.Online, now)

	switch {
	case !res.RadioUp:
		p.metrics.ObserveCycle("no_radio")
	case res.Online:
		p.metrics.ObserveCycle("online")
	default:
		p.metrics.ObserveCycle("offline")
	}
	p.logger.Debug("cycle finished",
		"online", res.Online,
		"radio", res.RadioUp,
		"status", res.StatusCode,
		"latency", res.Latency,
	)
	return res
}

func (p *Poller) publish(online bool, at time.Time) {
	ev := models.Event{Action: models.ConnectivityAction, IsOnline: online, At: at}
	if err := p.deps.Publisher.Publish(ev); err != nil {
		p.logger.Error(err, "broadcast connectivity state")
	}
}

func (p *Poller) onPhaseChange(_ context.Context, from, to models.Phase, cycle CycleResult) {
	p.metrics.ObserveTransition(to)
	p.logger.Info("connectivity changed", "from", string(from), "to", string(to), "status", cycle.StatusCode)

	if p.deps.History == nil {
		return
	}
	err := p.deps.History.Append(models.Transition{
		From:       from,
		To:         to,
		At:         cycle.At,
		StatusCode: cycle.StatusCode,
		LatencyMs:  cycle.Latency.Milliseconds(),
	})
	if err != nil {
		p.logger.Error(err, "record transition")
	}
}

func (p *Poller) run(stopCh, doneCh, trigger chan struct{}) {
	defer close(doneCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if !p.tick(ctx, stopCh) {
		return
	}
	for {
		select {
		case <-ticker.C:
		case <-trigger:
		case <-stopCh:
			return
		}
		if !p.tick(ctx, stopCh) {
			return
		}
	}
}

// tick runs one cycle and reports whether the loop should continue.
func (p *Poller) tick(ctx context.Context, stopCh chan struct{}) bool {
	res := p.RunOnce(ctx)
	if res.Backgrounded {
		p.logger.Info("host backgrounded, stopping connectivity poller")
		p.detach(stopCh)
		return false
	}
	return ctx.Err() == nil
}

// detach marks the loop owning stopCh as stopped without waiting for it.
func (p *Poller) detach(stopCh chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running && p.stopCh == stopCh {
		close(p.stopCh)
		p.running = false
		p.metrics.SetRunning(false)
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveProbe(bool, time.Duration) {}
func (nopMetrics) ObserveCycle(string)              {}
func (nopMetrics) ObserveTransition(models.Phase)   {}
func (nopMetrics) SetOnline(bool)                   {}
func (nopMetrics) SetRunning(bool)                  {}
