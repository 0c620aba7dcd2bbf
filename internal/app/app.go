// Package app wires the shared services of a process: the preference store,
// the lifecycle tracker, the local broadcast bus and the rapid-event guard.
// It is built once at startup and passed to the components that need it.
package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"onlinewatch/internal/broadcast"
	"onlinewatch/internal/config"
	"onlinewatch/internal/lifecycle"
	"onlinewatch/internal/log"
	"onlinewatch/internal/prefs"
	"onlinewatch/internal/throttle"
)

// KeyInstallationID holds the identifier generated on first start.
const KeyInstallationID = "installationId"

// App holds process-wide services.
type App struct {
	cfg            config.Config
	logger         log.Logger
	prefs          *prefs.Store
	lifecycle      *lifecycle.Tracker
	bus            *broadcast.Bus
	idler          *throttle.RapidIdler
	installationID string
}

// New opens the preference store and creates the shared services.
func New(cfg config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	store, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	if _, err := store.SetStringDefault(KeyInstallationID, uuid.NewString()); err != nil {
		return nil, fmt.Errorf("store installation id: %w", err)
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		prefs:          store,
		lifecycle:      lifecycle.NewTracker(),
		bus:            broadcast.NewBus(),
		idler:          throttle.NewRapidIdler(time.Duration(cfg.Poll.ManualCheckGuardMs) * time.Millisecond),
		installationID: store.Get(KeyInstallationID),
	}, nil
}

func (a *App) Config() config.Config         { return a.cfg }
func (a *App) Logger() log.Logger            { return a.logger }
func (a *App) Prefs() *prefs.Store           { return a.prefs }
func (a *App) Lifecycle() *lifecycle.Tracker { return a.lifecycle }
func (a *App) Bus() *broadcast.Bus           { return a.bus }
func (a *App) Idler() *throttle.RapidIdler   { return a.idler }
func (a *App) InstallationID() string        { return a.installationID }
func (a *App) CurrentActivity() string       { return a.lifecycle.CurrentActivity() }

// Close releases the bus; subscribers see their channels closed.
func (a *App) Close() {
	a.bus.Close()
}
