package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onlinewatch/internal/app"
	"onlinewatch/internal/lifecycle"
	"onlinewatch/internal/metrics"
	"onlinewatch/internal/models"
	"onlinewatch/internal/monitor"
	"onlinewatch/internal/storage"
)

//go:embed static/*
var embeddedStatic embed.FS

const (
	defaultHistoryLimit = 200
	defaultUptimeHours  = 24
	maxUptimeHours      = 24 * 30
)

// Server exposes connectivity state over HTTP and websocket.
type Server struct {
	httpServer *http.Server
	app        *app.App
	poller     *monitor.Poller
	history    *storage.TransitionStorage
	gatherer   prometheus.Gatherer
	staticFS   fs.FS
	now        func() time.Time
}

// New creates a configured HTTP server.
func New(addr string, a *app.App, poller *monitor.Poller, history *storage.TransitionStorage, gatherer prometheus.Gatherer) *Server {
	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic("static assets missing: " + err.Error())
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		app:        a,
		poller:     poller,
		history:    history,
		gatherer:   gatherer,
		staticFS:   staticFS,
		now:        time.Now,
	}
	s.registerRoutes(mux)
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, err := fs.ReadFile(s.staticFS, "index.html")
		if err != nil {
			http.Error(w, "index missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}))
	mux.HandleFunc("/api/connectivity", s.handleState)
	mux.HandleFunc("/api/connectivity/history", s.handleHistory)
	mux.HandleFunc("/api/connectivity/uptime", s.handleUptime)
	mux.HandleFunc("/api/connectivity/check", s.handleCheck)
	mux.HandleFunc("/api/lifecycle", s.handleLifecycle)
	mux.HandleFunc("/ws/connectivity", s.handleConnectivityWS)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

type stateResponse struct {
	State          models.ConnectivityState `json:"state"`
	Phase          models.Phase             `json:"phase"`
	Running        bool                     `json:"running"`
	InstallationID string                   `json:"installation_id"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

func (s *Server) stateSnapshot() stateResponse {
	return stateResponse{
		State:          s.poller.State(),
		Phase:          monitor.PersistedPhase(s.app.Prefs()),
		Running:        s.poller.Running(),
		InstallationID: s.app.InstallationID(),
		GeneratedAt:    s.now().UTC(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.stateSnapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	limit := parseLimit(r, defaultHistoryLimit)
	writeJSON(w, http.StatusOK, s.history.HistoryN(limit))
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	hours := defaultUptimeHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		if value > maxUptimeHours {
			value = maxUptimeHours
		}
		hours = value
	}
	end := s.now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)
	writeJSON(w, http.StatusOK, metrics.ComputeUptime(s.history.History(), start, end))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.app.Lifecycle().Backgrounded() {
		writeError(w, http.StatusConflict, "host is in the background")
		return
	}

	accepted := s.app.Idler().Throttle(func() {
		if !s.poller.Trigger() {
			s.poller.Attach()
		}
	})
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "check requested too quickly")
		return
	}
	writeJSON(w, http.StatusAccepted, s.stateSnapshot())
}

type lifecycleRequest struct {
	Activity string `json:"activity"`
	Event    string `json:"event"`
}

type lifecycleResponse struct {
	CurrentActivity string   `json:"current_activity"`
	Visible         []string `json:"visible"`
	Backgrounded    bool     `json:"backgrounded"`
}

func (s *Server) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	tracker := s.app.Lifecycle()
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req lifecycleRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
			return
		}
		ev, ok := lifecycle.ParseEvent(req.Event)
		if !ok || req.Activity == "" {
			writeError(w, http.StatusBadRequest, "activity and a known event are required")
			return
		}
		tracker.Handle(req.Activity, ev)
		if ev == lifecycle.Started {
			s.poller.Attach()
		}
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	writeJSON(w, http.StatusOK, lifecycleResponse{
		CurrentActivity: tracker.CurrentActivity(),
		Visible:         tracker.Visible(),
		Backgrounded:    tracker.Backgrounded(),
	})
}

func parseLimit(r *http.Request, fallback int) int {
	if fallback <= 0 {
		return fallback
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > fallback {
		return fallback
	}
	return value
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

// IsClosed reports whether err is the normal result of Shutdown.
func IsClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
