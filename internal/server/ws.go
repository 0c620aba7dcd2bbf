package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"onlinewatch/internal/models"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
	streamBuffer       = 16
)

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// handleConnectivityWS streams every connectivity event to the client.
// An open connection counts as a visible activity, so the poller keeps running
// while at least one client is watching.
func (s *Server) handleConnectivityWS(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveStream(conn, "ws-"+uuid.NewString())
}

func (s *Server) serveStream(conn *websocket.Conn, activity string) {
	defer conn.Close()

	tracker := s.app.Lifecycle()
	logger := s.app.Logger().WithValues("activity", activity)

	events, unsubscribe := s.app.Bus().Subscribe(streamBuffer)
	defer unsubscribe()

	tracker.Created(activity)
	tracker.Started(activity)
	tracker.Resumed(activity)
	defer func() {
		tracker.Paused(activity)
		tracker.Stopped(activity)
		tracker.Destroyed(activity)
		logger.Debug("stream client left")
	}()
	s.poller.Attach()
	logger.Debug("stream client joined")

	current := s.poller.State()
	initial := models.Event{Action: models.ConnectivityAction, IsOnline: current.IsOnline, At: s.now()}
	if err := writeStreamEvent(conn, initial); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteTimeout))
				return
			}
			if err := writeStreamEvent(conn, ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeStreamEvent(conn *websocket.Conn, ev models.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(ev)
}
