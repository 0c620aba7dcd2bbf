package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbeNoContentIsOnline(t *testing.T) {
	var gotUA string
	var gotClose bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotClose = r.Close
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewHTTPProber(Options{URL: srv.URL, UserAgent: "tester"})
	res := p.Probe(context.Background())

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !res.Online() || res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected online 204, got %+v", res)
	}
	if gotUA != "tester" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !gotClose {
		t.Errorf("expected Connection: close")
	}
}

func TestProbeOtherStatusIsOffline(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusFound, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if status == http.StatusFound {
				w.Header().Set("Location", "/login")
			}
			w.WriteHeader(status)
		}))

		res := NewHTTPProber(Options{URL: srv.URL}).Probe(context.Background())
		srv.Close()

		if res.Online() {
			t.Errorf("status %d reported online", status)
		}
		if res.StatusCode != status {
			t.Errorf("status = %d, want %d", res.StatusCode, status)
		}
	}
}

func TestProbeConnectionFailureUsesUnsetSentinel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	res := NewHTTPProber(Options{URL: "http://" + addr, ConnectTimeout: 200 * time.Millisecond}).Probe(context.Background())
	if res.Err == nil {
		t.Fatalf("expected error from closed port")
	}
	if res.StatusCode != StatusUnset || res.Online() {
		t.Fatalf("expected unset status, got %+v", res)
	}
}

func TestProbeSlowResponseTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	defer close(release)

	res := NewHTTPProber(Options{URL: srv.URL, ConnectTimeout: 100 * time.Millisecond}).Probe(context.Background())
	if res.Err == nil || res.StatusCode != StatusUnset {
		t.Fatalf("expected timeout error, got %+v", res)
	}
}

func TestDefaults(t *testing.T) {
	p := NewHTTPProber(Options{})
	if p.URL() != DefaultURL || p.userAgent != DefaultUserAgent || p.timeout != DefaultConnectTimeout {
		t.Fatalf("defaults not applied: %+v", p)
	}
}
