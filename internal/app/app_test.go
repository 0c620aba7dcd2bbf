package app

import (
	"testing"

	"github.com/google/uuid"

	"onlinewatch/internal/config"
)

func TestNewKeepsInstallationID(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDirectory = t.TempDir()

	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := first.InstallationID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("installation id %q is not a uuid: %v", id, err)
	}
	first.Close()

	second, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer second.Close()
	if second.InstallationID() != id {
		t.Fatalf("installation id changed: %q -> %q", id, second.InstallationID())
	}
}

func TestCurrentActivity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDirectory = t.TempDir()

	a, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	a.Lifecycle().Started("dashboard")
	if a.CurrentActivity() != "dashboard" {
		t.Fatalf("current activity = %q", a.CurrentActivity())
	}
	if a.Lifecycle().Backgrounded() {
		t.Fatalf("started activity should be foreground")
	}
}
