package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"onlinewatch/internal/log"
	"onlinewatch/internal/models"
	"onlinewatch/internal/monitor"
	"onlinewatch/internal/prefs"
)

func TestPrintCycle(t *testing.T) {
	res := monitor.CycleResult{
		RadioUp:    true,
		Probed:     true,
		StatusCode: 204,
		Latency:    12 * time.Millisecond,
		Online:     true,
		State:      models.ConnectivityState{IsOnline: true, OnlineSince: "2024-05-01 10:00:00"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printCycle(&buf, "table", res); err != nil {
			t.Fatalf("printCycle: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"ONLINE", "204", "2024-05-01 10:00:00"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := printCycle(&buf, "json", res); err != nil {
			t.Fatalf("printCycle: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not json: %v", err)
		}
		if decoded["status_code"] != float64(204) {
			t.Errorf("status_code = %v", decoded["status_code"])
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := printCycle(&bytes.Buffer{}, "yaml", res); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestPrintState(t *testing.T) {
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var buf bytes.Buffer
	if err := printState(&buf, store); err != nil {
		t.Fatalf("printState: %v", err)
	}
	if !strings.Contains(buf.String(), string(models.PhaseUnknown)) {
		t.Fatalf("empty store should print unknown phase:\n%s", buf.String())
	}

	err = store.Apply(map[string]any{
		monitor.KeyIsOnline:     false,
		monitor.KeyOnlineSince:  "",
		monitor.KeyOfflineSince: "2024-05-01 11:00:00",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	buf.Reset()
	if err := printState(&buf, store); err != nil {
		t.Fatalf("printState: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, string(models.PhaseOffline)) || !strings.Contains(out, "2024-05-01 11:00:00") {
		t.Fatalf("unexpected state output:\n%s", out)
	}
}

func TestOverrideLogOptions(t *testing.T) {
	flags := log.NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.AddFlags(fs)
	if err := fs.Parse([]string{"--log.level=debug"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	dst := log.NewOptions()
	dst.Format = "json"
	overrideLogOptions(fs, dst, flags)

	if dst.Level != "debug" {
		t.Errorf("level = %q, want debug", dst.Level)
	}
	if dst.Format != "json" {
		t.Errorf("format = %q, unchanged flag should keep file value", dst.Format)
	}
}
