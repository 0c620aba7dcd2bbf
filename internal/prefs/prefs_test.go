package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "prefs.json"))
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	return store
}

func TestMissingKeysReadAsZeroValues(t *testing.T) {
	store := openTemp(t)

	if store.Get("nope") != "" || store.GetBool("nope") || store.GetLong("nope") != 0 || store.GetInt("nope") != 0 {
		t.Fatalf("expected zero values for missing key")
	}
	if store.Exists("nope") {
		t.Fatalf("missing key reported as existing")
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	store := openTemp(t)

	if err := store.SetString("onlineSince", "2024-01-01 10:00:00"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBool("isOnline", true); err != nil {
		t.Fatal(err)
	}
	if err := store.SetLong("lastCheck", 1<<40); err != nil {
		t.Fatal(err)
	}
	if err := store.SetInt("count", 7); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(store.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Get("onlineSince"); got != "2024-01-01 10:00:00" {
		t.Errorf("string = %q", got)
	}
	if !reopened.GetBool("isOnline") {
		t.Errorf("bool not persisted")
	}
	if got := reopened.GetLong("lastCheck"); got != 1<<40 {
		t.Errorf("long = %d", got)
	}
	if got := reopened.GetInt("count"); got != 7 {
		t.Errorf("int = %d", got)
	}
}

func TestMistypedReads(t *testing.T) {
	store := openTemp(t)
	if err := store.SetString("isOnline", "true"); err != nil {
		t.Fatal(err)
	}
	if store.GetBool("isOnline") {
		t.Errorf("string value must not read as bool")
	}
	if err := store.SetBool("flag", true); err != nil {
		t.Fatal(err)
	}
	if got := store.Get("flag"); got != "true" {
		t.Errorf("Get on bool = %q", got)
	}
}

func TestSetDefaultOnlyWritesOnce(t *testing.T) {
	store := openTemp(t)

	wrote, err := store.SetStringDefault("installationId", "first")
	if err != nil || !wrote {
		t.Fatalf("first default: wrote=%v err=%v", wrote, err)
	}
	wrote, err = store.SetStringDefault("installationId", "second")
	if err != nil || wrote {
		t.Fatalf("second default: wrote=%v err=%v", wrote, err)
	}
	if got := store.Get("installationId"); got != "first" {
		t.Fatalf("value = %q", got)
	}

	if wrote, _ := store.SetLongDefault("since", 5); !wrote {
		t.Fatalf("long default not written")
	}
	if wrote, _ := store.SetLongDefault("since", 6); wrote {
		t.Fatalf("long default overwritten")
	}
}

func TestApplyAndRemove(t *testing.T) {
	store := openTemp(t)

	err := store.Apply(map[string]any{
		"isOnline":     false,
		"onlineSince":  "",
		"offlineSince": "2024-01-01 10:00:00",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if keys := store.Keys(); len(keys) != 3 || keys[0] != "isOnline" {
		t.Fatalf("unexpected keys %v", keys)
	}

	if err := store.Apply(map[string]any{"bad": 1.5}); err == nil {
		t.Fatalf("expected error for float value")
	}
	if store.Exists("bad") {
		t.Fatalf("rejected value must not be stored")
	}

	if err := store.Remove("offlineSince"); err != nil {
		t.Fatal(err)
	}
	if store.Exists("offlineSince") {
		t.Fatalf("key not removed")
	}
	if err := store.Remove("offlineSince"); err != nil {
		t.Fatalf("removing absent key: %v", err)
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	store := openTemp(t)
	if err := os.WriteFile(store.Path(), []byte(`{"isOnline": true, "count": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !store.GetBool("isOnline") || store.GetInt("count") != 3 {
		t.Fatalf("reload did not pick up values: %v", store.Snapshot())
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
