package models

import (
	"testing"
	"time"
)

func TestTimestampRoundTrip(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	formatted := FormatTimestamp(at)
	if formatted != "2024-01-01 10:00:00" {
		t.Fatalf("unexpected format %q", formatted)
	}
	parsed, err := ParseTimestamp(formatted)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("expected %v, got %v", at, parsed)
	}

	zero, err := ParseTimestamp("")
	if err != nil || !zero.IsZero() {
		t.Fatalf("empty timestamp should parse to zero, got %v %v", zero, err)
	}
}

func TestStateSince(t *testing.T) {
	online := ConnectivityState{IsOnline: true, OnlineSince: "a"}
	if online.Since() != "a" {
		t.Errorf("online since = %q", online.Since())
	}
	offline := ConnectivityState{OfflineSince: "b"}
	if offline.Since() != "b" {
		t.Errorf("offline since = %q", offline.Since())
	}
}
