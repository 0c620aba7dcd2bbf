package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"onlinewatch/internal/broadcast"
	"onlinewatch/internal/config"
	"onlinewatch/internal/models"
)

func TestTopic(t *testing.T) {
	r := NewMQTTRelay(config.MQTTConfig{TopicPrefix: "fleet"}, "abc", broadcast.NewBus(), logr.Discard())
	if got := r.Topic(); got != "fleet/abc/connectivity" {
		t.Fatalf("topic = %q", got)
	}
}

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	data, err := EncodeEvent("abc", models.Event{Action: models.ConnectivityAction, IsOnline: true, At: at})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["isOnline"] != true || decoded["installation_id"] != "abc" {
		t.Fatalf("unexpected payload %s", data)
	}
	if decoded["at"] != "2024-01-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp %v", decoded["at"])
	}
}

func TestRunRejectsBadBrokerURL(t *testing.T) {
	r := NewMQTTRelay(config.MQTTConfig{BrokerURL: "://bad"}, "abc", broadcast.NewBus(), logr.Discard())
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected error for malformed broker url")
	}
}
