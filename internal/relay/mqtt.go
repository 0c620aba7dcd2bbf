// Package relay forwards local connectivity broadcasts to an MQTT broker.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/go-logr/logr"

	"onlinewatch/internal/config"
	"onlinewatch/internal/models"
)

const publishTimeout = 5 * time.Second

// Subscriber is the bus side the relay listens on.
type Subscriber interface {
	Subscribe(buffer int) (<-chan models.Event, func())
}

// Payload is the JSON document published for each event.
type Payload struct {
	InstallationID string    `json:"installation_id"`
	Action         string    `json:"action"`
	IsOnline       bool      `json:"isOnline"`
	At             time.Time `json:"at"`
}

// MQTTRelay publishes every bus event as a retained message.
type MQTTRelay struct {
	cfg            config.MQTTConfig
	installationID string
	bus            Subscriber
	log            logr.Logger
}

// NewMQTTRelay creates a relay; Run connects and forwards.
func NewMQTTRelay(cfg config.MQTTConfig, installationID string, bus Subscriber, logger logr.Logger) *MQTTRelay {
	return &MQTTRelay{cfg: cfg, installationID: installationID, bus: bus, log: logger}
}

// Topic is where events are published.
func (r *MQTTRelay) Topic() string {
	return fmt.Sprintf("%s/%s/connectivity", r.cfg.TopicPrefix, r.installationID)
}

// Run forwards events until ctx is cancelled or the bus closes.
func (r *MQTTRelay) Run(ctx context.Context) error {
	brokerURL, err := url.Parse(r.cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("parse broker url: %w", err)
	}

	events, unsubscribe := r.bus.Subscribe(16)
	defer unsubscribe()

	clientID := r.cfg.ClientID
	if clientID == "" {
		clientID = "onlinewatch-" + r.installationID
	}

	cm, err := autopaho.NewConnection(ctx, autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		KeepAlive:                     uint16(r.cfg.KeepAliveSeconds),
		CleanStartOnInitialConnection: true,
		ReconnectBackoff:              autopaho.NewConstantBackoff(3 * time.Second),
		ConnectTimeout:                5 * time.Second,
		ConnectUsername:               r.cfg.Username,
		ConnectPassword:               []byte(r.cfg.Password),
		OnConnectionUp: func(*autopaho.ConnectionManager, *paho.Connack) {
			r.log.Info("mqtt connection established", "broker", r.cfg.BrokerURL)
		},
		OnConnectError: func(err error) {
			r.log.Error(err, "mqtt connection failed, retrying")
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
			OnClientError: func(err error) {
				r.log.Error(err, "mqtt client error")
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start mqtt connection: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = cm.Disconnect(shutdownCtx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.publish(ctx, cm, ev); err != nil {
				r.log.Error(err, "publish connectivity event", "topic", r.Topic())
			}
		}
	}
}

func (r *MQTTRelay) publish(ctx context.Context, cm *autopaho.ConnectionManager, ev models.Event) error {
	payload, err := EncodeEvent(r.installationID, ev)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err = cm.Publish(pubCtx, &paho.Publish{
		Topic:   r.Topic(),
		QoS:     byte(r.cfg.QoS),
		Retain:  true,
		Payload: payload,
	})
	return err
}

// EncodeEvent renders ev as the relay payload.
func EncodeEvent(installationID string, ev models.Event) ([]byte, error) {
	data, err := json.Marshal(Payload{
		InstallationID: installationID,
		Action:         ev.Action,
		IsOnline:       ev.IsOnline,
		At:             ev.At.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}
