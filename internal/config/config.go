package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"onlinewatch/internal/log"
)

// Config represents configuration data for the connectivity watcher.
type Config struct {
	DataDirectory string        `yaml:"data_directory"`
	ListenAddr    string        `yaml:"listen_addr"`
	Poll          PollConfig    `yaml:"poll"`
	Probe         ProbeConfig   `yaml:"probe"`
	Radio         RadioConfig   `yaml:"radio"`
	History       HistoryConfig `yaml:"history"`
	MQTT          MQTTConfig    `yaml:"mqtt"`
	Log           log.Options   `yaml:"log"`
}

// PollConfig controls the poll loop.
type PollConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	// AttachOnStart pins the host to the foreground and attaches the poller at startup.
	AttachOnStart bool `yaml:"attach_on_start"`
	// ManualCheckGuardMs is the minimum gap between accepted manual checks.
	ManualCheckGuardMs int `yaml:"manual_check_guard_ms"`
}

// ProbeConfig describes the reachability probe.
type ProbeConfig struct {
	URL              string `yaml:"url"`
	UserAgent        string `yaml:"user_agent"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
}

// RadioConfig restricts which interfaces count as connected.
type RadioConfig struct {
	Interfaces []string `yaml:"interfaces"`
}

// HistoryConfig bounds the transition history file.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// MQTTConfig enables publishing connectivity events to a broker.
type MQTTConfig struct {
	Enabled          bool   `yaml:"enabled"`
	BrokerURL        string `yaml:"broker_url"`
	ClientID         string `yaml:"client_id"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	TopicPrefix      string `yaml:"topic_prefix"`
	QoS              int    `yaml:"qos"`
	KeepAliveSeconds int    `yaml:"keep_alive_seconds"`
}

// DefaultConfig returns sensible defaults in case no configuration file is provided.
func DefaultConfig() Config {
	return Config{
		DataDirectory: filepath.Join(".dist", "data"),
		ListenAddr:    ":8080",
		Poll: PollConfig{
			IntervalSeconds:    15,
			ManualCheckGuardMs: 800,
		},
		Probe: ProbeConfig{
			URL:              "http://clients3.google.com/generate_204",
			UserAgent:        "onlinewatch",
			ConnectTimeoutMs: 2000,
		},
		History: HistoryConfig{MaxEntries: 2048},
		MQTT: MQTTConfig{
			TopicPrefix:      "onlinewatch",
			QoS:              1,
			KeepAliveSeconds: 60,
		},
		Log: *log.NewOptions(),
	}
}

// PrefsPath is the key/value store file inside the data directory.
func (c Config) PrefsPath() string {
	return filepath.Join(c.DataDirectory, "prefs.json")
}

// HistoryPath is the transition history file inside the data directory.
func (c Config) HistoryPath() string {
	return filepath.Join(c.DataDirectory, "transitions.json")
}

// Load reads configuration from a yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := DefaultConfig()
	if c.DataDirectory == "" {
		c.DataDirectory = defaults.DataDirectory
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}
	if c.Poll.IntervalSeconds <= 0 {
		c.Poll.IntervalSeconds = defaults.Poll.IntervalSeconds
	}
	if c.Poll.ManualCheckGuardMs <= 0 {
		c.Poll.ManualCheckGuardMs = defaults.Poll.ManualCheckGuardMs
	}
	c.Probe.URL = strings.TrimSpace(c.Probe.URL)
	if c.Probe.URL == "" {
		c.Probe.URL = defaults.Probe.URL
	}
	if c.Probe.UserAgent == "" {
		c.Probe.UserAgent = defaults.Probe.UserAgent
	}
	if c.Probe.ConnectTimeoutMs <= 0 {
		c.Probe.ConnectTimeoutMs = defaults.Probe.ConnectTimeoutMs
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = defaults.History.MaxEntries
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = defaults.MQTT.TopicPrefix
	}
	c.MQTT.TopicPrefix = strings.Trim(c.MQTT.TopicPrefix, "/")
	if c.MQTT.KeepAliveSeconds <= 0 {
		c.MQTT.KeepAliveSeconds = defaults.MQTT.KeepAliveSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	u, err := url.Parse(c.Probe.URL)
	if err != nil {
		return fmt.Errorf("probe url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("probe url %q must use http or https", c.Probe.URL)
	}
	if c.MQTT.Enabled {
		if c.MQTT.BrokerURL == "" {
			return errors.New("mqtt broker_url is required when mqtt is enabled")
		}
		if _, err := url.Parse(c.MQTT.BrokerURL); err != nil {
			return fmt.Errorf("mqtt broker_url: %w", err)
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt qos %d must be 0, 1 or 2", c.MQTT.QoS)
		}
	}
	if errs := c.Log.Validate(); len(errs) > 0 {
		return fmt.Errorf("log options: %w", errors.Join(errs...))
	}
	return nil
}
