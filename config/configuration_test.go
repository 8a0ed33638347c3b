package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return path
}

func TestLoadConfigurationYAML(t *testing.T) {
	path := writeConfig(t, "rgblight.yaml", `
mqtt:
  host: 192.168.31.130
  username: admin
  password: secret
  retry_interval: 2s
topics:
  power_command: kitchen/light/set
  power_state: kitchen/light/state
  color_command: kitchen/light/rgb/set
  color_state: kitchen/light/rgb/state
pwm:
  driver: log
  pins:
    red: 4
    green: 5
    blue: 14
home_assistant:
  enabled: true
log:
  level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.MQTT.Host != "192.168.31.130" {
		t.Errorf("MQTT.Host = %q", cfg.MQTT.Host)
	}
	if cfg.MQTT.Port != 1883 {
		t.Errorf("MQTT.Port = %v, want default 1883", cfg.MQTT.Port)
	}
	if time.Duration(cfg.MQTT.RetryInterval) != 2*time.Second {
		t.Errorf("MQTT.RetryInterval = %v, want 2s", time.Duration(cfg.MQTT.RetryInterval))
	}
	if cfg.MQTT.ClientId != "office_rgb_light" {
		t.Errorf("MQTT.ClientId = %q, want default", cfg.MQTT.ClientId)
	}
	if cfg.Topics.ColorState != "kitchen/light/rgb/state" {
		t.Errorf("Topics.ColorState = %q", cfg.Topics.ColorState)
	}
	if cfg.PWM.Pins != (Pins{Red: 4, Green: 5, Blue: 14}) {
		t.Errorf("PWM.Pins = %+v", cfg.PWM.Pins)
	}
	if time.Duration(cfg.PWM.Period) != time.Millisecond {
		t.Errorf("PWM.Period = %v, want default 1ms", time.Duration(cfg.PWM.Period))
	}
	if !cfg.HomeAssistant.Enabled || cfg.HomeAssistant.DiscoveryPrefix != "homeassistant" {
		t.Errorf("HomeAssistant = %+v", cfg.HomeAssistant)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadConfigurationJSON(t *testing.T) {
	path := writeConfig(t, "rgblight.json", `{
  "mqtt": {"host": "broker.local", "port": 8883},
  "pwm": {"driver": "log"}
}`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.MQTT.BrokerUrl() != "tcp://broker.local:8883" {
		t.Errorf("BrokerUrl() = %q", cfg.MQTT.BrokerUrl())
	}
	if cfg.Topics.PowerCommand != "/light/rgb/rgb1/setOn" {
		t.Errorf("Topics.PowerCommand = %q, want default", cfg.Topics.PowerCommand)
	}
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfiguration() expected error for missing file")
	}
}

func TestLoadConfigurationUnknownField(t *testing.T) {
	path := writeConfig(t, "rgblight.yaml", `
mqtt:
  host: broker
  hots: typo
`)

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("LoadConfiguration() expected error for unknown field")
	}
}

func TestLoadConfigurationInvalidDuration(t *testing.T) {
	path := writeConfig(t, "rgblight.yaml", `
mqtt:
  host: broker
  retry_interval: soon
`)

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("LoadConfiguration() expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{"valid", func(c *Configuration) {}, ""},
		{"missing host", func(c *Configuration) { c.MQTT.Host = "" }, "mqtt.host"},
		{"missing client id", func(c *Configuration) { c.MQTT.ClientId = "" }, "mqtt.client_id"},
		{"bad qos", func(c *Configuration) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"no retry interval", func(c *Configuration) { c.MQTT.RetryInterval = 0 }, "mqtt.retry_interval"},
		{"empty topic", func(c *Configuration) { c.Topics.ColorState = "" }, "topics.color_state"},
		{"duplicate topic", func(c *Configuration) { c.Topics.PowerState = c.Topics.PowerCommand }, "are both"},
		{"unknown driver", func(c *Configuration) { c.PWM.Driver = "gpio" }, "pwm.driver"},
		{"no period", func(c *Configuration) { c.PWM.Period = 0 }, "pwm.period"},
		{"negative pin", func(c *Configuration) { c.PWM.Pins.Blue = -1 }, "negative"},
		{"shared pin", func(c *Configuration) { c.PWM.Pins.Green = c.PWM.Pins.Red }, "distinct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.MQTT.Host = "broker"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Host = "broker"
	cfg.MQTT.Username = "admin"

	opts := cfg.MQTT.ClientOptions()

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://broker:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "office_rgb_light" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "admin" {
		t.Errorf("Username = %q", opts.Username)
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false")
	}
	if opts.KeepAlive != 60 {
		t.Errorf("KeepAlive = %v, want 60", opts.KeepAlive)
	}
}

func TestLogConfigure(t *testing.T) {
	logger := log.New()

	l := &Log{Level: "debug", Format: "json"}
	closer, err := l.Configure(logger)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	defer closer.Close()

	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*log.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want *logrus.JSONFormatter", logger.Formatter)
	}
}

func TestLogConfigureFile(t *testing.T) {
	logger := log.New()
	path := filepath.Join(t.TempDir(), "rgblight.log")

	l := &Log{Level: "info", File: &LogFile{Path: path, MaxSize: 1}}
	closer, err := l.Configure(logger)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Errorf("log file = %q, want it to contain hello", content)
	}
}

func TestLogConfigureInvalid(t *testing.T) {
	if _, err := (&Log{Level: "loud"}).Configure(log.New()); err == nil {
		t.Error("Configure() expected error for invalid level")
	}
	if _, err := (&Log{Level: "info", Format: "xml"}).Configure(log.New()); err == nil {
		t.Error("Configure() expected error for invalid format")
	}
}
