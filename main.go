package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/victorjacobs/go-rgblight/bridge"
	"github.com/victorjacobs/go-rgblight/config"
	"github.com/victorjacobs/go-rgblight/mqtt"
	"github.com/victorjacobs/go-rgblight/pwm"
)

type output interface {
	pwm.ChannelWriter
	Close() error
}

func main() {
	configPath := flag.String("config", "rgblight.yaml", "Path to configuration file")
	flag.Parse()

	var cfg *config.Configuration
	var err error
	if cfg, err = config.LoadConfiguration(*configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logFile, err := cfg.Log.Configure(log.StandardLogger())
	if err != nil {
		log.Fatalf("Error configuring logging: %v", err)
	}
	defer logFile.Close()

	var out output
	if out, err = newOutput(cfg.PWM); err != nil {
		log.Fatalf("Error setting up PWM: %v", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Errorf("Error releasing PWM channels: %v", err)
		}
	}()

	log.Printf("Connecting to %v as %v", cfg.MQTT.BrokerUrl(), cfg.MQTT.ClientId)

	transport := mqtt.NewClient(cfg.MQTT.ClientOptions(), cfg.MQTT.QoS, cfg.MQTT.InboxSize, time.Duration(cfg.MQTT.PollInterval))
	defer transport.Close()

	b := bridge.New(cfg, transport, out)
	b.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Bridge stopped: %v", err)
	}

	log.Print("Shutting down")
}

func newOutput(cfg *config.PWM) (output, error) {
	if cfg.Driver == "log" {
		return pwm.NewLog(), nil
	}

	return pwm.NewSysfs(pwm.DefaultSysfsRoot, cfg.Chip, time.Duration(cfg.Period))
}
