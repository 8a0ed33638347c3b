package bridge

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/victorjacobs/go-rgblight/config"
	"github.com/victorjacobs/go-rgblight/homeassistant"
	"github.com/victorjacobs/go-rgblight/light"
	"github.com/victorjacobs/go-rgblight/mqtt"
	"github.com/victorjacobs/go-rgblight/pwm"
)

// Transport is the broker connection the bridge talks through.
type Transport interface {
	Connect(clientID string) error
	IsConnected() bool
	Subscribe(topic string) error
	Publish(topic string, payload []byte, retained bool) error
	SetMessageHandler(handler mqtt.MessageHandler)
	ServiceOnce(ctx context.Context) error
}

// Bridge connects MQTT commands to the light's state and PWM outputs, and reports
// the resulting state back. It is not safe for concurrent use: Run owns it.
type Bridge struct {
	transport Transport
	output    pwm.ChannelWriter
	state     *light.State

	clientId      string
	topics        config.Topics
	pins          config.Pins
	retryInterval time.Duration
	discovery     *homeassistant.LightConfiguration

	// wait blocks for the backoff between connection attempts
	wait func(ctx context.Context, d time.Duration) error

	log *log.Entry
}

func New(cfg *config.Configuration, transport Transport, output pwm.ChannelWriter) *Bridge {
	b := &Bridge{
		transport:     transport,
		output:        output,
		state:         light.NewState(),
		clientId:      cfg.MQTT.ClientId,
		topics:        *cfg.Topics,
		pins:          cfg.PWM.Pins,
		retryInterval: time.Duration(cfg.MQTT.RetryInterval),
		wait:          sleep,
		log:           log.WithField("component", "bridge"),
	}

	if ha := cfg.HomeAssistant; ha != nil && ha.Enabled {
		b.discovery = homeassistant.NewLightConfiguration(ha.DiscoveryPrefix, ha.Name, ha.ObjectId, homeassistant.Topics{
			PowerCommand: cfg.Topics.PowerCommand,
			PowerState:   cfg.Topics.PowerState,
			ColorCommand: cfg.Topics.ColorCommand,
			ColorState:   cfg.Topics.ColorState,
		}, light.PayloadOn, light.PayloadOff)
	}

	return b
}

// State returns the current light state. Callers must not modify it.
func (b *Bridge) State() light.State {
	return *b.state
}

// Init drives the outputs to match the initial state, i.e. dark.
func (b *Bridge) Init() {
	b.applyOutput(b.state.Output())
}

// Run services the broker until ctx is cancelled: make sure the session is up,
// handle at most one message, repeat.
func (b *Bridge) Run(ctx context.Context) error {
	b.transport.SetMessageHandler(b.OnMessage)

	for {
		if err := b.EnsureConnected(ctx); err != nil {
			return err
		}

		if err := b.transport.ServiceOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			b.log.Warnf("Error servicing MQTT: %v", err)
		}
	}
}

// EnsureConnected returns immediately if the transport is connected. Otherwise
// it keeps trying to connect, waiting the retry interval between attempts. Once
// connected, the current state is published before the command topics are
// subscribed, so observers never act on a stale retained state. Only
// cancellation of ctx stops the retrying.
func (b *Bridge) EnsureConnected(ctx context.Context) error {
	if b.transport.IsConnected() {
		return nil
	}

	for {
		b.log.Infof("Attempting MQTT connection as %v", b.clientId)

		err := b.transport.Connect(b.clientId)
		if err == nil {
			b.log.Info("MQTT connected")
			b.announce()

			return nil
		}

		b.log.Warnf("MQTT connection failed: %v, trying again in %v", err, b.retryInterval)

		if err := b.wait(ctx, b.retryInterval); err != nil {
			return err
		}
	}
}

func (b *Bridge) announce() {
	if b.discovery != nil {
		if payload, err := b.discovery.Json(); err != nil {
			b.log.Errorf("Error marshalling Home Assistant configuration: %v", err)
		} else if err := b.transport.Publish(b.discovery.ConfigTopic, payload, true); err != nil {
			b.log.Warnf("Registering with Home Assistant failed: %v", err)
		}
	}

	b.publishPower()
	b.publishColor()

	for _, topic := range []string{b.topics.PowerCommand, b.topics.ColorCommand} {
		if err := b.transport.Subscribe(topic); err != nil {
			b.log.Warnf("Subscribing to %v failed: %v", topic, err)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
