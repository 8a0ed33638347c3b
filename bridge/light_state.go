package bridge

import (
	"github.com/victorjacobs/go-rgblight/light"
)

// applyOutput writes color to the three PWM channels. A failing channel is
// logged and the others are still written.
func (b *Bridge) applyOutput(color light.Color) {
	for _, channel := range []struct {
		pin  int
		duty uint8
	}{
		{b.pins.Red, color.Red},
		{b.pins.Green, color.Green},
		{b.pins.Blue, color.Blue},
	} {
		if err := b.output.WriteChannel(channel.pin, channel.duty); err != nil {
			b.log.Errorf("Writing pwm%v failed: %v", channel.pin, err)
		}
	}
}

func (b *Bridge) publishPower() {
	b.publish(b.topics.PowerState, b.state.PowerPayload())
}

func (b *Bridge) publishColor() {
	b.publish(b.topics.ColorState, b.state.Color.String())
}

// publish sends a retained state update, so new observers learn the state on subscribe.
func (b *Bridge) publish(topic, payload string) {
	if err := b.transport.Publish(topic, []byte(payload), true); err != nil {
		b.log.Warnf("[%v] Publish error: %v", topic, err)
	}
}
