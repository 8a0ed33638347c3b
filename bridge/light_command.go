package bridge

import (
	"github.com/victorjacobs/go-rgblight/light"
)

// OnMessage handles one inbound message. Anything it does not understand is
// dropped; the sender gets no feedback besides the state topics.
func (b *Bridge) OnMessage(topic string, payload []byte) {
	command := string(payload)
	b.log.Debugf("Received %q on %v", command, topic)

	switch topic {
	case b.topics.PowerCommand:
		b.handlePower(command)
	case b.topics.ColorCommand:
		b.handleColor(command)
	default:
		b.log.Debugf("Ignoring message on unknown topic %v", topic)
	}
}

func (b *Bridge) handlePower(command string) {
	var on bool
	switch command {
	case light.PayloadOn:
		on = true
	case light.PayloadOff:
		on = false
	default:
		b.log.Debugf("Ignoring power command %q", command)
		return
	}

	if !b.state.SetPower(on) {
		return
	}

	if on {
		b.log.Info("Turning light on")
	} else {
		b.log.Info("Turning light off")
	}

	b.applyOutput(b.state.Output())
	b.publishPower()
}

func (b *Bridge) handleColor(command string) {
	color, err := light.ParseColor(command)
	if err != nil {
		b.log.Debugf("Ignoring color command: %v", err)
		return
	}

	if !b.state.SetColor(int(color.Red), int(color.Green), int(color.Blue)) {
		return
	}

	b.log.Infof("Setting color to %v", color)
	b.applyOutput(color)
	b.publishColor()
}
