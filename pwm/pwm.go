// Package pwm drives the PWM channels behind the light.
package pwm

// ChannelWriter sets the duty cycle of one PWM channel, 0 being off and 255 full on.
type ChannelWriter interface {
	WriteChannel(pin int, duty uint8) error
}

const maxDuty = 255
