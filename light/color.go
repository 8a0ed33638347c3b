package light

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedColor is returned when a payload is not an "R,G,B" triple of unsigned integers.
	ErrMalformedColor = errors.New("malformed color payload")

	// ErrChannelOutOfRange is returned when a channel value is outside [0,255].
	ErrChannelOutOfRange = errors.New("color channel out of range")
)

const maxChannel = 255

// Color is an RGB triple, one byte per channel.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// White is the color a light starts with.
var White = Color{Red: 255, Green: 255, Blue: 255}

// Off is the output of a light that is switched off.
var Off = Color{}

// String formats the color as published over MQTT, e.g. "255,128,0".
func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c.Red, c.Green, c.Blue)
}

// ParseColor decodes an "R,G,B" payload. All three channels have to be present
// and within [0,255], otherwise nothing is returned.
func ParseColor(payload string) (Color, error) {
	fields := strings.Split(payload, ",")
	if len(fields) != 3 {
		return Color{}, fmt.Errorf("%w: expected 3 fields, got %d in %q", ErrMalformedColor, len(fields), payload)
	}

	var channels [3]int
	for i, field := range fields {
		field = strings.TrimSpace(field)

		value, err := strconv.ParseUint(field, 10, 32)
		if errors.Is(err, strconv.ErrRange) {
			return Color{}, fmt.Errorf("%w: %s", ErrChannelOutOfRange, field)
		} else if err != nil {
			return Color{}, fmt.Errorf("%w: field %d %q", ErrMalformedColor, i+1, field)
		}

		if value > maxChannel {
			return Color{}, fmt.Errorf("%w: %d", ErrChannelOutOfRange, value)
		}

		channels[i] = int(value)
	}

	return Color{
		Red:   uint8(channels[0]),
		Green: uint8(channels[1]),
		Blue:  uint8(channels[2]),
	}, nil
}

func validChannel(v int) bool {
	return v >= 0 && v <= maxChannel
}
