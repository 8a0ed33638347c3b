package light

// State is the in-memory state of the light. The color is kept while the light
// is off, so switching it back on restores the last color.
type State struct {
	Power bool
	Color Color
}

// NewState returns the state a light has at startup: off, white.
func NewState() *State {
	return &State{
		Power: false,
		Color: White,
	}
}

// SetPower switches the light on or off and reports whether that changed anything.
func (s *State) SetPower(on bool) bool {
	if s.Power == on {
		return false
	}

	s.Power = on

	return true
}

// SetColor stores a new color. If any channel falls outside [0,255] the call is
// rejected and the stored color is left as it was.
func (s *State) SetColor(red, green, blue int) bool {
	if !validChannel(red) || !validChannel(green) || !validChannel(blue) {
		return false
	}

	s.Color = Color{
		Red:   uint8(red),
		Green: uint8(green),
		Blue:  uint8(blue),
	}

	return true
}

// Output returns what the PWM channels should show for this state.
func (s *State) Output() Color {
	if !s.Power {
		return Off
	}

	return s.Color
}

// PowerPayload returns the power token as published on the state topic.
func (s *State) PowerPayload() string {
	if s.Power {
		return PayloadOn
	}

	return PayloadOff
}

// Power command and state payloads.
const (
	PayloadOn  = "true"
	PayloadOff = "false"
)
