package gamepad

import "github.com/soar/ovrinput/internal/ovr"

// State is the polled state of the active joystick.
type State struct {
	Connected bool
	Name      string
	Mapping   string

	Buttons  uint32
	Sticks   [ovr.HandCount]ovr.Vector2f
	Triggers [ovr.HandCount]float32
}

// Rumble is one request for the joystick's two rumble motors.
type Rumble struct {
	Low        uint16
	High       uint16
	DurationMs uint32
}

// RumbleFor converts a vibration pulse into motor levels. frequency is in
// Hz up to maxFrequency: low frequencies favour the heavy motor and high
// frequencies the light one, and amplitude (0..1) scales both.
func RumbleFor(duration, frequency, amplitude, maxFrequency float32) Rumble {
	ratio := float32(0)
	if maxFrequency > 0 {
		ratio = clamp01(frequency / maxFrequency)
	}
	amplitude = clamp01(amplitude)

	ms := uint32(0)
	if duration > 0 {
		ms = uint32(duration*1000 + 0.5)
	}
	return Rumble{
		Low:        uint16(amplitude*(1-ratio)*0xffff + 0.5),
		High:       uint16(amplitude*ratio*0xffff + 0.5),
		DurationMs: ms,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
