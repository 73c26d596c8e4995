package input

import "github.com/soar/ovrinput/internal/ovr"

// Deadzone holds the inner and outer radii of an analog filter. Magnitudes
// below Low read as zero and magnitudes at or above High read as full
// deflection.
type Deadzone struct {
	Low  float32
	High float32
}

// Default radii. The outer radius leaves a small band so worn sticks still
// reach full deflection.
var (
	DefaultThumbstickDeadzone = Deadzone{Low: 0.24, High: 0.99}
	DefaultTriggerDeadzone    = Deadzone{Low: 0.0, High: 0.99}
)

// ApplyDeadzone rescales axis so that the range low..high maps linearly onto
// 0..1 while keeping its direction. The result is continuous at both radii.
func ApplyDeadzone(axis ovr.Vector2f, low, high float32) ovr.Vector2f {
	mag := axis.Length()
	if mag == 0 || mag <= low {
		return ovr.Vector2f{}
	}

	if high <= low {
		// degenerate band: any deflection past low is full deflection
		return axis.Scale(1 / mag)
	}

	norm := (mag - low) / (high - low)
	if norm > 1 {
		norm = 1
	}
	return axis.Scale(norm / mag)
}

// Apply filters axis with the receiver's radii.
func (dz Deadzone) Apply(axis ovr.Vector2f) ovr.Vector2f {
	return ApplyDeadzone(axis, dz.Low, dz.High)
}

// ApplyScalar filters a one-dimensional value such as a trigger.
func (dz Deadzone) ApplyScalar(v float32) float32 {
	return ApplyDeadzone(ovr.Vector2f{X: v}, dz.Low, dz.High).X
}
