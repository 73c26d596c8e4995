package gamepad

import (
	"math"

	"github.com/soar/ovrinput/internal/ovr"
)

// AxisTarget is the control a raw axis feeds.
type AxisTarget int

const (
	LeftX AxisTarget = iota
	LeftY
	RightX
	RightY
	LeftTrigger
	RightTrigger
)

func (t AxisTarget) isTrigger() bool {
	return t == LeftTrigger || t == RightTrigger
}

// AxisMapping defines how a raw axis index maps to a gamepad control.
type AxisMapping struct {
	Index  int32
	Target AxisTarget
	Invert bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a button bit.
type ButtonMapping struct {
	Index  int32
	Button uint32
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// Hat bits as reported by the joystick API.
const (
	HatUp    uint8 = 0x01
	HatRight uint8 = 0x02
	HatDown  uint8 = 0x04
	HatLeft  uint8 = 0x08
)

// RawSource is an open joystick as seen by a mapping.
type RawSource interface {
	Axis(index int32) int16
	Button(index int32) bool
	NumButtons() int32
	// Hat returns the first hat's bits, or false when there is no hat.
	Hat() (uint8, bool)
}

// Read converts the raw controls of src into a State. Values are not
// filtered; deadzones are applied by the consumer.
func (m *DeviceMapping) Read(src RawSource) State {
	st := State{Connected: true, Mapping: m.Name}

	for _, am := range m.Axes {
		raw := src.Axis(am.Index)
		if am.Target.isTrigger() {
			v := float32(NormalizeTrigger(raw, am.RawMin, am.RawMax))
			if am.Target == LeftTrigger {
				st.Triggers[ovr.HandLeft] = v
			} else {
				st.Triggers[ovr.HandRight] = v
			}
			continue
		}

		v := float32(NormalizeAxis(raw))
		if am.Invert {
			v = -v
		}
		switch am.Target {
		case LeftX:
			st.Sticks[ovr.HandLeft].X = v
		case LeftY:
			st.Sticks[ovr.HandLeft].Y = v
		case RightX:
			st.Sticks[ovr.HandRight].X = v
		case RightY:
			st.Sticks[ovr.HandRight].Y = v
		}
	}

	n := src.NumButtons()
	for _, bm := range m.Buttons {
		if bm.Index >= n {
			continue
		}
		if src.Button(bm.Index) {
			st.Buttons |= bm.Button
		}
	}

	if m.HasHat {
		if hat, ok := src.Hat(); ok {
			if hat&HatUp != 0 {
				st.Buttons |= ovr.ButtonUp
			}
			if hat&HatRight != 0 {
				st.Buttons |= ovr.ButtonRight
			}
			if hat&HatDown != 0 {
				st.Buttons |= ovr.ButtonDown
			}
			if hat&HatLeft != 0 {
				st.Buttons |= ovr.ButtonLeft
			}
		}
	}
	return st
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Built-in mappings for common controllers. Start and the guide button
// both report Enter, matching how the runtime binds the Xbox menu button.

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: []AxisMapping{
		{Index: 0, Target: LeftX},
		{Index: 1, Target: LeftY, Invert: true},
		{Index: 2, Target: RightX},
		{Index: 3, Target: RightY, Invert: true},
		{Index: 4, Target: LeftTrigger, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: RightTrigger, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ovr.ButtonA},
		{Index: 1, Button: ovr.ButtonB},
		{Index: 2, Button: ovr.ButtonX},
		{Index: 3, Button: ovr.ButtonY},
		{Index: 4, Button: ovr.ButtonLShoulder},
		{Index: 5, Button: ovr.ButtonRShoulder},
		{Index: 6, Button: ovr.ButtonBack},
		{Index: 7, Button: ovr.ButtonEnter},
		{Index: 8, Button: ovr.ButtonLThumb},
		{Index: 9, Button: ovr.ButtonRThumb},
		{Index: 10, Button: ovr.ButtonEnter},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: []AxisMapping{
		{Index: 0, Target: LeftX},
		{Index: 1, Target: LeftY, Invert: true},
		{Index: 2, Target: RightX},
		{Index: 3, Target: RightY, Invert: true},
		{Index: 4, Target: LeftTrigger, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: RightTrigger, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ovr.ButtonA},     // Cross (×)
		{Index: 1, Button: ovr.ButtonB},     // Circle (○)
		{Index: 2, Button: ovr.ButtonX},     // Square (□)
		{Index: 3, Button: ovr.ButtonY},     // Triangle (△)
		{Index: 4, Button: ovr.ButtonBack},  // Share / Create
		{Index: 5, Button: ovr.ButtonEnter}, // PS button
		{Index: 6, Button: ovr.ButtonEnter}, // Options
		{Index: 7, Button: ovr.ButtonLThumb},
		{Index: 8, Button: ovr.ButtonRThumb},
		{Index: 9, Button: ovr.ButtonLShoulder},  // L1
		{Index: 10, Button: ovr.ButtonRShoulder}, // R1
	},
	HasHat: true,
}

// The Switch Pro reports its triggers as buttons; they read as fully
// pressed or released.
var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: []AxisMapping{
		{Index: 0, Target: LeftX},
		{Index: 1, Target: LeftY, Invert: true},
		{Index: 2, Target: RightX},
		{Index: 3, Target: RightY, Invert: true},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ovr.ButtonA},
		{Index: 1, Button: ovr.ButtonB},
		{Index: 2, Button: ovr.ButtonX},
		{Index: 3, Button: ovr.ButtonY},
		{Index: 4, Button: ovr.ButtonLShoulder},
		{Index: 5, Button: ovr.ButtonRShoulder},
		{Index: 6, Button: ovr.ButtonBack},
		{Index: 7, Button: ovr.ButtonEnter},
		{Index: 8, Button: ovr.ButtonLThumb},
		{Index: 9, Button: ovr.ButtonRThumb},
		{Index: 10, Button: ovr.ButtonEnter},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name: "generic",
	Axes: []AxisMapping{
		{Index: 0, Target: LeftX},
		{Index: 1, Target: LeftY, Invert: true},
		{Index: 2, Target: RightX},
		{Index: 3, Target: RightY, Invert: true},
		{Index: 4, Target: LeftTrigger, RawMin: -32768, RawMax: 32767},
		{Index: 5, Target: RightTrigger, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: ovr.ButtonA},
		{Index: 1, Button: ovr.ButtonB},
		{Index: 2, Button: ovr.ButtonX},
		{Index: 3, Button: ovr.ButtonY},
		{Index: 4, Button: ovr.ButtonLShoulder},
		{Index: 5, Button: ovr.ButtonRShoulder},
		{Index: 6, Button: ovr.ButtonBack},
		{Index: 7, Button: ovr.ButtonEnter},
		{Index: 8, Button: ovr.ButtonLThumb},
		{Index: 9, Button: ovr.ButtonRThumb},
		{Index: 10, Button: ovr.ButtonEnter},
	},
	HasHat: true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}
