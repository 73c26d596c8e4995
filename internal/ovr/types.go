// Package ovr holds the types callers of the compatibility layer see. Bit
// values follow the published LibOVR ABI so snapshots can be handed to
// existing client software unchanged.
package ovr

// ControllerType identifies one or more controllers as a bitmask.
type ControllerType uint32

const (
	ControllerTypeNone    ControllerType = 0x0000
	ControllerTypeLTouch  ControllerType = 0x0001
	ControllerTypeRTouch  ControllerType = 0x0002
	ControllerTypeTouch   ControllerType = ControllerTypeLTouch | ControllerTypeRTouch
	ControllerTypeRemote  ControllerType = 0x0004
	ControllerTypeXBox    ControllerType = 0x0010
	ControllerTypeObject0 ControllerType = 0x0100
	ControllerTypeObject1 ControllerType = 0x0200
	ControllerTypeObject2 ControllerType = 0x0400
	ControllerTypeObject3 ControllerType = 0x0800
	ControllerTypeActive  ControllerType = 0xffffffff
)

func (ct ControllerType) String() string {
	switch ct {
	case ControllerTypeNone:
		return "none"
	case ControllerTypeLTouch:
		return "ltouch"
	case ControllerTypeRTouch:
		return "rtouch"
	case ControllerTypeTouch:
		return "touch"
	case ControllerTypeRemote:
		return "remote"
	case ControllerTypeXBox:
		return "xbox"
	case ControllerTypeActive:
		return "active"
	}
	return "mixed"
}

// ParseControllerType is the inverse of ControllerType.String for the named
// values.
func ParseControllerType(s string) (ControllerType, bool) {
	for _, ct := range []ControllerType{
		ControllerTypeNone, ControllerTypeLTouch, ControllerTypeRTouch,
		ControllerTypeTouch, ControllerTypeRemote, ControllerTypeXBox,
		ControllerTypeActive,
	} {
		if ct.String() == s {
			return ct, true
		}
	}
	return ControllerTypeNone, false
}

// Button bits for InputState.Buttons.
const (
	ButtonA         uint32 = 0x00000001
	ButtonB         uint32 = 0x00000002
	ButtonRThumb    uint32 = 0x00000004
	ButtonRShoulder uint32 = 0x00000008
	ButtonX         uint32 = 0x00000100
	ButtonY         uint32 = 0x00000200
	ButtonLThumb    uint32 = 0x00000400
	ButtonLShoulder uint32 = 0x00000800
	ButtonUp        uint32 = 0x00010000
	ButtonDown      uint32 = 0x00020000
	ButtonLeft      uint32 = 0x00040000
	ButtonRight     uint32 = 0x00080000
	ButtonEnter     uint32 = 0x00100000
	ButtonBack      uint32 = 0x00200000
	ButtonVolUp     uint32 = 0x00400000
	ButtonVolDown   uint32 = 0x00800000
	ButtonHome      uint32 = 0x01000000

	ButtonPrivate = ButtonVolUp | ButtonVolDown | ButtonHome
	ButtonRMask   = ButtonA | ButtonB | ButtonRThumb | ButtonRShoulder
	ButtonLMask   = ButtonX | ButtonY | ButtonLThumb | ButtonLShoulder | ButtonEnter
)

// Touch bits for InputState.Touches.
const (
	TouchA              uint32 = ButtonA
	TouchB              uint32 = ButtonB
	TouchRThumb         uint32 = ButtonRThumb
	TouchRThumbRest     uint32 = 0x00000008
	TouchRIndexTrigger  uint32 = 0x00000010
	TouchRIndexPointing uint32 = 0x00000020
	TouchRThumbUp       uint32 = 0x00000040
	TouchX              uint32 = ButtonX
	TouchY              uint32 = ButtonY
	TouchLThumb         uint32 = ButtonLThumb
	TouchLThumbRest     uint32 = 0x00000800
	TouchLIndexTrigger  uint32 = 0x00001000
	TouchLIndexPointing uint32 = 0x00002000
	TouchLThumbUp       uint32 = 0x00004000

	TouchRButtonMask = TouchA | TouchB | TouchRThumb | TouchRThumbRest | TouchRIndexTrigger
	TouchLButtonMask = TouchX | TouchY | TouchLThumb | TouchLThumbRest | TouchLIndexTrigger
)

// Hand indexes the per-hand arrays of InputState and TrackingState.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
	HandCount
)

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	}
	return "unknown"
}

// InputState is one instant's filtered controller input. A fresh value is
// produced per query.
type InputState struct {
	TimeInSeconds float64 `json:"time"`

	Buttons uint32 `json:"buttons"`
	Touches uint32 `json:"touches"`

	IndexTrigger [HandCount]float32  `json:"indexTrigger"`
	HandTrigger  [HandCount]float32  `json:"handTrigger"`
	Thumbstick   [HandCount]Vector2f `json:"thumbstick"`

	ControllerType ControllerType `json:"controllerType"`

	IndexTriggerNoDeadzone [HandCount]float32  `json:"-"`
	HandTriggerNoDeadzone  [HandCount]float32  `json:"-"`
	ThumbstickNoDeadzone   [HandCount]Vector2f `json:"-"`

	IndexTriggerRaw [HandCount]float32  `json:"-"`
	HandTriggerRaw  [HandCount]float32  `json:"-"`
	ThumbstickRaw   [HandCount]Vector2f `json:"-"`

	// edges latched by the last input refresh
	ButtonsPressed  uint32 `json:"pressed"`
	ButtonsReleased uint32 `json:"released"`
}
