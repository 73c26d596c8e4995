package monitor

import (
	"math"
	"slices"

	"github.com/soar/ovrinput/internal/ovr"
)

// ControllerFrame is one controller's state in a frame.
type ControllerFrame struct {
	Type    ovr.ControllerType       `json:"type"`
	Name    string                   `json:"name"`
	Input   ovr.InputState           `json:"input"`
	Haptics ovr.HapticsPlaybackState `json:"haptics"`
}

// Frame is everything polled in one tick of the loop.
type Frame struct {
	Seq         uint64             `json:"seq"`
	Time        float64            `json:"time"`
	Connected   ovr.ControllerType `json:"connected"`
	Controllers []ControllerFrame  `json:"controllers"`
	Tracking    ovr.TrackingState  `json:"tracking"`
}

// Filter returns a copy of f holding only the controllers matching ct.
func (f Frame) Filter(ct ovr.ControllerType) Frame {
	out := f
	out.Controllers = nil
	for _, c := range f.Controllers {
		if c.Type&ct != 0 {
			out.Controllers = append(out.Controllers, c)
		}
	}
	return out
}

func (f Frame) controller(ct ovr.ControllerType) (ControllerFrame, bool) {
	for _, c := range f.Controllers {
		if c.Type == ct {
			return c, true
		}
	}
	return ControllerFrame{}, false
}

// Analog is the filtered analog controls of a controller.
type Analog struct {
	IndexTrigger [ovr.HandCount]float32      `json:"indexTrigger"`
	HandTrigger  [ovr.HandCount]float32      `json:"handTrigger"`
	Thumbstick   [ovr.HandCount]ovr.Vector2f `json:"thumbstick"`
}

func analogOf(in *ovr.InputState) Analog {
	return Analog{
		IndexTrigger: in.IndexTrigger,
		HandTrigger:  in.HandTrigger,
		Thumbstick:   in.Thumbstick,
	}
}

// ControllerDelta holds the fields of one controller that changed.
type ControllerDelta struct {
	Type     ovr.ControllerType        `json:"type"`
	Buttons  *uint32                   `json:"buttons,omitempty"`
	Touches  *uint32                   `json:"touches,omitempty"`
	Pressed  uint32                    `json:"pressed,omitempty"`
	Released uint32                    `json:"released,omitempty"`
	Analog   *Analog                   `json:"analog,omitempty"`
	Haptics  *ovr.HapticsPlaybackState `json:"haptics,omitempty"`
}

func (d *ControllerDelta) isEmpty() bool {
	return d.Buttons == nil &&
		d.Touches == nil &&
		d.Pressed == 0 &&
		d.Released == 0 &&
		d.Analog == nil &&
		d.Haptics == nil
}

// Delta is the difference between two frames.
type Delta struct {
	Connected   *ovr.ControllerType  `json:"connected,omitempty"`
	Controllers []ControllerDelta    `json:"controllers,omitempty"`
	Removed     []ovr.ControllerType `json:"removed,omitempty"`
	Tracking    *ovr.TrackingState   `json:"tracking,omitempty"`
}

func (d *Delta) IsEmpty() bool {
	return d.Connected == nil &&
		len(d.Controllers) == 0 &&
		len(d.Removed) == 0 &&
		d.Tracking == nil
}

const analogThreshold = 0.01

func floatEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < analogThreshold
}

func vec2Equal(a, b ovr.Vector2f) bool {
	return floatEqual(a.X, b.X) && floatEqual(a.Y, b.Y)
}

func vec3Equal(a, b ovr.Vector3f) bool {
	return floatEqual(a.X, b.X) && floatEqual(a.Y, b.Y) && floatEqual(a.Z, b.Z)
}

func quatEqual(a, b ovr.Quatf) bool {
	return floatEqual(a.X, b.X) && floatEqual(a.Y, b.Y) && floatEqual(a.Z, b.Z) && floatEqual(a.W, b.W)
}

func analogEqual(a, b Analog) bool {
	for h := ovr.HandLeft; h < ovr.HandCount; h++ {
		if !floatEqual(a.IndexTrigger[h], b.IndexTrigger[h]) ||
			!floatEqual(a.HandTrigger[h], b.HandTrigger[h]) ||
			!vec2Equal(a.Thumbstick[h], b.Thumbstick[h]) {
			return false
		}
	}
	return true
}

func poseEqual(a, b ovr.PoseStatef) bool {
	return vec3Equal(a.ThePose.Position, b.ThePose.Position) && quatEqual(a.ThePose.Orientation, b.ThePose.Orientation)
}

func trackingEqual(a, b ovr.TrackingState) bool {
	if a.StatusFlags != b.StatusFlags || a.HandStatusFlags != b.HandStatusFlags {
		return false
	}
	if !poseEqual(a.HeadPose, b.HeadPose) {
		return false
	}
	for h := ovr.HandLeft; h < ovr.HandCount; h++ {
		if !poseEqual(a.HandPoses[h], b.HandPoses[h]) {
			return false
		}
	}
	return true
}

func controllerDelta(old ControllerFrame, hadOld bool, cur ControllerFrame) ControllerDelta {
	d := ControllerDelta{
		Type:     cur.Type,
		Pressed:  cur.Input.ButtonsPressed,
		Released: cur.Input.ButtonsReleased,
	}
	if !hadOld || old.Input.Buttons != cur.Input.Buttons {
		d.Buttons = &cur.Input.Buttons
	}
	if !hadOld || old.Input.Touches != cur.Input.Touches {
		d.Touches = &cur.Input.Touches
	}
	if a := analogOf(&cur.Input); !hadOld || !analogEqual(analogOf(&old.Input), a) {
		d.Analog = &a
	}
	if !hadOld || old.Haptics != cur.Haptics {
		d.Haptics = &cur.Haptics
	}
	return d
}

// ComputeDelta returns the changes from old to cur. Analog values and poses
// that moved less than a small threshold are not reported.
func ComputeDelta(old, cur Frame) *Delta {
	d := &Delta{}

	if old.Connected != cur.Connected {
		d.Connected = &cur.Connected
	}

	for i := range cur.Controllers {
		c := cur.Controllers[i]
		prev, ok := old.controller(c.Type)
		if cd := controllerDelta(prev, ok, c); !cd.isEmpty() {
			d.Controllers = append(d.Controllers, cd)
		}
	}
	for _, c := range old.Controllers {
		if _, ok := cur.controller(c.Type); !ok {
			d.Removed = append(d.Removed, c.Type)
		}
	}

	if !trackingEqual(old.Tracking, cur.Tracking) {
		d.Tracking = &cur.Tracking
	}
	return d
}

// Apply updates f with the changes in d. Button edges only last one frame, so
// controllers absent from d lose theirs.
func (f *Frame) Apply(d *Delta) {
	if d.Connected != nil {
		f.Connected = *d.Connected
	}

	for _, ct := range d.Removed {
		f.Controllers = slices.DeleteFunc(f.Controllers, func(c ControllerFrame) bool {
			return c.Type == ct
		})
	}
	for i := range f.Controllers {
		f.Controllers[i].Input.ButtonsPressed = 0
		f.Controllers[i].Input.ButtonsReleased = 0
	}

	for _, cd := range d.Controllers {
		i := slices.IndexFunc(f.Controllers, func(c ControllerFrame) bool {
			return c.Type == cd.Type
		})
		if i < 0 {
			f.Controllers = append(f.Controllers, ControllerFrame{Type: cd.Type, Name: cd.Type.String()})
			i = len(f.Controllers) - 1
		}
		c := &f.Controllers[i]
		c.Input.ControllerType = cd.Type
		c.Input.ButtonsPressed = cd.Pressed
		c.Input.ButtonsReleased = cd.Released
		if cd.Buttons != nil {
			c.Input.Buttons = *cd.Buttons
		}
		if cd.Touches != nil {
			c.Input.Touches = *cd.Touches
		}
		if cd.Analog != nil {
			c.Input.IndexTrigger = cd.Analog.IndexTrigger
			c.Input.HandTrigger = cd.Analog.HandTrigger
			c.Input.Thumbstick = cd.Analog.Thumbstick
		}
		if cd.Haptics != nil {
			c.Haptics = *cd.Haptics
		}
	}

	if d.Tracking != nil {
		f.Tracking = *d.Tracking
	}
}
