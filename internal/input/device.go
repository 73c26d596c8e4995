// Package input reads controllers through the action system and presents
// them behind one polling interface. A Manager owns one Device per
// controller family and dispatches queries by controller type.
package input

import (
	"fmt"

	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

// Device is a controller family. The set of implementations is fixed: Touch,
// Remote and Gamepad.
type Device interface {
	Type() ovr.ControllerType

	// Connected reports the live connection state. snap is the current
	// frame's action state and may be nil before the first refresh.
	Connected(snap vr.Snapshot) bool

	// InputState merges the device's controls into state. On error the
	// contents of state are unspecified. Button edges are the ones latched
	// by the last advance, so repeated queries in one frame agree.
	InputState(snap vr.Snapshot, state *ovr.InputState) error

	// advance latches the frame's button transitions. The manager calls it
	// once per refresh; a disconnected device or a failed read reports no
	// transitions for that frame.
	advance(snap vr.Snapshot, connected bool)

	SetVibration(frequency, amplitude float32) error
	SubmitVibration(buf ovr.HapticsBuffer) error
	VibrationState() ovr.HapticsPlaybackState

	// Close releases the device. Any haptics goroutine has exited by the
	// time Close returns.
	Close()

	sealed()
}

// noHaptics provides the haptics methods of devices without vibration.
type noHaptics struct{}

func (noHaptics) SetVibration(float32, float32) error { return nil }

func (noHaptics) SubmitVibration(ovr.HapticsBuffer) error { return nil }

func (noHaptics) VibrationState() ovr.HapticsPlaybackState { return ovr.HapticsPlaybackState{} }

// binder resolves action names, remembering the first failure.
type binder struct {
	actions vr.ActionSystem
	err     error
}

func (b *binder) action(name string) vr.ActionHandle {
	if b.err != nil {
		return 0
	}
	h, err := b.actions.ActionHandle(name)
	if err != nil {
		b.err = fmt.Errorf("bind %s: %w", name, err)
	}
	return h
}

func (b *binder) source(path string) vr.InputValueHandle {
	if b.err != nil {
		return vr.InvalidInputValueHandle
	}
	h, err := b.actions.InputSourceHandle(path)
	if err != nil {
		b.err = fmt.Errorf("bind %s: %w", path, err)
	}
	return h
}

// reader reads actions from a snapshot, remembering the first failure so
// a whole device can be read before checking for errors.
type reader struct {
	snap     vr.Snapshot
	restrict vr.InputValueHandle
	err      error
}

func newReader(snap vr.Snapshot, restrict vr.InputValueHandle) *reader {
	r := &reader{snap: snap, restrict: restrict}
	if snap == nil {
		r.err = fmt.Errorf("%w: no action state for this frame", ovr.ErrInternalQueryFailure)
	}
	return r
}

func (r *reader) digital(action vr.ActionHandle) bool {
	if r.err != nil {
		return false
	}
	d, err := r.snap.Digital(action, r.restrict)
	if err != nil {
		r.err = fmt.Errorf("digital action %d: %w: %w", action, ovr.ErrInternalQueryFailure, err)
		return false
	}
	return d.State
}

func (r *reader) analog(action vr.ActionHandle) ovr.Vector2f {
	if r.err != nil {
		return ovr.Vector2f{}
	}
	d, err := r.snap.Analog(action, r.restrict)
	if err != nil {
		r.err = fmt.Errorf("analog action %d: %w: %w", action, ovr.ErrInternalQueryFailure, err)
		return ovr.Vector2f{}
	}
	return ovr.Vector2f{X: d.X, Y: d.Y}
}

// active reports whether the action is bound to a live source. Read errors
// count as inactive.
func active(snap vr.Snapshot, action vr.ActionHandle, restrict vr.InputValueHandle) bool {
	if snap == nil {
		return false
	}
	d, err := snap.Digital(action, restrict)
	return err == nil && d.Active
}

// buttonMap pairs a digital action with the button bit it sets.
type buttonMap struct {
	action vr.ActionHandle
	bit    uint32
}

func (r *reader) buttons(maps []buttonMap) uint32 {
	var b uint32
	for _, m := range maps {
		if r.digital(m.action) {
			b |= m.bit
		}
	}
	return b
}
