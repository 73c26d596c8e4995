package input

import (
	"fmt"

	"github.com/soar/ovrinput/internal/haptics"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

// Gamepad is an Xbox-style gamepad. Vibration is a single fixed
// frequency/amplitude setting passed straight to the hardware; buffered
// haptics are not supported.
type Gamepad struct {
	buttons []buttonMap
	a       vr.ActionHandle

	lIndexTrigger, rIndexTrigger vr.ActionHandle
	lThumbstick, rThumbstick     vr.ActionHandle
	vibration                    vr.ActionHandle

	actions         vr.ActionSystem
	thumbDeadzone   Deadzone
	triggerDeadzone Deadzone
	vibrationLength float32

	edges edges
}

func newGamepad(actions vr.ActionSystem, opts Options) (*Gamepad, error) {
	b := &binder{actions: actions}
	g := &Gamepad{
		actions:         actions,
		thumbDeadzone:   opts.ThumbstickDeadzone,
		triggerDeadzone: opts.TriggerDeadzone,
		vibrationLength: float32(opts.ConstantVibrationTimeout.Seconds()),
	}
	if g.vibrationLength <= 0 {
		g.vibrationLength = float32(haptics.DefaultConstantTimeout.Seconds())
	}

	g.a = b.action(ActionXBoxA)
	g.buttons = []buttonMap{
		{g.a, ovr.ButtonA},
		{b.action(ActionXBoxB), ovr.ButtonB},
		{b.action(ActionXBoxRThumb), ovr.ButtonRThumb},
		{b.action(ActionXBoxRShoulder), ovr.ButtonRShoulder},
		{b.action(ActionXBoxX), ovr.ButtonX},
		{b.action(ActionXBoxY), ovr.ButtonY},
		{b.action(ActionXBoxLThumb), ovr.ButtonLThumb},
		{b.action(ActionXBoxLShoulder), ovr.ButtonLShoulder},
		{b.action(ActionXBoxUp), ovr.ButtonUp},
		{b.action(ActionXBoxDown), ovr.ButtonDown},
		{b.action(ActionXBoxLeft), ovr.ButtonLeft},
		{b.action(ActionXBoxRight), ovr.ButtonRight},
		{b.action(ActionXBoxEnter), ovr.ButtonEnter},
		{b.action(ActionXBoxBack), ovr.ButtonBack},
	}
	g.lIndexTrigger = b.action(ActionXBoxLIndexTrigger)
	g.rIndexTrigger = b.action(ActionXBoxRIndexTrigger)
	g.lThumbstick = b.action(ActionXBoxLThumbstick)
	g.rThumbstick = b.action(ActionXBoxRThumbstick)
	g.vibration = b.action(ActionXBoxVibration)
	if b.err != nil {
		return nil, fmt.Errorf("gamepad: %w", b.err)
	}
	return g, nil
}

func (g *Gamepad) sealed() {}

func (g *Gamepad) Type() ovr.ControllerType {
	return ovr.ControllerTypeXBox
}

// Connected reports whether the gamepad's actions are bound to a live
// device in this frame.
func (g *Gamepad) Connected(snap vr.Snapshot) bool {
	return active(snap, g.a, vr.InvalidInputValueHandle)
}

func (g *Gamepad) InputState(snap vr.Snapshot, state *ovr.InputState) error {
	r := newReader(snap, vr.InvalidInputValueHandle)

	buttons := r.buttons(g.buttons)
	triggers := [ovr.HandCount]float32{
		ovr.HandLeft:  r.analog(g.lIndexTrigger).X,
		ovr.HandRight: r.analog(g.rIndexTrigger).X,
	}
	sticks := [ovr.HandCount]ovr.Vector2f{
		ovr.HandLeft:  r.analog(g.lThumbstick),
		ovr.HandRight: r.analog(g.rThumbstick),
	}
	if r.err != nil {
		return fmt.Errorf("gamepad: %w", r.err)
	}

	state.Buttons |= buttons
	for h := ovr.HandLeft; h < ovr.HandCount; h++ {
		state.IndexTrigger[h] = g.triggerDeadzone.ApplyScalar(triggers[h])
		state.Thumbstick[h] = g.thumbDeadzone.Apply(sticks[h])
		state.IndexTriggerNoDeadzone[h] = triggers[h]
		state.ThumbstickNoDeadzone[h] = sticks[h]
		state.IndexTriggerRaw[h] = triggers[h]
		state.ThumbstickRaw[h] = sticks[h]
	}
	state.ControllerType |= ovr.ControllerTypeXBox

	g.edges.merge(state)
	return nil
}

func (g *Gamepad) advance(snap vr.Snapshot, connected bool) {
	r := newReader(snap, vr.InvalidInputValueHandle)
	buttons := r.buttons(g.buttons)
	if !connected || r.err != nil {
		g.edges.hold()
		return
	}
	g.edges.update(buttons)
}

// SetVibration issues one vibration lasting the constant vibration
// timeout. frequency and amplitude are normalised to 0..1.
func (g *Gamepad) SetVibration(frequency, amplitude float32) error {
	err := g.actions.TriggerHapticVibration(g.vibration, 0, g.vibrationLength,
		clamp01(frequency)*haptics.MaxFrequency, clamp01(amplitude), vr.InvalidInputValueHandle)
	if err != nil {
		return fmt.Errorf("gamepad vibration: %w: %w", ovr.ErrInternalQueryFailure, err)
	}
	return nil
}

// SubmitVibration is a no-op: the gamepad has no sample buffer.
func (g *Gamepad) SubmitVibration(ovr.HapticsBuffer) error {
	return nil
}

func (g *Gamepad) VibrationState() ovr.HapticsPlaybackState {
	return ovr.HapticsPlaybackState{}
}

func (g *Gamepad) Close() {}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
