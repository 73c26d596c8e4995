package gamepad

import (
	"errors"
	"testing"

	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

type fakeJoystick struct {
	axes    map[int32]int16
	buttons map[int32]bool
	count   int32
	hat     uint8
	hasHat  bool
}

func (f *fakeJoystick) Axis(i int32) int16 { return f.axes[i] }

func (f *fakeJoystick) Button(i int32) bool { return f.buttons[i] }

func (f *fakeJoystick) NumButtons() int32 { return f.count }

func (f *fakeJoystick) Hat() (uint8, bool) { return f.hat, f.hasHat }

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		raw  int16
		want float64
	}{
		{0, 0},
		{32767, 1},
		{-32768, -1},
	}
	for _, tt := range tests {
		if got := NormalizeAxis(tt.raw); got != tt.want {
			t.Errorf("NormalizeAxis(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeTrigger(t *testing.T) {
	tests := []struct {
		raw, min, max int16
		want          float64
	}{
		{-32768, -32768, 32767, 0},
		{32767, -32768, 32767, 1},
		{0, 0, 32767, 0},
		{-100, 0, 32767, 0},
		{5, 5, 5, 0},
	}
	for _, tt := range tests {
		if got := NormalizeTrigger(tt.raw, tt.min, tt.max); got != tt.want {
			t.Errorf("NormalizeTrigger(%d, %d, %d) = %v, want %v", tt.raw, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestGetMapping(t *testing.T) {
	if m := GetMapping(0x045E, 0x0B12); m.Name != "xbox" {
		t.Errorf("Xbox Series mapping %q", m.Name)
	}
	if m := GetMapping(0x054C, 0x0CE6); m.Name != "playstation" {
		t.Errorf("DualSense mapping %q", m.Name)
	}
	if m := GetMapping(0x1234, 0x5678); m.Name != "generic" {
		t.Errorf("unknown device mapping %q", m.Name)
	}
}

func TestMappingRead(t *testing.T) {
	js := &fakeJoystick{
		axes: map[int32]int16{
			0: 32767,  // left x
			1: -32768, // left y, inverted
			5: 32767,  // right trigger
		},
		buttons: map[int32]bool{0: true, 6: true, 12: true},
		count:   11,
		hat:     HatUp | HatLeft,
		hasHat:  true,
	}

	st := xboxMapping.Read(js)
	if !st.Connected || st.Mapping != "xbox" {
		t.Errorf("connected=%v mapping=%q", st.Connected, st.Mapping)
	}
	if want := ovr.ButtonA | ovr.ButtonBack | ovr.ButtonUp | ovr.ButtonLeft; st.Buttons != want {
		t.Errorf("buttons %#x, want %#x", st.Buttons, want)
	}
	if st.Sticks[ovr.HandLeft] != (ovr.Vector2f{X: 1, Y: 1}) {
		t.Errorf("left stick %+v", st.Sticks[ovr.HandLeft])
	}
	if st.Triggers[ovr.HandRight] != 1 {
		t.Errorf("right trigger %v", st.Triggers[ovr.HandRight])
	}
	// raw 0 is half way through a full-range trigger
	if l := st.Triggers[ovr.HandLeft]; l < 0.49 || l > 0.51 {
		t.Errorf("left trigger %v", l)
	}
}

func TestRumbleFor(t *testing.T) {
	tests := []struct {
		name                      string
		duration, freq, amplitude float32
		want                      Rumble
	}{
		{"low frequency", 1, 0, 1, Rumble{Low: 0xffff, High: 0, DurationMs: 1000}},
		{"high frequency", 0.5, 320, 1, Rumble{Low: 0, High: 0xffff, DurationMs: 500}},
		{"half", 2.5, 160, 1, Rumble{Low: 32768, High: 32768, DurationMs: 2500}},
		{"silent", 1, 160, 0, Rumble{DurationMs: 1000}},
		{"clamped", 1, 640, 2, Rumble{High: 0xffff, DurationMs: 1000}},
	}
	for _, tt := range tests {
		if got := RumbleFor(tt.duration, tt.freq, tt.amplitude, 320); got != tt.want {
			t.Errorf("%s: RumbleFor = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func newTestManager(t *testing.T, sys *System) *input.Manager {
	t.Helper()
	m, err := input.NewManager(sys, sys, input.DefaultOptions())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestSystemDrivesGamepadDevice(t *testing.T) {
	var rumbles []Rumble
	sys := NewSystem(func(r Rumble) error {
		rumbles = append(rumbles, r)
		return nil
	})
	m := newTestManager(t, sys)

	if err := m.UpdateInputState(); err != nil {
		t.Fatalf("UpdateInputState: %v", err)
	}
	if ct := m.ConnectedControllers(); ct != ovr.ControllerTypeNone {
		t.Fatalf("connected before any joystick: %#x", ct)
	}

	sys.SetState(State{
		Connected: true,
		Name:      "pad",
		Buttons:   ovr.ButtonA | ovr.ButtonDown,
		Sticks:    [ovr.HandCount]ovr.Vector2f{ovr.HandRight: {X: -1}},
		Triggers:  [ovr.HandCount]float32{ovr.HandLeft: 1},
	})
	if err := m.UpdateInputState(); err != nil {
		t.Fatalf("UpdateInputState: %v", err)
	}
	if ct := m.ConnectedControllers(); ct != ovr.ControllerTypeXBox {
		t.Fatalf("connected controllers %#x, want gamepad only", ct)
	}

	var st ovr.InputState
	if err := m.InputState(ovr.ControllerTypeXBox, &st); err != nil {
		t.Fatalf("InputState: %v", err)
	}
	if st.Buttons != ovr.ButtonA|ovr.ButtonDown || st.ButtonsPressed != st.Buttons {
		t.Errorf("buttons %#x pressed %#x", st.Buttons, st.ButtonsPressed)
	}
	if st.IndexTrigger[ovr.HandLeft] != 1 || st.Thumbstick[ovr.HandRight] != (ovr.Vector2f{X: -1}) {
		t.Errorf("trigger %v stick %+v", st.IndexTrigger[ovr.HandLeft], st.Thumbstick[ovr.HandRight])
	}

	if err := m.SetControllerVibration(ovr.ControllerTypeXBox, 0.5, 1); err != nil {
		t.Fatalf("SetControllerVibration: %v", err)
	}
	if len(rumbles) != 1 || rumbles[0] != (Rumble{Low: 32768, High: 32768, DurationMs: 2500}) {
		t.Errorf("rumbles %+v", rumbles)
	}
}

func TestSnapshotChanged(t *testing.T) {
	sys := NewSystem(nil)
	set, _ := sys.ActionSetHandle(input.ActionSetName)
	a, _ := sys.ActionHandle(input.ActionXBoxA)
	stick, _ := sys.ActionHandle(input.ActionXBoxLThumbstick)
	left, _ := sys.InputSourceHandle(input.SourceLeftHand)

	sys.SetState(State{Connected: true, Buttons: ovr.ButtonA})
	snap, err := sys.UpdateActionState(set)
	if err != nil {
		t.Fatalf("UpdateActionState: %v", err)
	}
	sys.SetState(State{Connected: true})

	d, err := snap.Digital(a, vr.InvalidInputValueHandle)
	if err != nil || !d.Active || !d.State || !d.Changed {
		t.Errorf("digital %+v, %v", d, err)
	}
	if d, _ := snap.Digital(a, left); d.Active {
		t.Error("gamepad action active for a hand source")
	}
	if _, err := snap.Digital(stick, vr.InvalidInputValueHandle); !errors.Is(err, vr.ErrWrongType) {
		t.Errorf("expected ErrWrongType, got %v", err)
	}

	snap, _ = sys.UpdateActionState(set)
	if d, _ := snap.Digital(a, vr.InvalidInputValueHandle); d.State || !d.Changed {
		t.Errorf("release %+v", d)
	}
	snap, _ = sys.UpdateActionState(set)
	if d, _ := snap.Digital(a, vr.InvalidInputValueHandle); d.Changed {
		t.Errorf("steady %+v", d)
	}

	if _, err := sys.UpdateActionState(set + 1); !errors.Is(err, vr.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}

func TestVibrationWithoutJoystick(t *testing.T) {
	sys := NewSystem(nil)
	h, _ := sys.ActionHandle(input.ActionXBoxVibration)
	if err := sys.TriggerHapticVibration(h, 0, 1, 160, 1, vr.InvalidInputValueHandle); !errors.Is(err, ovr.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	other, _ := sys.ActionHandle(input.ActionTouchVibration)
	if err := sys.TriggerHapticVibration(other, 0, 1, 160, 1, vr.InvalidInputValueHandle); !errors.Is(err, vr.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}
