package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

func newTestLoop(t *testing.T) (*Loop, *SimDriver, *vr.Sim) {
	t.Helper()

	sim := vr.NewSim()
	driver := NewSimDriver(sim)

	m, err := input.NewManager(sim, sim, input.DefaultOptions())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Close)

	return New(m, time.Millisecond), driver, sim
}

func step(t *testing.T, l *Loop) Frame {
	t.Helper()
	f, err := l.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return f
}

func TestStep(t *testing.T) {
	l, _, _ := newTestLoop(t)

	f := step(t, l)
	want := ovr.ControllerTypeTouch | ovr.ControllerTypeXBox
	if f.Connected != want {
		t.Errorf("connected %#x, want %#x", f.Connected, want)
	}
	if f.Seq != 1 {
		t.Errorf("seq %d", f.Seq)
	}

	var types []ovr.ControllerType
	for _, c := range f.Controllers {
		types = append(types, c.Type)
	}
	if len(types) != 3 || types[0] != ovr.ControllerTypeLTouch || types[1] != ovr.ControllerTypeRTouch || types[2] != ovr.ControllerTypeXBox {
		t.Fatalf("controllers %v", types)
	}
	if f.Controllers[0].Name != "ltouch" {
		t.Errorf("name %q", f.Controllers[0].Name)
	}

	left := f.Controllers[0].Input
	if left.Buttons&ovr.ButtonX == 0 || left.ButtonsPressed&ovr.ButtonX == 0 {
		t.Errorf("left buttons %#x pressed %#x", left.Buttons, left.ButtonsPressed)
	}
	if f.Tracking.HeadPose.ThePose.Position.Y != 1.7 {
		t.Errorf("head pose %+v", f.Tracking.HeadPose.ThePose)
	}
	if f.Tracking.HandStatusFlags[ovr.HandLeft] == 0 {
		t.Error("left hand not tracked")
	}
}

func TestStepEdgesAcrossFrames(t *testing.T) {
	l, driver, _ := newTestLoop(t)

	step(t, l)
	driver.Advance(1)
	f := step(t, l)

	left := f.Controllers[0].Input
	if left.ButtonsReleased&ovr.ButtonX == 0 || left.Buttons&ovr.ButtonX != 0 {
		t.Errorf("left buttons %#x released %#x", left.Buttons, left.ButtonsReleased)
	}
	right := f.Controllers[1].Input
	if right.ButtonsPressed&ovr.ButtonA == 0 {
		t.Errorf("right pressed %#x", right.ButtonsPressed)
	}
	if f.Time != 1 {
		t.Errorf("frame time %v", f.Time)
	}
}

func TestStepFailure(t *testing.T) {
	l, _, sim := newTestLoop(t)

	sim.UpdateErr = errors.New("runtime gone")
	if _, err := l.Step(); !errors.Is(err, ovr.ErrInternalQueryFailure) {
		t.Errorf("expected ErrInternalQueryFailure, got %v", err)
	}

	sim.UpdateErr = nil
	if f := step(t, l); f.Seq != 1 {
		t.Errorf("failed frames should not consume sequence numbers: seq %d", f.Seq)
	}
}

func TestComputeDelta(t *testing.T) {
	l, driver, _ := newTestLoop(t)

	first := step(t, l)
	d := ComputeDelta(Frame{}, first)
	if d.Connected == nil || *d.Connected != first.Connected {
		t.Errorf("connected %v", d.Connected)
	}
	if len(d.Controllers) != 3 || d.Tracking == nil {
		t.Fatalf("initial delta %+v", d)
	}
	for _, c := range d.Controllers {
		if c.Buttons == nil || c.Analog == nil || c.Haptics == nil {
			t.Errorf("new controller %s is missing fields: %+v", c.Type, c)
		}
	}

	same := step(t, l)
	if d := ComputeDelta(first, same); !d.IsEmpty() {
		t.Errorf("expected empty delta, got %+v", d)
	}

	driver.Advance(1)
	moved := step(t, l)
	d = ComputeDelta(same, moved)
	if d.IsEmpty() || d.Tracking == nil {
		t.Fatalf("expected tracking change, got %+v", d)
	}
	if d.Connected != nil || len(d.Removed) != 0 {
		t.Errorf("unexpected connection change %+v", d)
	}
}

func TestApply(t *testing.T) {
	l, driver, _ := newTestLoop(t)

	var got Frame
	prev := Frame{}
	for _, at := range []float64{0, 0.25, 1, 1.25} {
		driver.Advance(at)
		cur := step(t, l)
		got.Apply(ComputeDelta(prev, cur))
		prev = cur

		if got.Connected != cur.Connected || len(got.Controllers) != len(cur.Controllers) {
			t.Fatalf("t=%v: connected %v with %d controllers", at, got.Connected, len(got.Controllers))
		}
		for _, want := range cur.Controllers {
			c, ok := got.controller(want.Type)
			if !ok {
				t.Fatalf("t=%v: missing %s", at, want.Type)
			}
			if c.Input.Buttons != want.Input.Buttons ||
				c.Input.Touches != want.Input.Touches ||
				c.Input.ButtonsPressed != want.Input.ButtonsPressed ||
				c.Input.ButtonsReleased != want.Input.ButtonsReleased {
				t.Errorf("t=%v %s: got %+v, want %+v", at, want.Type, c.Input, want.Input)
			}
			if !analogEqual(analogOf(&c.Input), analogOf(&want.Input)) {
				t.Errorf("t=%v %s: analog differs", at, want.Type)
			}
		}
		if !trackingEqual(got.Tracking, cur.Tracking) {
			t.Errorf("t=%v: tracking differs", at)
		}
	}

	got.Apply(ComputeDelta(prev, prev.Filter(ovr.ControllerTypeTouch)))
	if _, ok := got.controller(ovr.ControllerTypeXBox); ok || len(got.Controllers) != 2 {
		t.Errorf("removed controller still present: %+v", got.Controllers)
	}
}

func TestComputeDeltaThreshold(t *testing.T) {
	a := Frame{Controllers: []ControllerFrame{{Type: ovr.ControllerTypeXBox}}}
	b := Frame{Controllers: []ControllerFrame{{Type: ovr.ControllerTypeXBox}}}
	b.Controllers[0].Input.Thumbstick[ovr.HandLeft].X = 0.005

	if d := ComputeDelta(a, b); !d.IsEmpty() {
		t.Errorf("sub-threshold change reported: %+v", d)
	}

	b.Controllers[0].Input.Thumbstick[ovr.HandLeft].X = 0.5
	d := ComputeDelta(a, b)
	if len(d.Controllers) != 1 || d.Controllers[0].Analog == nil || d.Controllers[0].Buttons != nil {
		t.Errorf("delta %+v", d)
	}

	if d := ComputeDelta(a, Frame{}); len(d.Removed) != 1 || d.Removed[0] != ovr.ControllerTypeXBox {
		t.Errorf("removed %+v", d.Removed)
	}
}

func TestFilter(t *testing.T) {
	f := Frame{Controllers: []ControllerFrame{
		{Type: ovr.ControllerTypeLTouch},
		{Type: ovr.ControllerTypeRTouch},
		{Type: ovr.ControllerTypeXBox},
	}}
	if got := f.Filter(ovr.ControllerTypeTouch); len(got.Controllers) != 2 {
		t.Errorf("touch filter kept %d", len(got.Controllers))
	}
	if got := f.Filter(ovr.ControllerTypeRemote); len(got.Controllers) != 0 {
		t.Errorf("remote filter kept %d", len(got.Controllers))
	}
	if len(f.Controllers) != 3 {
		t.Error("filter modified the original")
	}
}

func TestRunExecutesCommands(t *testing.T) {
	l, _, sim := newTestLoop(t)

	// connection state comes from the first frame
	step(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	result := make(chan error, 1)
	if err := l.Submit(Command{Kind: SetVibration, Controller: ovr.ControllerTypeXBox, Frequency: 1, Amplitude: 1, Done: result}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("SetVibration: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command not executed")
	}
	if p := sim.Pulses(); len(p) != 1 || p[0].Frequency != 320 {
		t.Errorf("pulses %+v", p)
	}

	if err := l.Submit(Command{Kind: SubmitVibration, Controller: ovr.ControllerTypeRemote, Samples: []byte{1}, Done: result}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := <-result; !errors.Is(err, ovr.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}

	select {
	case f := <-l.Frames():
		if f.Seq == 0 {
			t.Error("zero sequence number")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame published")
	}

	cancel()
	<-done
	for range l.Frames() {
	}
}

func TestSubmitBusy(t *testing.T) {
	l, _, _ := newTestLoop(t)

	var err error
	for i := 0; i < 100 && err == nil; i++ {
		err = l.Submit(Command{Controller: ovr.ControllerTypeXBox})
	}
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestPublishDropsOldest(t *testing.T) {
	l, _, _ := newTestLoop(t)

	for i := uint64(1); i <= 20; i++ {
		l.publish(Frame{Seq: i})
	}
	first := <-l.Frames()
	if first.Seq == 1 {
		t.Error("expected the oldest frames to be dropped")
	}
	var last Frame
	for len(l.Frames()) > 0 {
		last = <-l.Frames()
	}
	if last.Seq != 20 {
		t.Errorf("newest frame seq %d, want 20", last.Seq)
	}
}
