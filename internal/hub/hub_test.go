package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/soar/ovrinput/internal/monitor"
	"github.com/soar/ovrinput/internal/ovr"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return WSMessage{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("unexpected message %s", data)
	default:
	}
}

func TestHubSelections(t *testing.T) {
	h, _ := startHub(t)

	all := NewClient(h, nil)
	pad := NewClient(h, nil)
	pad.SetSelection(ovr.ControllerTypeXBox)
	h.Register(all)
	h.Register(pad)

	// registration is processed asynchronously
	deadline := time.Now().Add(time.Second)
	for h.Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("clients registered: %d", h.Len())
		}
		time.Sleep(time.Millisecond)
	}

	sels := map[ovr.ControllerType]bool{}
	for _, s := range h.Selections() {
		sels[s] = true
	}
	if len(sels) != 2 || !sels[ovr.ControllerTypeActive] || !sels[ovr.ControllerTypeXBox] {
		t.Errorf("selections %v", sels)
	}

	h.BroadcastToSelection([]byte(`{"type":"full"}`), ovr.ControllerTypeXBox)
	if msg := receive(t, pad); msg.Type != TypeFull {
		t.Errorf("pad got %q", msg.Type)
	}
	expectNothing(t, all)
}

func TestHubShutdown(t *testing.T) {
	h, cancel := startHub(t)

	c := NewClient(h, nil)
	h.Register(c)
	cancel()
	<-h.done

	if _, ok := <-c.send; ok {
		t.Error("expected send channel to be closed")
	}
	if h.SendTo(c, []byte("x")) {
		t.Error("SendTo succeeded on a closed client")
	}

	late := NewClient(h, nil)
	h.Register(late)
	if _, ok := <-late.send; ok {
		t.Error("expected late client to be closed")
	}
	h.Unregister(late)
}

func frameWith(buttons uint32) monitor.Frame {
	return monitor.Frame{
		Connected: ovr.ControllerTypeTouch | ovr.ControllerTypeXBox,
		Controllers: []monitor.ControllerFrame{
			{Type: ovr.ControllerTypeLTouch, Name: "ltouch"},
			{Type: ovr.ControllerTypeRTouch, Name: "rtouch"},
			{Type: ovr.ControllerTypeXBox, Name: "xbox", Input: ovr.InputState{Buttons: buttons}},
		},
	}
}

func TestBroadcasterViews(t *testing.T) {
	h, _ := startHub(t)
	b := NewBroadcaster(h, nil)

	all := NewClient(h, nil)
	touch := NewClient(h, nil)
	touch.SetSelection(ovr.ControllerTypeTouch)
	h.Register(all)
	h.Register(touch)
	for h.Len() != 2 {
		time.Sleep(time.Millisecond)
	}

	b.handleFrame(frameWith(0))
	full := receive(t, all)
	if full.Type != TypeFull || len(full.Data.Controllers) != 3 {
		t.Fatalf("full message %+v", full)
	}
	if msg := receive(t, touch); len(msg.Data.Controllers) != 2 {
		t.Errorf("touch view has %d controllers", len(msg.Data.Controllers))
	}

	b.handleFrame(frameWith(0))
	expectNothing(t, all)
	expectNothing(t, touch)

	b.handleFrame(frameWith(ovr.ButtonA))
	delta := receive(t, all)
	if delta.Type != TypeDelta || delta.Changes == nil || len(delta.Changes.Controllers) != 1 {
		t.Fatalf("delta message %+v", delta)
	}
	if c := delta.Changes.Controllers[0]; c.Type != ovr.ControllerTypeXBox || c.Buttons == nil || *c.Buttons != ovr.ButtonA {
		t.Errorf("controller delta %+v", c)
	}
	if delta.Seq <= full.Seq {
		t.Errorf("sequence did not advance: %d then %d", full.Seq, delta.Seq)
	}
	expectNothing(t, touch)
}

func TestBroadcasterPeriodicFullSync(t *testing.T) {
	h, _ := startHub(t)
	b := NewBroadcaster(h, nil)

	c := NewClient(h, nil)
	h.Register(c)
	for h.Len() != 1 {
		time.Sleep(time.Millisecond)
	}

	b.handleFrame(frameWith(0))
	receive(t, c)

	for i := 0; i < deltaCountSync; i++ {
		b.handleFrame(frameWith(uint32((i + 1) % 2)))
		if msg := receive(t, c); msg.Type != TypeDelta {
			t.Fatalf("frame %d: expected delta, got %q", i, msg.Type)
		}
	}

	// the frame after deltaCountSync deltas is sent in full
	b.handleFrame(frameWith(ovr.ButtonB))
	if msg := receive(t, c); msg.Type != TypeFull {
		t.Errorf("expected full sync, got %q", msg.Type)
	}
}

type fakeCommander struct {
	cmds []monitor.Command
	err  error
}

func (f *fakeCommander) Submit(cmd monitor.Command) error {
	f.cmds = append(f.cmds, cmd)
	cmd.Done <- f.err
	return nil
}

func TestVibrate(t *testing.T) {
	fc := &fakeCommander{}

	if err := vibrate(fc, ClientMessage{Controller: "rtouch", Frequency: 0.5, Amplitude: 1}); err != nil {
		t.Fatalf("vibrate: %v", err)
	}
	if cmd := fc.cmds[0]; cmd.Kind != monitor.SetVibration || cmd.Controller != ovr.ControllerTypeRTouch || cmd.Frequency != 0.5 {
		t.Errorf("command %+v", cmd)
	}

	if err := vibrate(fc, ClientMessage{Controller: "ltouch", Samples: []int{-5, 128, 300}}); err != nil {
		t.Fatalf("vibrate: %v", err)
	}
	cmd := fc.cmds[1]
	if cmd.Kind != monitor.SubmitVibration || string(cmd.Samples) != string([]byte{0, 128, 255}) {
		t.Errorf("command %+v", cmd)
	}

	if err := vibrate(fc, ClientMessage{Controller: "joystick"}); err == nil {
		t.Error("expected an error for an unknown controller")
	}

	fc.err = ovr.ErrNotConnected
	if err := vibrate(fc, ClientMessage{Controller: "remote", Amplitude: 1}); !errors.Is(err, ovr.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}
