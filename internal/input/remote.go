package input

import (
	"fmt"

	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

// Remote is the simple media remote. It has buttons only and no haptics.
type Remote struct {
	noHaptics

	buttons []buttonMap
	enter   vr.ActionHandle
	edges   edges
}

func newRemote(actions vr.ActionSystem) (*Remote, error) {
	b := &binder{actions: actions}
	r := &Remote{
		enter: b.action(ActionRemoteEnter),
	}
	r.buttons = []buttonMap{
		{b.action(ActionRemoteUp), ovr.ButtonUp},
		{b.action(ActionRemoteDown), ovr.ButtonDown},
		{b.action(ActionRemoteLeft), ovr.ButtonLeft},
		{b.action(ActionRemoteRight), ovr.ButtonRight},
		{r.enter, ovr.ButtonEnter},
		{b.action(ActionRemoteBack), ovr.ButtonBack},
		{b.action(ActionRemoteVolUp), ovr.ButtonVolUp},
		{b.action(ActionRemoteVolDown), ovr.ButtonVolDown},
	}
	if b.err != nil {
		return nil, fmt.Errorf("remote: %w", b.err)
	}
	return r, nil
}

func (r *Remote) sealed() {}

func (r *Remote) Type() ovr.ControllerType {
	return ovr.ControllerTypeRemote
}

// Connected reports whether the remote's actions are bound to a live
// device in this frame.
func (r *Remote) Connected(snap vr.Snapshot) bool {
	return active(snap, r.enter, vr.InvalidInputValueHandle)
}

func (r *Remote) InputState(snap vr.Snapshot, state *ovr.InputState) error {
	rd := newReader(snap, vr.InvalidInputValueHandle)
	buttons := rd.buttons(r.buttons)
	if rd.err != nil {
		return fmt.Errorf("remote: %w", rd.err)
	}

	state.Buttons |= buttons
	state.ControllerType |= ovr.ControllerTypeRemote

	r.edges.merge(state)
	return nil
}

func (r *Remote) advance(snap vr.Snapshot, connected bool) {
	rd := newReader(snap, vr.InvalidInputValueHandle)
	buttons := rd.buttons(r.buttons)
	if !connected || rd.err != nil {
		r.edges.hold()
		return
	}
	r.edges.update(buttons)
}

func (r *Remote) Close() {}
