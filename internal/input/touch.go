package input

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/soar/ovrinput/internal/haptics"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

// touchBits are the button and touch bits one hand reports.
type touchBits struct {
	buttonAX, buttonBY, buttonThumb, buttonEnter        uint32
	touchAX, touchBY, touchThumb, touchThumbRest        uint32
	touchIndexTrigger, touchIndexPointing, touchThumbUp uint32
}

var touchHandBits = [ovr.HandCount]touchBits{
	ovr.HandLeft: {
		buttonAX: ovr.ButtonX, buttonBY: ovr.ButtonY, buttonThumb: ovr.ButtonLThumb, buttonEnter: ovr.ButtonEnter,
		touchAX: ovr.TouchX, touchBY: ovr.TouchY, touchThumb: ovr.TouchLThumb, touchThumbRest: ovr.TouchLThumbRest,
		touchIndexTrigger: ovr.TouchLIndexTrigger, touchIndexPointing: ovr.TouchLIndexPointing, touchThumbUp: ovr.TouchLThumbUp,
	},
	ovr.HandRight: {
		buttonAX: ovr.ButtonA, buttonBY: ovr.ButtonB, buttonThumb: ovr.ButtonRThumb, buttonEnter: ovr.ButtonHome,
		touchAX: ovr.TouchA, touchBY: ovr.TouchB, touchThumb: ovr.TouchRThumb, touchThumbRest: ovr.TouchRThumbRest,
		touchIndexTrigger: ovr.TouchRIndexTrigger, touchIndexPointing: ovr.TouchRIndexPointing, touchThumbUp: ovr.TouchRThumbUp,
	},
}

// Touch is one hand controller. Its haptics are buffered and played back by
// a dedicated goroutine.
type Touch struct {
	hand     ovr.Hand
	role     vr.ControllerRole
	actions  vr.ActionSystem
	tracking vr.TrackingSystem

	handle      vr.InputValueHandle
	handleValid atomic.Bool

	buttonAX, buttonBY, buttonThumb, buttonEnter vr.ActionHandle
	buttonIndexTrigger, buttonHandTrigger        vr.ActionHandle
	touchAX, touchBY, touchThumb, touchThumbRest vr.ActionHandle
	touchIndexTrigger                            vr.ActionHandle
	indexTrigger, handTrigger, thumbstick        vr.ActionHandle
	recenterThumb                                vr.ActionHandle
	vibration                                    vr.ActionHandle

	thumbDeadzone   Deadzone
	triggerDeadzone Deadzone

	// raw stick position captured by the recenter gesture; both latches
	// advance once per refresh
	thumbstickCenter ovr.Vector2f
	recenter         latch
	edges            edges

	haptics *haptics.Buffer
	player  *haptics.Player
}

func newTouch(hand ovr.Hand, actions vr.ActionSystem, tracking vr.TrackingSystem, opts Options) (*Touch, error) {
	t := &Touch{
		hand:            hand,
		actions:         actions,
		tracking:        tracking,
		thumbDeadzone:   opts.ThumbstickDeadzone,
		triggerDeadzone: opts.TriggerDeadzone,
	}

	b := &binder{actions: actions}
	switch hand {
	case ovr.HandLeft:
		t.role = vr.RoleLeftHand
		t.handle = b.source(SourceLeftHand)
	case ovr.HandRight:
		t.role = vr.RoleRightHand
		t.handle = b.source(SourceRightHand)
	default:
		return nil, fmt.Errorf("touch: hand %d: %w", hand, ovr.ErrInvalidParameter)
	}

	t.buttonAX = b.action(ActionTouchButtonAX)
	t.buttonBY = b.action(ActionTouchButtonBY)
	t.buttonThumb = b.action(ActionTouchButtonThumb)
	t.buttonEnter = b.action(ActionTouchButtonEnter)
	t.buttonIndexTrigger = b.action(ActionTouchButtonIndexTrigger)
	t.buttonHandTrigger = b.action(ActionTouchButtonHandTrigger)
	t.touchAX = b.action(ActionTouchTouchAX)
	t.touchBY = b.action(ActionTouchTouchBY)
	t.touchThumb = b.action(ActionTouchTouchThumb)
	t.touchThumbRest = b.action(ActionTouchTouchThumbRest)
	t.touchIndexTrigger = b.action(ActionTouchTouchIndexTrigger)
	t.indexTrigger = b.action(ActionTouchIndexTrigger)
	t.handTrigger = b.action(ActionTouchHandTrigger)
	t.thumbstick = b.action(ActionTouchThumbstick)
	t.recenterThumb = b.action(ActionTouchRecenterThumb)
	t.vibration = b.action(ActionTouchVibration)
	if b.err != nil {
		return nil, fmt.Errorf("touch %s: %w", hand, b.err)
	}

	t.haptics = haptics.NewBuffer(opts.HapticsSampleRate, opts.ConstantVibrationTimeout)
	t.player = haptics.NewPlayer(t.haptics, t.pulse, opts.HapticsJoinTimeout)
	t.handleValid.Store(t.trackedConnected())

	return t, nil
}

func (t *Touch) sealed() {}

// Hand returns the hand this controller is bound to.
func (t *Touch) Hand() ovr.Hand {
	return t.hand
}

// Handle returns the input source handle. The value is kept across
// disconnects; HandleValid reports whether it currently names a device.
func (t *Touch) Handle() vr.InputValueHandle {
	return t.handle
}

func (t *Touch) HandleValid() bool {
	return t.handleValid.Load()
}

func (t *Touch) Type() ovr.ControllerType {
	if t.hand == ovr.HandLeft {
		return ovr.ControllerTypeLTouch
	}
	return ovr.ControllerTypeRTouch
}

func (t *Touch) trackedConnected() bool {
	idx := t.tracking.DeviceIndexForRole(t.role)
	return idx != vr.TrackedDeviceIndexInvalid && t.tracking.IsDeviceConnected(idx)
}

// Connected asks the tracking system whether a controller holds this
// hand's role, and invalidates or revalidates the handle to match.
func (t *Touch) Connected(vr.Snapshot) bool {
	connected := t.trackedConnected()
	if t.handleValid.Swap(connected) != connected {
		if connected {
			log.Printf("Touch controller connected: %s hand", t.hand)
		} else {
			log.Printf("Touch controller disconnected: %s hand", t.hand)
		}
	}
	return connected
}

func (t *Touch) InputState(snap vr.Snapshot, state *ovr.InputState) error {
	bits := touchHandBits[t.hand]
	r := newReader(snap, t.handle)

	buttons := r.buttons(t.buttonMaps(bits))
	touches := r.buttons([]buttonMap{
		{t.touchAX, bits.touchAX},
		{t.touchBY, bits.touchBY},
		{t.touchThumb, bits.touchThumb},
		{t.touchThumbRest, bits.touchThumbRest},
		{t.touchIndexTrigger, bits.touchIndexTrigger},
	})

	indexRaw := r.analog(t.indexTrigger).X
	handRaw := r.analog(t.handTrigger).X
	indexClicked := r.digital(t.buttonIndexTrigger)
	handClicked := r.digital(t.buttonHandTrigger)
	stickRaw := r.analog(t.thumbstick)

	if r.err != nil {
		return fmt.Errorf("touch %s: %w", t.hand, r.err)
	}

	if touches&bits.touchIndexTrigger == 0 {
		touches |= bits.touchIndexPointing
	}
	if touches&(bits.touchAX|bits.touchBY|bits.touchThumb|bits.touchThumbRest) == 0 {
		touches |= bits.touchThumbUp
	}

	stick := stickRaw.Sub(t.thumbstickCenter)

	index := indexRaw
	if indexClicked {
		index = 1
	}
	hand := handRaw
	if handClicked {
		hand = 1
	}

	h := t.hand
	state.Buttons |= buttons
	state.Touches |= touches
	state.IndexTrigger[h] = t.triggerDeadzone.ApplyScalar(index)
	state.HandTrigger[h] = t.triggerDeadzone.ApplyScalar(hand)
	state.Thumbstick[h] = t.thumbDeadzone.Apply(stick)
	state.IndexTriggerNoDeadzone[h] = index
	state.HandTriggerNoDeadzone[h] = hand
	state.ThumbstickNoDeadzone[h] = stick
	state.IndexTriggerRaw[h] = indexRaw
	state.HandTriggerRaw[h] = handRaw
	state.ThumbstickRaw[h] = stickRaw
	state.ControllerType |= t.Type()

	t.edges.merge(state)

	return nil
}

func (t *Touch) buttonMaps(bits touchBits) []buttonMap {
	return []buttonMap{
		{t.buttonAX, bits.buttonAX},
		{t.buttonBY, bits.buttonBY},
		{t.buttonThumb, bits.buttonThumb},
		{t.buttonEnter, bits.buttonEnter},
	}
}

// advance also runs the recenter gesture: its press edge captures the raw
// stick position as the new center.
func (t *Touch) advance(snap vr.Snapshot, connected bool) {
	r := newReader(snap, t.handle)
	buttons := r.buttons(t.buttonMaps(touchHandBits[t.hand]))
	stickRaw := r.analog(t.thumbstick)
	recenter := r.digital(t.recenterThumb)
	if !connected || r.err != nil {
		t.edges.hold()
		t.recenter.hold()
		return
	}

	t.edges.update(buttons)
	if pressed, _ := t.recenter.update(recenter); pressed {
		t.thumbstickCenter = stickRaw
	}
}

// SetVibration sets the constant vibration played when no samples are
// queued.
func (t *Touch) SetVibration(frequency, amplitude float32) error {
	t.haptics.SetConstant(frequency, amplitude)
	t.player.Wake()
	return nil
}

// SubmitVibration queues buf for playback. Samples beyond the free queue
// space are dropped.
func (t *Touch) SubmitVibration(buf ovr.HapticsBuffer) error {
	if len(buf.Samples) == 0 {
		return fmt.Errorf("touch %s: %w: no samples", t.hand, ovr.ErrInvalidBuffer)
	}
	if n := t.haptics.AddSamples(buf.Samples); n < len(buf.Samples) {
		log.Printf("Touch %s haptics queue full: dropped %d samples", t.hand, len(buf.Samples)-n)
	}
	t.player.Wake()
	return nil
}

func (t *Touch) VibrationState() ovr.HapticsPlaybackState {
	return t.haptics.State()
}

// HapticsState returns the lifecycle stage of the playback goroutine.
func (t *Touch) HapticsState() haptics.State {
	return t.player.State()
}

func (t *Touch) Close() {
	t.player.Close()
}

// pulse runs on the haptics goroutine.
func (t *Touch) pulse(p haptics.Pulse) error {
	if !t.handleValid.Load() {
		return nil
	}
	return t.actions.TriggerHapticVibration(t.vibration, 0, float32(p.Duration.Seconds()), p.Frequency, p.Amplitude, t.handle)
}
