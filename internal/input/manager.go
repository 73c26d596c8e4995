package input

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/soar/ovrinput/internal/haptics"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/pose"
	"github.com/soar/ovrinput/internal/vr"
)

// Options tune the devices created by a Manager.
type Options struct {
	ThumbstickDeadzone Deadzone
	TriggerDeadzone    Deadzone

	HapticsSampleRate        int
	ConstantVibrationTimeout time.Duration
	HapticsJoinTimeout       time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		ThumbstickDeadzone:       DefaultThumbstickDeadzone,
		TriggerDeadzone:          DefaultTriggerDeadzone,
		HapticsSampleRate:        ovr.HapticsSampleRate,
		ConstantVibrationTimeout: haptics.DefaultConstantTimeout,
		HapticsJoinTimeout:       haptics.DefaultJoinTimeout,
	}
}

// Manager owns every input device and the pose history. Apart from the
// haptics playback goroutines owned by the devices, a Manager must be used
// from a single goroutine. UpdateInputState must be called once per frame
// before any other query for that frame.
type Manager struct {
	actions  vr.ActionSystem
	tracking vr.TrackingSystem

	actionSet  vr.ActionSetHandle
	actionPose vr.ActionHandle
	hands      [ovr.HandCount]vr.InputValueHandle

	devices []Device
	snap    vr.Snapshot

	poses *pose.Cache
	raw   [vr.MaxTrackedDeviceCount]vr.TrackedDevicePose

	connected atomic.Uint32
}

// NewManager binds the action set and creates one device per controller
// family: left and right Touch, Remote and Gamepad.
func NewManager(actions vr.ActionSystem, tracking vr.TrackingSystem, opts Options) (*Manager, error) {
	m := &Manager{
		actions:  actions,
		tracking: tracking,
		poses:    pose.NewCache(),
	}

	set, err := actions.ActionSetHandle(ActionSetName)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", ActionSetName, err)
	}
	m.actionSet = set

	b := &binder{actions: actions}
	m.actionPose = b.action(ActionPose)
	m.hands[ovr.HandLeft] = b.source(SourceLeftHand)
	m.hands[ovr.HandRight] = b.source(SourceRightHand)
	if b.err != nil {
		return nil, b.err
	}

	for _, h := range []ovr.Hand{ovr.HandLeft, ovr.HandRight} {
		t, err := newTouch(h, actions, tracking, opts)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.devices = append(m.devices, t)
	}

	r, err := newRemote(actions)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.devices = append(m.devices, r)

	g, err := newGamepad(actions, opts)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.devices = append(m.devices, g)

	return m, nil
}

// Devices returns every device, connected or not.
func (m *Manager) Devices() []Device {
	return m.devices
}

// Seconds returns the tracking clock.
func (m *Manager) Seconds() float64 {
	return m.tracking.Seconds()
}

// Close closes every device. Haptics goroutines have exited when Close
// returns.
func (m *Manager) Close() {
	for _, d := range m.devices {
		d.Close()
	}
}

// UpdateInputState refreshes the action state of every device in one batch
// and latches each device's button transitions. All queries until the next
// call observe this snapshot and these transitions.
func (m *Manager) UpdateInputState() error {
	snap, err := m.actions.UpdateActionState(m.actionSet)
	if err != nil {
		m.snap = nil
		for _, d := range m.devices {
			d.advance(nil, false)
		}
		return fmt.Errorf("update action state: %w: %w", ovr.ErrInternalQueryFailure, err)
	}
	m.snap = snap
	ct := m.UpdateConnectedControllers()
	for _, d := range m.devices {
		d.advance(m.snap, ct&d.Type() != 0)
	}
	return nil
}

// UpdateConnectedControllers recomputes the connected controller mask.
func (m *Manager) UpdateConnectedControllers() ovr.ControllerType {
	var ct ovr.ControllerType
	for _, d := range m.devices {
		if d.Connected(m.snap) {
			ct |= d.Type()
		}
	}
	if prev := ovr.ControllerType(m.connected.Swap(uint32(ct))); prev != ct {
		log.Printf("Connected controllers: %#x -> %#x", uint32(prev), uint32(ct))
	}
	return ct
}

// ConnectedControllers returns the mask computed by the last update. It is
// safe to call from any goroutine.
func (m *Manager) ConnectedControllers() ovr.ControllerType {
	return ovr.ControllerType(m.connected.Load())
}

// matching returns the connected devices whose type intersects ct.
func (m *Manager) matching(ct ovr.ControllerType) []Device {
	var ds []Device
	for _, d := range m.devices {
		if d.Type()&ct != 0 && d.Connected(m.snap) {
			ds = append(ds, d)
		}
	}
	return ds
}

// InputState fills state with the merged input of every connected device
// matching ct.
func (m *Manager) InputState(ct ovr.ControllerType, state *ovr.InputState) error {
	ds := m.matching(ct)
	if len(ds) == 0 {
		return fmt.Errorf("input state %s: %w", ct, ovr.ErrNotConnected)
	}

	*state = ovr.InputState{TimeInSeconds: m.tracking.Seconds()}
	for _, d := range ds {
		if err := d.InputState(m.snap, state); err != nil {
			return err
		}
	}
	return nil
}

// SetControllerVibration sets a constant vibration on every connected
// device matching ct. frequency and amplitude are normalised to 0..1.
func (m *Manager) SetControllerVibration(ct ovr.ControllerType, frequency, amplitude float32) error {
	ds := m.matching(ct)
	if len(ds) == 0 {
		return fmt.Errorf("set vibration %s: %w", ct, ovr.ErrNotConnected)
	}
	for _, d := range ds {
		if err := d.SetVibration(frequency, amplitude); err != nil {
			return err
		}
	}
	return nil
}

// SubmitControllerVibration queues buf on every connected device matching
// ct.
func (m *Manager) SubmitControllerVibration(ct ovr.ControllerType, buf ovr.HapticsBuffer) error {
	if len(buf.Samples) == 0 || len(buf.Samples) > ovr.HapticsBufferSamplesMax {
		return fmt.Errorf("submit vibration: %w: %d samples", ovr.ErrInvalidBuffer, len(buf.Samples))
	}
	if buf.SubmitMode != ovr.HapticsBufferSubmitEnqueue {
		return fmt.Errorf("submit vibration: %w: submit mode %d", ovr.ErrInvalidBuffer, buf.SubmitMode)
	}

	ds := m.matching(ct)
	if len(ds) == 0 {
		return fmt.Errorf("submit vibration %s: %w", ct, ovr.ErrNotConnected)
	}
	for _, d := range ds {
		if err := d.SubmitVibration(buf); err != nil {
			return err
		}
	}
	return nil
}

// ControllerVibrationState returns the playback state of the first
// connected device matching ct.
func (m *Manager) ControllerVibrationState(ct ovr.ControllerType) (ovr.HapticsPlaybackState, error) {
	ds := m.matching(ct)
	if len(ds) == 0 {
		return ovr.HapticsPlaybackState{}, fmt.Errorf("vibration state %s: %w", ct, ovr.ErrNotConnected)
	}
	return ds[0].VibrationState(), nil
}

// TouchHapticsDesc describes the buffered haptics of ct. Only Touch
// controllers have buffered haptics; other types get a zero descriptor.
func (m *Manager) TouchHapticsDesc(ct ovr.ControllerType) ovr.TouchHapticsDesc {
	if ct != ovr.ControllerTypeLTouch && ct != ovr.ControllerTypeRTouch {
		return ovr.TouchHapticsDesc{}
	}
	return ovr.DefaultTouchHapticsDesc
}

// refreshPoses fetches every slot's raw pose predicted for absTime.
func (m *Manager) refreshPoses(absTime float64) {
	predict := absTime - m.tracking.Seconds()
	if predict < 0 {
		predict = 0
	}
	m.tracking.DevicePoses(float32(predict), m.raw[:])
}

func (m *Manager) deviceIndex(t ovr.TrackedDeviceType) (vr.TrackedDeviceIndex, bool) {
	switch t {
	case ovr.TrackedDeviceHMD:
		return vr.TrackedDeviceIndexHMD, true
	case ovr.TrackedDeviceLTouch:
		return m.tracking.DeviceIndexForRole(vr.RoleLeftHand), true
	case ovr.TrackedDeviceRTouch:
		return m.tracking.DeviceIndexForRole(vr.RoleRightHand), true
	case ovr.TrackedDeviceObject0, ovr.TrackedDeviceObject1, ovr.TrackedDeviceObject2, ovr.TrackedDeviceObject3:
		n := 0
		for o := ovr.TrackedDeviceObject0; o != t; o <<= 1 {
			n++
		}
		trackers := m.tracking.GenericTrackerIndices()
		if n < len(trackers) {
			return trackers[n], true
		}
		return vr.TrackedDeviceIndexInvalid, true
	}
	return vr.TrackedDeviceIndexInvalid, false
}

// DevicePoses writes the pose of each requested device type to the same
// position in out, predicted for absTime. Devices that are not present
// get an untracked identity pose. When status is not nil it receives the
// matching status flags, zero for absent devices and dropped samples.
func (m *Manager) DevicePoses(types []ovr.TrackedDeviceType, absTime float64, out []ovr.PoseStatef, status []ovr.StatusFlags) error {
	if len(out) < len(types) {
		return fmt.Errorf("device poses: %w: %d types, room for %d", ovr.ErrInvalidParameter, len(types), len(out))
	}
	if status != nil && len(status) < len(types) {
		return fmt.Errorf("device poses: %w: %d types, room for %d flags", ovr.ErrInvalidParameter, len(types), len(status))
	}

	indices := make([]vr.TrackedDeviceIndex, len(types))
	for i, t := range types {
		idx, ok := m.deviceIndex(t)
		if !ok {
			return fmt.Errorf("device poses: %w: device type %#x", ovr.ErrInvalidParameter, uint32(t))
		}
		indices[i] = idx
	}

	m.refreshPoses(absTime)
	for i, idx := range indices {
		if idx == vr.TrackedDeviceIndexInvalid || idx >= vr.MaxTrackedDeviceCount {
			out[i] = ovr.PoseStatef{
				ThePose:       ovr.Posef{Orientation: ovr.IdentityQuat},
				TimeInSeconds: absTime,
			}
			if status != nil {
				status[i] = 0
			}
			continue
		}
		out[i] = m.poses.UpdateDevice(idx, m.raw[idx], absTime)
		if status != nil {
			status[i] = pose.StatusFlags(m.raw[idx])
		}
	}
	return nil
}

// TrackingState returns the head pose and both hand poses predicted for
// absTime. Hands are read through the pose action of this frame's
// snapshot; a hand without pose data keeps its previous pose and reports
// no status flags.
func (m *Manager) TrackingState(absTime float64) ovr.TrackingState {
	var ts ovr.TrackingState
	ts.CalibratedOrigin.Orientation = ovr.IdentityQuat

	m.refreshPoses(absTime)
	head := m.raw[vr.TrackedDeviceIndexHMD]
	ts.HeadPose = m.poses.UpdateDevice(vr.TrackedDeviceIndexHMD, head, absTime)
	ts.StatusFlags = pose.StatusFlags(head)

	for h := ovr.HandLeft; h < ovr.HandCount; h++ {
		var data vr.PoseActionData
		var err error
		if m.snap != nil {
			data, err = m.snap.Pose(m.actionPose, m.hands[h])
		}
		if m.snap == nil || err != nil || !data.Active {
			ts.HandPoses[h], _ = m.poses.Hand(h)
			continue
		}
		ts.HandPoses[h] = m.poses.UpdateHand(h, data.Pose, absTime)
		ts.HandStatusFlags[h] = pose.StatusFlags(data.Pose)
	}
	return ts
}
