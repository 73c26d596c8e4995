package vr

import (
	"fmt"
	"sync"
)

type simKey struct {
	action ActionHandle
	source InputValueHandle
}

// Pulse is one recorded TriggerHapticVibration call.
type Pulse struct {
	Action    ActionHandle
	Source    InputValueHandle
	Duration  float32
	Frequency float32
	Amplitude float32
}

// Sim is an in-memory ActionSystem and TrackingSystem. Tests and the
// daemon's simulated backend mutate its live state; UpdateActionState
// freezes that state into a Snapshot.
type Sim struct {
	mu sync.Mutex

	sets    map[string]ActionSetHandle
	actions map[string]ActionHandle
	sources map[string]InputValueHandle

	digital map[simKey]bool
	analog  map[simKey][2]float32
	pose    map[simKey]TrackedDevicePose

	// the previous snapshot's digital values, for Changed
	lastDigital map[simKey]bool

	seconds  float64
	poses    [MaxTrackedDeviceCount]TrackedDevicePose
	roles    map[ControllerRole]TrackedDeviceIndex
	trackers []TrackedDeviceIndex

	pulses  []Pulse
	onPulse func(Pulse)

	// UpdateErr and ReadErr, when set, make the next calls fail.
	UpdateErr error
	ReadErr   error

	updates int
}

// NewSim returns a Sim with the two hand sources already registered. Action
// and source names are bound on first lookup.
func NewSim() *Sim {
	s := &Sim{
		sets:        make(map[string]ActionSetHandle),
		actions:     make(map[string]ActionHandle),
		sources:     make(map[string]InputValueHandle),
		digital:     make(map[simKey]bool),
		analog:      make(map[simKey][2]float32),
		pose:        make(map[simKey]TrackedDevicePose),
		lastDigital: make(map[simKey]bool),
		roles: map[ControllerRole]TrackedDeviceIndex{
			RoleLeftHand:  TrackedDeviceIndexInvalid,
			RoleRightHand: TrackedDeviceIndexInvalid,
		},
	}
	s.sources["/user/hand/left"] = 1
	s.sources["/user/hand/right"] = 2
	return s
}

func (s *Sim) ActionSetHandle(name string) (ActionSetHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sets[name]; ok {
		return h, nil
	}
	h := ActionSetHandle(len(s.sets) + 1)
	s.sets[name] = h
	return h, nil
}

func (s *Sim) ActionHandle(name string) (ActionHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.action(name), nil
}

func (s *Sim) action(name string) ActionHandle {
	if h, ok := s.actions[name]; ok {
		return h
	}
	h := ActionHandle(len(s.actions) + 1)
	s.actions[name] = h
	return h
}

func (s *Sim) InputSourceHandle(path string) (InputValueHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source(path), nil
}

func (s *Sim) source(path string) InputValueHandle {
	if path == "" {
		return InvalidInputValueHandle
	}
	if h, ok := s.sources[path]; ok {
		return h
	}
	h := InputValueHandle(len(s.sources) + 1)
	s.sources[path] = h
	return h
}

// SetDigital sets the live value of a digital action. An empty source
// stores an unrestricted value.
func (s *Sim) SetDigital(action, source string, state bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digital[simKey{s.action(action), s.source(source)}] = state
}

// SetAnalog sets the live value of an analog action.
func (s *Sim) SetAnalog(action, source string, x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analog[simKey{s.action(action), s.source(source)}] = [2]float32{x, y}
}

// SetPoseAction sets the live value of a pose action.
func (s *Sim) SetPoseAction(action, source string, pose TrackedDevicePose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pose[simKey{s.action(action), s.source(source)}] = pose
}

// SetDevicePose places a raw pose in a tracking slot.
func (s *Sim) SetDevicePose(index TrackedDeviceIndex, pose TrackedDevicePose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses[index] = pose
}

// SetRole assigns a controller role to a tracking slot.
func (s *Sim) SetRole(role ControllerRole, index TrackedDeviceIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role] = index
}

// SetGenericTrackers sets the slots reported by GenericTrackerIndices.
func (s *Sim) SetGenericTrackers(indices ...TrackedDeviceIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers = append([]TrackedDeviceIndex(nil), indices...)
}

// SetSeconds sets the tracking clock.
func (s *Sim) SetSeconds(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seconds = t
}

// OnPulse installs a hook called, outside the lock, for every pulse.
func (s *Sim) OnPulse(f func(Pulse)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPulse = f
}

// Pulses returns a copy of every pulse recorded so far.
func (s *Sim) Pulses() []Pulse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pulse(nil), s.pulses...)
}

// Updates returns how many times UpdateActionState has succeeded.
func (s *Sim) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

func (s *Sim) UpdateActionState(set ActionSetHandle) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	known := false
	for _, h := range s.sets {
		if h == set {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("action set %d: %w", set, ErrUnknownAction)
	}

	snap := &simSnapshot{
		digital: make(map[simKey]DigitalActionData, len(s.digital)),
		analog:  make(map[simKey]AnalogActionData, len(s.analog)),
		pose:    make(map[simKey]PoseActionData, len(s.pose)),
		err:     s.ReadErr,
	}
	for k, v := range s.digital {
		snap.digital[k] = DigitalActionData{Active: true, State: v, Changed: v != s.lastDigital[k]}
		s.lastDigital[k] = v
	}
	for k, v := range s.analog {
		snap.analog[k] = AnalogActionData{Active: true, X: v[0], Y: v[1]}
	}
	for k, v := range s.pose {
		snap.pose[k] = PoseActionData{Active: v.DeviceIsConnected, Pose: v}
	}
	s.updates++
	return snap, nil
}

func (s *Sim) TriggerHapticVibration(action ActionHandle, _, duration, frequency, amplitude float32, restrict InputValueHandle) error {
	s.mu.Lock()
	p := Pulse{
		Action:    action,
		Source:    restrict,
		Duration:  duration,
		Frequency: frequency,
		Amplitude: amplitude,
	}
	s.pulses = append(s.pulses, p)
	hook := s.onPulse
	s.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return nil
}

func (s *Sim) Seconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seconds
}

func (s *Sim) DeviceIndexForRole(role ControllerRole) TrackedDeviceIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.roles[role]; ok {
		return idx
	}
	return TrackedDeviceIndexInvalid
}

func (s *Sim) IsDeviceConnected(index TrackedDeviceIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= MaxTrackedDeviceCount {
		return false
	}
	return s.poses[index].DeviceIsConnected
}

func (s *Sim) GenericTrackerIndices() []TrackedDeviceIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TrackedDeviceIndex(nil), s.trackers...)
}

// DevicePoses ignores the prediction interval and returns the live poses.
func (s *Sim) DevicePoses(_ float32, out []TrackedDevicePose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy(out, s.poses[:])
}

type simSnapshot struct {
	digital map[simKey]DigitalActionData
	analog  map[simKey]AnalogActionData
	pose    map[simKey]PoseActionData
	err     error
}

func (ss *simSnapshot) Digital(action ActionHandle, restrict InputValueHandle) (DigitalActionData, error) {
	if ss.err != nil {
		return DigitalActionData{}, ss.err
	}
	return ss.digital[simKey{action, restrict}], nil
}

func (ss *simSnapshot) Analog(action ActionHandle, restrict InputValueHandle) (AnalogActionData, error) {
	if ss.err != nil {
		return AnalogActionData{}, ss.err
	}
	return ss.analog[simKey{action, restrict}], nil
}

func (ss *simSnapshot) Pose(action ActionHandle, restrict InputValueHandle) (PoseActionData, error) {
	if ss.err != nil {
		return PoseActionData{}, ss.err
	}
	return ss.pose[simKey{action, restrict}], nil
}
