// Package gamepad exposes a physical joystick through the action and
// tracking interfaces the input layer reads. The joystick itself is polled
// elsewhere and pushed in with SetState.
package gamepad

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/soar/ovrinput/internal/haptics"
	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

var digitalBindings = map[string]uint32{
	input.ActionXBoxA:         ovr.ButtonA,
	input.ActionXBoxB:         ovr.ButtonB,
	input.ActionXBoxX:         ovr.ButtonX,
	input.ActionXBoxY:         ovr.ButtonY,
	input.ActionXBoxLThumb:    ovr.ButtonLThumb,
	input.ActionXBoxRThumb:    ovr.ButtonRThumb,
	input.ActionXBoxLShoulder: ovr.ButtonLShoulder,
	input.ActionXBoxRShoulder: ovr.ButtonRShoulder,
	input.ActionXBoxUp:        ovr.ButtonUp,
	input.ActionXBoxDown:      ovr.ButtonDown,
	input.ActionXBoxLeft:      ovr.ButtonLeft,
	input.ActionXBoxRight:     ovr.ButtonRight,
	input.ActionXBoxEnter:     ovr.ButtonEnter,
	input.ActionXBoxBack:      ovr.ButtonBack,
}

var analogBindings = map[string]func(*State) ovr.Vector2f{
	input.ActionXBoxLIndexTrigger: func(s *State) ovr.Vector2f { return ovr.Vector2f{X: s.Triggers[ovr.HandLeft]} },
	input.ActionXBoxRIndexTrigger: func(s *State) ovr.Vector2f { return ovr.Vector2f{X: s.Triggers[ovr.HandRight]} },
	input.ActionXBoxLThumbstick:   func(s *State) ovr.Vector2f { return s.Sticks[ovr.HandLeft] },
	input.ActionXBoxRThumbstick:   func(s *State) ovr.Vector2f { return s.Sticks[ovr.HandRight] },
}

// System serves the gamepad actions of the manifest from the last pushed
// joystick state. Actions it has no binding for read as inactive, so only
// the gamepad device ever reports connected. It has no tracked devices.
type System struct {
	mu sync.Mutex

	start  time.Time
	state  State
	names  []string // handle-1 -> action name
	byName map[string]vr.ActionHandle

	sources map[string]vr.InputValueHandle

	// button state at the previous UpdateActionState, for Changed
	lastButtons uint32

	rumble func(Rumble) error
}

// NewSystem returns a System that sends gamepad vibration to rumble. A nil
// rumble discards vibration.
func NewSystem(rumble func(Rumble) error) *System {
	return &System{
		start:   time.Now(),
		byName:  make(map[string]vr.ActionHandle),
		sources: make(map[string]vr.InputValueHandle),
		rumble:  rumble,
	}
}

// SetState replaces the live joystick state. It is called by the poller.
func (s *System) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Connected != s.state.Connected {
		if st.Connected {
			log.Printf("Gamepad active: %s (mapping=%s)", st.Name, st.Mapping)
		} else {
			log.Println("Gamepad inactive")
		}
	}
	s.state = st
}

// State returns the live joystick state.
func (s *System) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *System) ActionSetHandle(name string) (vr.ActionSetHandle, error) {
	if name != input.ActionSetName {
		return 0, fmt.Errorf("action set %s: %w", name, vr.ErrUnknownAction)
	}
	return 1, nil
}

func (s *System) ActionHandle(name string) (vr.ActionHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.byName[name]; ok {
		return h, nil
	}
	s.names = append(s.names, name)
	h := vr.ActionHandle(len(s.names))
	s.byName[name] = h
	return h, nil
}

func (s *System) InputSourceHandle(path string) (vr.InputValueHandle, error) {
	if path == "" {
		return vr.InvalidInputValueHandle, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sources[path]; ok {
		return h, nil
	}
	h := vr.InputValueHandle(len(s.sources) + 1)
	s.sources[path] = h
	return h, nil
}

func (s *System) name(action vr.ActionHandle) (string, bool) {
	if action == 0 || int(action) > len(s.names) {
		return "", false
	}
	return s.names[action-1], true
}

func (s *System) UpdateActionState(set vr.ActionSetHandle) (vr.Snapshot, error) {
	if set != 1 {
		return nil, fmt.Errorf("action set %d: %w", set, vr.ErrUnknownAction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &snapshot{
		state:   s.state,
		changed: s.state.Buttons ^ s.lastButtons,
		names:   append([]string(nil), s.names...),
	}
	s.lastButtons = s.state.Buttons
	return snap, nil
}

func (s *System) TriggerHapticVibration(action vr.ActionHandle, _, duration, frequency, amplitude float32, restrict vr.InputValueHandle) error {
	s.mu.Lock()
	name, ok := s.name(action)
	connected := s.state.Connected
	s.mu.Unlock()

	if !ok || name != input.ActionXBoxVibration || restrict != vr.InvalidInputValueHandle {
		return fmt.Errorf("vibration action %d: %w", action, vr.ErrUnknownAction)
	}
	if !connected {
		return ovr.ErrNotConnected
	}
	if s.rumble == nil {
		return nil
	}
	return s.rumble(RumbleFor(duration, frequency, amplitude, haptics.MaxFrequency))
}

func (s *System) Seconds() float64 {
	return time.Since(s.start).Seconds()
}

func (s *System) DeviceIndexForRole(vr.ControllerRole) vr.TrackedDeviceIndex {
	return vr.TrackedDeviceIndexInvalid
}

func (s *System) IsDeviceConnected(vr.TrackedDeviceIndex) bool {
	return false
}

func (s *System) GenericTrackerIndices() []vr.TrackedDeviceIndex {
	return nil
}

func (s *System) DevicePoses(_ float32, out []vr.TrackedDevicePose) {
	clear(out)
}

// snapshot is one frame of joystick state. It is immutable.
type snapshot struct {
	state   State
	changed uint32
	names   []string
}

func (ss *snapshot) lookup(action vr.ActionHandle) string {
	if action == 0 || int(action) > len(ss.names) {
		return ""
	}
	return ss.names[action-1]
}

func (ss *snapshot) Digital(action vr.ActionHandle, restrict vr.InputValueHandle) (vr.DigitalActionData, error) {
	name := ss.lookup(action)
	if _, ok := analogBindings[name]; ok {
		return vr.DigitalActionData{}, fmt.Errorf("%s: %w", name, vr.ErrWrongType)
	}
	bit, ok := digitalBindings[name]
	if !ok || restrict != vr.InvalidInputValueHandle {
		return vr.DigitalActionData{}, nil
	}
	return vr.DigitalActionData{
		Active:  ss.state.Connected,
		State:   ss.state.Buttons&bit != 0,
		Changed: ss.changed&bit != 0,
	}, nil
}

func (ss *snapshot) Analog(action vr.ActionHandle, restrict vr.InputValueHandle) (vr.AnalogActionData, error) {
	name := ss.lookup(action)
	if _, ok := digitalBindings[name]; ok {
		return vr.AnalogActionData{}, fmt.Errorf("%s: %w", name, vr.ErrWrongType)
	}
	read, ok := analogBindings[name]
	if !ok || restrict != vr.InvalidInputValueHandle {
		return vr.AnalogActionData{}, nil
	}
	v := read(&ss.state)
	return vr.AnalogActionData{Active: ss.state.Connected, X: v.X, Y: v.Y}, nil
}

func (ss *snapshot) Pose(vr.ActionHandle, vr.InputValueHandle) (vr.PoseActionData, error) {
	return vr.PoseActionData{}, nil
}
