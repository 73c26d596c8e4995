// Package vr describes the collaborators the input core consumes: the
// action-binding system that resolves and refreshes named actions, and the
// tracking system that reports device poses and connection state.
package vr

import "errors"

// ActionSetHandle identifies a bound group of actions.
type ActionSetHandle uint64

// ActionHandle identifies one named action. Handles are bound once when the
// manifest is loaded and never change afterwards.
type ActionHandle uint64

// InputValueHandle identifies an input source such as "/user/hand/left".
// It restricts action reads to one physical device.
type InputValueHandle uint64

// InvalidInputValueHandle matches any source when used as a restriction.
const InvalidInputValueHandle InputValueHandle = 0

// TrackedDeviceIndex is the tracking system's slot number for a device.
type TrackedDeviceIndex uint32

const (
	// MaxTrackedDeviceCount bounds every TrackedDeviceIndex.
	MaxTrackedDeviceCount = 64

	TrackedDeviceIndexHMD     TrackedDeviceIndex = 0
	TrackedDeviceIndexInvalid TrackedDeviceIndex = 0xffffffff
)

// ControllerRole is the role the tracking system assigned to a controller.
type ControllerRole int

const (
	RoleInvalid ControllerRole = iota
	RoleLeftHand
	RoleRightHand
)

// TrackingResult classifies the quality of a raw pose.
type TrackingResult int

const (
	TrackingResultUninitialized         TrackingResult = 1
	TrackingResultCalibratingInProgress TrackingResult = 100
	TrackingResultCalibratingOutOfRange TrackingResult = 101
	TrackingResultRunningOK             TrackingResult = 200
	TrackingResultRunningOutOfRange     TrackingResult = 201
	TrackingResultFallbackRotationOnly  TrackingResult = 300
)

// Matrix34 is a row-major 3x4 rigid transform: rotation in the left 3x3,
// translation in the last column.
type Matrix34 [3][4]float32

// IdentityMatrix34 is the transform of a device at the origin.
var IdentityMatrix34 = Matrix34{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
}

// TrackedDevicePose is one raw pose sample.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking Matrix34
	Velocity                 [3]float32
	AngularVelocity          [3]float32
	TrackingResult           TrackingResult
	PoseIsValid              bool
	DeviceIsConnected        bool
}

type DigitalActionData struct {
	Active  bool
	State   bool
	Changed bool
}

type AnalogActionData struct {
	Active bool
	X, Y   float32
}

type PoseActionData struct {
	Active bool
	Pose   TrackedDevicePose
}

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownSource = errors.New("unknown input source")
	ErrWrongType     = errors.New("action has the wrong type")
)

// Snapshot is the action state frozen by one UpdateActionState call. Every
// read during a frame goes through the same Snapshot so that all devices
// observe the same instant.
type Snapshot interface {
	Digital(action ActionHandle, restrict InputValueHandle) (DigitalActionData, error)
	Analog(action ActionHandle, restrict InputValueHandle) (AnalogActionData, error)
	Pose(action ActionHandle, restrict InputValueHandle) (PoseActionData, error)
}

// ActionSystem resolves bound actions and refreshes their values.
type ActionSystem interface {
	ActionSetHandle(name string) (ActionSetHandle, error)
	ActionHandle(name string) (ActionHandle, error)
	InputSourceHandle(path string) (InputValueHandle, error)

	// UpdateActionState refreshes every action of the set in one batch.
	UpdateActionState(set ActionSetHandle) (Snapshot, error)

	// TriggerHapticVibration issues a single low-level pulse. Frequency is
	// in Hz and amplitude in the range 0..1.
	TriggerHapticVibration(action ActionHandle, startSecondsFromNow, durationSeconds, frequency, amplitude float32, restrict InputValueHandle) error
}

// TrackingSystem reports device poses and connection state.
type TrackingSystem interface {
	// Seconds is the tracking clock, the time base of absolute times.
	Seconds() float64

	DeviceIndexForRole(role ControllerRole) TrackedDeviceIndex
	IsDeviceConnected(index TrackedDeviceIndex) bool

	// GenericTrackerIndices lists connected trackers that are neither the
	// HMD nor a hand controller, in a stable order.
	GenericTrackerIndices() []TrackedDeviceIndex

	// DevicePoses fills out with every slot's pose predicted
	// predictSeconds into the future.
	DevicePoses(predictSeconds float32, out []TrackedDevicePose)
}
