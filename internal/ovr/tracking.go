package ovr

// StatusFlags describe how much of a pose can be trusted.
type StatusFlags uint32

const (
	StatusOrientationTracked StatusFlags = 0x0001
	StatusPositionTracked    StatusFlags = 0x0002
	StatusOrientationValid   StatusFlags = 0x0004
	StatusPositionValid      StatusFlags = 0x0008
)

// TrackedDeviceType selects a tracked object for DevicePoses.
type TrackedDeviceType uint32

const (
	TrackedDeviceHMD     TrackedDeviceType = 0x0001
	TrackedDeviceLTouch  TrackedDeviceType = 0x0002
	TrackedDeviceRTouch  TrackedDeviceType = 0x0004
	TrackedDeviceTouch   TrackedDeviceType = TrackedDeviceLTouch | TrackedDeviceRTouch
	TrackedDeviceObject0 TrackedDeviceType = 0x0010
	TrackedDeviceObject1 TrackedDeviceType = 0x0020
	TrackedDeviceObject2 TrackedDeviceType = 0x0040
	TrackedDeviceObject3 TrackedDeviceType = 0x0080
	TrackedDeviceAll     TrackedDeviceType = 0xffff
)

// TrackingState is the head and hand poses for one instant.
type TrackingState struct {
	HeadPose         PoseStatef             `json:"headPose"`
	StatusFlags      StatusFlags            `json:"statusFlags"`
	HandPoses        [HandCount]PoseStatef  `json:"handPoses"`
	HandStatusFlags  [HandCount]StatusFlags `json:"handStatusFlags"`
	CalibratedOrigin Posef                  `json:"calibratedOrigin"`
}
