package monitor

import (
	"math"
	"time"

	"github.com/soar/ovrinput/internal/input"
	"github.com/soar/ovrinput/internal/vr"
)

const (
	simLeftHand  vr.TrackedDeviceIndex = 1
	simRightHand vr.TrackedDeviceIndex = 2
)

// SimDriver animates a vr.Sim so the daemon has something to show without
// hardware: the head turns slowly, the hands circle in front of it, the
// sticks and triggers sweep, and A/X are tapped every two seconds.
type SimDriver struct {
	sim   *vr.Sim
	start time.Time
}

// NewSimDriver connects a headset, both Touch controllers and a gamepad to
// sim.
func NewSimDriver(sim *vr.Sim) *SimDriver {
	sim.SetRole(vr.RoleLeftHand, simLeftHand)
	sim.SetRole(vr.RoleRightHand, simRightHand)
	d := &SimDriver{sim: sim, start: time.Now()}
	d.Advance(0)
	return d
}

// Tick advances the animation to the wall clock time since creation.
func (d *SimDriver) Tick(float64) {
	d.Advance(time.Since(d.start).Seconds())
}

func yawPose(yaw, x, y, z float64, vel [3]float32, angular float32) vr.TrackedDevicePose {
	s, c := math.Sincos(yaw)
	return vr.TrackedDevicePose{
		DeviceToAbsoluteTracking: vr.Matrix34{
			{float32(c), 0, float32(s), float32(x)},
			{0, 1, 0, float32(y)},
			{float32(-s), 0, float32(c), float32(z)},
		},
		Velocity:          vel,
		AngularVelocity:   [3]float32{0, angular, 0},
		TrackingResult:    vr.TrackingResultRunningOK,
		PoseIsValid:       true,
		DeviceIsConnected: true,
	}
}

// Advance sets every simulated device to its state at t seconds.
func (d *SimDriver) Advance(t float64) {
	sim := d.sim
	sim.SetSeconds(t)

	const headRate = 0.3
	yaw := 0.4 * math.Sin(headRate*t)
	yawRate := float32(0.4 * headRate * math.Cos(headRate*t))
	sim.SetDevicePose(vr.TrackedDeviceIndexHMD, yawPose(yaw, 0, 1.7, 0, [3]float32{}, yawRate))

	const handRate = 1.5
	s, c := math.Sincos(handRate * t)
	r := 0.1
	for i, idx := range []vr.TrackedDeviceIndex{simLeftHand, simRightHand} {
		side := float64(2*i - 1) // -1 left, +1 right
		x := side*0.2 + r*c
		y := 1.2 + r*s
		vel := [3]float32{float32(-r * handRate * s), float32(r * handRate * c), 0}
		p := yawPose(0, x, y, -0.35, vel, 0)
		sim.SetDevicePose(idx, p)

		source := input.SourceLeftHand
		if idx == simRightHand {
			source = input.SourceRightHand
		}
		sim.SetPoseAction(input.ActionPose, source, p)
		sim.SetAnalog(input.ActionTouchThumbstick, source, float32(c), float32(s))
		sim.SetAnalog(input.ActionTouchIndexTrigger, source, float32(0.5+0.5*s), 0)
		sim.SetAnalog(input.ActionTouchHandTrigger, source, float32(0.5-0.5*s), 0)
	}

	tap := math.Mod(t, 2) < 0.5
	sim.SetDigital(input.ActionTouchButtonAX, input.SourceLeftHand, tap)
	sim.SetDigital(input.ActionTouchTouchAX, input.SourceLeftHand, tap)
	sim.SetDigital(input.ActionTouchButtonAX, input.SourceRightHand, !tap)
	sim.SetDigital(input.ActionTouchTouchAX, input.SourceRightHand, !tap)

	sim.SetDigital(input.ActionXBoxA, "", tap)
	sim.SetAnalog(input.ActionXBoxLThumbstick, "", float32(s), float32(c))
	sim.SetAnalog(input.ActionXBoxRIndexTrigger, "", float32(0.5+0.5*c), 0)
}
