// Package pose turns raw tracking samples into poses with derivatives and
// keeps the one-step history needed to compute accelerations.
package pose

import (
	"math"

	"github.com/soar/ovrinput/internal/ovr"
	"github.com/soar/ovrinput/internal/vr"
)

// Derive builds the pose state for raw. Position, orientation and both
// velocities come straight from the sample; accelerations are the change in
// velocity since prev divided by elapsed seconds, or zero when elapsed is
// not positive. An invalid sample reports prev's pose and velocities with
// zero acceleration.
//
// TimeInSeconds is left for the caller to set.
func Derive(raw vr.TrackedDevicePose, prev ovr.PoseStatef, elapsed float64) ovr.PoseStatef {
	if !raw.PoseIsValid {
		return ovr.PoseStatef{
			ThePose:         prev.ThePose,
			LinearVelocity:  prev.LinearVelocity,
			AngularVelocity: prev.AngularVelocity,
		}
	}

	var st ovr.PoseStatef
	st.ThePose = MatrixToPose(raw.DeviceToAbsoluteTracking)
	st.LinearVelocity = vec3(raw.Velocity)
	st.AngularVelocity = vec3(raw.AngularVelocity)

	if elapsed > 0 {
		inv := float32(1 / elapsed)
		st.LinearAcceleration = st.LinearVelocity.Sub(prev.LinearVelocity).Scale(inv)
		st.AngularAcceleration = st.AngularVelocity.Sub(prev.AngularVelocity).Scale(inv)
	}
	return st
}

// StatusFlags classifies raw as tracked, valid but not tracked, or invalid.
func StatusFlags(raw vr.TrackedDevicePose) ovr.StatusFlags {
	if !raw.PoseIsValid {
		return 0
	}

	const valid = ovr.StatusOrientationValid | ovr.StatusPositionValid
	if !raw.DeviceIsConnected {
		return valid
	}

	switch raw.TrackingResult {
	case vr.TrackingResultRunningOK:
		return valid | ovr.StatusOrientationTracked | ovr.StatusPositionTracked
	case vr.TrackingResultRunningOutOfRange,
		vr.TrackingResultCalibratingInProgress,
		vr.TrackingResultCalibratingOutOfRange:
		return valid | ovr.StatusOrientationTracked
	case vr.TrackingResultFallbackRotationOnly:
		return ovr.StatusOrientationValid | ovr.StatusOrientationTracked
	}
	return valid
}

// MatrixToPose extracts the rotation and translation of a rigid transform.
func MatrixToPose(m vr.Matrix34) ovr.Posef {
	return ovr.Posef{
		Orientation: matrixToQuat(m),
		Position:    ovr.Vector3f{X: m[0][3], Y: m[1][3], Z: m[2][3]},
	}
}

func matrixToQuat(m vr.Matrix34) ovr.Quatf {
	m00, m11, m22 := float64(m[0][0]), float64(m[1][1]), float64(m[2][2])

	q := ovr.Quatf{
		W: float32(math.Sqrt(math.Max(0, 1+m00+m11+m22)) / 2),
		X: float32(math.Sqrt(math.Max(0, 1+m00-m11-m22)) / 2),
		Y: float32(math.Sqrt(math.Max(0, 1-m00+m11-m22)) / 2),
		Z: float32(math.Sqrt(math.Max(0, 1-m00-m11+m22)) / 2),
	}
	q.X = copysign(q.X, m[2][1]-m[1][2])
	q.Y = copysign(q.Y, m[0][2]-m[2][0])
	q.Z = copysign(q.Z, m[1][0]-m[0][1])
	return q
}

func copysign(v, sign float32) float32 {
	return float32(math.Copysign(float64(v), float64(sign)))
}

func vec3(v [3]float32) ovr.Vector3f {
	return ovr.Vector3f{X: v[0], Y: v[1], Z: v[2]}
}
