package ovr

import "math"

type Vector2f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Length returns the euclidean magnitude of the vector.
func (v Vector2f) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

func (v Vector2f) Sub(o Vector2f) Vector2f {
	return Vector2f{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2f) Scale(s float32) Vector2f {
	return Vector2f{X: v.X * s, Y: v.Y * s}
}

type Vector3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (v Vector3f) Sub(o Vector3f) Vector3f {
	return Vector3f{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3f) Scale(s float32) Vector3f {
	return Vector3f{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Quatf is a rotation quaternion.
type Quatf struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quatf{W: 1}

type Posef struct {
	Orientation Quatf    `json:"orientation"`
	Position    Vector3f `json:"position"`
}

// PoseStatef is a pose plus its first and second derivatives.
type PoseStatef struct {
	ThePose             Posef    `json:"pose"`
	AngularVelocity     Vector3f `json:"angularVelocity"`
	LinearVelocity      Vector3f `json:"linearVelocity"`
	AngularAcceleration Vector3f `json:"angularAcceleration"`
	LinearAcceleration  Vector3f `json:"linearAcceleration"`
	TimeInSeconds       float64  `json:"time"`
}
