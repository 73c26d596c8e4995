package input

import (
	"math"
	"testing"

	"github.com/soar/ovrinput/internal/ovr"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestApplyDeadzone(t *testing.T) {
	const low, high = 0.2, 0.8

	tests := []struct {
		name string
		in   ovr.Vector2f
		want ovr.Vector2f
	}{
		{"zero", ovr.Vector2f{}, ovr.Vector2f{}},
		{"inside inner radius", ovr.Vector2f{X: 0.1, Y: 0.1}, ovr.Vector2f{}},
		{"on inner radius", ovr.Vector2f{X: 0.2}, ovr.Vector2f{}},
		{"midway", ovr.Vector2f{Y: -0.5}, ovr.Vector2f{Y: -0.5}},
		{"on outer radius", ovr.Vector2f{X: 0.8}, ovr.Vector2f{X: 1}},
		{"beyond outer radius", ovr.Vector2f{X: 0.6, Y: 0.8}, ovr.Vector2f{X: 0.6, Y: 0.8}},
		{"beyond outer radius scaled", ovr.Vector2f{X: -0.9}, ovr.Vector2f{X: -1}},
	}

	for _, tt := range tests {
		got := ApplyDeadzone(tt.in, low, high)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("%s: ApplyDeadzone(%+v) = %+v, want %+v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestApplyDeadzoneExactZero(t *testing.T) {
	for _, v := range []ovr.Vector2f{{X: 0.2}, {X: -0.1, Y: 0.1}, {Y: 0.19999}} {
		if got := ApplyDeadzone(v, 0.2, 0.8); got != (ovr.Vector2f{}) {
			t.Errorf("ApplyDeadzone(%+v) = %+v, want exact zero", v, got)
		}
	}
}

func TestApplyDeadzoneContinuity(t *testing.T) {
	const low, high, eps = 0.24, 0.99, 1e-4

	dir := ovr.Vector2f{X: 0.6, Y: -0.8}

	justAboveLow := ApplyDeadzone(dir.Scale(low+eps), low, high)
	if justAboveLow.Length() > 1e-3 {
		t.Errorf("discontinuity at inner radius: %v", justAboveLow.Length())
	}

	justBelowHigh := ApplyDeadzone(dir.Scale(high-eps), low, high)
	if math.Abs(float64(justBelowHigh.Length()-1)) > 1e-3 {
		t.Errorf("discontinuity at outer radius: %v", justBelowHigh.Length())
	}

	// direction is preserved
	out := ApplyDeadzone(dir.Scale(0.5), low, high)
	if !near(out.X/out.Length(), dir.X) || !near(out.Y/out.Length(), dir.Y) {
		t.Errorf("direction changed: %+v", out)
	}
}

func TestApplyDeadzoneDegenerate(t *testing.T) {
	got := ApplyDeadzone(ovr.Vector2f{X: 0.5}, 0.3, 0.3)
	if !near(got.X, 1) {
		t.Errorf("expected full deflection, got %+v", got)
	}
}

func TestDeadzoneScalar(t *testing.T) {
	dz := Deadzone{Low: 0.1, High: 0.9}
	if got := dz.ApplyScalar(0.5); !near(got, 0.5) {
		t.Errorf("ApplyScalar(0.5) = %v", got)
	}
	if got := dz.ApplyScalar(0.05); got != 0 {
		t.Errorf("ApplyScalar(0.05) = %v", got)
	}
	if got := dz.ApplyScalar(1); got != 1 {
		t.Errorf("ApplyScalar(1) = %v", got)
	}
}

func TestLatch(t *testing.T) {
	steps := []bool{false, true, true, false}
	var l latch

	var pressedAt, releasedAt []int
	for i, v := range steps {
		pressed, released := l.update(v)
		if pressed {
			pressedAt = append(pressedAt, i+1)
		}
		if released {
			releasedAt = append(releasedAt, i+1)
		}
	}

	if len(pressedAt) != 1 || pressedAt[0] != 2 {
		t.Errorf("pressed at steps %v, want [2]", pressedAt)
	}
	if len(releasedAt) != 1 || releasedAt[0] != 4 {
		t.Errorf("released at steps %v, want [4]", releasedAt)
	}
}

func TestEdges(t *testing.T) {
	var e edges

	p, r := e.update(ovr.ButtonA | ovr.ButtonB)
	if p != ovr.ButtonA|ovr.ButtonB || r != 0 {
		t.Errorf("pressed %#x released %#x", p, r)
	}
	p, r = e.update(ovr.ButtonB | ovr.ButtonX)
	if p != ovr.ButtonX || r != ovr.ButtonA {
		t.Errorf("pressed %#x released %#x", p, r)
	}
	p, r = e.update(ovr.ButtonB | ovr.ButtonX)
	if p != 0 || r != 0 {
		t.Errorf("pressed %#x released %#x", p, r)
	}
}
