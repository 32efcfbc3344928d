package arm

import (
	"math"
	"testing"
)

const kinTolerance float64 = 1e-9

func TestForwardInverseRoundTrip(t *testing.T) {
	k := Kinematics{L1: 0.12, L2: 0.1, Height: 0.01}

	poses := [][2]float64{
		{0.3, 0.7},
		{-1.2, 1.5},
		{2.0, 0.4},
		{0.0, math.Pi / 2},
	}

	for _, pose := range poses {
		x, y, z := k.Forward(pose[0], pose[1])
		if z != k.Height {
			t.Errorf("forward z = %v, want plane height %v", z, k.Height)
		}

		t1, t2, ok := k.Inverse(x, y)
		if !ok {
			t.Fatalf("inverse failed for reachable point (%v, %v)", x, y)
		}

		gotX, gotY, _ := k.Forward(t1, t2)
		if math.Abs(gotX-x) > kinTolerance || math.Abs(gotY-y) > kinTolerance {
			t.Errorf("round trip gave (%v, %v), want (%v, %v)", gotX, gotY,
				x, y)
		}
	}
}

func TestInverseUnreachable(t *testing.T) {
	k := Kinematics{L1: 0.12, L2: 0.1}

	if _, _, ok := k.Inverse(0.5, 0.5); ok {
		t.Error("inverse reported success for a point beyond max reach")
	}
	if _, _, ok := k.Inverse(0.005, 0.0); ok {
		t.Error("inverse reported success for a point inside min reach")
	}
}

func TestFullExtension(t *testing.T) {
	k := Kinematics{L1: 0.12, L2: 0.1, Height: 0.01}

	x, y, _ := k.Forward(0, 0)
	if math.Abs(x-k.MaxReach()) > kinTolerance || math.Abs(y) > kinTolerance {
		t.Errorf("zero pose reaches (%v, %v), want (%v, 0)", x, y,
			k.MaxReach())
	}
}

func TestReachableAnnulus(t *testing.T) {
	k := Kinematics{L1: 0.12, L2: 0.1}

	tests := []struct {
		x, y float64
		want bool
	}{
		{0.1, 0.1, true},
		{k.MaxReach(), 0, true},
		{0, k.MinReach(), true},
		{0.3, 0, false},
		{0.01, 0, false},
		{0, 0, false},
	}

	for _, test := range tests {
		if got := k.Reachable(test.x, test.y); got != test.want {
			t.Errorf("reachable(%v, %v) = %v, want %v", test.x, test.y, got,
				test.want)
		}
	}
}
