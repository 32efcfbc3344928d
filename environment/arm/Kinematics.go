package arm

import "math"

// Kinematics computes the closed-form forward and inverse kinematics
// of a two-link planar arm whose base sits at the origin. At zero
// joint angles the arm lies extended along the positive x-axis, and
// the effector moves in a horizontal plane at a fixed height.
type Kinematics struct {
	L1     float64 // length of the first link
	L2     float64 // length of the second link
	Height float64 // height of the effector plane
}

// Forward returns the 3D effector position for joint angles t1 and t2
// (radians). t2 is measured relative to the first link.
func (k Kinematics) Forward(t1, t2 float64) (x, y, z float64) {
	x = k.L1*math.Cos(t1) + k.L2*math.Cos(t1+t2)
	y = k.L1*math.Sin(t1) + k.L2*math.Sin(t1+t2)
	return x, y, k.Height
}

// Inverse returns joint angles reaching the planar point (x, y) using
// the elbow-up solution. The third return value reports whether
// (x, y) is reachable at all.
func (k Kinematics) Inverse(x, y float64) (t1, t2 float64, ok bool) {
	c2 := (x*x + y*y - k.L1*k.L1 - k.L2*k.L2) / (2 * k.L1 * k.L2)
	if c2 < -1 || c2 > 1 {
		return 0, 0, false
	}

	t2 = math.Acos(c2)
	t1 = math.Atan2(y, x) -
		math.Atan2(k.L2*math.Sin(t2), k.L1+k.L2*math.Cos(t2))
	return t1, t2, true
}

// MaxReach returns the outer radius of the reachable workspace
func (k Kinematics) MaxReach() float64 {
	return k.L1 + k.L2
}

// MinReach returns the inner radius of the reachable workspace
func (k Kinematics) MinReach() float64 {
	return math.Abs(k.L1 - k.L2)
}

// Reachable returns whether the planar point (x, y) lies inside the
// annulus the effector can reach
func (k Kinematics) Reachable(x, y float64) bool {
	r := math.Hypot(x, y)
	return r >= k.MinReach() && r <= k.MaxReach()
}
