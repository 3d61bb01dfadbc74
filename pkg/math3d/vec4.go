package math3d

import "math"

// Vec4 represents a 4D vector (or homogeneous 3D point).
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Embed appends the homogeneous coordinate w = 1 to a point.
func Embed(v Vec3) Vec4 {
	return Vec4{v.X, v.Y, v.Z, 1}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Project de-homogenizes m by dividing through by W.
// A zero W, or a quotient that is not finite, yields a *DegenerateVectorError
// instead of Inf/NaN coordinates.
func Project(m Vec4) (Vec3, error) {
	if m.W == 0 || math.IsNaN(m.W) || math.IsInf(m.W, 0) {
		return Vec3{}, &DegenerateVectorError{Op: "project", Length: m.W}
	}
	p := Vec3{m.X / m.W, m.Y / m.W, m.Z / m.W}
	if !p.IsFinite() {
		return Vec3{}, &DegenerateVectorError{Op: "project", Length: m.W}
	}
	return p, nil
}
