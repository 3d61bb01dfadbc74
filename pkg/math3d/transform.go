package math3d

import "fmt"

// View builds the camera matrix for an eye looking at center.
//
// The top-left 3x3 block holds the camera basis as rows (right, up,
// forward), with forward = eye-center. The last column holds -center, so
// center itself maps to the camera-space origin. An eye equal to center, or
// an up vector parallel to the view direction, returns a
// *DegenerateVectorError.
func View(eye, center, up Vec3) (Mat4, error) {
	z, err := eye.Sub(center).Unit()
	if err != nil {
		return Mat4{}, fmt.Errorf("view forward axis: %w", err)
	}
	x, err := up.Cross(z).Unit()
	if err != nil {
		return Mat4{}, fmt.Errorf("view right axis: %w", err)
	}
	y, err := z.Cross(x).Unit()
	if err != nil {
		return Mat4{}, fmt.Errorf("view up axis: %w", err)
	}

	m := Identity()
	for i := range 3 {
		m.Set(0, i, x.At(i))
		m.Set(1, i, y.At(i))
		m.Set(2, i, z.At(i))
		m.Set(i, 3, -center.At(i))
	}
	return m, nil
}

// Projection returns the identity with (3, 2) set to coefficient, which is
// conventionally -1/|eye-center|. This is a bare perspective-divide term:
// there are no near or far planes.
func Projection(coefficient float64) Mat4 {
	m := Identity()
	m.Set(3, 2, coefficient)
	return m
}

// Viewport maps the normalized cube [-1,1]^3 onto the pixel rectangle at
// (x, y) of size (w, h), with depth mapped onto [0, depth].
func Viewport(x, y, w, h, depth int) Mat4 {
	fx, fy := float64(x), float64(y)
	fw, fh, fd := float64(w), float64(h), float64(depth)

	m := Identity()
	m.Set(0, 3, fx+fw/2)
	m.Set(1, 3, fy+fh/2)
	m.Set(2, 3, fd/2)

	m.Set(0, 0, fw/2)
	m.Set(1, 1, fh/2)
	m.Set(2, 2, fd/2)
	return m
}
