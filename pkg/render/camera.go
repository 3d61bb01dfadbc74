package render

import (
	"fmt"

	"github.com/taigrr/still/pkg/math3d"
)

// Camera is a look-at camera: it sits at Eye and looks toward Center.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3
}

// NewCamera creates a camera with the default placement: eye (1,1,3)
// looking at the origin with +Y up.
func NewCamera() Camera {
	return Camera{
		Eye:    math3d.V3(1, 1, 3),
		Center: math3d.Zero3(),
		Up:     math3d.Up(),
	}
}

// Distance returns |eye - center|.
func (c Camera) Distance() float64 {
	return c.Eye.Sub(c.Center).Len()
}

// ViewMatrix returns the view matrix.
func (c Camera) ViewMatrix() (math3d.Mat4, error) {
	return math3d.View(c.Eye, c.Center, c.Up)
}

// ProjectionMatrix returns the perspective matrix with coefficient
// -1/distance.
func (c Camera) ProjectionMatrix() (math3d.Mat4, error) {
	d := c.Distance()
	if d == 0 {
		return math3d.Mat4{}, fmt.Errorf("projection: %w", &math3d.DegenerateVectorError{Op: "projection", Length: d})
	}
	return math3d.Projection(-1 / d), nil
}
