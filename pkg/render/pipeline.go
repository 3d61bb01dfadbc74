package render

import (
	"github.com/taigrr/still/pkg/math3d"
)

// ViewportRect is the pixel rectangle the normalized cube is mapped onto.
type ViewportRect struct {
	X, Y, W, H int
}

// DefaultViewport centers a rectangle covering three quarters of a
// width x height image.
func DefaultViewport(width, height int) ViewportRect {
	return ViewportRect{
		X: width / 8,
		Y: height / 8,
		W: width * 3 / 4,
		H: height * 3 / 4,
	}
}

// Pipeline carries vertices from model space to screen space.
type Pipeline struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	Viewport   math3d.Mat4

	// Matrix is Viewport · Projection · View · Model.
	Matrix math3d.Mat4
}

// NewPipeline composes the transforms for one frame.
func NewPipeline(cam Camera, vp ViewportRect, depth int, model math3d.Mat4) (*Pipeline, error) {
	view, err := cam.ViewMatrix()
	if err != nil {
		return nil, err
	}
	proj, err := cam.ProjectionMatrix()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Model:      model,
		View:       view,
		Projection: proj,
		Viewport:   math3d.Viewport(vp.X, vp.Y, vp.W, vp.H, depth),
	}
	p.Matrix = p.Viewport.Mul(p.Projection).Mul(p.View).Mul(p.Model)
	return p, nil
}

// Project maps a model-space point to screen space. X and Y are pixel
// coordinates with y up; Z is the depth compared in the depth buffer.
func (p *Pipeline) Project(v math3d.Vec3) (math3d.Vec3, error) {
	return math3d.Project(p.Matrix.MulVec4(math3d.Embed(v)))
}
