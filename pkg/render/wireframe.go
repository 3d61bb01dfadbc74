package render

import (
	"math"

	"github.com/taigrr/still/pkg/math3d"
)

// lineLimit bounds projected endpoint coordinates; segments reaching past
// it are dropped rather than walked pixel by pixel.
const lineLimit = 1 << 16

// Wireframe draws line overlays through the same pipeline as the filled
// pass. Lines ignore the depth buffer.
type Wireframe struct {
	pipe *Pipeline
	fb   *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(pipe *Pipeline, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		pipe: pipe,
		fb:   fb,
	}
}

// DrawLine3D draws a model-space segment. It reports false, drawing
// nothing, when either endpoint cannot be projected or lands too far off
// screen.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color Color) bool {
	s1, err := w.pipe.Project(p1)
	if err != nil {
		return false
	}
	s2, err := w.pipe.Project(p2)
	if err != nil {
		return false
	}

	for _, c := range [4]float64{s1.X, s1.Y, s2.X, s2.Y} {
		if math.Abs(c) > lineLimit {
			return false
		}
	}

	w.fb.DrawLine(int(s1.X), int(s1.Y), int(s2.X), int(s2.Y), color)
	return true
}

// DrawTriangle outlines a triangle's three edges.
func (w *Wireframe) DrawTriangle(tri Triangle, color Color) {
	for i := range 3 {
		w.DrawLine3D(tri.V[i].Position, tri.V[(i+1)%3].Position, color)
	}
}

// DrawMesh outlines every triangle of the mesh.
func (w *Wireframe) DrawMesh(mesh MeshRenderer, color Color) {
	n := mesh.TriangleCount()
	for i := range n {
		w.DrawTriangle(mesh.GetTriangle(i), color)
	}
}

// DrawAxes draws the model-space coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}
