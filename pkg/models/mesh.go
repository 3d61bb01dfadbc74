// Package models provides 3D model loading and representation for still.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/still/pkg/math3d"
	"github.com/taigrr/still/pkg/render"
)

// Mesh is an indexed triangle mesh. Positions and texture coordinates are
// separate pools, as in OBJ files; each face indexes both.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	TexCoords []math3d.Vec2
	Faces     []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle.
type Face struct {
	V [3]int // Indices into Mesh.Positions
	T [3]int // Indices into Mesh.TexCoords, -1 for none
}

// NoTexCoord marks a face corner without a texture coordinate.
const NoTexCoord = -1

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]math3d.Vec3, 0),
		TexCoords: make([]math3d.Vec2, 0),
		Faces:     make([]Face, 0),
	}
}

// ErrInvalidMesh is wrapped by every Validate failure.
var ErrInvalidMesh = errors.New("invalid mesh")

// Validate checks that every face index is in range.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for j := range 3 {
			if f.V[j] < 0 || f.V[j] >= len(m.Positions) {
				return fmt.Errorf("%w: face %d vertex %d references position %d of %d",
					ErrInvalidMesh, i, j, f.V[j], len(m.Positions))
			}
			if f.T[j] != NoTexCoord && (f.T[j] < 0 || f.T[j] >= len(m.TexCoords)) {
				return fmt.Errorf("%w: face %d vertex %d references texcoord %d of %d",
					ErrInvalidMesh, i, j, f.T[j], len(m.TexCoords))
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Transform applies an affine transformation to all positions.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mat.MulVec4(math3d.Embed(p)).Vec3()
	}
	m.CalculateBounds()
}

// Fit centers the mesh on the origin and scales it uniformly so its
// largest dimension equals size.
func (m *Mesh) Fit(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return
	}
	scale := size / maxDim
	m.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Scale(-1))))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		TexCoords: make([]math3d.Vec2, len(m.TexCoords)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Positions, m.Positions)
	copy(clone.TexCoords, m.TexCoords)
	copy(clone.Faces, m.Faces)
	return clone
}

// GetTriangle returns face i with its positions and texture coordinates
// resolved. Implements render.MeshRenderer. The mesh must have passed
// Validate.
func (m *Mesh) GetTriangle(i int) render.Triangle {
	f := m.Faces[i]
	var tri render.Triangle
	for j := range 3 {
		tri.V[j].Position = m.Positions[f.V[j]]
		if t := f.T[j]; t != NoTexCoord {
			tri.V[j].UV = m.TexCoords[t]
			tri.V[j].HasUV = true
		}
	}
	return tri
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
