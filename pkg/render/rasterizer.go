// Package render provides software rasterization for still.
package render

import (
	"math"

	"github.com/taigrr/still/pkg/math3d"
)

// PlotFunc receives a pixel that passed the coverage and depth tests,
// together with the per-vertex attributes interpolated at that pixel.
type PlotFunc func(x, y int, attr math3d.Vec3)

// FillRule decides which triangle owns pixels lying exactly on an edge.
type FillRule int

const (
	// FillInclusive covers every pixel whose weights are all >= 0. Pixels on
	// an edge shared by two triangles are drawn by both.
	FillInclusive FillRule = iota
	// FillTopLeft covers edge pixels only for top and left edges, so a
	// shared edge is drawn exactly once.
	FillTopLeft
)

// String returns the configuration name of the rule.
func (r FillRule) String() string {
	switch r {
	case FillInclusive:
		return "inclusive"
	case FillTopLeft:
		return "top-left"
	}
	return "unknown"
}

// Barycentric returns the weights of pixel p relative to the triangle's
// screen-space points (Z is ignored).
//
// When the triangle is too thin for the pixel grid (|cross.Z| < 1) the
// weights (-1, 1, 1) are returned, which always fail the inside test.
func Barycentric(pts [3]math3d.Vec3, p math3d.Vec2i) math3d.Vec3 {
	a := math3d.V3(pts[2].X-pts[0].X, pts[1].X-pts[0].X, pts[0].X-float64(p.X))
	b := math3d.V3(pts[2].Y-pts[0].Y, pts[1].Y-pts[0].Y, pts[0].Y-float64(p.Y))

	u := a.Cross(b)
	if math.Abs(u.Z) < 1 {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// Rasterize scans the bounding box of a screen-space triangle and calls plot
// for every covered pixel that is nearer than the depth buffer's entry.
// Depth and attrs are interpolated affinely with the barycentric weights.
// It returns the number of plot calls.
//
// The box starts at max(0, min) and ends one past the largest coordinate,
// clipped to the depth buffer. Coordinates are clamped to [-1, size] before
// the integer conversion so far off-screen vertices still bound the box.
func Rasterize(pts [3]math3d.Vec3, attrs [3]math3d.Vec3, zbuf *DepthBuffer, rule FillRule, plot PlotFunc) int {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := 0, 0
	for _, p := range pts {
		px := int(math.Max(-1, math.Min(p.X, float64(zbuf.Width))))
		py := int(math.Max(-1, math.Min(p.Y, float64(zbuf.Height))))
		minX = max(0, min(minX, px))
		minY = max(0, min(minY, py))
		maxX = max(maxX, px+1)
		maxY = max(maxY, py+1)
	}
	maxX = min(maxX, zbuf.Width)
	maxY = min(maxY, zbuf.Height)

	var owns [3]bool
	if rule == FillTopLeft {
		owns = topLeftEdges(pts)
	}

	// Attribute channels regrouped so each one is a dot with the weights.
	ch := [3]math3d.Vec3{
		math3d.V3(attrs[0].X, attrs[1].X, attrs[2].X),
		math3d.V3(attrs[0].Y, attrs[1].Y, attrs[2].Y),
		math3d.V3(attrs[0].Z, attrs[1].Z, attrs[2].Z),
	}
	depth := math3d.V3(pts[0].Z, pts[1].Z, pts[2].Z)

	plotted := 0
	for x := minX; x < maxX; x++ {
		for y := minY; y < maxY; y++ {
			bc := Barycentric(pts, math3d.V2i(x, y))
			if !covers(bc, rule, owns) {
				continue
			}

			if !zbuf.testAndSet(x, y, depth.Dot(bc)) {
				continue
			}

			plot(x, y, math3d.V3(ch[0].Dot(bc), ch[1].Dot(bc), ch[2].Dot(bc)))
			plotted++
		}
	}
	return plotted
}

// covers is the inside test. owns[i] refers to the edge opposite vertex i.
func covers(bc math3d.Vec3, rule FillRule, owns [3]bool) bool {
	for i, w := range [3]float64{bc.X, bc.Y, bc.Z} {
		if w < 0 {
			return false
		}
		if w == 0 && rule == FillTopLeft && !owns[i] {
			return false
		}
	}
	return true
}

// topLeftEdges reports for each vertex whether the edge opposite it is a top
// or left edge. Screen y grows upward here (the image is flipped on output),
// so a top edge is horizontal with the interior below it.
func topLeftEdges(pts [3]math3d.Vec3) [3]bool {
	area := (pts[1].X-pts[0].X)*(pts[2].Y-pts[0].Y) - (pts[1].Y-pts[0].Y)*(pts[2].X-pts[0].X)

	var owns [3]bool
	for i := range 3 {
		a, b := pts[(i+1)%3], pts[(i+2)%3]
		if area < 0 {
			a, b = b, a
		}
		// Walking a->b counter-clockwise keeps the interior on the left.
		dx, dy := b.X-a.X, b.Y-a.Y
		owns[i] = dy < 0 || (dy == 0 && dx < 0)
	}
	return owns
}
