package render

import "math"

// DepthBuffer records, per pixel, the largest depth rasterized so far.
// Larger values are nearer the camera; -Inf means nothing has been drawn.
type DepthBuffer struct {
	Width  int
	Height int
	Values []float64 // Row-major, len = Width*Height
}

// NewDepthBuffer allocates a depth buffer initialized to -Inf.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
	d.Reset()
	return d
}

// Reset sets every entry back to -Inf.
func (d *DepthBuffer) Reset() {
	inf := math.Inf(-1)
	for i := range d.Values {
		d.Values[i] = inf
	}
}

// Contains reports whether (x, y) lies inside the buffer.
func (d *DepthBuffer) Contains(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// At returns the stored depth at (x, y), or -Inf outside the buffer.
func (d *DepthBuffer) At(x, y int) float64 {
	if !d.Contains(x, y) {
		return math.Inf(-1)
	}
	return d.Values[y*d.Width+x]
}

// testAndSet stores z at (x, y) and returns true when z is strictly nearer
// than what is already there.
func (d *DepthBuffer) testAndSet(x, y int, z float64) bool {
	i := y*d.Width + x
	if d.Values[i] < z {
		d.Values[i] = z
		return true
	}
	return false
}
