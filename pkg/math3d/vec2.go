package math3d

// Vec2 is a 2D float vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Vec3 lifts the vector into 3D with Z = 0, the layout the rasterizer
// expects for per-vertex attributes.
func (v Vec2) Vec3() Vec3 {
	return Vec3{v.X, v.Y, 0}
}

// Vec2i is an integer pixel coordinate.
type Vec2i struct {
	X, Y int
}

// V2i creates a new Vec2i.
func V2i(x, y int) Vec2i {
	return Vec2i{x, y}
}
