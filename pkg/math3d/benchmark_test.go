package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkVec3Unit(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_, _ = v.Unit()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkView(b *testing.B) {
	eye := V3(1, 1, 3)
	center := V3(0, 0, 0)
	up := V3(0, 1, 0)

	for b.Loop() {
		_, _ = View(eye, center, up)
	}
}

func BenchmarkComposedTransform(b *testing.B) {
	// Same composition the frame driver builds once per render.
	view, _ := View(V3(1, 1, 3), Zero3(), Up())
	proj := Projection(-1 / V3(1, 1, 3).Len())
	vp := Viewport(125, 125, 750, 750, 255)
	v := Embed(V3(0.3, -0.2, 0.1))

	for b.Loop() {
		m := vp.Mul(proj).Mul(view)
		_, _ = Project(m.MulVec4(v))
	}
}
