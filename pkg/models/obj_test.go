package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/still/pkg/math3d"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl none
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJFan(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	if mesh.VertexCount() != 4 || len(mesh.TexCoords) != 4 {
		t.Fatalf("got %d positions, %d uvs; want 4, 4", mesh.VertexCount(), len(mesh.TexCoords))
	}
	want := []Face{
		{V: [3]int{0, 1, 2}, T: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}, T: [3]int{0, 2, 3}},
	}
	if len(mesh.Faces) != len(want) {
		t.Fatalf("got %d faces, want %d", len(mesh.Faces), len(want))
	}
	for i := range want {
		if mesh.Faces[i] != want[i] {
			t.Errorf("face %d = %+v, want %+v", i, mesh.Faces[i], want[i])
		}
	}
	if mesh.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("bounds max = %v", mesh.BoundsMax)
	}
}

func TestParseOBJKeepsSeparatePools(t *testing.T) {
	const src = `v 0.1 0.2 0.3
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0.25 0.75
f 1/1 2/2 3/3
f 1/4 3/3 4/4
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	// A position reused with a different texcoord is not duplicated.
	if mesh.VertexCount() != 4 || len(mesh.TexCoords) != 4 {
		t.Fatalf("got %d positions, %d uvs; want 4, 4", mesh.VertexCount(), len(mesh.TexCoords))
	}
	if f := mesh.Faces[1]; f.V[0] != 0 || f.T[0] != 3 {
		t.Errorf("face 1 corner 0 = v%d/t%d, want v0/t3", f.V[0], f.T[0])
	}
	// Coordinates keep full float64 precision.
	if got := mesh.Positions[0]; got != math3d.V3(0.1, 0.2, 0.3) {
		t.Errorf("position 0 = %v, want exactly (0.1, 0.2, 0.3)", got)
	}
	if got := mesh.TexCoords[3]; got != math3d.V2(0.25, 0.75) {
		t.Errorf("texcoord 3 = %v", got)
	}
}

func TestParseOBJCornerForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.25 0
f 1 2 3
f 1//1 2//1 3//1
f -3/-1 -2/-1 -1/-1
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	none := [3]int{NoTexCoord, NoTexCoord, NoTexCoord}
	tests := []struct {
		name string
		face Face
	}{
		{"v", Face{V: [3]int{0, 1, 2}, T: none}},
		{"v//vn", Face{V: [3]int{0, 1, 2}, T: none}},
		{"negative v/vt", Face{V: [3]int{0, 1, 2}, T: [3]int{0, 0, 0}}},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if mesh.Faces[i] != tc.face {
				t.Errorf("face = %+v, want %+v", mesh.Faces[i], tc.face)
			}
		})
	}

	if uv := mesh.TexCoords[0]; uv != math3d.V2(0.5, 0.25) {
		t.Errorf("uv = %v, want (0.5, 0.25)", uv)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad number", "v 0 x 0\n"},
		{"short vertex", "v 0 0\n"},
		{"two corners", "v 0 0 0\nf 1 1\n"},
		{"zero index", "v 0 0 0\nf 0 1 1\n"},
		{"relative before start", "v 0 0 0\nf -2 1 1\n"},
		{"out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n"},
		{"texcoord out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tc.src)); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := ParseOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nf 1 2 3\n"))
	if !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("out-of-range face error = %v, want ErrInvalidMesh", err)
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	objPath := filepath.Join(dir, "Quad.OBJ")
	if err := os.WriteFile(objPath, []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}

	mesh, err := Load(objPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.Name != "Quad.OBJ" || mesh.TriangleCount() != 2 {
		t.Errorf("mesh %q with %d triangles, want Quad.OBJ with 2", mesh.Name, mesh.TriangleCount())
	}

	if _, err := Load(filepath.Join(dir, "model.stl")); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("stl: error = %v, want unsupported format", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.obj")); err == nil {
		t.Error("missing obj: expected error")
	}
	if _, err := Load(filepath.Join(dir, "missing.glb")); err == nil {
		t.Error("missing glb: expected error")
	}
}
