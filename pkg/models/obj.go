package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/still/pkg/math3d"
)

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ParseOBJ reads OBJ data. Only v, vt and f records are used; polygons
// with more than three corners are split into a triangle fan around their
// first corner.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			err = parseVertex(mesh, fields[1:])
		case "vt":
			err = parseTexCoord(mesh, fields[1:])
		case "f":
			err = parseFace(mesh, fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseFloats(fields []string, minCount int) ([]float64, error) {
	if len(fields) < minCount {
		return nil, fmt.Errorf("want at least %d values, got %d", minCount, len(fields))
	}
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseVertex(mesh *Mesh, fields []string) error {
	v, err := parseFloats(fields, 3)
	if err != nil {
		return fmt.Errorf("v: %w", err)
	}
	mesh.Positions = append(mesh.Positions, math3d.V3(v[0], v[1], v[2]))
	return nil
}

func parseTexCoord(mesh *Mesh, fields []string) error {
	v, err := parseFloats(fields, 1)
	if err != nil {
		return fmt.Errorf("vt: %w", err)
	}
	uv := math3d.V2(v[0], 0)
	if len(v) > 1 {
		uv.Y = v[1]
	}
	mesh.TexCoords = append(mesh.TexCoords, uv)
	return nil
}

// faceCorner is one v[/vt[/vn]] reference resolved to 0-based indices.
type faceCorner struct {
	v, t int
}

func parseFace(mesh *Mesh, fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("f: want at least 3 corners, got %d", len(fields))
	}

	corners := make([]faceCorner, len(fields))
	for i, field := range fields {
		c, err := parseCorner(field, len(mesh.Positions), len(mesh.TexCoords))
		if err != nil {
			return fmt.Errorf("f: corner %q: %w", field, err)
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		mesh.Faces = append(mesh.Faces, Face{
			V: [3]int{a.v, b.v, c.v},
			T: [3]int{a.t, b.t, c.t},
		})
	}
	return nil
}

// parseCorner accepts v, v/vt, v//vn and v/vt/vn. Normals are ignored.
func parseCorner(s string, numPos, numTex int) (faceCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return faceCorner{}, fmt.Errorf("too many components")
	}

	v, err := resolveIndex(parts[0], numPos)
	if err != nil {
		return faceCorner{}, fmt.Errorf("position: %w", err)
	}

	t := NoTexCoord
	if len(parts) > 1 && parts[1] != "" {
		t, err = resolveIndex(parts[1], numTex)
		if err != nil {
			return faceCorner{}, fmt.Errorf("texcoord: %w", err)
		}
	}

	return faceCorner{v: v, t: t}, nil
}

// resolveIndex converts a 1-based OBJ index, or a negative index relative
// to the current end of the pool, to a 0-based index.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		if count+n < 0 {
			return 0, fmt.Errorf("relative index %d before start", n)
		}
		return count + n, nil
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
}
