package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/still/pkg/math3d"
)

// LoadGLB loads a glTF (.gltf) or binary glTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return meshFromDocument(doc, filepath.Base(path))
}

// meshFromDocument merges the triangle primitives of every mesh in doc.
func meshFromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the geometry of a glTF mesh. Positions and texture
// coordinates are parallel arrays in glTF, so a face uses the same index
// into both pools.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
			if len(uvs) != len(positions) {
				return fmt.Errorf("%d texture coordinates for %d positions", len(uvs), len(positions))
			}
		}

		basePos := len(mesh.Positions)
		baseUV := len(mesh.TexCoords)

		mesh.Positions = append(mesh.Positions, positions...)
		for _, uv := range uvs {
			// glTF puts V=0 at the top of the image; textures here are
			// addressed from the bottom row.
			mesh.TexCoords = append(mesh.TexCoords, math3d.V2(uv.X, 1-uv.Y))
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{T: [3]int{NoTexCoord, NoTexCoord, NoTexCoord}}
			for j := range 3 {
				f.V[j] = basePos + indices[i+j]
				if uvs != nil {
					f.T[j] = baseUV + indices[i+j]
				}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// readVec3Accessor reads Vec3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(f[0], f[1], f[2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(f[0], f[1])
	}
	return result, nil
}

// readFloats reads n float32 components per element.
func readFloats(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([][3]float64, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, err
	}

	result := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		elem := data[i*stride:]
		for j := range n {
			bits := binary.LittleEndian.Uint32(elem[j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// readIndices reads index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor, err := accessorAt(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		elem := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(elem[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(elem))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(elem))
		}
	}
	return result, nil
}

func accessorAt(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return doc.Accessors[idx], nil
}

// accessorBytes returns the accessor's data starting at its first element,
// and the stride between elements. The slice is checked to hold every
// element.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}

	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, 0, fmt.Errorf("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	if start < 0 || start > len(bufData) {
		return nil, 0, fmt.Errorf("accessor offset %d outside buffer", start)
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if start < 0 || end > len(bufData) {
			return nil, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(bufData))
		}
	}
	return bufData[start:], stride, nil
}

// LoadGLBWithTexture loads a glTF file and returns the mesh plus the first
// embedded or referenced texture image, which may be nil.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := meshFromDocument(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	return mesh, textureFromDocument(doc, filepath.Dir(path)), nil
}

// textureFromDocument decodes the first usable image of doc. Relative URIs
// resolve against dir.
func textureFromDocument(doc *gltf.Document, dir string) image.Image {
	for _, img := range doc.Images {
		data := imageBytes(doc, img, dir)
		if len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err == nil {
			return decoded
		}
	}
	return nil
}

// imageBytes returns the encoded bytes of a glTF image, or nil. Images may
// live in a buffer view, a base64 data URI or a file next to the model.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		if *img.BufferView >= len(doc.BufferViews) {
			return nil
		}
		bv := doc.BufferViews[*img.BufferView]
		if bv.Buffer >= len(doc.Buffers) {
			return nil
		}
		buf := doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf) {
			return nil
		}
		return buf[bv.ByteOffset:end]
	}

	if img.IsEmbeddedResource() {
		data, err := img.MarshalData()
		if err != nil {
			return nil
		}
		return data
	}

	if img.URI != "" {
		data, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}
