package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/taigrr/still/pkg/math3d"
)

// Vertex is one corner of a triangle as handed to the frame driver.
type Vertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
	HasUV    bool
}

// Triangle is three vertices in model space.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is implemented by meshes that can be drawn. The models
// package satisfies it; render never imports models.
type MeshRenderer interface {
	TriangleCount() int
	GetTriangle(i int) Triangle
}

// FrameConfig describes one render.
type FrameConfig struct {
	Width  int
	Height int
	Depth  int // depth range the viewport maps z onto

	Camera Camera

	// Viewport is the target rectangle; the zero value selects
	// DefaultViewport(Width, Height).
	Viewport ViewportRect

	// Model is applied before the view; the zero value means identity.
	Model math3d.Mat4

	Background Color
	FillRule   FillRule

	// FillColor is plotted when no texture is given.
	FillColor Color

	Wireframe      bool
	WireframeColor Color

	// Axes is the length of the model-space axis gizmo; 0 disables it.
	Axes float64

	// LightDir is accepted for configuration compatibility. Shading is
	// not performed.
	LightDir math3d.Vec3

	// Progress, if set, is called after each triangle.
	Progress func(done, total int)
}

// DefaultFrameConfig returns the stock 1000x1000 configuration.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		Width:          1000,
		Height:         1000,
		Depth:          255,
		Camera:         NewCamera(),
		Background:     ColorBlack,
		FillRule:       FillInclusive,
		FillColor:      ColorWhite,
		WireframeColor: ColorGreen,
		LightDir:       math3d.V3(0, 0, -1),
	}
}

// Stats summarizes a rendered frame.
type Stats struct {
	Triangles int // triangles rasterized
	Skipped   int // triangles dropped because a vertex failed to project
	Pixels    int // plot calls that passed the depth test
}

// Frame is the result of RenderFrame. Image rows are bottom-up; call
// Image.FlipVertical before encoding.
type Frame struct {
	Image   *Framebuffer
	ZBuffer *DepthBuffer
	Stats   Stats
}

// ErrInvalidSize is returned for a non-positive frame width or height.
var ErrInvalidSize = errors.New("render: frame size must be positive")

// RenderFrame draws every triangle of mesh into a fresh framebuffer.
//
// Per-vertex UVs travel through the rasterizer's attribute slot and are
// used to sample tex at each covered pixel. Vertices without a UV sample
// at (0, 0). A nil tex plots cfg.FillColor instead.
func RenderFrame(mesh MeshRenderer, tex *Texture, cfg FrameConfig) (*Frame, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}

	vp := cfg.Viewport
	if vp == (ViewportRect{}) {
		vp = DefaultViewport(cfg.Width, cfg.Height)
	}
	model := cfg.Model
	if model == (math3d.Mat4{}) {
		model = math3d.Identity()
	}

	pipe, err := NewPipeline(cfg.Camera, vp, cfg.Depth, model)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	log := Logger()
	total := mesh.TriangleCount()
	log.Info("render frame",
		"width", cfg.Width,
		"height", cfg.Height,
		"triangles", total,
		"fill_rule", cfg.FillRule.String(),
		"textured", tex != nil,
	)
	start := time.Now()

	frame := &Frame{
		Image:   NewFramebuffer(cfg.Width, cfg.Height),
		ZBuffer: NewDepthBuffer(cfg.Width, cfg.Height),
	}
	frame.Image.Clear(cfg.Background)

	plot := func(x, y int, uv math3d.Vec3) {
		frame.Image.SetPixel(x, y, cfg.FillColor)
	}
	if tex != nil {
		plot = func(x, y int, uv math3d.Vec3) {
			frame.Image.SetPixel(x, y, tex.Sample(uv.X, uv.Y))
		}
	}

	for i := range total {
		tri := mesh.GetTriangle(i)

		var pts, uvs [3]math3d.Vec3
		skip := false
		for j, v := range tri.V {
			p, err := pipe.Project(v.Position)
			if err != nil {
				log.Debug("skip triangle", "index", i, "vertex", j, "err", err)
				skip = true
				break
			}
			pts[j] = p
			if v.HasUV {
				uvs[j] = v.UV.Vec3()
			}
		}

		if skip {
			frame.Stats.Skipped++
		} else {
			frame.Stats.Pixels += Rasterize(pts, uvs, frame.ZBuffer, cfg.FillRule, plot)
			frame.Stats.Triangles++
		}

		if cfg.Progress != nil {
			cfg.Progress(i+1, total)
		}
	}

	if cfg.Wireframe {
		NewWireframe(pipe, frame.Image).DrawMesh(mesh, cfg.WireframeColor)
	}
	if cfg.Axes > 0 {
		NewWireframe(pipe, frame.Image).DrawAxes(cfg.Axes)
	}

	log.Info("frame complete",
		"triangles", frame.Stats.Triangles,
		"skipped", frame.Stats.Skipped,
		"pixels", frame.Stats.Pixels,
		"elapsed", time.Since(start),
	)
	return frame, nil
}
