// Package config loads render settings for still from YAML and command-line
// overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/still/pkg/math3d"
	"github.com/taigrr/still/pkg/render"
)

// maxConfigSize bounds the YAML file read by Load.
const maxConfigSize = 1024 * 1024

// Config holds every render setting. Zero-length vectors and colors mean
// "use the default".
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`

	Eye      []float64 `yaml:"eye"`
	Center   []float64 `yaml:"center"`
	Up       []float64 `yaml:"up"`
	LightDir []float64 `yaml:"light_dir"`

	Viewport *Viewport `yaml:"viewport"`

	Background []int `yaml:"background"`
	FillColor  []int `yaml:"fill_color"`
	Wireframe  []int `yaml:"wireframe"` // overlay color; empty disables

	Axes float64 `yaml:"axes"` // model-space axis length; 0 disables

	FillRule      string `yaml:"fill_rule"`
	TextureWrap   string `yaml:"texture_wrap"`
	TextureFilter string `yaml:"texture_filter"`

	Model Model `yaml:"model"`
}

// Viewport is the target pixel rectangle.
type Viewport struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Model is the model transform: rotations in degrees applied as
// yaw (Y), then pitch (X), then roll (Z), after uniform scale.
type Model struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	Roll  float64 `yaml:"roll"`
	Scale float64 `yaml:"scale"`
	Fit   bool    `yaml:"fit"` // center and scale the mesh to a 2-unit cube
}

// Flags are command-line overrides. Zero values leave the config alone.
type Flags struct {
	Width     int
	Height    int
	FillRule  string
	Wireframe bool
	Fit       bool
	Axes      float64
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Width:         1000,
		Height:        1000,
		Depth:         255,
		Eye:           []float64{1, 1, 3},
		Center:        []float64{0, 0, 0},
		Up:            []float64{0, 1, 0},
		LightDir:      []float64{0, 0, -1},
		Background:    []int{0, 0, 0, 255},
		FillColor:     []int{255, 255, 255, 255},
		FillRule:      render.FillInclusive.String(),
		TextureWrap:   "clamp",
		TextureFilter: "nearest",
		Model:         Model{Scale: 1},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large (%d bytes)", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve applies command-line overrides.
func (c *Config) Resolve(f Flags) {
	if f.Width > 0 {
		c.Width = f.Width
	}
	if f.Height > 0 {
		c.Height = f.Height
	}
	if f.FillRule != "" {
		c.FillRule = f.FillRule
	}
	if f.Wireframe && len(c.Wireframe) == 0 {
		c.Wireframe = []int{0, 255, 0, 255}
	}
	if f.Fit {
		c.Model.Fit = true
	}
	if f.Axes > 0 {
		c.Axes = f.Axes
	}
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate rejects settings that cannot be rendered.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return invalid("size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Depth <= 0 {
		return invalid("depth %d must be positive", c.Depth)
	}

	for name, v := range map[string][]float64{
		"eye": c.Eye, "center": c.Center, "up": c.Up, "light_dir": c.LightDir,
	} {
		if len(v) != 3 {
			return invalid("%s needs 3 components, got %d", name, len(v))
		}
	}
	for name, v := range map[string][]int{
		"background": c.Background, "fill_color": c.FillColor, "wireframe": c.Wireframe,
	} {
		if name == "wireframe" && len(v) == 0 {
			continue
		}
		if _, err := parseColor(v); err != nil {
			return invalid("%s: %v", name, err)
		}
	}

	if c.Viewport != nil && (c.Viewport.W <= 0 || c.Viewport.H <= 0) {
		return invalid("viewport %dx%d must be positive", c.Viewport.W, c.Viewport.H)
	}
	if c.Model.Scale <= 0 {
		return invalid("model scale %g must be positive", c.Model.Scale)
	}
	if c.Axes < 0 || math.IsInf(c.Axes, 0) || math.IsNaN(c.Axes) {
		return invalid("axes length %g must be finite and non-negative", c.Axes)
	}

	if _, err := ParseFillRule(c.FillRule); err != nil {
		return invalid("%v", err)
	}
	if _, err := ParseWrapMode(c.TextureWrap); err != nil {
		return invalid("%v", err)
	}
	if _, err := ParseFilterMode(c.TextureFilter); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// ParseFillRule maps a configuration name to a fill rule.
func ParseFillRule(s string) (render.FillRule, error) {
	switch s {
	case "", "inclusive":
		return render.FillInclusive, nil
	case "top-left":
		return render.FillTopLeft, nil
	}
	return 0, fmt.Errorf("unknown fill rule %q (want inclusive or top-left)", s)
}

// ParseWrapMode maps a configuration name to a texture wrap mode.
func ParseWrapMode(s string) (render.WrapMode, error) {
	switch s {
	case "", "clamp":
		return render.WrapClamp, nil
	case "repeat":
		return render.WrapRepeat, nil
	}
	return 0, fmt.Errorf("unknown texture wrap %q (want clamp or repeat)", s)
}

// ParseFilterMode maps a configuration name to a texture filter.
func ParseFilterMode(s string) (render.FilterMode, error) {
	switch s {
	case "", "nearest":
		return render.FilterNearest, nil
	case "bilinear":
		return render.FilterBilinear, nil
	}
	return 0, fmt.Errorf("unknown texture filter %q (want nearest or bilinear)", s)
}

// parseColor accepts [r, g, b] or [r, g, b, a] with 0-255 channels.
func parseColor(v []int) (render.Color, error) {
	if len(v) != 3 && len(v) != 4 {
		return render.Color{}, fmt.Errorf("color needs 3 or 4 channels, got %d", len(v))
	}
	for _, ch := range v {
		if ch < 0 || ch > 255 {
			return render.Color{}, fmt.Errorf("channel %d out of range 0-255", ch)
		}
	}
	c := render.RGB(uint8(v[0]), uint8(v[1]), uint8(v[2]))
	if len(v) == 4 {
		c.A = uint8(v[3])
	}
	return c, nil
}

func vec3(v []float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ModelMatrix returns the configured model transform.
func (c *Config) ModelMatrix() math3d.Mat4 {
	m := c.Model
	return math3d.RotateY(radians(m.Yaw)).
		Mul(math3d.RotateX(radians(m.Pitch))).
		Mul(math3d.RotateZ(radians(m.Roll))).
		Mul(math3d.ScaleUniform(m.Scale))
}

// FrameConfig converts a validated config into render settings.
func (c *Config) FrameConfig() (render.FrameConfig, error) {
	if err := c.Validate(); err != nil {
		return render.FrameConfig{}, err
	}

	fc := render.DefaultFrameConfig()
	fc.Width = c.Width
	fc.Height = c.Height
	fc.Depth = c.Depth
	fc.Camera = render.Camera{Eye: vec3(c.Eye), Center: vec3(c.Center), Up: vec3(c.Up)}
	fc.LightDir = vec3(c.LightDir)
	fc.Model = c.ModelMatrix()

	if c.Viewport != nil {
		fc.Viewport = render.ViewportRect{X: c.Viewport.X, Y: c.Viewport.Y, W: c.Viewport.W, H: c.Viewport.H}
	}

	fc.Background, _ = parseColor(c.Background)
	fc.FillColor, _ = parseColor(c.FillColor)
	if len(c.Wireframe) > 0 {
		fc.Wireframe = true
		fc.WireframeColor, _ = parseColor(c.Wireframe)
	}
	fc.FillRule, _ = ParseFillRule(c.FillRule)
	fc.Axes = c.Axes

	return fc, nil
}

// ApplyTexture sets the configured wrap and filter modes on tex.
func (c *Config) ApplyTexture(tex *render.Texture) {
	wrap, _ := ParseWrapMode(c.TextureWrap)
	filter, _ := ParseFilterMode(c.TextureFilter)
	tex.WrapU, tex.WrapV = wrap, wrap
	tex.FilterMode = filter
}
