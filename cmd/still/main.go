// still - software rasterizer
// Renders a textured OBJ or glTF model to a single image file.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/taigrr/still/pkg/config"
	"github.com/taigrr/still/pkg/models"
	"github.com/taigrr/still/pkg/render"
)

var (
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG/TGA/BMP/WebP)")
	outputPath  = flag.String("o", "output.png", "Output image (PNG/WebP/BMP)")
	configPath  = flag.String("config", "", "YAML render configuration")
	width       = flag.Int("width", 0, "Output width (overrides config)")
	height      = flag.Int("height", 0, "Output height (overrides config)")
	fillRule    = flag.String("fill-rule", "", "Edge ownership: inclusive or top-left")
	wireframe   = flag.Bool("wireframe", false, "Overlay triangle edges")
	fit         = flag.Bool("fit", false, "Center the model and scale it to a 2-unit cube")
	axes        = flag.Float64("axes", 0, "Draw model-space axes of this length (0 disables)")
	preview     = flag.Bool("preview", false, "Print the result to the terminal")
	progress    = flag.Bool("progress", false, "Show a progress bar")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "still - software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: still [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)

	if err := run(flag.Arg(0), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg.Resolve(config.Flags{
		Width:     *width,
		Height:    *height,
		FillRule:  *fillRule,
		Wireframe: *wireframe,
		Fit:       *fit,
		Axes:      *axes,
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAssets loads the mesh and its texture. A glTF file's embedded image
// is used when no texture is given; otherwise a checkerboard stands in.
func loadAssets(modelPath string, logger *slog.Logger) (*models.Mesh, *render.Texture, error) {
	var (
		mesh *models.Mesh
		tex  *render.Texture
		err  error
	)

	if *texturePath != "" {
		tex, err = render.LoadTexture(*texturePath)
		if err != nil {
			return nil, nil, fmt.Errorf("load texture: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(modelPath)) {
	case ".glb", ".gltf":
		var embedded image.Image
		mesh, embedded, err = models.LoadGLBWithTexture(modelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		if tex == nil && embedded != nil {
			tex = render.TextureFromImage(embedded)
			logger.Info("using embedded texture", "width", tex.Width, "height", tex.Height)
		}
	default:
		mesh, err = models.Load(modelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
	}

	if tex == nil {
		tex = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	logger.Info("loaded model", "name", mesh.Name, "vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
	return mesh, tex, nil
}

func run(modelPath string, logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := render.FormatFromPath(*outputPath)
	if err != nil {
		return err
	}

	mesh, tex, err := loadAssets(modelPath, logger)
	if err != nil {
		return err
	}
	cfg.ApplyTexture(tex)
	if cfg.Model.Fit {
		mesh.Fit(2)
	}

	fc, err := cfg.FrameConfig()
	if err != nil {
		return err
	}

	if *progress {
		bar := progressbar.Default(int64(mesh.TriangleCount()), "rendering")
		defer bar.Finish()
		fc.Progress = progressFunc(bar, logger)
	}

	frame, err := render.RenderFrame(mesh, tex, fc)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	// Rows were rasterized bottom-up.
	frame.Image.FlipVertical()

	if err := render.SaveImage(*outputPath, frame.Image.ToImage()); err != nil {
		return fmt.Errorf("save %s: %w", format, err)
	}
	logger.Info("wrote image", "path", *outputPath, "pixels", frame.Stats.Pixels, "skipped", frame.Stats.Skipped)

	if *preview {
		printPreview(frame.Image)
	}
	return nil
}

// progressSetter is the part of *progressbar.ProgressBar the render loop
// drives.
type progressSetter interface {
	Set(num int) error
}

// progressFunc adapts bar to FrameConfig.Progress. Only the first Set
// failure is logged.
func progressFunc(bar progressSetter, logger *slog.Logger) func(done, total int) {
	var warned bool
	return func(done, _ int) {
		if err := bar.Set(done); err != nil && !warned {
			logger.Debug("progress bar", "err", err)
			warned = true
		}
	}
}

// printPreview draws the image with half-block cells sized to the terminal.
func printPreview(fb *render.Framebuffer) {
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		cols = 80
	}
	// Each cell covers two pixel rows.
	rows := max(1, cols*fb.Height/fb.Width/2)

	scr := uv.NewScreenBuffer(cols, rows)
	fb.Draw(scr, uv.Rect(0, 0, cols, rows))
	fmt.Fprintln(os.Stdout, scr.Render())
}
