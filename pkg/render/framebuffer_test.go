package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

func TestFramebufferSetGet(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlack)

	fb.SetPixel(2, 1, ColorRed)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(3, 0, ColorRed)
	fb.SetPixel(0, 2, ColorRed)

	if got := fb.GetPixel(2, 1); got != ColorRed {
		t.Errorf("GetPixel(2,1) = %v, want red", got)
	}
	if n := countColor(fb, ColorRed); n != 1 {
		t.Errorf("%d red pixels, want 1 (out-of-range writes dropped)", n)
	}
	if got := fb.GetPixel(5, 5); got != (Color{}) {
		t.Errorf("GetPixel outside = %v, want zero", got)
	}
}

func TestFramebufferFlipVertical(t *testing.T) {
	for _, h := range []int{1, 2, 3, 4} {
		fb := NewFramebuffer(2, h)
		for y := range h {
			fb.SetPixel(0, y, RGB(uint8(y), 0, 0))
		}
		fb.FlipVertical()
		for y := range h {
			if got := fb.GetPixel(0, y).R; int(got) != h-1-y {
				t.Errorf("height %d: row %d holds %d, want %d", h, y, got, h-1-y)
			}
		}
	}
}

func TestFramebufferDrawLine(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.DrawLine(1, 1, 6, 4, ColorWhite)

	if got := fb.GetPixel(1, 1); got != ColorWhite {
		t.Error("start point not drawn")
	}
	if got := fb.GetPixel(6, 4); got != ColorWhite {
		t.Error("end point not drawn")
	}
	// A shallow line sets exactly one pixel per column.
	if n := countColor(fb, ColorWhite); n != 6 {
		t.Errorf("%d pixels drawn, want 6", n)
	}

	// Lines running off the buffer are clipped per pixel.
	fb.DrawLine(-4, -4, 20, 20, ColorRed)
	if got := fb.GetPixel(7, 7); got != ColorRed {
		t.Error("diagonal not drawn through the buffer")
	}
}

func TestFramebufferToImage(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(1, 0, ColorGreen)

	img := fb.ToImage()
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 0); got != ColorGreen {
		t.Errorf("RGBAAt(1,0) = %v, want green", got)
	}
}

func testImage() *image.RGBA {
	fb := NewFramebuffer(4, 3)
	fb.Clear(RGB(10, 20, 30))
	fb.SetPixel(0, 0, ColorRed)
	fb.SetPixel(3, 2, ColorBlue)
	return fb.ToImage()
}

func TestEncodeRoundTrip(t *testing.T) {
	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		FormatPNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		FormatBMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		FormatWebP: func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) },
	}

	src := testImage()
	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, p := range []image.Point{{0, 0}, {3, 2}, {1, 1}} {
				r1, g1, b1, _ := src.At(p.X, p.Y).RGBA()
				r2, g2, b2, _ := got.At(p.X, p.Y).RGBA()
				if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
					t.Errorf("pixel %v: got (%d,%d,%d), want (%d,%d,%d)", p, r2>>8, g2>>8, b2>>8, r1>>8, g1>>8, b1>>8)
				}
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out.png", FormatPNG, false},
		{"dir/OUT.PNG", FormatPNG, false},
		{"out.webp", FormatWebP, false},
		{"out.bmp", FormatBMP, false},
		{"out.gif", "", true},
		{"out", "", true},
	}
	for _, tc := range tests {
		got, err := FormatFromPath(tc.path)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q, err=%v", tc.path, got, err, tc.want, tc.wantErr)
		}
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "frame.png")
	if err := SaveImage(path, testImage()); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("saved file is not a PNG: %v", err)
	}

	bad := filepath.Join(dir, "frame.gif")
	if err := SaveImage(bad, testImage()); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("unsupported format left a file behind")
	}
}

func TestFramebufferDrawTerminal(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.SetPixel(0, 0, ColorRed)
	fb.SetPixel(0, 1, ColorBlue)
	fb.SetPixel(1, 0, ColorGreen)
	fb.SetPixel(1, 1, ColorWhite)

	scr := uv.NewScreenBuffer(2, 1)
	fb.Draw(scr, uv.Rect(0, 0, 2, 1))

	cell := scr.CellAt(0, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell (0,0) = %+v, want half block", cell)
	}
	if cell.Style.Fg != ColorRed || cell.Style.Bg != ColorBlue {
		t.Errorf("cell (0,0) fg=%v bg=%v, want red over blue", cell.Style.Fg, cell.Style.Bg)
	}
	if right := scr.CellAt(1, 0); right == nil || right.Style.Fg != ColorGreen {
		t.Errorf("cell (1,0) = %+v, want green foreground", right)
	}
}

// recordHandler collects log messages.
type recordHandler struct {
	msgs *[]string
}

func (h recordHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h recordHandler) Handle(_ context.Context, r slog.Record) error {
	*h.msgs = append(*h.msgs, r.Message)
	return nil
}
func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordHandler) WithGroup(string) slog.Handler      { return h }

func TestSetLogger(t *testing.T) {
	var msgs []string
	SetLogger(slog.New(recordHandler{msgs: &msgs}))
	defer SetLogger(nil)

	mesh := quadMesh()
	mesh.tris = append(mesh.tris, Triangle{V: [3]Vertex{
		vert(math.NaN(), 0, 0, 0, 0), vert(1, 0, 0, 0, 0), vert(0, 1, 0, 0, 0),
	}})

	if _, err := RenderFrame(mesh, nil, smallConfig()); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(msgs, "|")
	for _, want := range []string{"render frame", "skip triangle", "frame complete"} {
		if !strings.Contains(joined, want) {
			t.Errorf("log %q missing %q", joined, want)
		}
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}
