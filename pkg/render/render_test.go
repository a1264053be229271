package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/ptof-dev/ptof/pkg/deck"
	"github.com/ptof-dev/ptof/pkg/matcher"
)

// testDeck builds a one-slide deck with a filled rectangle at (100,100)pt,
// 200x100pt, on the default 720x540pt slide.
func testDeck() *deck.Deck {
	p := gopresentation.New()
	slide := p.GetActiveSlide()

	box := slide.CreateAutoShape()
	box.SetPosition(gopresentation.Point(100), gopresentation.Point(100))
	box.SetSize(gopresentation.Point(200), gopresentation.Point(100))
	box.SetSolidFill(gopresentation.NewColor("FF6600"))

	return deck.FromPresentation(p, "test.pptx")
}

func TestRenderRegionPNG(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72}) // 1pt == 1px

	data, err := r.RenderRegion(0, matcher.Rect{X: 100, Y: 100, W: 200, H: 100}, matcher.FormatPNG)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("crop size = %dx%d px, want 200x100", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestRenderRegionClipsToSlide(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72})

	// Region extends 60pt past the right edge of the 720pt slide.
	data, err := r.RenderRegion(0, matcher.Rect{X: 680, Y: 0, W: 100, H: 50}, matcher.FormatPNG)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("clipped width = %d px, want 40", img.Bounds().Dx())
	}
}

func TestRenderRegionPDF(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72})

	data, err := r.RenderRegion(0, matcher.Rect{X: 100, Y: 100, W: 200, H: 100}, matcher.FormatPDF)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(len(data), 8)])
	}
}

func TestRenderRegionSVG(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72})

	data, err := r.RenderRegion(0, matcher.Rect{X: 100, Y: 100, W: 200, H: 100}, matcher.FormatSVG)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}
	svg := string(data)
	if !strings.Contains(svg, "<svg") {
		t.Error("output is not an SVG document")
	}
	if !strings.Contains(svg, "data:image/png;base64,") {
		t.Error("SVG does not embed the raster")
	}
	if !strings.Contains(svg, `width="200pt"`) || !strings.Contains(svg, `height="100pt"`) {
		t.Errorf("SVG is not sized in points: %s", svg[:200])
	}
}

func rgb8(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

// Exports must not ship with the marker rectangle drawn in: once the marker
// shape is removed from the deck, a crop at exactly the marker box contains
// only background.
func TestRenderRegionAfterMarkerRemoval(t *testing.T) {
	p := gopresentation.New()
	slide := p.GetActiveSlide()

	marker := slide.CreateAutoShape()
	marker.SetPosition(gopresentation.Point(100), gopresentation.Point(100))
	marker.SetSize(gopresentation.Point(200), gopresentation.Point(100))
	marker.GetBorder().SetSolidFill(gopresentation.NewColor("00FFFF")).SetWidth(25400) // 2pt stroke

	d := deck.FromPresentation(p, "")
	region := matcher.Rect{X: 100, Y: 100, W: 200, H: 100}

	decode := func(t *testing.T, data []byte) image.Image {
		t.Helper()
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode png: %v", err)
		}
		return img
	}

	// Control: with the marker still on the slide, its border lands exactly
	// on the crop edge.
	data, err := New(d, Options{DPI: 72}).RenderRegion(0, region, matcher.FormatPNG)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}
	if r, g, b := rgb8(decode(t, data).At(0, 50)); r != 0 || g != 255 || b != 255 {
		t.Fatalf("expected the marker border at the crop edge, got rgb(%d,%d,%d)", r, g, b)
	}

	d.RemoveShapes(0, []int{0})

	data, err = New(d, Options{DPI: 72}).RenderRegion(0, region, matcher.FormatPNG)
	if err != nil {
		t.Fatalf("RenderRegion after removal: %v", err)
	}
	img := decode(t, data)
	for _, pt := range []image.Point{{0, 50}, {100, 0}, {199, 50}, {100, 99}, {100, 50}} {
		if r, g, b := rgb8(img.At(pt.X, pt.Y)); r != 255 || g != 255 || b != 255 {
			t.Errorf("marker still visible at %v: rgb(%d,%d,%d)", pt, r, g, b)
		}
	}
}

func TestRenderRegionErrors(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72})

	if _, err := r.RenderRegion(0, matcher.Rect{X: 10, Y: 10, W: 0, H: 0}, matcher.FormatPNG); err == nil {
		t.Error("zero-area region should fail")
	}
	if _, err := r.RenderRegion(0, matcher.Rect{X: 2000, Y: 2000, W: 50, H: 50}, matcher.FormatPNG); err == nil {
		t.Error("region outside the slide should fail")
	}
	if _, err := r.RenderRegion(0, matcher.Rect{X: 0, Y: 0, W: 50, H: 50}, matcher.Format("gif")); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestSlideImageCached(t *testing.T) {
	r := New(testDeck(), Options{DPI: 72})

	first, err := r.slideImage(0)
	if err != nil {
		t.Fatalf("slideImage: %v", err)
	}
	second, err := r.slideImage(0)
	if err != nil {
		t.Fatalf("slideImage: %v", err)
	}
	if first != second {
		t.Error("second render was not served from the cache")
	}
}
