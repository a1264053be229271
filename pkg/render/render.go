// Package render turns export regions into output files. A slide is
// rasterized once at the configured DPI, then each region is cropped out of
// the raster and encoded as PNG, single-page PDF, or SVG.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	gopresentation "github.com/VantageDataChat/GoPPT"
	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"

	"github.com/ptof-dev/ptof/pkg/deck"
	"github.com/ptof-dev/ptof/pkg/matcher"
)

// DefaultDPI is the raster resolution used when none is configured.
const DefaultDPI = 300

// Options configure a Renderer.
type Options struct {
	// DPI is the raster resolution. Vector output formats (PDF, SVG) embed
	// the raster at its natural point size, so DPI controls their quality
	// too.
	DPI float64
	// NoBackground renders slides on a transparent background instead of
	// the slide's own.
	NoBackground bool
	// FontDirs are extra font directories handed to the slide renderer.
	FontDirs []string
}

// Renderer renders regions of one deck. Rendered slides are cached, so
// several figures on the same slide cost one rasterization.
type Renderer struct {
	deck  *deck.Deck
	opts  Options
	cache map[int]image.Image
}

// New creates a Renderer for d.
func New(d *deck.Deck, opts Options) *Renderer {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	return &Renderer{deck: d, opts: opts, cache: make(map[int]image.Image)}
}

// RenderRegion crops region (points, slide coordinates) out of the given
// slide and encodes it in format. Regions reaching past the slide edge are
// clipped to it.
func (r *Renderer) RenderRegion(slideIndex int, region matcher.Rect, format matcher.Format) ([]byte, error) {
	if region.Empty() {
		return nil, fmt.Errorf("region %+v has zero area", region)
	}

	img, err := r.slideImage(slideIndex)
	if err != nil {
		return nil, err
	}

	scale := float64(img.Bounds().Dx()) / r.deck.Width
	crop := image.Rect(
		int(math.Floor(region.X*scale)),
		int(math.Floor(region.Y*scale)),
		int(math.Ceil((region.X+region.W)*scale)),
		int(math.Ceil((region.Y+region.H)*scale)),
	).Intersect(img.Bounds())
	if crop.Empty() {
		return nil, fmt.Errorf("region %+v lies outside the slide", region)
	}

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	xdraw.Copy(out, image.Point{}, img, crop, xdraw.Src, nil)

	// Page dimensions in points, derived from the clipped crop so that
	// vector output never claims area the raster doesn't cover.
	wPt := float64(crop.Dx()) / scale
	hPt := float64(crop.Dy()) / scale

	switch format {
	case matcher.FormatPNG:
		return encodePNG(out)
	case matcher.FormatPDF:
		return encodePDF(out, wPt, hPt)
	case matcher.FormatSVG:
		return encodeSVG(out, wPt, hPt)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func (r *Renderer) slideImage(slideIndex int) (image.Image, error) {
	if img, ok := r.cache[slideIndex]; ok {
		return img, nil
	}

	ro := &gopresentation.RenderOptions{
		Width:    int(math.Round(r.deck.Width / 72 * r.opts.DPI)),
		DPI:      r.opts.DPI,
		FontDirs: r.opts.FontDirs,
	}
	if r.opts.NoBackground {
		ro.BackgroundColor = &color.RGBA{}
	}

	img, err := r.deck.Presentation().SlideToImage(slideIndex, ro)
	if err != nil {
		return nil, fmt.Errorf("failed to render slide %d: %w", slideIndex+1, err)
	}
	r.cache[slideIndex] = img
	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// encodePDF builds a single-page PDF of exactly the region's size with the
// cropped raster covering the full page.
func encodePDF(img image.Image, wPt, hPt float64) ([]byte, error) {
	pngData, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	size := gofpdf.SizeType{Wd: wPt, Ht: hPt}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.AddPageFormat("P", size)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("figure", opts, bytes.NewReader(pngData))
	pdf.ImageOptions("figure", 0, 0, wPt, hPt, false, opts, 0, "")
	if pdf.Error() != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeSVG wraps the raster in an SVG document via a data URI. The document
// is sized in points so it drops into TeX and layout tools at the intended
// physical size.
func encodeSVG(img image.Image, wPt, hPt float64) ([]byte, error) {
	pngData, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" width=\"%gpt\" height=\"%gpt\" viewBox=\"0 0 %g %g\">\n", wPt, hPt, wPt, hPt)
	fmt.Fprintf(&buf, "  <image x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" xlink:href=\"data:image/png;base64,%s\"/>\n", wPt, hPt, base64.StdEncoding.EncodeToString(pngData))
	fmt.Fprintf(&buf, "</svg>\n")
	return buf.Bytes(), nil
}
