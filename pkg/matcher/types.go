package matcher

import (
	"fmt"
	"math"

	"github.com/ptof-dev/ptof/pkg/colorspec"
)

// Format is an export file format derived from a label's extension.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Rect is an axis-aligned rectangle in slide coordinates, measured in points
// with the origin at the top-left of the slide.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the rectangle's center point.
func (r Rect) Center() (x, y float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// CenterDistance returns the Euclidean distance between the centers of r and o.
func (r Rect) CenterDistance(o Rect) float64 {
	ax, ay := r.Center()
	bx, by := o.Center()
	return math.Hypot(ax-bx, ay-by)
}

// Expand grows the rectangle by margin on every edge. A negative margin
// shrinks it; width and height are clamped at zero around the original
// center, so a margin can collapse a rectangle but never invert it.
func (r Rect) Expand(margin float64) Rect {
	out := Rect{
		X: r.X - margin,
		Y: r.Y - margin,
		W: r.W + 2*margin,
		H: r.H + 2*margin,
	}
	if out.W < 0 {
		out.X += out.W / 2
		out.W = 0
	}
	if out.H < 0 {
		out.Y += out.H / 2
		out.H = 0
	}
	return out
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Shape is the flattened view of a slide shape that marker and label
// detection operate on. Fill and Line are nil when the shape has no solid
// fill or no visible outline; a shape with neither can never be a marker.
type Shape struct {
	Box  Rect
	Fill *colorspec.RGB
	Line *colorspec.RGB
	Text string
}

// Marker is a shape identified as a figure marker. Index is the shape's
// position in the slide's shape list.
type Marker struct {
	Index int
	Box   Rect
}

// Label is a shape whose text names an output file. OutputPath is the
// captured <name>.<ext> verbatim; Format is the extension, lowercased.
type Label struct {
	Index      int
	Box        Rect
	OutputPath string
	Format     Format
}

// Assignment pairs a marker with the label that names its output.
type Assignment struct {
	Marker   Marker
	Label    Label
	Distance float64
}

// WarningCode classifies the non-fatal conditions a run can report.
type WarningCode string

const (
	// WarnNoMarker: a slide has filename labels but no marker of the target
	// color. Informational; usually means the marker color is wrong.
	WarnNoMarker WarningCode = "NoMarkerFound"
	// WarnUnmatchedMarker: more markers than labels on a slide.
	WarnUnmatchedMarker WarningCode = "UnmatchedMarker"
	// WarnInvalidLabel: a text starts with "filename=" but the remainder is
	// not a <name>.<ext> with a supported extension.
	WarnInvalidLabel WarningCode = "InvalidLabelFormat"
	// WarnDegenerateRegion: the margin collapsed an export region to zero area.
	WarnDegenerateRegion WarningCode = "DegenerateRegion"
	// WarnOutputCollision: two exports resolved to the same output path, or
	// the path already exists and overwriting was not forced.
	WarnOutputCollision WarningCode = "OutputCollision"
)

// Warning is a reportable, non-fatal condition. File and Slide locate it;
// Slide is 1-based and 0 when the warning is not tied to a slide.
type Warning struct {
	Code    WarningCode
	File    string
	Slide   int
	Message string
}

func (w Warning) String() string {
	switch {
	case w.File != "" && w.Slide > 0:
		return fmt.Sprintf("%s: %s slide %d: %s", w.Code, w.File, w.Slide, w.Message)
	case w.File != "":
		return fmt.Sprintf("%s: %s: %s", w.Code, w.File, w.Message)
	default:
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
}
