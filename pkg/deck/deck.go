// Package deck loads PowerPoint presentations and flattens each slide's
// shape tree into the Shape model the matcher consumes. All geometry is
// converted from EMU to points on the way out, so nothing downstream ever
// sees EMU.
package deck

import (
	"fmt"
	"strings"

	gopresentation "github.com/VantageDataChat/GoPPT"

	"github.com/ptof-dev/ptof/pkg/colorspec"
	"github.com/ptof-dev/ptof/pkg/matcher"
)

// Slide holds the flattened shapes of one slide. Index is 0-based; user-facing
// messages add 1. refs keeps the underlying presentation shape for each
// flattened entry so RemoveShapes can find it again.
type Slide struct {
	Index  int
	Shapes []matcher.Shape

	refs []gopresentation.Shape
}

// Deck is a loaded presentation. Width and Height are the slide dimensions in
// points, shared by every slide in the file. Slides is a snapshot taken at
// load time; RemoveShapes edits the underlying presentation, not the
// snapshot.
type Deck struct {
	Path   string
	Width  float64
	Height float64
	Slides []Slide

	pres *gopresentation.Presentation
}

// Load reads a .pptx file from disk.
func Load(path string) (*Deck, error) {
	pres, err := gopresentation.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return FromPresentation(pres, path), nil
}

// FromPresentation wraps an already-open presentation. path is only used for
// reporting and may be empty.
func FromPresentation(pres *gopresentation.Presentation, path string) *Deck {
	layout := pres.GetLayout()
	d := &Deck{
		Path:   path,
		Width:  gopresentation.EMUToPoint(layout.CX),
		Height: gopresentation.EMUToPoint(layout.CY),
		pres:   pres,
	}
	for i, slide := range pres.GetAllSlides() {
		s := Slide{Index: i}
		for _, sh := range slide.GetShapes() {
			s.collect(sh)
		}
		d.Slides = append(d.Slides, s)
	}
	return d
}

// Presentation exposes the underlying presentation for rendering.
func (d *Deck) Presentation() *gopresentation.Presentation {
	return d.pres
}

// RemoveShapes deletes the given flattened shape indexes from the underlying
// presentation slide, so that later renders of the slide don't draw them.
// Unknown indexes are ignored. The flattened Shapes snapshot is unchanged:
// detection has already consumed it.
func (d *Deck) RemoveShapes(slideIndex int, indexes []int) {
	if slideIndex < 0 || slideIndex >= len(d.Slides) {
		return
	}
	refs := d.Slides[slideIndex].refs
	slide, err := d.pres.GetSlide(slideIndex)
	if err != nil {
		return
	}
	for _, i := range indexes {
		if i < 0 || i >= len(refs) {
			continue
		}
		removeShape(slide, refs[i])
	}
}

// removeShape deletes target from the slide's top level or, failing that,
// from whichever group contains it.
func removeShape(slide *gopresentation.Slide, target gopresentation.Shape) bool {
	for i, sh := range slide.GetShapes() {
		if sh == target {
			return slide.RemoveShape(i) == nil
		}
		if g, ok := sh.(*gopresentation.GroupShape); ok && removeFromGroup(g, target) {
			return true
		}
	}
	return false
}

func removeFromGroup(g *gopresentation.GroupShape, target gopresentation.Shape) bool {
	for i, sh := range g.GetShapes() {
		if sh == target {
			return g.RemoveShape(i) == nil
		}
		if sub, ok := sh.(*gopresentation.GroupShape); ok && removeFromGroup(sub, target) {
			return true
		}
	}
	return false
}

// collect converts one shape into the matcher model. Groups are expanded
// recursively; child shapes carry absolute slide coordinates, so no offset
// arithmetic is needed.
func (s *Slide) collect(sh gopresentation.Shape) {
	if g, ok := sh.(*gopresentation.GroupShape); ok {
		for _, child := range g.GetShapes() {
			s.collect(child)
		}
		return
	}

	out := matcher.Shape{Box: boxOf(sh)}
	switch t := sh.(type) {
	case *gopresentation.AutoShape:
		out.Fill = fillColor(t.GetFill())
		out.Line = borderColor(t.GetBorder())
		out.Text = t.GetText()
		if out.Text == "" {
			out.Text = paragraphText(t.GetParagraphs())
		}
	case *gopresentation.PlaceholderShape:
		out.Fill = fillColor(t.GetFill())
		out.Line = borderColor(t.GetBorder())
		out.Text = paragraphText(t.GetParagraphs())
	case *gopresentation.RichTextShape:
		out.Fill = fillColor(t.GetFill())
		out.Line = borderColor(t.GetBorder())
		out.Text = paragraphText(t.GetParagraphs())
	case *gopresentation.LineShape:
		out.Line = colorOf(t.GetLineColor())
	}

	s.Shapes = append(s.Shapes, out)
	s.refs = append(s.refs, sh)
}

func boxOf(sh gopresentation.Shape) matcher.Rect {
	return matcher.Rect{
		X: gopresentation.EMUToPoint(sh.GetOffsetX()),
		Y: gopresentation.EMUToPoint(sh.GetOffsetY()),
		W: gopresentation.EMUToPoint(sh.GetWidth()),
		H: gopresentation.EMUToPoint(sh.GetHeight()),
	}
}

func fillColor(f *gopresentation.Fill) *colorspec.RGB {
	if f == nil || f.Type != gopresentation.FillSolid {
		return nil
	}
	return colorOf(f.Color)
}

func borderColor(b *gopresentation.Border) *colorspec.RGB {
	if b == nil || b.Style == "" || b.Style == gopresentation.BorderNone {
		return nil
	}
	return colorOf(b.Color)
}

func colorOf(c gopresentation.Color) *colorspec.RGB {
	if c.ARGB == "" {
		return nil
	}
	return &colorspec.RGB{R: c.GetRed(), G: c.GetGreen(), B: c.GetBlue()}
}

func paragraphText(paragraphs []*gopresentation.Paragraph) string {
	var b strings.Builder
	for i, p := range paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, el := range p.GetElements() {
			switch e := el.(type) {
			case *gopresentation.TextRun:
				b.WriteString(e.GetText())
			case *gopresentation.BreakElement:
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
