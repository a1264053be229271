// Package matcher finds figure markers and filename labels among a slide's
// shapes and pairs them up. It is pure geometry and text: loading slides and
// rendering regions live elsewhere.
package matcher

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ptof-dev/ptof/pkg/colorspec"
)

// labelPattern extracts the output filename from a label text. The prefix and
// the extension are case-insensitive; the captured name is kept verbatim.
var labelPattern = regexp.MustCompile(`(?i)filename\s*=\s*(\S+\.(pdf|png|svg))`)

// labelPrefix recognizes texts that were meant to be labels so that malformed
// ones can be reported instead of silently ignored.
var labelPrefix = regexp.MustCompile(`(?i)filename\s*=`)

// DetectMarkers returns the shapes whose fill or outline color is within
// tolerance of target, in input order. Markers are usually drawn as unfilled
// rectangles so the figure stays visible, which is why the outline color
// counts too. Shapes with neither a fill nor an outline never match.
func DetectMarkers(shapes []Shape, target colorspec.RGB, tolerance float64) []Marker {
	var markers []Marker
	for i, s := range shapes {
		if isMarkerColor(s, target, tolerance) {
			markers = append(markers, Marker{Index: i, Box: s.Box})
		}
	}
	return markers
}

func isMarkerColor(s Shape, target colorspec.RGB, tolerance float64) bool {
	if s.Fill != nil && s.Fill.Within(target, tolerance) {
		return true
	}
	if s.Line != nil && s.Line.Within(target, tolerance) {
		return true
	}
	return false
}

// DetectLabels returns the shapes whose text names an output file, in input
// order. Texts that begin with "filename=" but don't parse are reported as
// InvalidLabelFormat warnings.
func DetectLabels(shapes []Shape) ([]Label, []Warning) {
	var labels []Label
	var warnings []Warning
	for i, s := range shapes {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		m := labelPattern.FindStringSubmatch(text)
		if m == nil {
			if labelPrefix.MatchString(text) {
				warnings = append(warnings, Warning{
					Code:    WarnInvalidLabel,
					Message: "label " + truncQuote(text) + " is not filename=<name>.{pdf,png,svg}",
				})
			}
			continue
		}
		labels = append(labels, Label{
			Index:      i,
			Box:        s.Box,
			OutputPath: m[1],
			Format:     Format(strings.ToLower(m[2])),
		})
	}
	return labels, warnings
}

func truncQuote(s string) string {
	const max = 60
	if len(s) > max {
		s = s[:max] + "..."
	}
	return strconv.Quote(s)
}

// Match assigns labels to markers by greedy global nearest pairing: all
// marker/label pairs are ordered by center distance and consumed smallest
// first, each marker and label used at most once. Ties break on marker input
// order, then label input order, so the result is deterministic for a given
// shape list. Markers left without a label are returned separately.
func Match(markers []Marker, labels []Label) ([]Assignment, []Marker) {
	type pair struct {
		mi, li int
		dist   float64
	}

	pairs := make([]pair, 0, len(markers)*len(labels))
	for mi, m := range markers {
		for li, l := range labels {
			pairs = append(pairs, pair{mi: mi, li: li, dist: m.Box.CenterDistance(l.Box)})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].dist != pairs[j].dist {
			return pairs[i].dist < pairs[j].dist
		}
		if pairs[i].mi != pairs[j].mi {
			return pairs[i].mi < pairs[j].mi
		}
		return pairs[i].li < pairs[j].li
	})

	usedMarker := make([]bool, len(markers))
	usedLabel := make([]bool, len(labels))
	var assignments []Assignment
	for _, p := range pairs {
		if usedMarker[p.mi] || usedLabel[p.li] {
			continue
		}
		usedMarker[p.mi] = true
		usedLabel[p.li] = true
		assignments = append(assignments, Assignment{
			Marker:   markers[p.mi],
			Label:    labels[p.li],
			Distance: p.dist,
		})
	}

	// Report assignments in marker input order, not discovery order.
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Marker.Index < assignments[j].Marker.Index
	})

	var unmatched []Marker
	for mi, used := range usedMarker {
		if !used {
			unmatched = append(unmatched, markers[mi])
		}
	}
	return assignments, unmatched
}

// ComputeExportRegion applies the uniform margin to a marker's box. A margin
// of zero returns the box unchanged; a negative margin can collapse the
// region to zero area, which callers report as DegenerateRegion.
func ComputeExportRegion(m Marker, margin float64) Rect {
	return m.Box.Expand(margin)
}
