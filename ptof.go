package ptof

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ptof-dev/ptof/pkg/colorspec"
	"github.com/ptof-dev/ptof/pkg/deck"
	"github.com/ptof-dev/ptof/pkg/matcher"
	"github.com/ptof-dev/ptof/pkg/render"
	"github.com/ptof-dev/ptof/pkg/report"
)

// Version is the release version reported by the CLI.
const Version = "1.2.0"

// Options configures a run.
type Options struct {
	Inputs    []string // .pptx paths or glob patterns
	OutputDir string   // default "output_dir"
	Color     string   // marker color name or hex, default "cyan"
	Tolerance float64  // per-channel color tolerance, 0 = exact match
	Margin    float64  // signed margin in points added around each marker
	DPI       float64  // raster resolution, default 300

	NoBackground bool // render on a transparent background
	AutoName     bool // export unmatched markers under generated names
	DryRun       bool // detect and report, write nothing
	Force        bool // overwrite existing outputs and colliding paths

	FontDirs []string // extra font directories for rendering
	Logger   Logger   // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Export describes one figure the run found, whether or not it was written.
type Export struct {
	File     string // source presentation
	Slide    int    // 1-based
	Region   matcher.Rect
	Output   string // resolved output path
	Format   matcher.Format
	Distance float64 // marker-to-label center distance in points
	Written  bool
}

// Result contains the run output. FileErrors holds per-input failures; they
// never abort the batch.
type Result struct {
	Exports    []Export
	Outputs    []string // paths actually written, in write order
	Warnings   []matcher.Warning
	FileErrors []error
	Markdown   string // formatted run report

	seen map[string]bool // output paths claimed in this run
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Run executes the extraction pipeline over all inputs and returns the
// result. Individual files failing to load or individual figures failing to
// render are collected, not fatal; the only hard errors are invalid options
// and an empty input set.
func Run(opts Options) (*Result, error) {
	// Apply defaults.
	if opts.OutputDir == "" {
		opts.OutputDir = "output_dir"
	}
	if opts.Color == "" {
		opts.Color = "cyan"
	}
	if opts.DPI <= 0 {
		opts.DPI = render.DefaultDPI
	}
	if opts.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must not be negative, got %g", opts.Tolerance)
	}

	target, err := colorspec.Parse(opts.Color)
	if err != nil {
		return nil, err
	}

	inputs, err := ExpandInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}

	res := &Result{seen: make(map[string]bool)}
	for _, path := range inputs {
		opts.logInfo("Processing %s...", path)
		d, err := deck.Load(path)
		if err != nil {
			opts.logError("%v", err)
			res.FileErrors = append(res.FileErrors, err)
			continue
		}
		processDeck(&opts, d, target, res)
	}

	res.Markdown = report.ToMarkdown(res.reportEntries(), res.Warnings)
	return res, nil
}

// processDeck runs detection, matching, and export for every slide of one
// presentation.
func processDeck(opts *Options, d *deck.Deck, target colorspec.RGB, res *Result) {
	renderer := render.New(d, render.Options{
		DPI:          opts.DPI,
		NoBackground: opts.NoBackground,
		FontDirs:     opts.FontDirs,
	})
	base := strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))

	for _, slide := range d.Slides {
		slideNo := slide.Index + 1

		markers := matcher.DetectMarkers(slide.Shapes, target, opts.Tolerance)
		labels, labelWarnings := matcher.DetectLabels(slide.Shapes)
		for _, w := range labelWarnings {
			w.File, w.Slide = d.Path, slideNo
			res.warn(opts, w)
		}

		if len(markers) == 0 {
			// Labels without any marker usually mean the marker color is
			// off; worth telling the user about, but only informational.
			if len(labels) > 0 {
				w := matcher.Warning{
					Code:    matcher.WarnNoMarker,
					File:    d.Path,
					Slide:   slideNo,
					Message: fmt.Sprintf("%d label(s) but no %s marker", len(labels), opts.Color),
				}
				res.Warnings = append(res.Warnings, w)
				opts.logInfo("%s", w)
			}
			continue
		}

		assignments, unmatched := matcher.Match(markers, labels)
		if opts.AutoName {
			// Generated names continue the slide's figure numbering after
			// the labeled ones.
			matched := len(assignments)
			for i, m := range unmatched {
				assignments = append(assignments, matcher.Assignment{
					Marker: m,
					Label: matcher.Label{
						Index:      -1,
						OutputPath: fmt.Sprintf("%s_s%d_%d.pdf", base, slideNo, matched+i+1),
						Format:     matcher.FormatPDF,
					},
				})
			}
		} else if len(unmatched) > 0 {
			res.warn(opts, matcher.Warning{
				Code:    matcher.WarnUnmatchedMarker,
				File:    d.Path,
				Slide:   slideNo,
				Message: fmt.Sprintf("%d marker(s) without a filename label", len(unmatched)),
			})
		}

		// Markers and the labels that name them are authoring scaffolding,
		// not figure content. Drop them from the presentation before the
		// slide is rasterized so they don't show up inside the exports.
		// Every marker goes (an unmatched one could still sit inside a
		// neighboring figure's region); labels only when assigned.
		if !opts.DryRun {
			doomed := make([]int, 0, len(markers)+len(assignments))
			for _, m := range markers {
				doomed = append(doomed, m.Index)
			}
			for _, a := range assignments {
				if a.Label.Index >= 0 {
					doomed = append(doomed, a.Label.Index)
				}
			}
			d.RemoveShapes(slide.Index, doomed)
		}

		for _, a := range assignments {
			exportFigure(opts, renderer, d, slide.Index, a, res)
		}
	}
}

// exportFigure applies the margin, resolves the output path, and renders one
// figure. Every failure mode short of an I/O bug is a warning.
func exportFigure(opts *Options, renderer *render.Renderer, d *deck.Deck, slideIndex int, a matcher.Assignment, res *Result) {
	slideNo := slideIndex + 1

	region := matcher.ComputeExportRegion(a.Marker, opts.Margin)
	if region.Empty() {
		res.warn(opts, matcher.Warning{
			Code:    matcher.WarnDegenerateRegion,
			File:    d.Path,
			Slide:   slideNo,
			Message: fmt.Sprintf("margin %gpt collapses marker %v to zero area", opts.Margin, a.Marker.Box),
		})
		return
	}

	outPath, err := resolveOutput(opts.OutputDir, a.Label.OutputPath)
	if err != nil {
		res.warn(opts, matcher.Warning{
			Code:    matcher.WarnInvalidLabel,
			File:    d.Path,
			Slide:   slideNo,
			Message: err.Error(),
		})
		return
	}

	exp := Export{
		File:     d.Path,
		Slide:    slideNo,
		Region:   region,
		Output:   outPath,
		Format:   a.Label.Format,
		Distance: a.Distance,
	}

	if res.seen[outPath] {
		res.warn(opts, matcher.Warning{
			Code:    matcher.WarnOutputCollision,
			File:    d.Path,
			Slide:   slideNo,
			Message: fmt.Sprintf("%s already produced by an earlier figure in this run", outPath),
		})
		if !opts.Force {
			res.Exports = append(res.Exports, exp)
			return
		}
	}
	res.seen[outPath] = true

	if !opts.Force && !opts.DryRun {
		if _, err := os.Stat(outPath); err == nil {
			res.warn(opts, matcher.Warning{
				Code:    matcher.WarnOutputCollision,
				File:    d.Path,
				Slide:   slideNo,
				Message: fmt.Sprintf("%s already exists (use --force to overwrite)", outPath),
			})
			res.Exports = append(res.Exports, exp)
			return
		}
	}

	if opts.DryRun {
		opts.logInfo("[dry-run] slide %d: %v -> %s", slideNo, region, outPath)
		res.Exports = append(res.Exports, exp)
		return
	}

	data, err := renderer.RenderRegion(slideIndex, region, a.Label.Format)
	if err != nil {
		opts.logError("slide %d: %v", slideNo, err)
		res.FileErrors = append(res.FileErrors, fmt.Errorf("%s slide %d: %w", d.Path, slideNo, err))
		res.Exports = append(res.Exports, exp)
		return
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		opts.logError("%v", err)
		res.FileErrors = append(res.FileErrors, err)
		res.Exports = append(res.Exports, exp)
		return
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		opts.logError("%v", err)
		res.FileErrors = append(res.FileErrors, err)
		res.Exports = append(res.Exports, exp)
		return
	}

	exp.Written = true
	res.Exports = append(res.Exports, exp)
	res.Outputs = append(res.Outputs, outPath)
	opts.logInfo("Wrote %s (slide %d, %.0fx%.0fpt)", outPath, slideNo, region.W, region.H)
}

func (r *Result) warn(opts *Options, w matcher.Warning) {
	r.Warnings = append(r.Warnings, w)
	opts.logWarn("%s", w)
}

func (r *Result) reportEntries() []report.Entry {
	entries := make([]report.Entry, 0, len(r.Exports))
	for _, e := range r.Exports {
		entries = append(entries, report.Entry{
			File:     e.File,
			Slide:    e.Slide,
			Output:   e.Output,
			Format:   e.Format,
			Distance: e.Distance,
			Written:  e.Written,
		})
	}
	return entries
}

// ExpandInputs expands glob patterns, verifies plain paths exist, and
// deduplicates while preserving first-seen order. An empty final list is an
// error: a run with nothing to do is always a mistake.
func ExpandInputs(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	for _, p := range patterns {
		var matches []string
		if strings.ContainsAny(p, "*?[") {
			m, err := filepath.Glob(p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
			if len(m) == 0 {
				return nil, fmt.Errorf("no files match %q", p)
			}
			sort.Strings(m)
			matches = m
		} else {
			if _, err := os.Stat(p); err != nil {
				return nil, fmt.Errorf("input %s: %w", p, err)
			}
			matches = []string{p}
		}

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}
	return paths, nil
}

// resolveOutput joins a label's filename onto the output directory, rejecting
// names that would escape it. Relative subdirectories inside the output
// directory are allowed.
func resolveOutput(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output name %q escapes the output directory", name)
	}
	return filepath.Join(dir, clean), nil
}
