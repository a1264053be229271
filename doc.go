// Package ptof extracts figures from PowerPoint slides. Authors draw a
// rectangle of a well-known color (cyan by default) around the region they
// want exported and put a text box reading "filename=<name>.<ext>" next to
// it; ptof detects the marker rectangles, pairs each with its nearest label,
// and exports the enclosed region as PDF, PNG, or SVG at the configured
// resolution.
//
// The CLI lives in cmd/ptof; this root package exposes the same pipeline as
// a Go API so that callers can embed figure extraction in their own build
// tooling without shelling out.
//
// # Quick start
//
//	result, err := ptof.Run(ptof.Options{
//	    Inputs:    []string{"slides/*.pptx"},
//	    OutputDir: "figures",
//	    Margin:    4,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range result.Warnings {
//	    log.Println(w)
//	}
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
//
//	type myLogger struct{}
//	func (l *myLogger) Infof(f string, a ...any)  { log.Printf("[INFO]  "+f, a...) }
//	func (l *myLogger) Warnf(f string, a ...any)  { log.Printf("[WARN]  "+f, a...) }
//	func (l *myLogger) Errorf(f string, a ...any) { log.Printf("[ERROR] "+f, a...) }
//
// # Marker conventions
//
// A marker is any shape whose solid fill or outline color lies within
// [Options.Tolerance] of [Options.Color] on every RGB channel. Labels are
// matched to markers by greedy nearest-pair assignment over center distance,
// so each label names exactly one figure even when a slide carries several.
// Markers without a label are reported; with [Options.AutoName] they are
// exported as PDF under generated <file>_s<slide>_<n>.pdf names instead.
package ptof
