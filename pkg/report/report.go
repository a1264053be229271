// Package report renders a run summary as a markdown document. The report
// lists every export the run planned or produced plus the warnings it
// collected, so a run can be reviewed (or diffed) without scrolling terminal
// output.
package report

import (
	"fmt"
	"strings"

	"github.com/ptof-dev/ptof/pkg/matcher"
)

// Entry describes one planned or written export.
type Entry struct {
	File     string
	Slide    int // 1-based
	Output   string
	Format   matcher.Format
	Distance float64 // marker-to-label center distance in points
	Written  bool
}

// ToMarkdown renders the report. entries and warnings may both be empty; the
// document always carries the header and the totals line.
func ToMarkdown(entries []Entry, warnings []matcher.Warning) string {
	var sb strings.Builder

	sb.WriteString("# PtoF Run Report\n\n")

	written := 0
	for _, e := range entries {
		if e.Written {
			written++
		}
	}
	sb.WriteString(fmt.Sprintf("%d figure(s) found, %d written, %d warning(s).\n\n",
		len(entries), written, len(warnings)))

	if len(entries) > 0 {
		sb.WriteString("## Figures\n\n")
		sb.WriteString("| Source | Slide | Output | Format | Label Distance | Status |\n")
		sb.WriteString("|--------|-------|--------|--------|----------------|--------|\n")
		for _, e := range entries {
			status := "planned"
			if e.Written {
				status = "written"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | `%s` | %s | %.1fpt | %s |\n",
				e.File, e.Slide, e.Output, strings.ToUpper(string(e.Format)), e.Distance, status))
		}
		sb.WriteString("\n")
	}

	if len(warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
