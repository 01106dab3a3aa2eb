package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/style"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

type palette struct {
	low, medium, high, style, failure, muted *color.Color
}

func newPalette(opts Options) palette {
	p := palette{
		low:     color.New(color.FgGreen),
		medium:  color.New(color.FgYellow),
		high:    color.New(color.FgRed),
		style:   color.New(color.FgMagenta),
		failure: color.New(color.FgRed),
		muted:   color.New(color.Faint),
	}

	for _, c := range []*color.Color{p.low, p.medium, p.high, p.style, p.failure, p.muted} {
		switch {
		case opts.NoColor:
			c.DisableColor()
		case opts.ForceColor:
			c.EnableColor()
		}
	}

	return p
}

func (p palette) severity(s report.Severity) *color.Color {
	switch s {
	case report.SeverityMedium:
		return p.medium
	case report.SeverityHigh:
		return p.high
	case report.SeverityStyle:
		return p.style
	default:
		return p.low
	}
}

// textWriter keeps the first write error so rendering code can stay linear.
type textWriter struct {
	w   *bufio.Writer
	err error
}

func (t *textWriter) printf(c *color.Color, format string, args ...any) {
	if t.err != nil {
		return
	}

	if c == nil {
		_, t.err = fmt.Fprintf(t.w, format, args...)

		return
	}

	_, t.err = c.Fprintf(t.w, format, args...)
}

func writeText(w io.Writer, reports []*report.Report, p palette) error {
	tw := &textWriter{w: bufio.NewWriter(w)}

	for i, rep := range reports {
		if i > 0 {
			tw.printf(nil, "\n")
		}

		writeTextReport(tw, rep, p)
	}

	if tw.err != nil {
		return fmt.Errorf("write text report: %w", tw.err)
	}

	return tw.w.Flush()
}

func writeTextReport(tw *textWriter, rep *report.Report, p palette) {
	tw.printf(nil, "Analysis for %s:\n\n", rep.DisplayName())

	for _, e := range rep.Entries() {
		tw.printf(nil, "%s:\n", e.Title)

		if f, failed := e.Outcome.Failure(); failed {
			c := p.failure
			if f.Reason == report.ReasonNotApplicable {
				c = p.muted
			}

			tw.printf(c, "%s\n\n", f.Message)

			continue
		}

		switch e.AnalyzerID {
		case complexity.ID:
			writeComplexity(tw, e.Outcome, p)
		case style.ID:
			writeStyle(tw, rep.File(), e.Outcome, p)
		default:
			writeGeneric(tw, e.Outcome, p)
		}
	}
}

func writeComplexity(tw *textWriter, o report.Outcome, p palette) {
	for _, f := range o.Findings() {
		score, _ := f.MetricValue()
		tw.printf(p.severity(f.Severity), "%s (line %d): complexity %d\n", f.Label, f.Location.Line, int(score))
	}

	avg, _ := o.Summary().Get(complexity.MetricAverage)
	tw.printf(nil, "\nAverage complexity: %.2f\n\n", avg)
}

func writeStyle(tw *textWriter, file string, o report.Outcome, p palette) {
	findings := o.Findings()
	if len(findings) == 0 {
		tw.printf(nil, "No style issues found.\n\n")

		return
	}

	for _, f := range findings {
		tw.printf(p.severity(f.Severity), "%s:%s: %s %s\n", file, f.Location, f.Label, f.Message)
	}

	tw.printf(nil, "\n")
}

func writeGeneric(tw *textWriter, o report.Outcome, p palette) {
	findings := o.Findings()
	if len(findings) == 0 {
		tw.printf(nil, "No findings.\n\n")

		return
	}

	for _, f := range findings {
		tw.printf(p.severity(f.Severity), "%s (line %s): %s\n", f.Label, f.Location, f.Message)
	}

	tw.printf(nil, "\n")
}
