// Package render writes reports for humans (text, table) and machines
// (json, yaml, sarif).
package render

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// ErrUnsupportedFormat is returned for unknown output formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats returns every supported format.
func Formats() []string {
	return []string{FormatText, FormatTable, FormatJSON, FormatYAML, FormatSARIF}
}

// ValidateFormat canonicalizes format and checks it is supported.
func ValidateFormat(format string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	if normalized == "" {
		return FormatText, nil
	}

	if !slices.Contains(Formats(), normalized) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return normalized, nil
}

// Options controls Write.
type Options struct {
	Format string

	// NoColor disables ANSI colors in text output. ForceColor enables them
	// even when the output is not a terminal.
	NoColor    bool
	ForceColor bool

	// ToolVersion is reported in SARIF output.
	ToolVersion string
}

// Write renders reports to w in opts.Format.
func Write(w io.Writer, opts Options, reports ...*report.Report) error {
	format, err := ValidateFormat(opts.Format)
	if err != nil {
		return err
	}

	switch format {
	case FormatTable:
		return writeTable(w, reports)
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatYAML:
		return writeYAML(w, reports)
	case FormatSARIF:
		return writeSARIF(w, reports, opts.ToolVersion)
	default:
		return writeText(w, reports, newPalette(opts))
	}
}

// StatusOf returns "ok" for a successful outcome and the failure reason otherwise.
func StatusOf(o report.Outcome) string {
	if f, failed := o.Failure(); failed {
		return f.Reason.String()
	}

	return "ok"
}
