package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/style"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

// AnalyzerSettings configures the built-in analyzers. Zero values keep each
// analyzer's defaults.
type AnalyzerSettings struct {
	Thresholds       report.Thresholds
	StyleCommand     string
	StyleTimeout     time.Duration
	StyleInstallHint string
	Logger           *slog.Logger
	Parser           *uast.Parser
}

// DefaultRegistry registers the complexity analyzer followed by the style
// analyzer.
func DefaultRegistry(s AnalyzerSettings) (*analyze.Registry, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cxOpts := []complexity.Option{complexity.WithLogger(logger)}
	if s.Thresholds != (report.Thresholds{}) {
		cxOpts = append(cxOpts, complexity.WithThresholds(s.Thresholds))
	}

	if s.Parser != nil {
		cxOpts = append(cxOpts, complexity.WithParser(s.Parser))
	}

	styleOpts := []style.Option{style.WithLogger(logger)}
	if s.StyleCommand != "" {
		styleOpts = append(styleOpts, style.WithCommand(s.StyleCommand))
	}

	if s.StyleTimeout != 0 {
		styleOpts = append(styleOpts, style.WithTimeout(s.StyleTimeout))
	}

	if s.StyleInstallHint != "" {
		styleOpts = append(styleOpts, style.WithInstallHint(s.StyleInstallHint))
	}

	styleAnalyzer, err := style.NewAnalyzer(styleOpts...)
	if err != nil {
		return nil, fmt.Errorf("style analyzer: %w", err)
	}

	return analyze.NewRegistry(complexity.NewAnalyzer(cxOpts...), styleAnalyzer)
}
