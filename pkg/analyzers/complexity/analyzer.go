// Package complexity scores the cyclomatic complexity of functions, methods and
// classes in source files parsed with tree-sitter.
package complexity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

// ID is the registry ID of the complexity analyzer.
const ID = "complexity"

// Summary metric names.
const (
	MetricAverage = "average_complexity"
	MetricMax     = "max_complexity"
	MetricBlocks  = "blocks"
)

var errPanic = errors.New("complexity analyzer panicked")

// BlockKind classifies a scored block.
type BlockKind string

// Block kinds.
const (
	KindFunction BlockKind = "function"
	KindMethod   BlockKind = "method"
	KindClass    BlockKind = "class"
)

// Block is one scored unit of source.
type Block struct {
	Name       string
	Kind       BlockKind
	Line       int
	Complexity int
}

// blockExtractor walks a parsed tree and returns its blocks in declaration order.
type blockExtractor func(t *uast.Tree) []Block

var extractors = map[string]blockExtractor{
	uast.LanguagePython: pythonBlocks,
	uast.LanguageGo:     goBlocks,
}

// validators reject trees the grammar accepts but the language does not.
var validators = map[string]func(*uast.Tree) error{
	uast.LanguagePython: pythonSyntaxError,
}

// Analyzer computes cyclomatic complexity for every top-level block of a file.
type Analyzer struct {
	parser     *uast.Parser
	thresholds report.Thresholds
	logger     *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThresholds overrides the severity thresholds.
func WithThresholds(th report.Thresholds) Option {
	return func(a *Analyzer) {
		a.thresholds = th
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// WithParser shares a tree-sitter parser between analyzers.
func WithParser(p *uast.Parser) Option {
	return func(a *Analyzer) {
		a.parser = p
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: report.DefaultThresholds(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.parser == nil {
		a.parser = uast.NewParser()
	}

	return a
}

// Descriptor returns stable analyzer metadata.
func (a *Analyzer) Descriptor() analyze.Descriptor {
	exts := make([]string, 0, len(extractors))
	for _, lang := range []string{uast.LanguagePython, uast.LanguageGo} {
		exts = append(exts, uast.ExtensionsFor(lang)...)
	}

	return analyze.Descriptor{
		ID:          ID,
		Title:       "Cyclomatic Complexity",
		Description: "Scores functions, methods and classes by decision points + 1.",
		Extensions:  exts,
	}
}

// Analyze scores in.Content. It never panics; parse failures become a
// ParseError outcome.
func (a *Analyzer) Analyze(ctx context.Context, in analyze.Input) (out report.Outcome) {
	ext := analyze.ExtensionOf(in.Path)

	lang, ok := uast.LanguageForExtension(ext)
	if !ok {
		return report.NotApplicable(ext)
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "complexity analyzer panicked", "file", in.Path, "panic", r)
			out = report.Fail(report.ReasonParseError, "could not parse source: internal parser failure",
				fmt.Errorf("%w: %v", errPanic, r))
		}
	}()

	blocks, err := a.Blocks(ctx, lang, []byte(in.Content))
	if err != nil {
		a.logger.DebugContext(ctx, "complexity parse failed", "file", in.Path, "error", err)

		var syntaxErr *uast.SyntaxError
		if errors.As(err, &syntaxErr) {
			return report.Fail(report.ReasonParseError, "could not parse source: "+syntaxErr.Error(), err)
		}

		return report.Fail(report.ReasonParseError, "could not parse source", err)
	}

	return a.outcome(blocks)
}

// Blocks parses content as language and returns its scored blocks sorted by
// start line, ties kept in declaration order.
func (a *Analyzer) Blocks(ctx context.Context, language string, content []byte) ([]Block, error) {
	extract, ok := extractors[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", uast.ErrLanguageNotAvailable, language)
	}

	tree, err := a.parser.Parse(ctx, language, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if validate, ok := validators[language]; ok {
		if err := validate(tree); err != nil {
			return nil, err
		}
	}

	blocks := extract(tree)
	slices.SortStableFunc(blocks, func(x, y Block) int {
		return x.Line - y.Line
	})

	return blocks, nil
}

func (a *Analyzer) outcome(blocks []Block) report.Outcome {
	findings := make([]report.Finding, 0, len(blocks))
	maxScore := 0

	for _, b := range blocks {
		maxScore = max(maxScore, b.Complexity)

		findings = append(findings, report.NewFinding(
			ID,
			b.Name,
			report.Location{Line: b.Line},
			report.ComplexitySeverity(b.Complexity, a.thresholds),
			fmt.Sprintf("%s complexity %d", b.Kind, b.Complexity),
		).WithMetric(float64(b.Complexity)))
	}

	return report.Success(findings, report.Summary{
		{Name: MetricAverage, Value: Average(blocks)},
		{Name: MetricMax, Value: float64(maxScore)},
		{Name: MetricBlocks, Value: float64(len(blocks))},
	})
}

// Average returns the mean complexity of blocks, or 0 when there are none.
func Average(blocks []Block) float64 {
	if len(blocks) == 0 {
		return 0
	}

	total := 0
	for _, b := range blocks {
		total += b.Complexity
	}

	return float64(total) / float64(len(blocks))
}
