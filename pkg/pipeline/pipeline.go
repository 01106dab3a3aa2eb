// Package pipeline turns a source file into a report by running every
// registered analyzer over it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/observability"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

var errAnalyzerPanic = errors.New("analyzer panicked")

const (
	spanBuild    = "codelens.pipeline.build"
	spanAnalyzer = "codelens.analyzer"

	statusFileRead = "file_read_error"
	statusCanceled = "canceled"
)

// Pipeline runs analyzers sequentially in registration order. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	registry    *analyze.Registry
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.PipelineMetrics
	maxFileSize uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer used for build and analyzer spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithMetrics records analyzer runs and builds.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithMaxFileSize limits the files Open accepts. 0 disables the limit.
func WithMaxFileSize(n uint64) Option {
	return func(p *Pipeline) { p.maxFileSize = n }
}

// New creates a Pipeline over reg.
func New(reg *analyze.Registry, opts ...Option) *Pipeline {
	noop := observability.Noop(slog.Default())

	p := &Pipeline{
		registry: reg,
		logger:   noop.Logger,
		tracer:   noop.Tracer,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Registry returns the analyzers the pipeline runs.
func (p *Pipeline) Registry() *analyze.Registry {
	return p.registry
}

// Open reads path and builds its report. Read failures return a
// *FileReadError and no report.
func (p *Pipeline) Open(ctx context.Context, path string) (*report.Report, error) {
	content, err := ReadSource(path, p.maxFileSize)
	if err != nil {
		p.logger.WarnContext(ctx, "cannot read source", "file", path, "error", err)
		p.recordReport(ctx, statusFileRead)

		return nil, err
	}

	return p.Build(ctx, path, content)
}

// Build runs every registered analyzer over content. The report has one entry
// per analyzer in registration order; analyzers that do not claim the file
// extension get a NotApplicable entry without running. Analyzer failures,
// panics included, are recorded in their entry. The only error is the
// context's, in which case the partial result is discarded.
func (p *Pipeline) Build(ctx context.Context, path, content string) (*report.Report, error) {
	ext := analyze.ExtensionOf(path)

	ctx, span := p.tracer.Start(ctx, spanBuild, trace.WithAttributes(
		attribute.String("code.filepath", path),
		attribute.String("codelens.extension", ext),
	))
	defer span.End()

	analyzers := p.registry.Analyzers()
	entries := make([]report.Entry, 0, len(analyzers))

	for _, a := range analyzers {
		if err := ctx.Err(); err != nil {
			return nil, p.abort(ctx, span, path, err)
		}

		d := a.Descriptor()

		out := report.NotApplicable(ext)
		if p.registry.IsApplicable(d.ID, ext) {
			out = p.run(ctx, a, analyze.Input{Path: path, Content: content})
		}

		entries = append(entries, report.Entry{AnalyzerID: d.ID, Title: d.Title, Outcome: out})
	}

	if err := ctx.Err(); err != nil {
		return nil, p.abort(ctx, span, path, err)
	}

	rep := report.New(path, DetectLanguage(path, content), entries)

	span.SetAttributes(attribute.Int("codelens.failed", rep.Failed()))
	p.recordReport(ctx, observability.StatusOK)
	p.logger.DebugContext(ctx, "report built", "file", path, "entries", len(entries), "failed", rep.Failed())

	return rep, nil
}

func (p *Pipeline) abort(ctx context.Context, span trace.Span, path string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "canceled")
	p.recordReport(context.WithoutCancel(ctx), statusCanceled)
	p.logger.DebugContext(ctx, "report discarded", "file", path, "cause", context.Cause(ctx))

	return fmt.Errorf("build %s: %w", path, err)
}

// run executes one analyzer, converting a panic into an ExecutionError.
func (p *Pipeline) run(ctx context.Context, a analyze.Analyzer, in analyze.Input) (out report.Outcome) {
	id := a.Descriptor().ID

	ctx, span := p.tracer.Start(ctx, spanAnalyzer, trace.WithAttributes(attribute.String("codelens.analyzer", id)))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "analyzer panicked", "analyzer", id, "file", in.Path, "panic", r)
			out = report.Fail(report.ReasonExecutionError, "analyzer failed unexpectedly",
				fmt.Errorf("%w: %s: %v", errAnalyzerPanic, id, r))
		}

		elapsed := time.Since(start)
		status := observability.StatusOK

		if f, failed := out.Failure(); failed {
			status = f.Reason.String()
			span.SetStatus(codes.Error, f.Message)

			if cause := errors.Unwrap(f); cause != nil {
				span.RecordError(cause)
			}
		}

		span.SetAttributes(
			attribute.String("codelens.status", status),
			attribute.Int("codelens.findings", len(out.Findings())),
		)
		span.End()

		if p.metrics != nil {
			p.metrics.RecordRun(context.WithoutCancel(ctx), id, status, elapsed)
		}

		p.logger.DebugContext(ctx, "analyzer finished",
			"analyzer", id, "file", in.Path, "status", status,
			"findings", len(out.Findings()), "duration", elapsed)
	}()

	return a.Analyze(ctx, in)
}

func (p *Pipeline) recordReport(ctx context.Context, status string) {
	if p.metrics != nil {
		p.metrics.RecordReport(ctx, status)
	}
}

// DetectLanguage names the language of a file from its name and content, or
// returns "" when unknown.
func DetectLanguage(path, content string) string {
	return enry.GetLanguage(filepath.Base(path), []byte(content))
}
