// Package style runs an external PEP 8 checker and converts its output into
// report findings.
package style

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// ID is the registry ID of the style analyzer.
const ID = "style"

// MetricIssues is the summary metric holding the number of issues.
const MetricIssues = "issues"

// Defaults.
const (
	DefaultCommand     = "pycodestyle"
	DefaultTimeout     = 5 * time.Second
	DefaultInstallHint = "install it with: pip install pycodestyle"

	waitDelay = 200 * time.Millisecond
)

// Configuration errors.
var (
	ErrEmptyCommand   = errors.New("style: empty command")
	ErrInvalidCommand = errors.New("style: invalid command")
	ErrInvalidTimeout = errors.New("style: timeout must be positive")
)

// Analyzer checks Python files against PEP 8 with an external tool. The tool
// reads the file from disk, so Input.Path must name an existing file.
type Analyzer struct {
	command []string
	timeout time.Duration
	hint    string
	logger  *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer) error

// WithCommand sets the checker command line, split with shell quoting rules.
func WithCommand(command string) Option {
	return func(a *Analyzer) error {
		argv, err := shlex.Split(command)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidCommand, command, err)
		}

		if len(argv) == 0 {
			return ErrEmptyCommand
		}

		a.command = argv

		return nil
	}
}

// WithTimeout bounds a single checker run.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) error {
		if d <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTimeout, d)
		}

		a.timeout = d

		return nil
	}
}

// WithInstallHint sets the hint shown when the checker is missing.
func WithInstallHint(hint string) Option {
	return func(a *Analyzer) error {
		a.hint = hint

		return nil
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) error {
		a.logger = logger

		return nil
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		command: []string{DefaultCommand},
		timeout: DefaultTimeout,
		hint:    DefaultInstallHint,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Descriptor returns stable analyzer metadata.
func (a *Analyzer) Descriptor() analyze.Descriptor {
	return analyze.Descriptor{
		ID:          ID,
		Title:       "Style Issues (PEP8)",
		Description: "Runs " + a.Tool() + " and reports each style violation.",
		Extensions:  []string{".py", ".pyi"},
	}
}

// Tool returns the checker executable name.
func (a *Analyzer) Tool() string {
	return a.command[0]
}

// Analyze runs the checker on in.Path and parses its report.
func (a *Analyzer) Analyze(ctx context.Context, in analyze.Input) report.Outcome {
	ext := analyze.ExtensionOf(in.Path)
	if !slices.Contains(a.Descriptor().Extensions, ext) {
		return report.NotApplicable(ext)
	}

	stdout, err := a.run(ctx, in.Path)
	if err != nil {
		return a.failure(ctx, err)
	}

	issues, err := ParseOutput(stdout)
	if err != nil {
		a.logger.WarnContext(ctx, "style output not recognized", "tool", a.Tool(), "file", in.Path)

		return report.Fail(report.ReasonParseError,
			fmt.Sprintf("could not parse %s output", a.Tool()), err)
	}

	findings := make([]report.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, issue.Finding())
	}

	return report.Success(findings, report.Summary{{Name: MetricIssues, Value: float64(len(issues))}})
}

// runError carries the checker's exit state.
type runError struct {
	kind     runErrorKind
	exitCode int
	stderr   string
	err      error
}

type runErrorKind int

const (
	runMissing runErrorKind = iota
	runTimeout
	runCanceled
	runExit
	runStart
)

func (e *runError) Error() string {
	return e.err.Error()
}

func (e *runError) Unwrap() error {
	return e.err
}

func (a *Analyzer) run(ctx context.Context, path string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := append(a.command[1:len(a.command):len(a.command)], path)

	cmd := exec.CommandContext(runCtx, a.command[0], args...) //nolint:gosec // the checker command is user configuration
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	switch {
	case err == nil:
		return stdout.String(), nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "", &runError{kind: runMissing, err: err}
	case ctx.Err() != nil:
		return "", &runError{kind: runCanceled, err: ctx.Err()}
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return "", &runError{kind: runTimeout, err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", &runError{kind: runStart, err: err}
	}

	// Exit status 1 means violations were found.
	if exitErr.ExitCode() == 1 && strings.TrimSpace(stdout.String()) != "" {
		return stdout.String(), nil
	}

	return "", &runError{kind: runExit, exitCode: exitErr.ExitCode(), stderr: firstLine(stderr.String()), err: err}
}

func (a *Analyzer) failure(ctx context.Context, err error) report.Outcome {
	var re *runError
	if !errors.As(err, &re) {
		return report.Fail(report.ReasonExecutionError, "style check failed", err)
	}

	a.logger.DebugContext(ctx, "style checker failed",
		"tool", a.Tool(), "error", err, "exit_code", re.exitCode, "stderr", re.stderr)

	switch re.kind {
	case runMissing:
		msg := a.Tool() + " not found"
		if a.hint != "" {
			msg += "; " + a.hint
		}

		return report.Fail(report.ReasonToolMissing, msg, err)
	case runTimeout:
		return report.Fail(report.ReasonExecutionError,
			fmt.Sprintf("style check failed: %s timed out after %s", a.Tool(), a.timeout), err)
	case runCanceled:
		return report.Fail(report.ReasonExecutionError, "style check failed: canceled", err)
	case runExit:
		return report.Fail(report.ReasonExecutionError,
			fmt.Sprintf("style check failed: %s exited with status %d", a.Tool(), re.exitCode), err)
	default:
		return report.Fail(report.ReasonExecutionError, "style check failed: could not start "+a.Tool(), err)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}

	return s
}
