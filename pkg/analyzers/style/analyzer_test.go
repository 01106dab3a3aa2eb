package style_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/style"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// fakeTool writes a checker script and returns a command line running it
// through sh, which avoids ETXTBSY on freshly written executables.
func fakeTool(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-checker.sh")
	script := body + "\n"

	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	return "/bin/sh " + path
}

func newAnalyzer(t *testing.T, opts ...style.Option) *style.Analyzer {
	t.Helper()

	a, err := style.NewAnalyzer(opts...)
	require.NoError(t, err)

	return a
}

var pyInput = analyze.Input{Path: "sample.py", Content: "a=1+2\n"}

func writePython(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("a=1+2\n"), 0o600))

	return path
}

func TestAnalyzer_Descriptor(t *testing.T) {
	t.Parallel()

	d := newAnalyzer(t).Descriptor()
	assert.Equal(t, style.ID, d.ID)
	assert.Equal(t, "Style Issues (PEP8)", d.Title)
	assert.Equal(t, []string{".py", ".pyi"}, d.Extensions)
}

func TestAnalyzer_ReportsIssues(t *testing.T) {
	t.Parallel()

	tool := fakeTool(t, `echo "stdin:30:6: E225 missing whitespace around operator"
echo "stdin:31:11: E201 whitespace after '('"
exit 1`)

	out := newAnalyzer(t, style.WithCommand(tool)).Analyze(context.Background(), pyInput)
	require.True(t, out.OK(), "%+v", out)

	findings := out.Findings()
	require.Len(t, findings, 2)

	first := findings[0]
	assert.Equal(t, "E225", first.Label)
	assert.Equal(t, report.Location{Line: 30, Column: 6}, first.Location)
	assert.Equal(t, report.SeverityStyle, first.Severity)
	assert.Equal(t, "missing whitespace around operator", first.Message)
	assert.Equal(t, style.ID, first.Source)
	assert.Equal(t, "E201", findings[1].Label)

	issues, ok := out.Summary().Get(style.MetricIssues)
	require.True(t, ok)
	assert.InDelta(t, 2.0, issues, 0)
}

func TestAnalyzer_CleanFile(t *testing.T) {
	t.Parallel()

	out := newAnalyzer(t, style.WithCommand(fakeTool(t, "exit 0"))).Analyze(context.Background(), pyInput)
	require.True(t, out.OK())
	assert.Empty(t, out.Findings())
}

func TestAnalyzer_PassesArgumentsAndPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := filepath.Join(dir, "checker.sh")

	body := "echo \"$@\" > " + argsFile + "\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o600))

	src := writePython(t)
	a := newAnalyzer(t, style.WithCommand("/bin/sh "+script+" --max-line-length=100"))
	require.True(t, a.Analyze(context.Background(), analyze.Input{Path: src}).OK())

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--max-line-length=100 "+src+"\n", string(args))
}

func TestAnalyzer_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     func(t *testing.T) []style.Option
		reason   report.FailureReason
		contains string
	}{
		{
			name: "missing tool",
			opts: func(t *testing.T) []style.Option {
				t.Helper()

				return []style.Option{style.WithCommand(filepath.Join(t.TempDir(), "no-such-checker"))}
			},
			reason:   report.ReasonToolMissing,
			contains: style.DefaultInstallHint,
		},
		{
			name: "missing tool on PATH",
			opts: func(*testing.T) []style.Option {
				return []style.Option{style.WithCommand("codelens-no-such-checker-xyz")}
			},
			reason:   report.ReasonToolMissing,
			contains: "codelens-no-such-checker-xyz not found",
		},
		{
			name: "timeout",
			opts: func(t *testing.T) []style.Option {
				t.Helper()

				return []style.Option{
					style.WithCommand(fakeTool(t, "exec sleep 5")),
					style.WithTimeout(100 * time.Millisecond),
				}
			},
			reason:   report.ReasonExecutionError,
			contains: "timed out",
		},
		{
			name: "usage error",
			opts: func(t *testing.T) []style.Option {
				t.Helper()

				return []style.Option{style.WithCommand(fakeTool(t, "echo 'bad option' >&2\nexit 2"))}
			},
			reason:   report.ReasonExecutionError,
			contains: "style check failed: /bin/sh exited with status 2",
		},
		{
			name: "status one without issues",
			opts: func(t *testing.T) []style.Option {
				t.Helper()

				return []style.Option{style.WithCommand(fakeTool(t, "exit 1"))}
			},
			reason:   report.ReasonExecutionError,
			contains: "status 1",
		},
		{
			name: "garbage output",
			opts: func(t *testing.T) []style.Option {
				t.Helper()

				return []style.Option{style.WithCommand(fakeTool(t, "echo 'Traceback (most recent call last):'\nexit 1"))}
			},
			reason:   report.ReasonParseError,
			contains: "could not parse",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := newAnalyzer(t, tc.opts(t)...).Analyze(context.Background(), pyInput)
			require.False(t, out.OK())
			assert.True(t, out.Is(tc.reason), "%+v", out)

			failure, _ := out.Failure()
			assert.Contains(t, failure.Message, tc.contains)
		})
	}
}

func TestAnalyzer_Applicability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		applicable bool
	}{
		{"go source", "main.go", false},
		{"no extension", "Makefile", false},
		{"python module", "mod.py", true},
		{"python stub", "mod.pyi", true},
		{"upper case extension", "MOD.PY", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := newAnalyzer(t, style.WithCommand(fakeTool(t, "exit 0")))
			out := a.Analyze(context.Background(), analyze.Input{Path: tc.path, Content: "x = 1\n"})

			assert.Equal(t, !tc.applicable, out.Is(report.ReasonNotApplicable))
			assert.Equal(t, tc.applicable, out.OK())
		})
	}
}

func TestNewAnalyzer_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := style.NewAnalyzer(style.WithCommand(""))
	require.ErrorIs(t, err, style.ErrEmptyCommand)

	_, err = style.NewAnalyzer(style.WithCommand(`pycodestyle "unterminated`))
	require.ErrorIs(t, err, style.ErrInvalidCommand)

	_, err = style.NewAnalyzer(style.WithTimeout(0))
	require.ErrorIs(t, err, style.ErrInvalidTimeout)
}

func TestParseOutput(t *testing.T) {
	t.Parallel()

	issues, err := style.ParseOutput("sample.py:32:80: E501 line too long (126 > 79 characters)\n" +
		"warning: something unrelated\n" +
		"C:\\src\\x.py:1:1: W391 blank line at end of file\r\n")
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, style.Issue{
		Path: "sample.py", Line: 32, Column: 80, Code: "E501",
		Message: "line too long (126 > 79 characters)",
	}, issues[0])
	assert.Equal(t, "C:\\src\\x.py", issues[1].Path)
	assert.Equal(t, "W391", issues[1].Code)

	issues, err = style.ParseOutput("")
	require.NoError(t, err)
	assert.Empty(t, issues)

	_, err = style.ParseOutput("usage: pycodestyle [options] input ...\n")
	require.ErrorIs(t, err, style.ErrUnrecognizedOutput)
}

func TestParseOutput_CodeWithoutMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  string
		want style.Issue
	}{
		{"bare code", "file.py:1:1: W391\n", style.Issue{Path: "file.py", Line: 1, Column: 1, Code: "W391"}},
		{"trailing space", "file.py:4:2: E999 \n", style.Issue{Path: "file.py", Line: 4, Column: 2, Code: "E999"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			issues, err := style.ParseOutput(tc.out)
			require.NoError(t, err)
			assert.Equal(t, []style.Issue{tc.want}, issues)
		})
	}
}
