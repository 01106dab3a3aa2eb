package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

func TestComplexitySeverity_Partition(t *testing.T) {
	t.Parallel()

	th := report.DefaultThresholds()

	for score := 1; score <= 100; score++ {
		got := report.ComplexitySeverity(score, th)

		switch {
		case score <= 5:
			assert.Equal(t, report.SeverityLow, got, "score %d", score)
		case score <= 10:
			assert.Equal(t, report.SeverityMedium, got, "score %d", score)
		default:
			assert.Equal(t, report.SeverityHigh, got, "score %d", score)
		}
	}
}

func TestSeverity_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "low", report.SeverityLow.String())
	assert.Equal(t, "medium", report.SeverityMedium.String())
	assert.Equal(t, "high", report.SeverityHigh.String())
	assert.Equal(t, "style", report.SeverityStyle.String())
	assert.Equal(t, "unknown", report.Severity(42).String())
}

func TestOutcome_SuccessCopiesInput(t *testing.T) {
	t.Parallel()

	findings := []report.Finding{
		report.NewFinding("complexity", "f", report.Location{Line: 1}, report.SeverityLow, "function complexity 1").WithMetric(1),
	}
	out := report.Success(findings, report.Summary{{Name: "blocks", Value: 1}})

	findings[0].Label = "mutated"
	*findings[0].Metric = 99

	got := out.Findings()
	require.Len(t, got, 1)
	assert.Equal(t, "f", got[0].Label)

	v, ok := got[0].MetricValue()
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 0)

	got[0].Label = "mutated again"
	assert.Equal(t, "f", out.Findings()[0].Label)
	assert.True(t, out.OK())

	_, failed := out.Failure()
	assert.False(t, failed)
}

func TestOutcome_FailKeepsCauseOutOfMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("exec: \"pycodestyle\": executable file not found in $PATH")
	out := report.Fail(report.ReasonToolMissing, "pycodestyle not found", cause)

	require.False(t, out.OK())
	assert.True(t, out.Is(report.ReasonToolMissing))
	assert.False(t, out.Is(report.ReasonExecutionError))
	assert.Empty(t, out.Findings())
	assert.Empty(t, out.Summary())

	f, ok := out.Failure()
	require.True(t, ok)
	assert.Equal(t, "pycodestyle not found", f.Message)
	assert.ErrorIs(t, f, cause)
}

func TestNotApplicable_Message(t *testing.T) {
	t.Parallel()

	f, ok := report.NotApplicable(".rb").Failure()
	require.True(t, ok)
	assert.Equal(t, report.ReasonNotApplicable, f.Reason)
	assert.Equal(t, "not supported for .rb files", f.Message)

	f, _ = report.NotApplicable("").Failure()
	assert.Equal(t, "not supported for this file type", f.Message)
}

func TestReport_EqualAndLookup(t *testing.T) {
	t.Parallel()

	build := func() *report.Report {
		return report.New("/tmp/sample.py", "Python", []report.Entry{
			{AnalyzerID: "complexity", Title: "Cyclomatic Complexity", Outcome: report.Success(nil, report.Summary{{Name: "average_complexity"}})},
			{AnalyzerID: "style", Title: "Style Issues", Outcome: report.Fail(report.ReasonToolMissing, "install it", errors.New("a"))},
		})
	}

	a, b := build(), build()
	assert.True(t, a.Equal(b))
	assert.Equal(t, "sample.py", a.DisplayName())
	assert.Equal(t, 1, a.Failed())

	e, ok := a.Entry("style")
	require.True(t, ok)
	assert.True(t, e.Outcome.Is(report.ReasonToolMissing))

	_, ok = a.Entry("missing")
	assert.False(t, ok)

	c := report.New("/tmp/sample.py", "Python", a.Entries()[:1])
	assert.False(t, a.Equal(c))
}

func TestLocation_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "30:6", report.Location{Line: 30, Column: 6}.String())
	assert.Equal(t, "7", report.Location{Line: 7}.String())
}
