package complexity_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/codelens/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/codelens/pkg/report"
	"github.com/Sumatoshi-tech/codelens/pkg/uast"
)

type scored struct {
	name  string
	line  int
	score int
}

func analyzePython(t *testing.T, src string) report.Outcome {
	t.Helper()

	return complexity.NewAnalyzer().Analyze(context.Background(), analyze.Input{Path: "mod.py", Content: src})
}

func scores(t *testing.T, out report.Outcome) []scored {
	t.Helper()

	require.True(t, out.OK(), "unexpected failure: %+v", out)

	got := make([]scored, 0, len(out.Findings()))

	for _, f := range out.Findings() {
		v, ok := f.MetricValue()
		require.True(t, ok)

		got = append(got, scored{name: f.Label, line: f.Location.Line, score: int(v)})
	}

	return got
}

func TestAnalyzer_Descriptor(t *testing.T) {
	t.Parallel()

	d := complexity.NewAnalyzer().Descriptor()
	assert.Equal(t, complexity.ID, d.ID)
	assert.Equal(t, "Cyclomatic Complexity", d.Title)
	assert.ElementsMatch(t, []string{".py", ".pyi", ".go"}, d.Extensions)
}

func TestAnalyzer_SampleFile(t *testing.T) {
	t.Parallel()

	src, err := os.ReadFile("testdata/sample.py")
	require.NoError(t, err)

	out := complexity.NewAnalyzer().Analyze(context.Background(),
		analyze.Input{Path: "testdata/sample.py", Content: string(src)})

	assert.Equal(t, []scored{
		{"simple_function", 3, 1},
		{"medium_complexity", 7, 3},
		{"high_complexity", 15, 5},
		{"style_issues", 29, 1},
	}, scores(t, out))

	for _, f := range out.Findings() {
		assert.Equal(t, report.SeverityLow, f.Severity)
		assert.Equal(t, complexity.ID, f.Source)
	}

	avg, ok := out.Summary().Get(complexity.MetricAverage)
	require.True(t, ok)
	assert.Equal(t, "2.50", fmt.Sprintf("%.2f", avg))
}

func TestAnalyzer_AverageOfThree(t *testing.T) {
	t.Parallel()

	src := `def a():
    return 1


def b(x):
    if x > 0:
        for i in range(x):
            print(i)
    else:
        print("none")


def c(x):
    for i in range(x):
        if i % 2 == 0:
            for j in range(i):
                if j % 3 == 0:
                    print(j)
`

	out := analyzePython(t, src)
	assert.Equal(t, []scored{{"a", 1, 1}, {"b", 5, 3}, {"c", 13, 5}}, scores(t, out))

	avg, _ := out.Summary().Get(complexity.MetricAverage)
	assert.Equal(t, "3.00", fmt.Sprintf("%.2f", avg))

	maxScore, _ := out.Summary().Get(complexity.MetricMax)
	assert.InDelta(t, 5.0, maxScore, 0)

	count, _ := out.Summary().Get(complexity.MetricBlocks)
	assert.InDelta(t, 3.0, count, 0)
}

func TestAnalyzer_NoBlocks(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", "x = 1\nprint(x)\n"} {
		out := analyzePython(t, src)
		require.True(t, out.OK())
		assert.Empty(t, out.Findings())

		avg, ok := out.Summary().Get(complexity.MetricAverage)
		require.True(t, ok)
		assert.Zero(t, avg)
	}
}

func TestAnalyzer_DecisionPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"straight line", "    return 1", 1},
		{"boolean operators", "    return a and b or c", 3},
		{"conditional expression", "    return 1 if a else 2", 2},
		{"comprehension", "    return [x for x in a if x]", 3},
		{"assert", "    assert a", 2},
		{"elif chain", "    if a:\n        pass\n    elif b:\n        pass\n    else:\n        pass", 3},
		{"while else", "    while a:\n        pass\n    else:\n        pass", 3},
		{"try except else", "    try:\n        g()\n    except ValueError:\n        pass\n" +
			"    except KeyError:\n        pass\n    else:\n        pass", 4},
		{"match", "    match a:\n        case 1:\n            pass\n        case _:\n            pass", 3},
		{"nested function", "    def inner(x):\n        if x:\n            return 1\n    return inner", 1},
		{"nested class", "    class Local:\n        flag = 1 if a else 2\n    return Local", 1},
		{"lambda", "    return lambda x: 1 if x else 0", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := analyzePython(t, "def f(a, b, c):\n"+tc.body+"\n")
			assert.Equal(t, []scored{{"f", 1, tc.want}}, scores(t, out))
		})
	}
}

func TestAnalyzer_ClassesAndMethods(t *testing.T) {
	t.Parallel()

	src := `class Greeter:
    def __init__(self, name):
        self.name = name

    def greet(self, loud):
        if loud:
            return self.name.upper()
        return self.name


class Empty:
    pass


@decorator
def helper():
    pass
`

	out := analyzePython(t, src)
	assert.Equal(t, []scored{
		{"Greeter", 1, 3},
		{"Greeter.__init__", 2, 1},
		{"Greeter.greet", 5, 2},
		{"Empty", 11, 1},
		{"helper", 16, 1},
	}, scores(t, out))

	assert.Equal(t, "class complexity 3", out.Findings()[0].Message)
	assert.Equal(t, "method complexity 1", out.Findings()[1].Message)
	assert.Equal(t, "function complexity 1", out.Findings()[4].Message)
}

func TestAnalyzer_SeverityFollowsThresholds(t *testing.T) {
	t.Parallel()

	src := "def busy(a):\n" + strings.Repeat("    if a:\n        pass\n", 6)

	out := analyzePython(t, src)
	require.Len(t, out.Findings(), 1)
	assert.Equal(t, report.SeverityMedium, out.Findings()[0].Severity)

	strict := complexity.NewAnalyzer(complexity.WithThresholds(report.Thresholds{Medium: 2, High: 4}))
	out = strict.Analyze(context.Background(), analyze.Input{Path: "busy.py", Content: src})
	require.Len(t, out.Findings(), 1)
	assert.Equal(t, report.SeverityHigh, out.Findings()[0].Severity)
}

func TestAnalyzer_SyntaxError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		line string
	}{
		{"unclosed parameters", "x = 1\n\ndef broken(:\n    pass\n", "line 3"},
		{"print statement", "x = 1\nprint 'hello', x\n", "line 2"},
		{"print chevron", "import sys\nprint >>sys.stderr, 'a'\n", "line 2"},
		{"exec statement", "exec 'y = 1'\n", "line 1"},
		{"comma in except", "try:\n    pass\nexcept ValueError, e:\n    pass\n", "line 3"},
		{"default before plain parameter", "def f(x=1, y):\n    return y\n", "line 1"},
		{"default before plain lambda parameter", "g = lambda x=1, y: y\n", "line 1"},
		{"backtick repr", "def f(x):\n    return `x`\n", "line 2"},
		{"diamond operator", "def f(x):\n    if x <> 1:\n        return x\n", "line 2"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := analyzePython(t, tc.src)

			require.False(t, out.OK())
			assert.True(t, out.Is(report.ReasonParseError))

			failure, ok := out.Failure()
			require.True(t, ok)
			assert.Contains(t, failure.Message, tc.line)
			require.ErrorIs(t, failure, uast.ErrSyntax)
		})
	}
}

func TestAnalyzer_Python3FormsAccepted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want int
	}{
		{"print call", "def f(x):\n    print('hello', x)\n", 1},
		{"exec call", "def f(code):\n    exec(code)\n", 1},
		{"except as", "def f():\n    try:\n        pass\n    except (ValueError, KeyError) as e:\n        pass\n", 2},
		{"keyword only after default", "def f(a, b=1, *, c):\n    return c\n", 1},
		{"splat after default", "def f(a=1, *args: int, **kw):\n    return a\n", 1},
		{"backticks in literals", "def f():\n    # `quoted`\n    return '`x`'\n", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := analyzePython(t, tc.src)
			assert.Equal(t, []scored{{"f", 1, tc.want}}, scores(t, out))
		})
	}
}

func TestAnalyzer_NotApplicable(t *testing.T) {
	t.Parallel()

	out := complexity.NewAnalyzer().Analyze(context.Background(), analyze.Input{Path: "notes.txt", Content: "hi"})
	assert.True(t, out.Is(report.ReasonNotApplicable))
}

func TestAnalyzer_Go(t *testing.T) {
	t.Parallel()

	src := `package p

func Plain() {}

type S struct{}

func (s *S) Check(a, b bool) int {
	if a && b {
		return 1
	}
	switch {
	case a:
		return 2
	default:
		return 3
	}
}
`

	out := complexity.NewAnalyzer().Analyze(context.Background(), analyze.Input{Path: "p.go", Content: src})
	assert.Equal(t, []scored{{"Plain", 3, 1}, {"S.Check", 7, 4}}, scores(t, out))
}

func TestAnalyzer_Idempotent(t *testing.T) {
	t.Parallel()

	a := complexity.NewAnalyzer()
	in := analyze.Input{Path: "m.py", Content: "def f(x):\n    return x or 1\n"}

	first := a.Analyze(context.Background(), in)
	second := a.Analyze(context.Background(), in)
	assert.True(t, first.Equal(second))
}

func TestAverage(t *testing.T) {
	t.Parallel()

	assert.Zero(t, complexity.Average(nil))
	assert.InDelta(t, 2.5, complexity.Average([]complexity.Block{{Complexity: 2}, {Complexity: 3}}), 1e-9)
}
