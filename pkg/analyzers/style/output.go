package style

import (
	"bufio"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// ErrUnrecognizedOutput is returned when checker output has no issue lines.
var ErrUnrecognizedOutput = errors.New("style: unrecognized checker output")

// issueLine matches "<path>:<line>:<col>: <code> [<message>]".
var issueLine = regexp.MustCompile(`^(.*?):(\d+):(\d+):\s+([A-Z]+\d+)(?:\s+(.*))?$`)

// Issue is one violation reported by the checker.
type Issue struct {
	Path    string
	Line    int
	Column  int
	Code    string
	Message string
}

// Finding converts the issue to a report finding.
func (i Issue) Finding() report.Finding {
	return report.NewFinding(ID, i.Code,
		report.Location{Line: i.Line, Column: i.Column},
		report.SeverityStyle, i.Message)
}

// ParseOutput extracts issues from checker output in output order. Lines that
// do not look like issues are skipped; output made only of such lines is an
// error.
func ParseOutput(out string) ([]Issue, error) {
	var (
		issues  []Issue
		skipped int
	)

	sc := bufio.NewScanner(strings.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		issue, ok := parseLine(line)
		if !ok {
			skipped++

			continue
		}

		issues = append(issues, issue)
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(issues) == 0 && skipped > 0 {
		return nil, ErrUnrecognizedOutput
	}

	return issues, nil
}

func parseLine(line string) (Issue, bool) {
	m := issueLine.FindStringSubmatch(line)
	if m == nil {
		return Issue{}, false
	}

	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return Issue{}, false
	}

	col, err := strconv.Atoi(m[3])
	if err != nil {
		return Issue{}, false
	}

	return Issue{Path: m[1], Line: lineNo, Column: col, Code: m[4], Message: strings.TrimSpace(m[5])}, true
}
