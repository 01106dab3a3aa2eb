package render

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

const informationURI = "https://github.com/Sumatoshi-tech/codelens"

// writeSARIF emits one run per analyzer. Complexity findings share a rule
// named after the analyzer; other findings use their label as the rule ID.
func writeSARIF(w io.Writer, reports []*report.Report, version string) error {
	sarifLog, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create sarif report: %w", err)
	}

	runs := make(map[string]*sarif.Run)

	var order []string

	for _, rep := range reports {
		for _, e := range rep.Entries() {
			if !e.Outcome.OK() {
				continue
			}

			run, ok := runs[e.AnalyzerID]
			if !ok {
				run = sarif.NewRunWithInformationURI("codelens-"+e.AnalyzerID, informationURI)
				if version != "" {
					v := version
					run.Tool.Driver.Version = &v
				}

				runs[e.AnalyzerID] = run
				order = append(order, e.AnalyzerID)
			}

			for _, f := range e.Outcome.Findings() {
				addResult(run, rep.File(), e, f)
			}
		}
	}

	for _, id := range order {
		sarifLog.AddRun(runs[id])
	}

	if err := sarifLog.PrettyWrite(w); err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}

	return nil
}

func addResult(run *sarif.Run, file string, e report.Entry, f report.Finding) {
	ruleID := f.Label
	if _, hasMetric := f.MetricValue(); hasMetric {
		ruleID = e.AnalyzerID
	}

	rule := run.AddRule(ruleID).WithDescription(e.Title)

	region := sarif.NewRegion().WithStartLine(f.Location.Line)
	if f.Location.HasColumn() {
		col := f.Location.Column
		region.StartColumn = &col
	}

	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(file)).
			WithRegion(region),
	)

	msg := f.Message
	if ruleID != f.Label {
		msg = f.Label + ": " + f.Message
	}

	run.AddResult(sarif.NewRuleResult(rule.ID).
		WithMessage(sarif.NewTextMessage(msg)).
		WithLevel(sarifLevel(f.Severity)).
		WithLocations([]*sarif.Location{location}))
}

func sarifLevel(s report.Severity) string {
	switch s {
	case report.SeverityHigh:
		return "error"
	case report.SeverityMedium, report.SeverityStyle:
		return "warning"
	default:
		return "note"
	}
}
