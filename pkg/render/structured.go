package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// Document is the stable machine-readable shape of a set of reports.
type Document struct {
	Reports []ReportDoc `json:"reports" yaml:"reports"`
}

// ReportDoc is one file's report.
type ReportDoc struct {
	File     string     `json:"file"               yaml:"file"`
	Name     string     `json:"name"               yaml:"name"`
	Language string     `json:"language,omitempty" yaml:"language,omitempty"`
	Entries  []EntryDoc `json:"entries"            yaml:"entries"`
}

// EntryDoc is one analyzer's outcome. Status is "ok" or a failure reason.
type EntryDoc struct {
	Analyzer string       `json:"analyzer"          yaml:"analyzer"`
	Title    string       `json:"title"             yaml:"title"`
	Status   string       `json:"status"            yaml:"status"`
	Message  string       `json:"message,omitempty" yaml:"message,omitempty"`
	Findings []FindingDoc `json:"findings"          yaml:"findings"`
	Summary  []MetricDoc  `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// FindingDoc is one finding.
type FindingDoc struct {
	Label    string   `json:"label"            yaml:"label"`
	Line     int      `json:"line"             yaml:"line"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
	Severity string   `json:"severity"         yaml:"severity"`
	Message  string   `json:"message"          yaml:"message"`
	Metric   *float64 `json:"metric,omitempty" yaml:"metric,omitempty"`
}

// MetricDoc is one summary metric.
type MetricDoc struct {
	Name  string  `json:"name"  yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// NewDocument converts reports to their serializable form.
func NewDocument(reports ...*report.Report) Document {
	doc := Document{Reports: make([]ReportDoc, 0, len(reports))}

	for _, rep := range reports {
		rd := ReportDoc{
			File:     rep.File(),
			Name:     rep.DisplayName(),
			Language: rep.Language(),
			Entries:  make([]EntryDoc, 0, len(rep.Entries())),
		}

		for _, e := range rep.Entries() {
			rd.Entries = append(rd.Entries, newEntryDoc(e))
		}

		doc.Reports = append(doc.Reports, rd)
	}

	return doc
}

func newEntryDoc(e report.Entry) EntryDoc {
	ed := EntryDoc{
		Analyzer: e.AnalyzerID,
		Title:    e.Title,
		Status:   StatusOf(e.Outcome),
		Findings: []FindingDoc{},
	}

	if f, failed := e.Outcome.Failure(); failed {
		ed.Message = f.Message

		return ed
	}

	for _, f := range e.Outcome.Findings() {
		fd := FindingDoc{
			Label:    f.Label,
			Line:     f.Location.Line,
			Column:   f.Location.Column,
			Severity: f.Severity.String(),
			Message:  f.Message,
		}

		if v, ok := f.MetricValue(); ok {
			fd.Metric = &v
		}

		ed.Findings = append(ed.Findings, fd)
	}

	for _, m := range e.Outcome.Summary() {
		ed.Summary = append(ed.Summary, MetricDoc{Name: m.Name, Value: m.Value})
	}

	return ed
}

func writeJSON(w io.Writer, reports []*report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(NewDocument(reports...)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, reports []*report.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(NewDocument(reports...)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	return nil
}
