package report

import "fmt"

// Location points at a line and an optional column. Column 0 means no column.
type Location struct {
	Line   int
	Column int
}

// HasColumn reports whether the location carries a column.
func (l Location) HasColumn() bool {
	return l.Column > 0
}

// String formats the location as "line" or "line:col".
func (l Location) String() string {
	if l.HasColumn() {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}

	return fmt.Sprintf("%d", l.Line)
}

// Finding is one reported item: a scored block or a style violation.
type Finding struct {
	// Source is the ID of the analyzer that produced the finding.
	Source string
	// Label is a block name or a rule code.
	Label    string
	Location Location
	Severity Severity
	Message  string
	// Metric is the optional numeric score, e.g. a complexity value.
	Metric *float64
}

// NewFinding creates a finding without a metric.
func NewFinding(source, label string, loc Location, sev Severity, message string) Finding {
	return Finding{
		Source:   source,
		Label:    label,
		Location: loc,
		Severity: sev,
		Message:  message,
	}
}

// WithMetric returns a copy of the finding carrying the given score.
func (f Finding) WithMetric(value float64) Finding {
	f.Metric = &value

	return f
}

// MetricValue returns the metric and whether one is set.
func (f Finding) MetricValue() (float64, bool) {
	if f.Metric == nil {
		return 0, false
	}

	return *f.Metric, true
}

func (f Finding) clone() Finding {
	if f.Metric != nil {
		v := *f.Metric
		f.Metric = &v
	}

	return f
}

func (f Finding) equal(o Finding) bool {
	if f.Source != o.Source || f.Label != o.Label || f.Location != o.Location ||
		f.Severity != o.Severity || f.Message != o.Message {
		return false
	}

	a, aok := f.MetricValue()
	b, bok := o.MetricValue()

	return aok == bok && a == b
}

// Metric is one named summary value of an analyzer run.
type Metric struct {
	Name  string
	Value float64
}

// Summary is an ordered list of summary metrics.
type Summary []Metric

// Get returns the value of the named metric.
func (s Summary) Get(name string) (float64, bool) {
	for _, m := range s {
		if m.Name == name {
			return m.Value, true
		}
	}

	return 0, false
}
