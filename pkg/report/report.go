package report

import (
	"path/filepath"
	"slices"
)

// Entry pairs an analyzer with its outcome.
type Entry struct {
	AnalyzerID string
	// Title is the section heading presentation layers show for the analyzer.
	Title   string
	Outcome Outcome
}

// Report aggregates the outcomes of every registered analyzer for one file, in
// registration order. It is built once per request and never mutated.
type Report struct {
	file     string
	language string
	entries  []Entry
}

// New creates a report for the given file. The entries are copied.
func New(file, language string, entries []Entry) *Report {
	return &Report{
		file:     file,
		language: language,
		entries:  slices.Clone(entries),
	}
}

// File returns the analyzed file path.
func (r *Report) File() string {
	return r.file
}

// DisplayName returns the base name of the analyzed file.
func (r *Report) DisplayName() string {
	return filepath.Base(r.file)
}

// Language returns the detected language name, or an empty string.
func (r *Report) Language() string {
	return r.language
}

// Entries returns the outcomes in registration order.
func (r *Report) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Entry returns the entry for the given analyzer ID.
func (r *Report) Entry(id string) (Entry, bool) {
	for _, e := range r.entries {
		if e.AnalyzerID == id {
			return e, true
		}
	}

	return Entry{}, false
}

// Failed counts entries whose outcome is a failure other than not-applicable.
func (r *Report) Failed() int {
	n := 0

	for _, e := range r.entries {
		if f, ok := e.Outcome.Failure(); ok && f.Reason != ReasonNotApplicable {
			n++
		}
	}

	return n
}

// Equal reports structural equality of two reports.
func (r *Report) Equal(other *Report) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.file != other.file || r.language != other.language || len(r.entries) != len(other.entries) {
		return false
	}

	for i := range r.entries {
		a, b := r.entries[i], other.entries[i]
		if a.AnalyzerID != b.AnalyzerID || a.Title != b.Title || !a.Outcome.Equal(b.Outcome) {
			return false
		}
	}

	return true
}
