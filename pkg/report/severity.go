// Package report defines the normalized output every analyzer produces and the
// per-file report the pipeline assembles from it.
package report

// Severity is the display bucket a finding falls into.
type Severity int

// Severity values. SeverityStyle is the info-level bucket used by style checkers.
const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityStyle
)

// Default complexity thresholds: scores below MediumThreshold are low, scores
// at or above HighThreshold are high.
const (
	DefaultMediumThreshold = 6
	DefaultHighThreshold   = 11
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityStyle:
		return "style"
	default:
		return "unknown"
	}
}

// Thresholds splits complexity scores into low, medium and high.
type Thresholds struct {
	Medium int
	High   int
}

// DefaultThresholds returns low <= 5, medium 6..10, high > 10.
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: DefaultMediumThreshold, High: DefaultHighThreshold}
}

// ComplexitySeverity buckets a complexity score. Every score maps to exactly one
// of low, medium or high.
func ComplexitySeverity(score int, th Thresholds) Severity {
	switch {
	case score >= th.High:
		return SeverityHigh
	case score >= th.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
