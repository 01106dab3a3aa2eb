package report

import "slices"

// FailureReason classifies why an analyzer produced no findings.
type FailureReason int

// Failure reasons.
const (
	// ReasonNotApplicable means the analyzer does not handle the file type. Not a fault.
	ReasonNotApplicable FailureReason = iota + 1
	// ReasonToolMissing means the external tool could not be located.
	ReasonToolMissing
	// ReasonExecutionError means the external tool failed unexpectedly.
	ReasonExecutionError
	// ReasonParseError means the input or the tool output could not be parsed.
	ReasonParseError
)

// String returns the reason in snake case.
func (r FailureReason) String() string {
	switch r {
	case ReasonNotApplicable:
		return "not_applicable"
	case ReasonToolMissing:
		return "tool_missing"
	case ReasonExecutionError:
		return "execution_error"
	case ReasonParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Failure describes a failed analyzer run. Message is safe to show to users;
// the underlying cause is only reachable through Unwrap.
type Failure struct {
	Reason  FailureReason
	Message string
	cause   error
}

// Error implements error.
func (f Failure) Error() string {
	return f.Reason.String() + ": " + f.Message
}

// Unwrap returns the internal cause, if any.
func (f Failure) Unwrap() error {
	return f.cause
}

// Outcome is the result of running one analyzer on one file: either a success
// with findings and a summary, or a typed failure. Exactly one of the two holds.
type Outcome struct {
	findings []Finding
	summary  Summary
	failure  *Failure
}

// Success creates a successful outcome. The inputs are copied.
func Success(findings []Finding, summary Summary) Outcome {
	out := Outcome{
		findings: make([]Finding, 0, len(findings)),
		summary:  slices.Clone(summary),
	}

	for _, f := range findings {
		out.findings = append(out.findings, f.clone())
	}

	if out.summary == nil {
		out.summary = Summary{}
	}

	return out
}

// Fail creates a failed outcome. cause may be nil.
func Fail(reason FailureReason, message string, cause error) Outcome {
	return Outcome{failure: &Failure{Reason: reason, Message: message, cause: cause}}
}

// NotApplicable is the outcome for analyzers that do not claim a file type.
func NotApplicable(ext string) Outcome {
	msg := "not supported for this file type"
	if ext != "" {
		msg = "not supported for " + ext + " files"
	}

	return Fail(ReasonNotApplicable, msg, nil)
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.failure == nil
}

// Findings returns a copy of the findings. Empty for failures.
func (o Outcome) Findings() []Finding {
	out := make([]Finding, 0, len(o.findings))
	for _, f := range o.findings {
		out = append(out, f.clone())
	}

	return out
}

// Summary returns a copy of the summary metrics. Empty for failures.
func (o Outcome) Summary() Summary {
	return slices.Clone(o.summary)
}

// Failure returns the failure and true when the outcome is a failure.
func (o Outcome) Failure() (Failure, bool) {
	if o.failure == nil {
		return Failure{}, false
	}

	return *o.failure, true
}

// Is reports whether the outcome failed with the given reason.
func (o Outcome) Is(reason FailureReason) bool {
	return o.failure != nil && o.failure.Reason == reason
}

// Equal reports structural equality. Failure causes are ignored.
func (o Outcome) Equal(other Outcome) bool {
	if o.OK() != other.OK() {
		return false
	}

	if !o.OK() {
		return o.failure.Reason == other.failure.Reason && o.failure.Message == other.failure.Message
	}

	if len(o.findings) != len(other.findings) || !slices.Equal(o.summary, other.summary) {
		return false
	}

	for i := range o.findings {
		if !o.findings[i].equal(other.findings[i]) {
			return false
		}
	}

	return true
}
