// Package analyze defines the analyzer contract and the registry that maps file
// extensions to the analyzers claiming them.
package analyze

import (
	"context"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// Descriptor contains stable analyzer metadata.
type Descriptor struct {
	ID          string
	Title       string
	Description string
	// Extensions are the file extensions the analyzer claims, with leading dot.
	Extensions []string
}

// Input is what an analyzer receives for one file. Each analyzer gets its own copy.
type Input struct {
	Path    string
	Content string
}

// Analyzer inspects one file and returns findings or a typed failure.
// Implementations must not panic and must not return errors past this boundary:
// every failure is reported as a report.Outcome.
type Analyzer interface {
	Descriptor() Descriptor
	Analyze(ctx context.Context, in Input) report.Outcome
}
