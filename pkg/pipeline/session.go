package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/Sumatoshi-tech/codelens/pkg/report"
)

// ErrSuperseded is returned by Session.Open when a newer Open replaced the build.
var ErrSuperseded = errors.New("report superseded by a newer request")

// Session serves "open file" requests where only the newest one matters.
// Starting an Open cancels the build in flight, whose result is discarded.
type Session struct {
	pipeline *Pipeline

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
	latest *report.Report
}

// NewSession creates a Session over p.
func NewSession(p *Pipeline) *Session {
	return &Session{pipeline: p}
}

// Open builds the report for path, superseding any earlier Open still running.
func (s *Session) Open(ctx context.Context, path string) (*report.Report, error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}

	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	rep, err := s.pipeline.Open(runCtx, path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return nil, ErrSuperseded
	}

	s.cancel = nil

	if err != nil {
		if errors.Is(context.Cause(runCtx), ErrSuperseded) {
			return nil, ErrSuperseded
		}

		return nil, err
	}

	s.latest = rep

	return rep, nil
}

// Latest returns the most recent report Open delivered, or nil.
func (s *Session) Latest() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest
}

// Cancel abandons the build in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(context.Canceled)
		s.cancel = nil
	}
}
