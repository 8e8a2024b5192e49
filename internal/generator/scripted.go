package generator

import (
	"context"
	"sync"

	"github.com/slicekit/slicer/internal/errors"
)

// ScriptedResponse is one canned generator reply.
type ScriptedResponse struct {
	Draft *Draft
	Err   error
}

// ScriptedGenerator replays canned responses in order. It backs tests and
// the CLI dry-run mode, and is safe for the orchestrator's parallel calls.
type ScriptedGenerator struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     int
	requests  []Request
}

// NewScriptedGenerator returns a generator that replays the given
// responses. Once exhausted it keeps returning the final response.
func NewScriptedGenerator(responses ...ScriptedResponse) *ScriptedGenerator {
	return &ScriptedGenerator{responses: responses}
}

// Generate implements Generator.
func (s *ScriptedGenerator) Generate(ctx context.Context, req Request) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if len(s.responses) == 0 {
		return nil, errors.ErrGeneratorUnavailable
	}
	i := s.calls
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.calls++

	r := s.responses[i]
	if r.Err != nil {
		return nil, r.Err
	}
	return cloneDraft(r.Draft), nil
}

// Calls returns how many times Generate was invoked.
func (s *ScriptedGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Requests returns a copy of every request received, in call order.
func (s *ScriptedGenerator) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// cloneDraft deep-copies a draft so callers can't mutate the script.
func cloneDraft(d *Draft) *Draft {
	if d == nil {
		return nil
	}
	out := &Draft{Rationale: d.Rationale}
	out.Units = append(out.Units, d.Units...)
	for i := range out.Units {
		u := &out.Units[i]
		u.AcceptanceCriteria = append([]string(nil), u.AcceptanceCriteria...)
		u.DependsOn = append([]string(nil), u.DependsOn...)
	}
	return out
}
