package agent

import (
	"context"

	"stride/internal/domain"
)

// pendingInput is the one-shot rendezvous for a clarifying question.
// It stays attached to the session after resolution so a second resolution
// attempt reports ErrInputAlreadyResolved.
type pendingInput struct {
	ch       chan string
	resolved bool
}

// SubmitUserResponse answers the pending clarifying question. The text is
// sent to the model verbatim; an empty answer behaves like CancelPendingInput.
func (s *Session) SubmitUserResponse(text string) error {
	return s.resolveInput(text)
}

// CancelPendingInput declines the pending question. The model is told to
// proceed with best-effort assumptions.
func (s *Session) CancelPendingInput() error {
	return s.resolveInput("")
}

func (s *Session) resolveInput(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return domain.ErrNoPendingInput
	}
	if s.pending.resolved {
		return domain.ErrInputAlreadyResolved
	}
	s.pending.resolved = true
	s.pending.ch <- text
	return nil
}

// waitForInput suspends the loop until the question is answered or ctx ends.
func (s *Session) waitForInput(ctx context.Context, question string) (string, error) {
	p := &pendingInput{ch: make(chan string, 1)}

	s.mu.Lock()
	s.pending = p
	s.setStatusLocked(Status{State: StateWaitingForInput, Question: question})
	s.mu.Unlock()

	select {
	case answer := <-p.ch:
		return answer, nil
	case <-ctx.Done():
		s.mu.Lock()
		p.resolved = true
		s.mu.Unlock()
		return "", ctx.Err()
	}
}
