// Package agent runs the bounded model/tool conversation loop behind every
// generation: it sends the history, dispatches tool calls, stitches
// truncated output back together and suspends on clarifying questions.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"stride/internal/config"
	"stride/internal/domain"
	"stride/internal/domain/models/llm"
	domainllm "stride/internal/domain/services/llm"
	"stride/internal/service/plan/parser"
)

// Messages injected by the loop.
const (
	ContinueInstruction = "Your previous response was cut off because it reached the output limit. " +
		"Continue exactly where you left off. Do not repeat any content you already sent " +
		"and do not wrap the continuation in markdown."

	EmptyResponseNudge = "Your previous response was empty. Please respond to the request above."

	NoFollowUpDirective = "Do not ask any follow-up questions. Proceed using reasonable best-effort " +
		"assumptions for anything that is unspecified, and respond with the complete JSON object now."
)

const subscriberBuffer = 16

// ToolDispatcher executes the tool calls of one model turn.
// tools.ToolRegistry satisfies it.
type ToolDispatcher interface {
	Definitions() []llm.ToolDefinition
	ExecuteAll(ctx context.Context, calls []llm.ToolCall) []llm.ToolResult
}

// Options configures a Session.
type Options struct {
	Model     string
	MaxTokens int
	MaxRounds int
	Logger    *slog.Logger
}

// Task is one top-level request to the model.
type Task struct {
	SystemPrompt string
	Prompt       string

	// RequireJSON makes a final turn without a JSON object count as a
	// clarifying question.
	RequireJSON bool

	// Finalize, when set, consumes the final text while the session is in
	// the parsing state. An error fails the session.
	Finalize func(text string) error
}

// Result is the outcome of Run.
type Result struct {
	Text      string
	Rounds    int
	Usage     llm.Usage
	Cancelled bool
}

// Session owns one conversation history, one status and one pending-input slot.
// A Session runs a single task; its methods are safe for concurrent use.
type Session struct {
	transport domainllm.Transport
	tools     ToolDispatcher
	opts      Options
	logger    *slog.Logger

	mu          sync.Mutex
	started     bool
	status      Status
	history     []llm.Message
	rounds      int
	usage       llm.Usage
	pending     *pendingInput
	cancelFunc  context.CancelFunc
	cancelled   bool
	subscribers map[int]chan Status
	nextSubID   int
}

// NewSession creates a session. A nil dispatcher offers no tools.
func NewSession(transport domainllm.Transport, tools ToolDispatcher, opts Options) *Session {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = config.DefaultMaxRounds
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = config.DefaultMaxTokens
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if tools == nil {
		tools = noTools{}
	}
	return &Session{
		transport:   transport,
		tools:       tools,
		opts:        opts,
		logger:      logger,
		status:      Status{State: StateStarting},
		subscribers: make(map[int]chan Status),
	}
}

// Run drives the loop until the model produces a final answer, the rounds
// are exhausted, a transport error occurs or ctx is cancelled.
// Cancellation is not an error: it returns Result{Cancelled: true}.
func (s *Session) Run(ctx context.Context, task Task) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, fmt.Errorf("session already started")
	}
	s.started = true
	s.cancelFunc = cancel
	if s.cancelled {
		cancel()
	}
	s.usage = llm.Usage{}
	s.history = []llm.Message{llm.NewUserMessage(task.Prompt)}
	s.setStatusLocked(Status{State: StateStarting})
	s.mu.Unlock()

	definitions := s.tools.Definitions()
	var partial strings.Builder

	for round := 1; round <= s.opts.MaxRounds; round++ {
		if ctx.Err() != nil {
			return s.finishCancelled(), nil
		}

		s.mu.Lock()
		s.rounds = round
		s.setStatusLocked(Status{State: StateSending})
		history := s.historyLocked()
		s.mu.Unlock()

		resp, err := s.transport.Send(ctx, &domainllm.SendRequest{
			Messages:     history,
			SystemPrompt: task.SystemPrompt,
			Tools:        definitions,
			Model:        s.opts.Model,
			MaxTokens:    s.opts.MaxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return s.finishCancelled(), nil
			}
			s.logger.Error("model call failed", "round", round, "error", err, "kind", domain.ErrorKind(err))
			s.fail(err)
			return nil, err
		}

		msg := resp.Message
		msg.Role = llm.RoleAssistant
		s.mu.Lock()
		s.usage.Add(resp.Usage)
		s.history = append(s.history, msg)
		s.mu.Unlock()

		s.logger.Debug("model turn",
			"round", round,
			"stop_reason", resp.StopReason,
			"tool_calls", len(msg.ToolCalls),
			"input_tokens", resp.Usage.InputTokens,
			"output_tokens", resp.Usage.OutputTokens,
		)

		if len(msg.ToolCalls) > 0 {
			s.setStatus(Status{State: StateExecutingTool, Tool: toolNames(msg.ToolCalls)})
			results := s.tools.ExecuteAll(ctx, msg.ToolCalls)
			if ctx.Err() != nil {
				return s.finishCancelled(), nil
			}
			s.mu.Lock()
			for _, result := range results {
				s.history = append(s.history, llm.NewToolResultMessage(result))
			}
			s.mu.Unlock()
			continue
		}

		if resp.StopReason == llm.StopReasonMaxTokens {
			partial.WriteString(msg.Content)
			s.appendUser(ContinueInstruction)
			continue
		}

		partial.WriteString(msg.Content)
		text := partial.String()
		partial.Reset()

		if strings.TrimSpace(text) == "" {
			s.logger.Warn("empty model response", "round", round)
			s.appendUser(EmptyResponseNudge)
			continue
		}

		if !task.RequireJSON || parser.ContainsJSONObject(text) {
			return s.finish(task, text)
		}

		s.logger.Info("model asked a clarifying question", "round", round)
		answer, err := s.waitForInput(ctx, text)
		if err != nil {
			return s.finishCancelled(), nil
		}
		if strings.TrimSpace(answer) == "" {
			s.appendUser(NoFollowUpDirective)
		} else {
			s.appendUser(answer)
		}
	}

	s.logger.Warn("agent loop exhausted rounds", "max_rounds", s.opts.MaxRounds)
	s.fail(domain.ErrMaxRoundsExceeded)
	return nil, domain.ErrMaxRoundsExceeded
}

func (s *Session) finish(task Task, text string) (*Result, error) {
	if task.Finalize != nil {
		s.setStatus(Status{State: StateParsing})
		if err := task.Finalize(text); err != nil {
			s.fail(err)
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatusLocked(Status{State: StateComplete})
	return &Result{Text: text, Rounds: s.rounds, Usage: s.usage}, nil
}

func (s *Session) finishCancelled() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatusLocked(Status{State: StateCancelled})
	return &Result{Cancelled: true, Rounds: s.rounds, Usage: s.usage}
}

func (s *Session) fail(err error) {
	s.setStatus(Status{State: StateFailed, Reason: err.Error()})
}

func (s *Session) appendUser(text string) {
	s.mu.Lock()
	s.history = append(s.history, llm.NewUserMessage(text))
	s.mu.Unlock()
}

// Cancel stops the session. A blocked clarifying question is abandoned and
// Run returns a cancelled result. Calling Cancel before Run cancels the run
// as soon as it starts.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// History returns a copy of the conversation so far.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

func (s *Session) historyLocked() []llm.Message {
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Rounds returns the number of model calls made so far.
func (s *Session) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}

// Usage returns the accumulated token usage.
func (s *Session) Usage() llm.Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Subscribe registers for status changes. The current status is delivered
// first. The channel is closed after a terminal status or when the returned
// function is called. Slow subscribers lose intermediate statuses, never the
// most recent one.
func (s *Session) Subscribe() (<-chan Status, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Status, subscriberBuffer)
	ch <- s.status
	if s.status.Terminal() {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatusLocked(st)
}

// setStatusLocked records and broadcasts st. Callers hold s.mu.
func (s *Session) setStatusLocked(st Status) {
	if s.status.Terminal() {
		return
	}
	st.Round = s.rounds
	s.status = st

	for id, ch := range s.subscribers {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
		if st.Terminal() {
			delete(s.subscribers, id)
			close(ch)
		}
	}
}

func toolNames(calls []llm.ToolCall) string {
	names := make([]string, len(calls))
	for i, call := range calls {
		names[i] = call.Name
	}
	return strings.Join(names, ", ")
}

// IsCancelled reports whether err ends a session without being a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrCancelled)
}

type noTools struct{}

func (noTools) Definitions() []llm.ToolDefinition { return nil }

func (noTools) ExecuteAll(_ context.Context, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(calls))
	for i, call := range calls {
		results[i] = llm.ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Content: map[string]interface{}{"error": "Unknown tool: " + call.Name},
		}
	}
	return results
}
