package plan

import (
	"sync"
	"time"

	"stride/internal/domain"
	"stride/internal/domain/models/llm"
	"stride/internal/domain/models/plan"
	"stride/internal/service/llm/agent"
	"stride/internal/service/llm/prompts"
)

// Outcome is what a finished generation produced. Exactly one of Plan, Week
// and Text is set for a successful run.
type Outcome struct {
	Plan      *plan.Plan `json:"plan,omitempty"`
	Week      *plan.Week `json:"week,omitempty"`
	Text      string     `json:"text,omitempty"`
	Rounds    int        `json:"rounds"`
	Usage     llm.Usage  `json:"usage"`
	Cancelled bool       `json:"cancelled,omitempty"`
}

// Generation is one running or finished generation request.
type Generation struct {
	id        string
	kind      prompts.Kind
	provider  string
	model     string
	session   *agent.Session
	createdAt time.Time
	done      chan struct{}

	mu         sync.RWMutex
	outcome    *Outcome
	err        error
	finishedAt time.Time
}

func newGeneration(id string, kind prompts.Kind, provider, model string, session *agent.Session, now time.Time) *Generation {
	return &Generation{
		id:        id,
		kind:      kind,
		provider:  provider,
		model:     model,
		session:   session,
		createdAt: now,
		done:      make(chan struct{}),
	}
}

// ID returns the generation ID.
func (g *Generation) ID() string { return g.id }

// Session returns the agent session driving the generation.
func (g *Generation) Session() *agent.Session { return g.session }

// Done is closed once the generation has finished.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Result returns the outcome and error once finished; both are nil before.
func (g *Generation) Result() (*Outcome, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outcome, g.err
}

// finishedSince reports whether the generation finished at or before t.
func (g *Generation) finishedSince(t time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.finishedAt.IsZero() && !g.finishedAt.After(t)
}

func (g *Generation) finish(outcome *Outcome, err error, now time.Time) {
	g.mu.Lock()
	g.outcome = outcome
	g.err = err
	g.finishedAt = now
	g.mu.Unlock()
	close(g.done)
}

// View is the serializable snapshot of a generation.
type View struct {
	ID         string       `json:"id"`
	Kind       prompts.Kind `json:"kind"`
	Provider   string       `json:"provider"`
	Model      string       `json:"model"`
	Status     agent.Status `json:"status"`
	Rounds     int          `json:"rounds"`
	Usage      llm.Usage    `json:"usage"`
	Result     *Outcome     `json:"result,omitempty"`
	Error      string       `json:"error,omitempty"`
	ErrorKind  string       `json:"error_kind,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}

// Snapshot returns the current view.
func (g *Generation) Snapshot() View {
	v := View{
		ID:        g.id,
		Kind:      g.kind,
		Provider:  g.provider,
		Model:     g.model,
		Status:    g.session.Status(),
		Rounds:    g.session.Rounds(),
		Usage:     g.session.Usage(),
		CreatedAt: g.createdAt,
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	v.Result = g.outcome
	if g.err != nil {
		v.Error = g.err.Error()
		v.ErrorKind = domain.ErrorKind(g.err)
	}
	if !g.finishedAt.IsZero() {
		finished := g.finishedAt
		v.FinishedAt = &finished
	}
	return v
}
