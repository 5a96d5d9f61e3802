// Package plan runs generation requests end to end: it builds the prompts,
// drives an agent session, parses the structured answer and optionally
// persists the result.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"stride/internal/capabilities"
	"stride/internal/config"
	"stride/internal/domain"
	models "stride/internal/domain/models/plan"
	planrepo "stride/internal/domain/repositories/plan"
	llmsvc "stride/internal/service/llm"
	"stride/internal/service/llm/agent"
	"stride/internal/service/llm/prompts"
	"stride/internal/service/plan/parser"
)

// TransportResolver maps a model string to a transport.
// llm.ProviderRegistry satisfies it.
type TransportResolver interface {
	Resolve(model string) (llmsvc.Transport, *llmsvc.ModelInfo, error)
}

// FailureReporter receives failed generations.
type FailureReporter interface {
	ReportFailure(ctx context.Context, failure Failure)
}

// Failure describes a failed generation for reporting.
type Failure struct {
	GenerationID string
	Kind         prompts.Kind
	Provider     string
	Model        string
	Rounds       int
	Err          error
}

// Request is one generation request.
type Request struct {
	Kind prompts.Kind

	// Model overrides the default model, optionally as "provider/model".
	Model string

	// Context.StartDate is the plan's start date for every kind, including
	// week_workouts where it anchors the week's dates.
	Context prompts.Context

	// PlanID selects the stored plan whose week is replaced by a
	// week_workouts generation.
	PlanID string

	// Persist saves the parsed plan, or replaces the stored week, when a
	// store is configured.
	Persist bool
}

// Validate checks the request fields each kind needs.
func (r Request) Validate() error {
	kinds := make([]interface{}, len(prompts.Kinds))
	for i, k := range prompts.Kinds {
		kinds[i] = k
	}
	needsDates := r.Kind == prompts.KindFullPlan || r.Kind == prompts.KindOutline

	err := validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required, validation.In(kinds...)),
	)
	if err == nil {
		c := r.Context
		err = validation.ValidateStruct(&c,
			validation.Field(&c.StartDate, validation.When(needsDates || r.Kind == prompts.KindWeekWorkouts, validation.Required)),
			validation.Field(&c.EndDate, validation.When(r.Kind == prompts.KindOutline, validation.Required)),
			validation.Field(&c.Week, validation.When(r.Kind == prompts.KindWeekWorkouts, validation.Required)),
			validation.Field(&c.Message, validation.When(r.Kind == prompts.KindCoach, validation.Required),
				validation.Length(0, config.MaxClarificationLength)),
			validation.Field(&c.Plan),
		)
	}
	if err == nil && r.Kind == prompts.KindOutline && r.Context.EndDate.Before(r.Context.StartDate) {
		err = errors.New("end date must not be before start date")
	}
	if err == nil && r.Persist && r.Kind == prompts.KindWeekWorkouts && r.PlanID == "" {
		err = errors.New("plan_id is required to persist week workouts")
	}
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// ServiceConfig holds generation defaults.
type ServiceConfig struct {
	DefaultModel string
	MaxTokens    int
	MaxRounds    int
}

// Service runs generations.
type Service struct {
	cfg          ServiceConfig
	transports   TransportResolver
	tools        agent.ToolDispatcher
	capabilities *capabilities.Registry
	store        planrepo.PlanStore
	sessions     *SessionRegistry
	reporter     FailureReporter
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCapabilities enables max-token clamping and the tool-support check.
func WithCapabilities(r *capabilities.Registry) Option {
	return func(s *Service) { s.capabilities = r }
}

// WithStore enables persistence.
func WithStore(store planrepo.PlanStore) Option {
	return func(s *Service) { s.store = store }
}

// WithFailureReporter sets where failed generations are reported.
func WithFailureReporter(r FailureReporter) Option {
	return func(s *Service) { s.reporter = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a generation service.
func NewService(
	cfg ServiceConfig,
	transports TransportResolver,
	tools agent.ToolDispatcher,
	sessions *SessionRegistry,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		cfg:        cfg,
		transports: transports,
		tools:      tools,
		sessions:   sessions,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sessions returns the registry of running and recent generations.
func (s *Service) Sessions() *SessionRegistry { return s.sessions }

// Start validates req, registers a generation and runs it in the background.
// The generation outlives ctx's cancellation; use the session's Cancel.
func (s *Service) Start(ctx context.Context, req Request) (*Generation, error) {
	gen, task, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Register(gen); err != nil {
		return nil, err
	}

	go s.run(context.WithoutCancel(ctx), gen, task, req)
	return gen, nil
}

// Generate runs req to completion on the caller's goroutine.
func (s *Service) Generate(ctx context.Context, req Request) (*Outcome, error) {
	gen, task, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	s.run(ctx, gen, task, req)
	return gen.Result()
}

func (s *Service) prepare(req Request) (*Generation, agent.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, agent.Task{}, err
	}

	prompt, err := prompts.Build(req.Kind, req.Context)
	if err != nil {
		return nil, agent.Task{}, &domain.ValidationError{Message: err.Error()}
	}

	modelStr := req.Model
	if modelStr == "" {
		modelStr = s.cfg.DefaultModel
	}
	transport, info, err := s.transports.Resolve(modelStr)
	if err != nil {
		return nil, agent.Task{}, &domain.ValidationError{Message: fmt.Sprintf("model %q: %v", modelStr, err)}
	}

	maxTokens := s.cfg.MaxTokens
	if s.capabilities != nil {
		if prompt.RequireJSON && !s.capabilities.SupportsTools(info.Provider, info.Model) {
			return nil, agent.Task{}, &domain.ValidationError{
				Message: fmt.Sprintf("model %s/%s does not support tools", info.Provider, info.Model),
			}
		}
		maxTokens = s.capabilities.ClampMaxTokens(info.Provider, info.Model, maxTokens)
	}

	id := uuid.NewString()
	logger := s.logger.With("generation_id", id, "kind", req.Kind, "provider", info.Provider, "model", info.Model)
	session := agent.NewSession(transport, s.tools, agent.Options{
		Model:     info.Model,
		MaxTokens: maxTokens,
		MaxRounds: s.cfg.MaxRounds,
		Logger:    logger,
	})
	gen := newGeneration(id, req.Kind, info.Provider, info.Model, session, s.now())

	task := agent.Task{
		SystemPrompt: prompt.SystemPrompt,
		Prompt:       prompt.UserPrompt,
		RequireJSON:  prompt.RequireJSON,
	}
	return gen, task, nil
}

func (s *Service) run(ctx context.Context, gen *Generation, task agent.Task, req Request) {
	logger := s.logger.With("generation_id", gen.ID())
	logger.Info("generation started", "kind", req.Kind, "model", gen.model)

	outcome := &Outcome{}
	if req.Kind != prompts.KindCoach {
		task.Finalize = func(text string) error {
			return s.finalize(ctx, req, text, outcome)
		}
	}

	result, err := gen.session.Run(ctx, task)
	if err == nil {
		outcome.Rounds = result.Rounds
		outcome.Usage = result.Usage
		outcome.Cancelled = result.Cancelled
		if req.Kind == prompts.KindCoach {
			outcome.Text = result.Text
		}
	} else {
		outcome = nil
	}
	gen.finish(outcome, err, s.now())

	switch {
	case err != nil:
		logger.Error("generation failed", "error", err, "kind", domain.ErrorKind(err), "rounds", gen.session.Rounds())
		if s.reporter != nil {
			s.reporter.ReportFailure(ctx, Failure{
				GenerationID: gen.ID(),
				Kind:         req.Kind,
				Provider:     gen.provider,
				Model:        gen.model,
				Rounds:       gen.session.Rounds(),
				Err:          err,
			})
		}
	case result.Cancelled:
		logger.Info("generation cancelled", "rounds", result.Rounds)
	default:
		logger.Info("generation complete",
			"rounds", result.Rounds,
			"input_tokens", result.Usage.InputTokens,
			"output_tokens", result.Usage.OutputTokens,
		)
	}
}

// finalize parses the model's answer and persists it.
func (s *Service) finalize(ctx context.Context, req Request, text string, out *Outcome) error {
	c := req.Context

	switch req.Kind {
	case prompts.KindFullPlan, prompts.KindOutline:
		var (
			p   *models.Plan
			err error
		)
		if req.Kind == prompts.KindFullPlan {
			p, err = parser.ParseFullPlan(text, c.StartDate, c.Plan)
		} else {
			p, err = parser.ParseOutline(text, c.StartDate, c.EndDate, c.Plan)
		}
		if err != nil {
			return err
		}
		if req.Persist && s.store != nil {
			if err := s.store.SavePlan(ctx, p); err != nil {
				return fmt.Errorf("save plan: %w", err)
			}
		}
		out.Plan = p

	case prompts.KindWeekWorkouts:
		week := *c.Week
		week.Workouts = nil
		if err := parser.ParseWeekWorkouts(text, &week, c.StartDate, c.Plan); err != nil {
			return err
		}
		if req.Persist && s.store != nil {
			if err := s.store.ReplaceWeekWorkouts(ctx, req.PlanID, &week); err != nil {
				return fmt.Errorf("replace week workouts: %w", err)
			}
		}
		out.Week = &week
	}
	return nil
}
