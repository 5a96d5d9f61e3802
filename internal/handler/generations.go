package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"stride/internal/config"
	"stride/internal/domain"
	"stride/internal/domain/models/plan"
	"stride/internal/handler/sse"
	"stride/internal/httputil"
	"stride/internal/service/llm/agent"
	"stride/internal/service/llm/prompts"
	plansvc "stride/internal/service/plan"
)

const dateLayout = "2006-01-02"

// GenerationHandler exposes generations over HTTP.
type GenerationHandler struct {
	service *plansvc.Service
	sse     *sse.Config
	logger  *slog.Logger
}

// NewGenerationHandler creates a generation handler. A nil SSE config uses
// sse.DefaultConfig.
func NewGenerationHandler(service *plansvc.Service, sseConfig *sse.Config, logger *slog.Logger) *GenerationHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerationHandler{
		service: service,
		sse:     sseConfig,
		logger:  logger,
	}
}

type createGenerationRequest struct {
	Kind    string `json:"kind"`
	Model   string `json:"model"`
	PlanID  string `json:"plan_id"`
	Persist bool   `json:"persist"`

	Goal                string            `json:"goal"`
	RaceDate            string            `json:"race_date"`
	StartDate           string            `json:"start_date"`
	EndDate             string            `json:"end_date"`
	Runner              plan.ParseContext `json:"runner"`
	RecentWeeklyVolumes []float64         `json:"recent_weekly_volumes"`
	Week                *weekRequest      `json:"week"`
	Message             string            `json:"message"`
}

type weekRequest struct {
	Number               int     `json:"number"`
	Theme                string  `json:"theme"`
	StartDate            string  `json:"start_date"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	Notes                string  `json:"notes"`
}

// toRequest converts the wire format. Field-level checks beyond date syntax
// happen in plansvc.Request.Validate.
func (req createGenerationRequest) toRequest() (plansvc.Request, error) {
	kind, err := prompts.ParseKind(req.Kind)
	if err != nil {
		return plansvc.Request{}, &domain.ValidationError{Message: err.Error()}
	}

	out := plansvc.Request{
		Kind:    kind,
		Model:   req.Model,
		PlanID:  req.PlanID,
		Persist: req.Persist,
		Context: prompts.Context{
			Goal:                req.Goal,
			Plan:                req.Runner,
			RecentWeeklyVolumes: req.RecentWeeklyVolumes,
			Message:             req.Message,
		},
	}

	if out.Context.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return plansvc.Request{}, err
	}
	if out.Context.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return plansvc.Request{}, err
	}
	if req.RaceDate != "" {
		raceDate, err := parseDate("race_date", req.RaceDate)
		if err != nil {
			return plansvc.Request{}, err
		}
		out.Context.RaceDate = &raceDate
	}

	if req.Week != nil {
		weekStart, err := parseDate("week.start_date", req.Week.StartDate)
		if err != nil {
			return plansvc.Request{}, err
		}
		out.Context.Week = &plan.Week{
			Number:               req.Week.Number,
			Theme:                req.Week.Theme,
			StartDate:            weekStart,
			TotalDistanceKm:      req.Week.TotalDistanceKm,
			TotalDurationMinutes: req.Week.TotalDurationMinutes,
			Notes:                req.Week.Notes,
		}
	}
	return out, nil
}

// parseDate accepts an empty value as the zero time.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Message: fmt.Sprintf("%s: must be a date in YYYY-MM-DD format", field)}
	}
	return t, nil
}

type generationResponse struct {
	ID     string       `json:"id"`
	Status agent.Status `json:"status"`
}

func newGenerationResponse(gen *plansvc.Generation) generationResponse {
	return generationResponse{ID: gen.ID(), Status: gen.Session().Status()}
}

// Create starts a generation in the background
// POST /api/generations
// Returns 202 with the generation ID; progress is read from GET or the events stream
func (h *GenerationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createGenerationRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := body.toRequest()
	if err != nil {
		handleError(w, err)
		return
	}

	gen, err := h.service.Start(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusAccepted, newGenerationResponse(gen))
}

// Get returns a generation's status, usage and result
// GET /api/generations/{id}
func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	gen, err := h.service.Sessions().Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, gen.Snapshot())
}

type respondRequest struct {
	Text string `json:"text"`
}

// Validate bounds the answer length; an empty answer is allowed and tells
// the model to proceed on its own.
func (r respondRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Length(0, config.MaxClarificationLength)),
	)
}

// Respond answers the generation's pending clarifying question
// POST /api/generations/{id}/response
// Returns 409 if no question is pending
func (h *GenerationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	gen, err := h.service.Sessions().Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	var body respondRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := body.Validate(); err != nil {
		handleError(w, &domain.ValidationError{Message: err.Error()})
		return
	}

	if err := gen.Session().SubmitUserResponse(body.Text); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newGenerationResponse(gen))
}

// CancelInput declines the pending clarifying question; the model is told to
// proceed without further questions
// POST /api/generations/{id}/cancel-input
func (h *GenerationHandler) CancelInput(w http.ResponseWriter, r *http.Request) {
	gen, err := h.service.Sessions().Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if err := gen.Session().CancelPendingInput(); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, newGenerationResponse(gen))
}

// Cancel stops a running generation. Cancelling a finished one is a no-op.
// DELETE /api/generations/{id}
func (h *GenerationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	gen, err := h.service.Sessions().Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	gen.Session().Cancel()
	httputil.RespondJSON(w, http.StatusAccepted, newGenerationResponse(gen))
}

// Events streams status changes as SSE. Each change is a "status" event;
// once the generation finishes a final "result" event carries the full view
// and the stream ends.
// GET /api/generations/{id}/events
func (h *GenerationHandler) Events(w http.ResponseWriter, r *http.Request) {
	gen, err := h.service.Sessions().Get(r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handleError(w, errors.New("streaming unsupported by response writer"))
		return
	}

	logger := h.logger.With("generation_id", gen.ID())
	writer := sse.NewWriter(w, flusher, gen.ID())

	statuses, unsubscribe := gen.Session().Subscribe()
	defer unsubscribe()

	keepAlive := sse.NewTickerKeepAlive(h.sse.KeepAliveInterval)
	keepAliveStopped := keepAlive.Start(writer, logger)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case status, open := <-statuses:
			if !open {
				h.writeResult(ctx.Done(), writer, gen, logger)
				return
			}
			if err := writer.WriteEvent("status", status); err != nil {
				logger.Debug("client gone while streaming", "error", err)
				return
			}
		case <-keepAliveStopped:
			return
		case <-ctx.Done():
			return
		}
	}
}

// writeResult waits for the generation to record its outcome, which happens
// just after the session reaches its terminal status.
func (h *GenerationHandler) writeResult(clientGone <-chan struct{}, writer *sse.Writer, gen *plansvc.Generation, logger *slog.Logger) {
	select {
	case <-gen.Done():
	case <-clientGone:
		return
	}
	if err := writer.WriteEvent("result", gen.Snapshot()); err != nil {
		logger.Debug("client gone before result", "error", err)
	}
}
