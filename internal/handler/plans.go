package handler

import (
	"log/slog"
	"net/http"

	planrepo "stride/internal/domain/repositories/plan"
	"stride/internal/httputil"
)

// PlanHandler serves persisted plans.
type PlanHandler struct {
	store  planrepo.PlanStore
	logger *slog.Logger
}

// NewPlanHandler creates a plan handler.
func NewPlanHandler(store planrepo.PlanStore, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanHandler{store: store, logger: logger}
}

// GetPlan returns a stored plan with its weeks, workouts and steps
// GET /api/plans/{id}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, p)
}
