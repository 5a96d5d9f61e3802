package plan

import (
	"context"

	"stride/internal/domain/models/plan"
)

// PlanStore persists generated plans.
type PlanStore interface {
	// SavePlan inserts the plan with all weeks, workouts and steps in one
	// transaction and assigns their IDs.
	SavePlan(ctx context.Context, p *plan.Plan) error

	// GetPlan loads a plan graph.
	// Returns domain.ErrNotFound if the plan does not exist.
	GetPlan(ctx context.Context, id string) (*plan.Plan, error)

	// ReplaceWeekWorkouts deletes the stored workouts and steps of the week
	// with week.Number and inserts week.Workouts in their place, atomically.
	// Returns domain.ErrNotFound if the plan has no such week.
	ReplaceWeekWorkouts(ctx context.Context, planID string, week *plan.Week) error
}
