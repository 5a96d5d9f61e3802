package plan

import (
	"context"
	"fmt"

	"stride/internal/repository/postgres"
)

// schemaStatements returns the DDL for the plan tables, parents first.
func schemaStatements(t *postgres.TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			goal        TEXT NOT NULL DEFAULT '',
			vdot        DOUBLE PRECISION,
			start_date  DATE NOT NULL,
			end_date    DATE NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, t.Plans),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id                     UUID PRIMARY KEY,
			plan_id                UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			week_number            INTEGER NOT NULL,
			theme                  TEXT NOT NULL DEFAULT '',
			start_date             DATE NOT NULL,
			total_distance_km      DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_duration_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes                  TEXT NOT NULL DEFAULT '',
			UNIQUE (plan_id, week_number)
		)`, t.Weeks, t.Plans),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id                     UUID PRIMARY KEY,
			week_id                UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			position               INTEGER NOT NULL,
			name                   TEXT NOT NULL DEFAULT '',
			type                   TEXT NOT NULL,
			scheduled_date         DATE NOT NULL,
			day_of_week            INTEGER NOT NULL,
			distance_km            DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration_minutes       DOUBLE PRECISION NOT NULL DEFAULT 0,
			target_pace_min_per_km DOUBLE PRECISION,
			location               TEXT NOT NULL,
			notes                  TEXT NOT NULL DEFAULT ''
		)`, t.Workouts, t.Weeks),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			workout_id             UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			step_order             INTEGER NOT NULL,
			type                   TEXT NOT NULL,
			goal_type              TEXT NOT NULL,
			goal_value             DOUBLE PRECISION NOT NULL DEFAULT 0,
			target_pace_min_per_km DOUBLE PRECISION,
			hr_zone                INTEGER,
			repeat_count           INTEGER NOT NULL DEFAULT 1,
			group_id               INTEGER NOT NULL DEFAULT 0,
			notes                  TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (workout_id, step_order)
		)`, t.Steps, t.Workouts),
	}
}

// EnsureSchema creates the plan tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements(s.tables) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure plan schema: %w", err)
		}
	}
	return nil
}
