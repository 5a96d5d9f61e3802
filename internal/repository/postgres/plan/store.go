package plan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"stride/internal/domain"
	models "stride/internal/domain/models/plan"
	"stride/internal/domain/repositories"
	planrepo "stride/internal/domain/repositories/plan"
	"stride/internal/repository/postgres"
)

// Store implements PlanStore on Postgres.
type Store struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	txm    repositories.TransactionManager
	logger *slog.Logger
}

// NewStore creates a plan store
func NewStore(config *postgres.RepositoryConfig, txm repositories.TransactionManager) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   config.Pool,
		tables: config.Tables,
		txm:    txm,
		logger: logger,
	}
}

var _ planrepo.PlanStore = (*Store)(nil)

// weekIDs are generated before insertion and assigned only after commit.
type weekIDs struct {
	week     string
	workouts []string
}

func newWeekIDs(w *models.Week) weekIDs {
	ids := weekIDs{week: uuid.NewString(), workouts: make([]string, len(w.Workouts))}
	for i := range w.Workouts {
		ids.workouts[i] = uuid.NewString()
	}
	return ids
}

func (ids weekIDs) assign(w *models.Week) {
	w.ID = ids.week
	for i := range w.Workouts {
		w.Workouts[i].ID = ids.workouts[i]
	}
}

// SavePlan inserts the plan graph
func (s *Store) SavePlan(ctx context.Context, p *models.Plan) error {
	planID := uuid.NewString()
	weeks := make([]weekIDs, len(p.Weeks))
	for i := range p.Weeks {
		weeks[i] = newWeekIDs(&p.Weeks[i])
	}

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		db := postgres.GetExecutor(ctx, s.pool)

		query := fmt.Sprintf(`
			INSERT INTO %s (id, name, goal, vdot, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.tables.Plans)
		if _, err := db.Exec(ctx, query, planID, p.Name, p.Goal, p.VDOT, p.StartDate, p.EndDate); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}

		for i := range p.Weeks {
			w := &p.Weeks[i]
			query := fmt.Sprintf(`
				INSERT INTO %s (id, plan_id, week_number, theme, start_date, total_distance_km, total_duration_minutes, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, s.tables.Weeks)
			_, err := db.Exec(ctx, query, weeks[i].week, planID, w.Number, w.Theme, w.StartDate,
				w.TotalDistanceKm, w.TotalDurationMinutes, w.Notes)
			if err != nil {
				return postgres.TranslateError(err, fmt.Sprintf("insert week %d", w.Number), fmt.Sprintf("week number %d", w.Number))
			}
			if err := s.insertWorkouts(ctx, db, weeks[i], w.Workouts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.ID = planID
	for i := range p.Weeks {
		weeks[i].assign(&p.Weeks[i])
	}
	s.logger.Debug("plan saved", "plan_id", planID, "weeks", len(p.Weeks), "workouts", p.WorkoutCount())
	return nil
}

// ReplaceWeekWorkouts swaps a stored week's workouts
func (s *Store) ReplaceWeekWorkouts(ctx context.Context, planID string, week *models.Week) error {
	if _, err := uuid.Parse(planID); err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid plan id %q", planID)}
	}

	ids := newWeekIDs(week)

	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		db := postgres.GetExecutor(ctx, s.pool)

		query := fmt.Sprintf(`SELECT id FROM %s WHERE plan_id = $1 AND week_number = $2 FOR UPDATE`, s.tables.Weeks)
		var weekID string
		if err := db.QueryRow(ctx, query, planID, week.Number).Scan(&weekID); err != nil {
			return postgres.TranslateError(err, "find week", fmt.Sprintf("week %d of plan %s", week.Number, planID))
		}
		ids.week = weekID

		// Steps go with their workouts via ON DELETE CASCADE.
		if _, err := db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE week_id = $1`, s.tables.Workouts), weekID); err != nil {
			return fmt.Errorf("delete week workouts: %w", err)
		}

		if _, err := db.Exec(ctx, fmt.Sprintf(`UPDATE %s SET start_date = $2 WHERE id = $1`, s.tables.Weeks), weekID, week.StartDate); err != nil {
			return fmt.Errorf("update week: %w", err)
		}

		return s.insertWorkouts(ctx, db, ids, week.Workouts)
	})
	if err != nil {
		return err
	}

	ids.assign(week)
	s.logger.Debug("week workouts replaced", "plan_id", planID, "week", week.Number, "workouts", len(week.Workouts))
	return nil
}

// insertWorkouts queues every workout and step of a week in one batch.
func (s *Store) insertWorkouts(ctx context.Context, db repositories.DBTX, ids weekIDs, workouts []models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	workoutQuery := fmt.Sprintf(`
		INSERT INTO %s (id, week_id, position, name, type, scheduled_date, day_of_week,
			distance_km, duration_minutes, target_pace_min_per_km, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, s.tables.Workouts)
	stepQuery := fmt.Sprintf(`
		INSERT INTO %s (workout_id, step_order, type, goal_type, goal_value,
			target_pace_min_per_km, hr_zone, repeat_count, group_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.tables.Steps)

	batch := &pgx.Batch{}
	for i, wo := range workouts {
		batch.Queue(workoutQuery, ids.workouts[i], ids.week, i, wo.Name, string(wo.Type), wo.ScheduledDate,
			wo.DayOfWeek, wo.DistanceKm, wo.DurationMinutes, wo.TargetPaceMinPerKm, string(wo.Location), wo.Notes)
		for _, st := range wo.Steps {
			batch.Queue(stepQuery, ids.workouts[i], st.Order, string(st.Type), string(st.GoalType), st.GoalValue,
				st.TargetPaceMinPerKm, st.HRZone, st.RepeatCount, st.GroupID, st.Notes)
		}
	}

	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return postgres.TranslateError(err, "insert workouts", "step order within a workout")
	}
	return nil
}

// GetPlan loads a plan with its weeks, workouts and steps
func (s *Store) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("plan %s not found", id)}
	}
	db := postgres.GetExecutor(ctx, s.pool)

	p := &models.Plan{ID: id, Weeks: []models.Week{}}
	query := fmt.Sprintf(`SELECT name, goal, vdot, start_date, end_date FROM %s WHERE id = $1`, s.tables.Plans)
	if err := db.QueryRow(ctx, query, id).Scan(&p.Name, &p.Goal, &p.VDOT, &p.StartDate, &p.EndDate); err != nil {
		return nil, postgres.TranslateError(err, "get plan", "plan "+id)
	}

	weekIndex, err := s.loadWeeks(ctx, db, p)
	if err != nil {
		return nil, err
	}
	workouts, err := s.loadWorkouts(ctx, db, p, weekIndex)
	if err != nil {
		return nil, err
	}
	if err := s.loadSteps(ctx, db, p, workouts); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) loadWeeks(ctx context.Context, db repositories.DBTX, p *models.Plan) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT id, week_number, theme, start_date, total_distance_km, total_duration_minutes, notes
		FROM %s
		WHERE plan_id = $1
		ORDER BY week_number
	`, s.tables.Weeks)

	rows, err := db.Query(ctx, query, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		w := models.Week{Workouts: []models.Workout{}}
		if err := rows.Scan(&w.ID, &w.Number, &w.Theme, &w.StartDate, &w.TotalDistanceKm, &w.TotalDurationMinutes, &w.Notes); err != nil {
			return nil, fmt.Errorf("scan week: %w", err)
		}
		index[w.ID] = len(p.Weeks)
		p.Weeks = append(p.Weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weeks: %w", err)
	}
	return index, nil
}

// workoutRef locates a loaded workout inside the plan graph.
type workoutRef struct {
	week, workout int
}

func (s *Store) loadWorkouts(ctx context.Context, db repositories.DBTX, p *models.Plan, weekIndex map[string]int) (map[string]workoutRef, error) {
	query := fmt.Sprintf(`
		SELECT wo.id, wo.week_id, wo.name, wo.type, wo.scheduled_date, wo.day_of_week,
			wo.distance_km, wo.duration_minutes, wo.target_pace_min_per_km, wo.location, wo.notes
		FROM %s wo
		JOIN %s w ON w.id = wo.week_id
		WHERE w.plan_id = $1
		ORDER BY w.week_number, wo.position
	`, s.tables.Workouts, s.tables.Weeks)

	rows, err := db.Query(ctx, query, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]workoutRef)
	for rows.Next() {
		var (
			wo                   models.Workout
			weekID, typ, location string
		)
		if err := rows.Scan(&wo.ID, &weekID, &wo.Name, &typ, &wo.ScheduledDate, &wo.DayOfWeek,
			&wo.DistanceKm, &wo.DurationMinutes, &wo.TargetPaceMinPerKm, &location, &wo.Notes); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		wo.Type = models.ParseWorkoutType(typ)
		wo.Location = models.ParseLocation(location)
		wo.Steps = []models.Step{}

		wi, ok := weekIndex[weekID]
		if !ok {
			continue
		}
		refs[wo.ID] = workoutRef{week: wi, workout: len(p.Weeks[wi].Workouts)}
		p.Weeks[wi].Workouts = append(p.Weeks[wi].Workouts, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}

	return refs, nil
}

func (s *Store) loadSteps(ctx context.Context, db repositories.DBTX, p *models.Plan, refs map[string]workoutRef) error {
	if len(refs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		SELECT st.workout_id, st.step_order, st.type, st.goal_type, st.goal_value,
			st.target_pace_min_per_km, st.hr_zone, st.repeat_count, st.group_id, st.notes
		FROM %s st
		JOIN %s wo ON wo.id = st.workout_id
		JOIN %s w ON w.id = wo.week_id
		WHERE w.plan_id = $1
		ORDER BY st.workout_id, st.step_order
	`, s.tables.Steps, s.tables.Workouts, s.tables.Weeks)

	rows, err := db.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st                      models.Step
			workoutID, typ, goalTyp string
		)
		if err := rows.Scan(&workoutID, &st.Order, &typ, &goalTyp, &st.GoalValue,
			&st.TargetPaceMinPerKm, &st.HRZone, &st.RepeatCount, &st.GroupID, &st.Notes); err != nil {
			return fmt.Errorf("scan step: %w", err)
		}
		st.Type = models.ParseStepType(typ)
		st.GoalType = models.ParseGoalType(goalTyp)

		ref, ok := refs[workoutID]
		if !ok {
			continue
		}
		wo := &p.Weeks[ref.week].Workouts[ref.workout]
		wo.Steps = append(wo.Steps, st)
	}
	return rows.Err()
}
