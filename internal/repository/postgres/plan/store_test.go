package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"stride/internal/domain"
	models "stride/internal/domain/models/plan"
	"stride/internal/repository/postgres"
)

func TestSchemaStatements_UsePrefix(t *testing.T) {
	tables := postgres.NewTableNames("dev_")
	stmts := schemaStatements(tables)
	if len(stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(stmts))
	}

	want := []string{"dev_plans", "dev_plan_weeks", "dev_workouts", "dev_workout_steps"}
	for i, name := range want {
		if !strings.Contains(stmts[i], "CREATE TABLE IF NOT EXISTS "+name+" (") {
			t.Errorf("statement %d does not create %s", i, name)
		}
	}
	if !strings.Contains(stmts[3], "REFERENCES dev_workouts(id) ON DELETE CASCADE") {
		t.Error("steps must cascade from workouts")
	}
}

// newTestStore connects to TEST_DATABASE_URL and isolates the run under a
// unique table prefix that is dropped afterwards.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	prefix := fmt.Sprintf("test_%d_", time.Now().UnixNano())
	tables := postgres.NewTableNames(prefix)
	store := NewStore(&postgres.RepositoryConfig{Pool: pool, Tables: tables}, postgres.NewTransactionManager(pool, nil))
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		t.Fatalf("EnsureSchema: %v", err)
	}

	t.Cleanup(func() {
		for _, table := range []string{tables.Steps, tables.Workouts, tables.Weeks, tables.Plans} {
			_, _ = pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)
		}
		pool.Close()
	})
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePlan() *models.Plan {
	vdot := 48.5
	pace := 5.25
	zone := 4
	return &models.Plan{
		Name:      "Spring 10K",
		Goal:      "Sub 45",
		VDOT:      &vdot,
		StartDate: date(2026, 3, 2),
		EndDate:   date(2026, 3, 15),
		Weeks: []models.Week{
			{
				Number:          1,
				Theme:           "Base",
				StartDate:       date(2026, 3, 2),
				TotalDistanceKm: 30,
				Workouts: []models.Workout{
					{
						Name:          "Intervals",
						Type:          models.WorkoutTypeInterval,
						ScheduledDate: date(2026, 3, 4),
						DayOfWeek:     4,
						DistanceKm:    8,
						Location:      models.LocationTrack,
						Steps: []models.Step{
							{Order: 0, Type: models.StepTypeWarmup, GoalType: models.GoalTypeTime, GoalValue: 15, RepeatCount: 1},
							{Order: 1, Type: models.StepTypeWork, GoalType: models.GoalTypeDistance, GoalValue: 0.8, TargetPaceMinPerKm: &pace, HRZone: &zone, RepeatCount: 5, GroupID: 1},
							{Order: 2, Type: models.StepTypeRecovery, GoalType: models.GoalTypeTime, GoalValue: 2, RepeatCount: 1, GroupID: 1},
						},
					},
					{
						Name:          "Easy",
						Type:          models.WorkoutTypeEasy,
						ScheduledDate: date(2026, 3, 6),
						DayOfWeek:     6,
						DistanceKm:    6,
						Location:      models.LocationOutdoor,
						Steps:         []models.Step{},
					},
				},
			},
			{Number: 2, Theme: "Build", StartDate: date(2026, 3, 9), TotalDistanceKm: 33, Workouts: []models.Workout{}},
		},
	}
}

func TestStore_SaveAndGetPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlan()
	if err := store.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if p.ID == "" || p.Weeks[0].ID == "" || p.Weeks[0].Workouts[0].ID == "" {
		t.Fatalf("IDs not assigned: %+v", p)
	}

	got, err := store.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.Name != "Spring 10K" || got.VDOT == nil || *got.VDOT != 48.5 {
		t.Errorf("plan header = %+v", got)
	}
	if !got.StartDate.Equal(p.StartDate) || !got.EndDate.Equal(p.EndDate) {
		t.Errorf("dates = %v..%v", got.StartDate, got.EndDate)
	}
	if len(got.Weeks) != 2 || got.Weeks[1].Theme != "Build" {
		t.Fatalf("weeks = %+v", got.Weeks)
	}

	workouts := got.Weeks[0].Workouts
	if len(workouts) != 2 || workouts[0].Name != "Intervals" || workouts[1].Name != "Easy" {
		t.Fatalf("workouts = %+v", workouts)
	}
	steps := workouts[0].Steps
	if len(steps) != 3 {
		t.Fatalf("steps = %+v", steps)
	}
	if steps[1].HRZone == nil || *steps[1].HRZone != 4 || steps[1].RepeatCount != 5 || steps[1].GroupID != 1 {
		t.Errorf("work step = %+v", steps[1])
	}
	if steps[0].TargetPaceMinPerKm != nil {
		t.Errorf("warmup pace = %v, want nil", *steps[0].TargetPaceMinPerKm)
	}
	if len(workouts[1].Steps) != 0 {
		t.Errorf("easy steps = %+v", workouts[1].Steps)
	}
}

func TestStore_ReplaceWeekWorkouts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlan()
	if err := store.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	replacement := &models.Week{
		Number:    1,
		StartDate: date(2026, 3, 2),
		Workouts: []models.Workout{
			{Name: "Long run", Type: models.WorkoutTypeLong, ScheduledDate: date(2026, 3, 8), DayOfWeek: 1, DistanceKm: 16, Location: models.LocationTrail, Steps: []models.Step{}},
		},
	}
	if err := store.ReplaceWeekWorkouts(ctx, p.ID, replacement); err != nil {
		t.Fatalf("ReplaceWeekWorkouts: %v", err)
	}
	if replacement.ID != p.Weeks[0].ID {
		t.Errorf("week ID = %s, want existing %s", replacement.ID, p.Weeks[0].ID)
	}

	got, err := store.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	workouts := got.Weeks[0].Workouts
	if len(workouts) != 1 || workouts[0].Name != "Long run" || workouts[0].Location != models.LocationTrail {
		t.Errorf("workouts = %+v", workouts)
	}
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetPlan(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetPlan err = %v, want ErrNotFound", err)
	}

	p := samplePlan()
	if err := store.SavePlan(ctx, p); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	err := store.ReplaceWeekWorkouts(ctx, p.ID, &models.Week{Number: 9, StartDate: date(2026, 4, 27)})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ReplaceWeekWorkouts err = %v, want ErrNotFound", err)
	}
}

func TestStore_DuplicateWeekRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := samplePlan()
	p.Weeks[1].Number = 1
	err := store.SavePlan(ctx, p)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("SavePlan err = %v, want validation error", err)
	}
	if p.ID != "" {
		t.Errorf("plan ID assigned after failed save: %s", p.ID)
	}

	var count int
	if err := store.pool.QueryRow(ctx, "SELECT count(*) FROM "+store.tables.Plans).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("plans = %d, want 0 after rollback", count)
	}
}
