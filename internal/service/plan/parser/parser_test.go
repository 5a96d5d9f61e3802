package parser

import (
	"errors"
	"math"
	"testing"
	"time"

	"stride/internal/domain"
	"stride/internal/domain/models/plan"
	"stride/internal/training"
)

// 2026-03-02 is a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func assertParseKind(t *testing.T, err error, kind domain.ParseErrorKind) {
	t.Helper()
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *domain.ParseError, got %v", err)
	}
	if parseErr.Kind != kind {
		t.Errorf("kind = %s, want %s", parseErr.Kind, kind)
	}
	if !errors.Is(err, domain.ErrParse) {
		t.Error("expected errors.Is(err, domain.ErrParse)")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		kind    domain.ParseErrorKind
	}{
		{name: "whole text", text: `{"weeks": []}`, wantKey: "weeks"},
		{name: "surrounding whitespace", text: "\n  {\"weeks\": []}\n", wantKey: "weeks"},
		{name: "json fence", text: "Here is the plan:\n```json\n{\"weeks\": []}\n```\nEnjoy!", wantKey: "weeks"},
		{name: "bare fence", text: "```\n{\"workouts\": []}\n```", wantKey: "workouts"},
		{name: "prose around braces", text: `Sure! {"weeks": [{"theme": "base"}]} Let me know.`, wantKey: "weeks"},
		{name: "no braces", text: "What is your goal race date?", kind: domain.ParseNoJSONFound},
		{name: "empty", text: "", kind: domain.ParseNoJSONFound},
		{name: "broken json", text: `{"weeks": [}`, kind: domain.ParseInvalidJSON},
		{name: "braces in prose", text: "Should I use {easy} or {tempo} days?", kind: domain.ParseInvalidJSON},
		{name: "truncated object", text: `{"weeks": [{"theme": "base"}`, kind: domain.ParseInvalidJSON},
		{name: "array without objects", text: "{ see below }\n```json\n[1,2]\n```", kind: domain.ParseInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ExtractJSON(tt.text)
			if tt.kind != "" {
				assertParseKind(t, err, tt.kind)
				if ContainsJSONObject(tt.text) {
					t.Error("ContainsJSONObject should be false")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := obj[tt.wantKey]; !ok {
				t.Errorf("expected key %q in %v", tt.wantKey, obj)
			}
			if !ContainsJSONObject(tt.text) {
				t.Error("ContainsJSONObject should be true")
			}
		})
	}
}

func TestParseFullPlan_AllDefaults(t *testing.T) {
	p, err := ParseFullPlan(`{"weeks":[{"workouts":[{"steps":[{}]}]}]}`, monday, plan.ParseContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.Weeks) != 1 {
		t.Fatalf("weeks = %d, want 1", len(p.Weeks))
	}
	week := p.Weeks[0]
	if week.Number != 1 || week.Theme != "" {
		t.Errorf("week = number %d theme %q", week.Number, week.Theme)
	}
	if len(week.Workouts) != 1 {
		t.Fatalf("workouts = %d, want 1", len(week.Workouts))
	}
	workout := week.Workouts[0]
	if workout.Type != plan.WorkoutTypeEasy {
		t.Errorf("workout type = %s, want easy", workout.Type)
	}
	if workout.Location != plan.LocationOutdoor {
		t.Errorf("location = %s, want outdoor", workout.Location)
	}
	if !workout.ScheduledDate.Equal(monday) {
		t.Errorf("scheduled = %v, want week start", workout.ScheduledDate)
	}
	if workout.TargetPaceMinPerKm != nil {
		t.Error("no pace expected without VDOT or explicit pace")
	}
	if len(workout.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(workout.Steps))
	}
	step := workout.Steps[0]
	if step.Order != 0 || step.Type != plan.StepTypeWork || step.GoalType != plan.GoalTypeOpen ||
		step.RepeatCount != 1 || step.GroupID != 0 {
		t.Errorf("step = %+v", step)
	}

	wantEnd := monday.AddDate(0, 0, 6)
	if !p.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", p.EndDate, wantEnd)
	}
}

func TestParseFullPlan_PercentResolution(t *testing.T) {
	text := `{"weeks":[{"weekly_volume_percent":80,"workouts":[
		{"daily_volume_percent":16},
		{"daily_volume_percent":"20%","distance_km":99}
	]}]}`

	t.Run("distance", func(t *testing.T) {
		pc := plan.ParseContext{PeakVolume: 50, VolumeType: plan.VolumeTypeDistance}
		p, err := ParseFullPlan(text, monday, pc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w := p.Weeks[0]
		if w.TotalDistanceKm != 40 || w.TotalDurationMinutes != 0 {
			t.Errorf("week volume = %v km / %v min", w.TotalDistanceKm, w.TotalDurationMinutes)
		}
		if got := w.Workouts[0].DistanceKm; got != 8.0 {
			t.Errorf("distanceKm = %v, want 8.0", got)
		}
		if got := w.Workouts[1].DistanceKm; got != 10.0 {
			t.Errorf("percent should win over absolute: got %v, want 10", got)
		}
	})

	t.Run("time", func(t *testing.T) {
		pc := plan.ParseContext{PeakVolume: 300, VolumeType: plan.VolumeTypeTime}
		p, err := ParseFullPlan(text, monday, pc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wo := p.Weeks[0].Workouts[0]
		if wo.DurationMinutes != 48 || wo.DistanceKm != 0 {
			t.Errorf("workout volume = %v km / %v min, want 0 / 48", wo.DistanceKm, wo.DurationMinutes)
		}
	})

	t.Run("no peak falls back to absolute", func(t *testing.T) {
		p, err := ParseFullPlan(text, monday, plan.ParseContext{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := p.Weeks[0].Workouts[1].DistanceKm; got != 99 {
			t.Errorf("distanceKm = %v, want absolute 99", got)
		}
		if got := p.Weeks[0].Workouts[0].DistanceKm; got != 0 {
			t.Errorf("distanceKm = %v, want default 0", got)
		}
	})
}

func TestParseFullPlan_RequiredField(t *testing.T) {
	_, err := ParseFullPlan(`{"name":"Spring 10k"}`, monday, plan.ParseContext{})
	assertParseKind(t, err, domain.ParseMissingField)

	_, err = ParseFullPlan(`{"weeks":"soon"}`, monday, plan.ParseContext{})
	assertParseKind(t, err, domain.ParseInvalidJSON)

	_, err = ParseFullPlan("Do you have a goal race?", monday, plan.ParseContext{})
	assertParseKind(t, err, domain.ParseNoJSONFound)
}

func TestParseFullPlan_HeaderAndWeeks(t *testing.T) {
	text := "```json\n" + `{
		"name": "Spring 10k",
		"goal": "Sub 45",
		"vdot": 48,
		"weeks": [
			{"week_number": 1, "theme": "Base"},
			"not an object",
			{"theme": "Build", "total_distance_km": "42.5"}
		]
	}` + "\n```"

	p, err := ParseFullPlan(text, monday.Add(15*time.Hour), plan.ParseContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Spring 10k" || p.Goal != "Sub 45" {
		t.Errorf("header = %q / %q", p.Name, p.Goal)
	}
	if p.VDOT == nil || *p.VDOT != 48 {
		t.Errorf("vdot = %v", p.VDOT)
	}
	if !p.StartDate.Equal(monday) {
		t.Errorf("start date should be truncated to the day, got %v", p.StartDate)
	}
	if len(p.Weeks) != 2 {
		t.Fatalf("non-object entries should be skipped, got %d weeks", len(p.Weeks))
	}
	// Default number is the entry's position in the source array.
	if p.Weeks[1].Number != 3 {
		t.Errorf("second week number = %d, want 3", p.Weeks[1].Number)
	}
	if !p.Weeks[1].StartDate.Equal(monday.AddDate(0, 0, 14)) {
		t.Errorf("week 3 start = %v", p.Weeks[1].StartDate)
	}
	if p.Weeks[1].TotalDistanceKm != 42.5 {
		t.Errorf("numeric string volume = %v", p.Weeks[1].TotalDistanceKm)
	}
	if !p.EndDate.Equal(monday.AddDate(0, 0, 13)) {
		t.Errorf("end date = %v", p.EndDate)
	}
}

func TestParseFullPlan_DayOfWeek(t *testing.T) {
	// Week 2 starts Monday 2026-03-09.
	text := `{"weeks":[{"week_number":2,"workouts":[
		{"day_of_week":2},
		{"day_of_week":1},
		{"day_of_week":7},
		{"day_of_week":9},
		{}
	]}]}`
	pc := plan.ParseContext{Availability: []plan.AvailabilityWindow{{DayOfWeek: 4}, {DayOfWeek: 7}}}

	p, err := ParseFullPlan(text, monday, pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	start := monday.AddDate(0, 0, 7)
	workouts := p.Weeks[0].Workouts

	tests := []struct {
		dow    int
		offset int
	}{
		{dow: 2, offset: 0}, // Monday
		{dow: 1, offset: 6}, // Sunday wraps to the end of the week
		{dow: 7, offset: 5}, // Saturday
		{dow: 4, offset: 2}, // invalid → first unused availability day (Wednesday)
		{dow: 2, offset: 0}, // availability exhausted → week start
	}
	for i, tt := range tests {
		w := workouts[i]
		if w.DayOfWeek != tt.dow {
			t.Errorf("workout %d dow = %d, want %d", i, w.DayOfWeek, tt.dow)
		}
		if want := start.AddDate(0, 0, tt.offset); !w.ScheduledDate.Equal(want) {
			t.Errorf("workout %d date = %v, want %v", i, w.ScheduledDate.Format("2006-01-02"), want.Format("2006-01-02"))
		}
	}
}

func TestParseFullPlan_Intensity(t *testing.T) {
	vdot := 50.0
	paces, err := training.TrainingPaces(vdot)
	if err != nil {
		t.Fatal(err)
	}

	text := `{"weeks":[{"workouts":[
		{"intensity":"threshold"},
		{"intensity":93},
		{"intensity_percent":"50"},
		{"intensity":"tempo","target_pace_min_per_km":9},
		{"target_pace_min_per_km":5.5},
		{"steps":[{"intensity":"interval"},{"intensity":"110%"}]}
	]}]}`

	p, err := ParseFullPlan(text, monday, plan.ParseContext{VDOT: &vdot})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := p.Weeks[0].Workouts

	midpoint := (paces.Threshold + paces.Interval) / 2
	checks := []struct {
		name string
		got  *float64
		want float64
	}{
		{"named anchor", w[0].TargetPaceMinPerKm, paces.Threshold},
		{"interpolated", w[1].TargetPaceMinPerKm, midpoint},
		{"clamped low", w[2].TargetPaceMinPerKm, paces.Easy},
		{"intensity wins over explicit pace", w[3].TargetPaceMinPerKm, paces.Threshold},
		{"explicit pace", w[4].TargetPaceMinPerKm, 5.5},
		{"step anchor", w[5].Steps[0].TargetPaceMinPerKm, paces.Interval},
		{"step clamped high", w[5].Steps[1].TargetPaceMinPerKm, paces.Repetition},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: pace is nil", c.name)
			continue
		}
		if math.Abs(*c.got-c.want) > 1e-9 {
			t.Errorf("%s: pace = %v, want %v", c.name, *c.got, c.want)
		}
	}
}

func TestParseFullPlan_IntensityFallsBackToPlanVDOT(t *testing.T) {
	paces, _ := training.TrainingPaces(45)
	p, err := ParseFullPlan(`{"vdot":45,"weeks":[{"workouts":[{"intensity":"easy"}]}]}`, monday, plan.ParseContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.Weeks[0].Workouts[0].TargetPaceMinPerKm
	if got == nil || math.Abs(*got-paces.Easy) > 1e-9 {
		t.Errorf("pace = %v, want %v", got, paces.Easy)
	}
}

func TestParseFullPlan_IntensityWithoutVDOT(t *testing.T) {
	p, err := ParseFullPlan(`{"weeks":[{"workouts":[{"intensity":"easy"},{"intensity":"easy","target_pace_min_per_km":6.1}]}]}`, monday, plan.ParseContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := p.Weeks[0].Workouts
	if w[0].TargetPaceMinPerKm != nil {
		t.Errorf("pace = %v, want nil", *w[0].TargetPaceMinPerKm)
	}
	if w[1].TargetPaceMinPerKm == nil || *w[1].TargetPaceMinPerKm != 6.1 {
		t.Errorf("pace = %v, want 6.1", w[1].TargetPaceMinPerKm)
	}
}

func TestParseFullPlan_Steps(t *testing.T) {
	text := `{"weeks":[{"workouts":[{"type":"interval","location":"track","steps":[
		{"type":"warmup","duration_minutes":15},
		{"type":"work","distance_km":0.8,"repeat_count":6,"group_id":1,"hr_zone":5},
		{"type":"recovery","duration_minutes":2,"group_id":1,"repeat_count":0},
		{"type":"cooldown","goal_type":"time","goal_value":10},
		{"type":"strides","goal_type":"sprint","hr_zone":9}
	]}]}]}`

	p, err := ParseFullPlan(text, monday, plan.ParseContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := p.Weeks[0].Workouts[0]
	if w.Type != plan.WorkoutTypeInterval || w.Location != plan.LocationTrack {
		t.Errorf("workout = %s at %s", w.Type, w.Location)
	}

	s := w.Steps
	if len(s) != 5 {
		t.Fatalf("steps = %d, want 5", len(s))
	}
	for i := range s {
		if s[i].Order != i {
			t.Errorf("step %d order = %d", i, s[i].Order)
		}
	}
	if s[0].GoalType != plan.GoalTypeTime || s[0].GoalValue != 15 {
		t.Errorf("warmup goal = %s %v", s[0].GoalType, s[0].GoalValue)
	}
	if s[1].GoalType != plan.GoalTypeDistance || s[1].GoalValue != 0.8 || s[1].RepeatCount != 6 {
		t.Errorf("work step = %+v", s[1])
	}
	if s[1].HRZone == nil || *s[1].HRZone != 5 {
		t.Errorf("hr zone = %v", s[1].HRZone)
	}
	if s[2].RepeatCount != 1 {
		t.Errorf("repeat count below 1 should default to 1, got %d", s[2].RepeatCount)
	}
	if s[3].GoalType != plan.GoalTypeTime || s[3].GoalValue != 10 {
		t.Errorf("cooldown goal = %s %v", s[3].GoalType, s[3].GoalValue)
	}
	if s[4].Type != plan.StepTypeWork || s[4].GoalType != plan.GoalTypeOpen || s[4].HRZone != nil {
		t.Errorf("unknown enums should fall back: %+v", s[4])
	}

	blocks := w.RepeatBlocks()
	if len(blocks) != 1 || blocks[0].Iterations != 6 || len(blocks[0].Steps) != 2 {
		t.Errorf("repeat blocks = %+v", blocks)
	}
}

func TestParseFullPlan_StepVolumePercent(t *testing.T) {
	pc := plan.ParseContext{PeakVolume: 40, VolumeType: plan.VolumeTypeDistance}
	p, err := ParseFullPlan(`{"weeks":[{"workouts":[{"steps":[{"volume_percent":5}]}]}]}`, monday, pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	step := p.Weeks[0].Workouts[0].Steps[0]
	if step.GoalType != plan.GoalTypeDistance || step.GoalValue != 2 {
		t.Errorf("step = %s %v, want distance 2", step.GoalType, step.GoalValue)
	}
}

func TestParseOutline(t *testing.T) {
	end := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	text := `{"name":"Marathon","weeks":[
		{"week_number":1,"theme":"Base","weekly_volume_percent":60,"workouts":[{"type":"long"}]},
		{"week_number":2,"theme":"Build","weekly_volume_percent":70}
	]}`
	pc := plan.ParseContext{PeakVolume: 80, VolumeType: plan.VolumeTypeDistance}

	p, err := ParseOutline(text, monday, end, pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.EndDate.Equal(end) {
		t.Errorf("end date = %v, want supplied %v", p.EndDate, end)
	}
	if len(p.Weeks) != 2 {
		t.Fatalf("weeks = %d", len(p.Weeks))
	}
	if p.Weeks[0].TotalDistanceKm != 48 || p.Weeks[1].TotalDistanceKm != 56 {
		t.Errorf("volumes = %v, %v", p.Weeks[0].TotalDistanceKm, p.Weeks[1].TotalDistanceKm)
	}
	if len(p.Weeks[0].Workouts) != 0 {
		t.Error("outline weeks should not carry workouts")
	}

	_, err = ParseOutline(`{"name":"x"}`, monday, end, pc)
	assertParseKind(t, err, domain.ParseMissingField)
}

func TestParseWeekWorkouts(t *testing.T) {
	week := &plan.Week{Number: 3, Theme: "Build"}
	text := `Here you go:
` + "```json\n" + `{"workouts":[{"name":"Tempo","type":"tempo","day_of_week":5,"distance_km":10}]}` + "\n```"

	if err := ParseWeekWorkouts(text, week, monday, plan.ParseContext{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week.Workouts) != 1 {
		t.Fatalf("workouts = %d", len(week.Workouts))
	}
	w := week.Workouts[0]
	// Week 3 starts Monday 2026-03-16; Thursday is three days later.
	want := time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)
	if !w.ScheduledDate.Equal(want) {
		t.Errorf("date = %v, want %v", w.ScheduledDate, want)
	}
	if w.Type != plan.WorkoutTypeTempo || w.DistanceKm != 10 {
		t.Errorf("workout = %+v", w)
	}
	if week.Theme != "Build" {
		t.Error("theme should be untouched")
	}
}

func TestParseWeekWorkouts_LeavesWeekUntouchedOnError(t *testing.T) {
	original := []plan.Workout{{Name: "existing"}}
	week := &plan.Week{Number: 1, Workouts: original}

	inputs := []string{
		"Which days can you run?",
		`{"workouts": {"name": "oops"}}`,
		`{"weeks": []}`,
	}
	for _, in := range inputs {
		if err := ParseWeekWorkouts(in, week, monday, plan.ParseContext{}); err == nil {
			t.Errorf("expected error for %q", in)
		}
		if len(week.Workouts) != 1 || week.Workouts[0].Name != "existing" {
			t.Fatalf("week mutated after failed parse of %q: %+v", in, week.Workouts)
		}
	}

	if err := ParseWeekWorkouts(`{}`, nil, monday, plan.ParseContext{}); err == nil {
		t.Error("expected error for nil week")
	}
}

func TestParseContextIsNotMutated(t *testing.T) {
	vdot := 50.0
	pc := plan.ParseContext{
		PeakVolume:   60,
		VolumeType:   plan.VolumeTypeDistance,
		VDOT:         ptr(vdot),
		Availability: []plan.AvailabilityWindow{{DayOfWeek: 3}},
	}
	before := pc

	_, err := ParseFullPlan(`{"weeks":[{"weekly_volume_percent":50,"workouts":[{"intensity":"easy"},{}]}]}`, monday, pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.PeakVolume != before.PeakVolume || *pc.VDOT != vdot || len(pc.Availability) != 1 || pc.Availability[0].DayOfWeek != 3 {
		t.Errorf("parse context mutated: %+v", pc)
	}
}
