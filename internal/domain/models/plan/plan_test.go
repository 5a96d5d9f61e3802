package plan

import (
	"testing"
)

func TestResolvePercent(t *testing.T) {
	tests := []struct {
		name    string
		pc      ParseContext
		percent float64
		want    ResolvedVolume
		wantOK  bool
	}{
		{"distance", ParseContext{PeakVolume: 50, VolumeType: VolumeTypeDistance}, 16, ResolvedVolume{DistanceKm: 8}, true},
		{"empty type is distance", ParseContext{PeakVolume: 80}, 60, ResolvedVolume{DistanceKm: 48}, true},
		{"time", ParseContext{PeakVolume: 300, VolumeType: VolumeTypeTime}, 25, ResolvedVolume{DurationMinutes: 75}, true},
		{"rounded to two decimals", ParseContext{PeakVolume: 47.3}, 33, ResolvedVolume{DistanceKm: 15.61}, true},
		{"no peak", ParseContext{}, 50, ResolvedVolume{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.pc.ResolvePercent(tt.percent)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolvePercent(%v) = %+v, %v; want %+v, %v", tt.percent, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseContext_Validate(t *testing.T) {
	vdot := 52.0
	low := 5.0
	tests := []struct {
		name    string
		pc      ParseContext
		wantErr bool
	}{
		{"zero value", ParseContext{}, false},
		{"complete", ParseContext{PeakVolume: 60, VolumeType: VolumeTypeTime, VDOT: &vdot, Availability: []AvailabilityWindow{{DayOfWeek: 1, MaxMinutes: 120}}}, false},
		{"negative peak", ParseContext{PeakVolume: -1}, true},
		{"unknown volume type", ParseContext{VolumeType: "miles"}, true},
		{"vdot out of range", ParseContext{VDOT: &low}, true},
		{"bad day", ParseContext{Availability: []AvailabilityWindow{{DayOfWeek: 8}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.pc.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAvailableDays(t *testing.T) {
	pc := ParseContext{Availability: []AvailabilityWindow{{DayOfWeek: 3}, {DayOfWeek: 1}, {DayOfWeek: 3}, {DayOfWeek: 9}}}
	got := pc.AvailableDays()
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("AvailableDays() = %v, want [3 1]", got)
	}
}

func TestParseEnums(t *testing.T) {
	if got := ParseWorkoutType("tempo"); got != WorkoutTypeTempo {
		t.Errorf("ParseWorkoutType(tempo) = %q", got)
	}
	if got := ParseWorkoutType("Tempo"); got != WorkoutTypeEasy {
		t.Errorf("ParseWorkoutType is case sensitive, got %q", got)
	}
	if got := ParseStepType("sprint"); got != StepTypeWork {
		t.Errorf("ParseStepType(sprint) = %q", got)
	}
	if got := ParseGoalType(""); got != GoalTypeOpen {
		t.Errorf("ParseGoalType('') = %q", got)
	}
	if got := ParseLocation("track"); got != LocationTrack {
		t.Errorf("ParseLocation(track) = %q", got)
	}
}

func TestRepeatBlocks(t *testing.T) {
	w := Workout{Steps: []Step{
		{Order: 0, Type: StepTypeWarmup},
		{Order: 1, Type: StepTypeWork, GroupID: 1, RepeatCount: 6},
		{Order: 2, Type: StepTypeRecovery, GroupID: 1},
		{Order: 3, Type: StepTypeWork, GroupID: 2, RepeatCount: 0},
		{Order: 4, Type: StepTypeCooldown},
	}}

	blocks := w.RepeatBlocks()
	if len(blocks) != 2 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].GroupID != 1 || blocks[0].Iterations != 6 || len(blocks[0].Steps) != 2 {
		t.Errorf("first block = %+v", blocks[0])
	}
	if blocks[1].Iterations != 1 || len(blocks[1].Steps) != 1 {
		t.Errorf("second block = %+v", blocks[1])
	}

	p := &Plan{Weeks: []Week{{Workouts: []Workout{w, {}}}, {Workouts: []Workout{{}}}}}
	if p.WorkoutCount() != 3 {
		t.Errorf("WorkoutCount() = %d", p.WorkoutCount())
	}
}
