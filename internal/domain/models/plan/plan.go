package plan

import (
	"time"
)

// Plan is a multi-week training plan produced by the parser.
// IDs are empty until the plan is persisted.
type Plan struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Goal      string    `json:"goal"`
	VDOT      *float64  `json:"vdot,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Weeks     []Week    `json:"weeks"`
}

// Week is one training week. Totals are already resolved to absolute values.
type Week struct {
	ID                   string    `json:"id,omitempty"`
	Number               int       `json:"number"`
	Theme                string    `json:"theme"`
	StartDate            time.Time `json:"start_date"`
	TotalDistanceKm      float64   `json:"total_distance_km"`
	TotalDurationMinutes float64   `json:"total_duration_minutes"`
	Notes                string    `json:"notes,omitempty"`
	Workouts             []Workout `json:"workouts"`
}

// Workout is a single scheduled session.
type Workout struct {
	ID                 string      `json:"id,omitempty"`
	Name               string      `json:"name"`
	Type               WorkoutType `json:"type"`
	ScheduledDate      time.Time   `json:"scheduled_date"`
	DayOfWeek          int         `json:"day_of_week"` // 1=Sunday..7=Saturday
	DistanceKm         float64     `json:"distance_km"`
	DurationMinutes    float64     `json:"duration_minutes"`
	TargetPaceMinPerKm *float64    `json:"target_pace_min_per_km,omitempty"`
	Location           Location    `json:"location"`
	Notes              string      `json:"notes,omitempty"`
	Steps              []Step      `json:"steps"`
}

// Step is one segment of a structured workout.
//
// Steps sharing a nonzero GroupID form one repeat block. The block's iteration
// count is the RepeatCount of its first step.
type Step struct {
	Order              int      `json:"order"`
	Type               StepType `json:"type"`
	GoalType           GoalType `json:"goal_type"`
	GoalValue          float64  `json:"goal_value"`
	TargetPaceMinPerKm *float64 `json:"target_pace_min_per_km,omitempty"`
	HRZone             *int     `json:"hr_zone,omitempty"`
	RepeatCount        int      `json:"repeat_count"`
	GroupID            int      `json:"group_id"`
	Notes              string   `json:"notes,omitempty"`
}

// RepeatBlock is a contiguous run of steps repeated Iterations times.
type RepeatBlock struct {
	GroupID    int
	Iterations int
	Steps      []Step
}

// RepeatBlocks groups the workout's steps by nonzero GroupID, in order of first appearance.
func (w Workout) RepeatBlocks() []RepeatBlock {
	var blocks []RepeatBlock
	index := make(map[int]int)
	for _, step := range w.Steps {
		if step.GroupID == 0 {
			continue
		}
		i, ok := index[step.GroupID]
		if !ok {
			iterations := step.RepeatCount
			if iterations < 1 {
				iterations = 1
			}
			blocks = append(blocks, RepeatBlock{GroupID: step.GroupID, Iterations: iterations})
			i = len(blocks) - 1
			index[step.GroupID] = i
		}
		blocks[i].Steps = append(blocks[i].Steps, step)
	}
	return blocks
}

// WorkoutCount returns the number of workouts across all weeks.
func (p *Plan) WorkoutCount() int {
	n := 0
	for _, w := range p.Weeks {
		n += len(w.Workouts)
	}
	return n
}
