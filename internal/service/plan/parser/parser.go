package parser

import (
	"fmt"
	"time"

	"stride/internal/domain"
	"stride/internal/domain/models/plan"
	"stride/internal/training"
)

// ParseFullPlan parses a complete plan: weeks with workouts and steps.
// The end date is the last day of the final week.
func ParseFullPlan(text string, startDate time.Time, pc plan.ParseContext) (*plan.Plan, error) {
	root, weeks, err := extractRequired(text, "weeks")
	if err != nil {
		return nil, err
	}

	p := planHeader(root, startDate)
	r := newResolver(pc, p.VDOT)
	for _, entry := range weeks {
		p.Weeks = append(p.Weeks, r.week(entry, p.StartDate, true))
	}

	p.EndDate = p.StartDate
	if len(p.Weeks) > 0 {
		p.EndDate = p.StartDate.AddDate(0, 0, len(p.Weeks)*7-1)
	}
	return p, nil
}

// ParseOutline parses a plan skeleton. Weeks carry themes and volumes only;
// any workouts in the text are ignored.
func ParseOutline(text string, startDate, endDate time.Time, pc plan.ParseContext) (*plan.Plan, error) {
	root, weeks, err := extractRequired(text, "weeks")
	if err != nil {
		return nil, err
	}

	p := planHeader(root, startDate)
	r := newResolver(pc, p.VDOT)
	for _, entry := range weeks {
		p.Weeks = append(p.Weeks, r.week(entry, p.StartDate, false))
	}
	p.EndDate = dateOnly(endDate)
	return p, nil
}

// ParseWeekWorkouts parses one week's workouts and assigns them to week.
// week is left untouched when parsing fails. Callers replacing an existing
// week must clear its stored workouts first (see PlanStore.ReplaceWeekWorkouts).
func ParseWeekWorkouts(text string, week *plan.Week, planStart time.Time, pc plan.ParseContext) error {
	if week == nil {
		return fmt.Errorf("week is required")
	}
	root, entries, err := extractRequired(text, "workouts")
	if err != nil {
		return err
	}

	var fallbackVDOT *float64
	if v, ok := number(root, "vdot"); ok && v > 0 {
		fallbackVDOT = &v
	}
	r := newResolver(pc, fallbackVDOT)

	start := weekStart(planStart, week.Number)
	workouts := r.workouts(entries, start)

	week.StartDate = start
	week.Workouts = workouts
	return nil
}

func extractRequired(text, field string) (map[string]interface{}, []indexedObject, error) {
	root, err := ExtractJSON(text)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := root[field]; !ok {
		return nil, nil, &domain.ParseError{Kind: domain.ParseMissingField, Detail: field}
	}
	entries, isArray := objects(root, field)
	if !isArray {
		return nil, nil, &domain.ParseError{
			Kind:   domain.ParseInvalidJSON,
			Detail: fmt.Sprintf("field %q must be an array", field),
		}
	}
	return root, entries, nil
}

func planHeader(root map[string]interface{}, startDate time.Time) *plan.Plan {
	p := &plan.Plan{
		Name:      firstStr(root, "name", "plan_name"),
		Goal:      firstStr(root, "goal", "description"),
		StartDate: dateOnly(startDate),
		Weeks:     []plan.Week{},
	}
	if v, ok := number(root, "vdot"); ok && v > 0 {
		p.VDOT = &v
	}
	return p
}

// resolver applies the parse context to raw entries.
type resolver struct {
	pc    plan.ParseContext
	paces *training.Paces
	days  []int
}

// newResolver prefers the context VDOT and falls back to the one in the text.
func newResolver(pc plan.ParseContext, fallbackVDOT *float64) *resolver {
	r := &resolver{pc: pc, days: pc.AvailableDays()}

	vdot := pc.VDOT
	if vdot == nil {
		vdot = fallbackVDOT
	}
	if vdot != nil {
		if paces, err := training.TrainingPaces(*vdot); err == nil {
			r.paces = &paces
		}
	}
	return r
}

func (r *resolver) week(entry indexedObject, planStart time.Time, withWorkouts bool) plan.Week {
	obj := entry.obj

	n, ok := integer(obj, "week_number")
	if !ok || n < 1 {
		n = entry.index + 1
	}

	w := plan.Week{
		Number:    n,
		Theme:     firstStr(obj, "theme", "focus"),
		StartDate: weekStart(planStart, n),
		Notes:     str(obj, "notes"),
		Workouts:  []plan.Workout{},
	}

	vol := r.volume(obj, "weekly_volume_percent", "total_distance_km", "total_duration_minutes")
	w.TotalDistanceKm, w.TotalDurationMinutes = vol.DistanceKm, vol.DurationMinutes

	if withWorkouts {
		entries, _ := objects(obj, "workouts")
		w.Workouts = r.workouts(entries, w.StartDate)
	}
	return w
}

func (r *resolver) workouts(entries []indexedObject, start time.Time) []plan.Workout {
	workouts := make([]plan.Workout, 0, len(entries))
	used := make(map[int]bool)

	for _, entry := range entries {
		obj := entry.obj

		dow, ok := integer(obj, "day_of_week")
		if !ok || dow < 1 || dow > 7 {
			dow = r.nextAvailableDay(used)
		}
		date := start
		if dow == 0 {
			dow = dayOfWeek(start)
		} else {
			date = start.AddDate(0, 0, dayOffset(dow, start))
		}
		used[dow] = true

		vol := r.volume(obj, "daily_volume_percent", "distance_km", "duration_minutes")
		stepEntries, _ := objects(obj, "steps")

		workouts = append(workouts, plan.Workout{
			Name:               str(obj, "name"),
			Type:               plan.ParseWorkoutType(str(obj, "type")),
			ScheduledDate:      date,
			DayOfWeek:          dow,
			DistanceKm:         vol.DistanceKm,
			DurationMinutes:    vol.DurationMinutes,
			TargetPaceMinPerKm: r.pace(obj),
			Location:           plan.ParseLocation(str(obj, "location")),
			Notes:              firstStr(obj, "notes", "description"),
			Steps:              r.steps(stepEntries),
		})
	}
	return workouts
}

// nextAvailableDay returns the first availability day not yet used this week, or 0.
func (r *resolver) nextAvailableDay(used map[int]bool) int {
	for _, d := range r.days {
		if !used[d] {
			return d
		}
	}
	return 0
}

func (r *resolver) steps(entries []indexedObject) []plan.Step {
	steps := make([]plan.Step, 0, len(entries))
	for _, entry := range entries {
		obj := entry.obj

		dist, hasDist := number(obj, "distance_km")
		dur, hasDur := number(obj, "duration_minutes")
		if pct, ok := number(obj, "volume_percent"); ok {
			if vol, resolved := r.pc.ResolvePercent(pct); resolved {
				dist, hasDist = vol.DistanceKm, vol.DistanceKm > 0
				dur, hasDur = vol.DurationMinutes, vol.DurationMinutes > 0
			}
		}

		var goalType plan.GoalType
		switch raw := str(obj, "goal_type"); {
		case raw != "":
			goalType = plan.ParseGoalType(raw)
		case hasDist:
			goalType = plan.GoalTypeDistance
		case hasDur:
			goalType = plan.GoalTypeTime
		default:
			goalType = plan.DefaultGoalType
		}

		goalValue, ok := number(obj, "goal_value")
		if !ok {
			switch goalType {
			case plan.GoalTypeDistance:
				goalValue = dist
			case plan.GoalTypeTime:
				goalValue = dur
			}
		}

		repeat, ok := integer(obj, "repeat_count")
		if !ok || repeat < 1 {
			repeat = 1
		}
		group, ok := integer(obj, "group_id")
		if !ok || group < 0 {
			group = 0
		}

		step := plan.Step{
			Order:              entry.index,
			Type:               plan.ParseStepType(str(obj, "type")),
			GoalType:           goalType,
			GoalValue:          goalValue,
			TargetPaceMinPerKm: r.pace(obj),
			RepeatCount:        repeat,
			GroupID:            group,
			Notes:              firstStr(obj, "notes", "description"),
		}
		if zone, ok := integer(obj, "hr_zone"); ok && zone >= 1 && zone <= 5 {
			step.HRZone = &zone
		}
		steps = append(steps, step)
	}
	return steps
}

// volume resolves a percent-of-peak field, falling back to the absolute fields.
func (r *resolver) volume(obj map[string]interface{}, percentKey, distanceKey, durationKey string) plan.ResolvedVolume {
	if pct, ok := number(obj, percentKey); ok {
		if vol, resolved := r.pc.ResolvePercent(pct); resolved {
			return vol
		}
	}
	dist, _ := number(obj, distanceKey)
	dur, _ := number(obj, durationKey)
	return plan.ResolvedVolume{DistanceKm: dist, DurationMinutes: dur}
}

// pace resolves a target pace from an intensity when paces are known, else
// from an explicit target_pace_min_per_km.
func (r *resolver) pace(obj map[string]interface{}) *float64 {
	if r.paces != nil {
		if pct, ok := intensity(obj); ok {
			p := training.PaceForPercent(*r.paces, pct)
			return &p
		}
	}
	if p, ok := number(obj, "target_pace_min_per_km"); ok && p > 0 {
		return &p
	}
	return nil
}

// intensity reads "intensity" (name or percent of VO2max) or "intensity_percent".
func intensity(obj map[string]interface{}) (float64, bool) {
	switch v := obj["intensity"].(type) {
	case string:
		if pct, ok := training.ParseIntensity(v); ok {
			return pct, true
		}
	case float64:
		if v > 0 {
			return v, true
		}
	}
	if pct, ok := number(obj, "intensity_percent"); ok && pct > 0 {
		return pct, true
	}
	return 0, false
}
