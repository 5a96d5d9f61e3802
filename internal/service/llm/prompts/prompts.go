// Package prompts builds the system and user prompts for each generation kind.
package prompts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stride/internal/domain/models/plan"
	"stride/internal/training"
)

// Kind selects the prompt template and the parser that consumes the result.
type Kind string

const (
	KindFullPlan     Kind = "full_plan"
	KindOutline      Kind = "outline"
	KindWeekWorkouts Kind = "week_workouts"
	KindCoach        Kind = "coach"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindFullPlan, KindOutline, KindWeekWorkouts, KindCoach}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown generation kind %q", s)
}

// RequiresJSON reports whether the kind's answer must be a JSON object.
func (k Kind) RequiresJSON() bool {
	return k != KindCoach
}

// Context is what the model is told about the runner and the request.
type Context struct {
	Goal      string
	RaceDate  *time.Time
	StartDate time.Time
	EndDate   time.Time

	// Plan holds peak volume, volume type, VDOT and availability.
	Plan plan.ParseContext

	// RecentWeeklyVolumes are the last weeks' totals, oldest first, in the
	// unit of Plan.VolumeType.
	RecentWeeklyVolumes []float64

	// Week is the week being filled in for KindWeekWorkouts.
	Week *plan.Week

	// Message is the runner's question for KindCoach.
	Message string
}

// Prompt is the built request.
type Prompt struct {
	SystemPrompt string
	UserPrompt   string
	RequireJSON  bool
}

const basePrompt = `You are an experienced running coach who writes structured training plans.
Use the available tools for every VDOT, race time, pace, heart rate zone and mileage calculation instead of estimating.
Keep weekly volume increases at or below 10% except after a recovery week.`

const jsonInstructions = `Respond with a single JSON object that matches the schema below. Do not add commentary before or after it.
If something essential is missing you may ask one short clarifying question instead of answering.
Schema:`

var dayNames = [...]string{"", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Build renders the prompts for kind.
func Build(kind Kind, c Context) (Prompt, error) {
	var schema, task string

	switch kind {
	case KindFullPlan:
		schema = FullPlanSchema
		task = fmt.Sprintf("Create a complete training plan from %s to %s with workouts for every week.",
			formatDate(c.StartDate), formatDate(c.EndDate))
	case KindOutline:
		schema = OutlineSchema
		task = fmt.Sprintf("Create a plan outline from %s to %s: one entry per week with its theme and volume. Do not include workouts.",
			formatDate(c.StartDate), formatDate(c.EndDate))
	case KindWeekWorkouts:
		if c.Week == nil {
			return Prompt{}, fmt.Errorf("week is required for %s", kind)
		}
		schema = WeekWorkoutsSchema
		task = weekTask(c.Week)
	case KindCoach:
		if strings.TrimSpace(c.Message) == "" {
			return Prompt{}, fmt.Errorf("message is required for %s", kind)
		}
		task = c.Message
	default:
		return Prompt{}, fmt.Errorf("unknown generation kind %q", kind)
	}

	system := basePrompt
	if schema != "" {
		system += "\n\n" + jsonInstructions + "\n" + schema
	}

	return Prompt{
		SystemPrompt: system,
		UserPrompt:   runnerContext(c) + "\n\n" + task,
		RequireJSON:  kind.RequiresJSON(),
	}, nil
}

func weekTask(w *plan.Week) string {
	task := fmt.Sprintf("Create the workouts for week %d", w.Number)
	if w.Theme != "" {
		task += fmt.Sprintf(" (%s)", w.Theme)
	}
	switch {
	case w.TotalDistanceKm > 0:
		task += fmt.Sprintf(" totalling about %s km", formatNumber(w.TotalDistanceKm))
	case w.TotalDurationMinutes > 0:
		task += fmt.Sprintf(" totalling about %s minutes", formatNumber(w.TotalDurationMinutes))
	}
	return task + "."
}

func runnerContext(c Context) string {
	var b strings.Builder
	b.WriteString("Runner context:")

	if c.Goal != "" {
		fmt.Fprintf(&b, "\n- Goal: %s", c.Goal)
	}
	if c.RaceDate != nil {
		fmt.Fprintf(&b, "\n- Race date: %s", formatDate(*c.RaceDate))
	}

	unit := "km"
	if c.Plan.VolumeType == plan.VolumeTypeTime {
		unit = "minutes"
	}
	if c.Plan.PeakVolume > 0 {
		fmt.Fprintf(&b, "\n- Peak weekly volume: %s %s (volume percentages are relative to this)", formatNumber(c.Plan.PeakVolume), unit)
	}
	if c.Plan.VDOT != nil {
		fmt.Fprintf(&b, "\n- VDOT: %s", formatNumber(*c.Plan.VDOT))
		if paces, err := training.TrainingPaces(*c.Plan.VDOT); err == nil {
			fmt.Fprintf(&b, " (easy %s, threshold %s, interval %s)",
				training.FormatPace(paces.Easy), training.FormatPace(paces.Threshold), training.FormatPace(paces.Interval))
		}
	}

	if days := availability(c.Plan.Availability); days != "" {
		fmt.Fprintf(&b, "\n- Available days: %s", days)
	}

	if len(c.RecentWeeklyVolumes) > 0 {
		vols := make([]string, len(c.RecentWeeklyVolumes))
		for i, v := range c.RecentWeeklyVolumes {
			vols[i] = formatNumber(v)
		}
		fmt.Fprintf(&b, "\n- Recent weekly volumes (%s, oldest first): %s", unit, strings.Join(vols, ", "))
	}

	if b.Len() == len("Runner context:") {
		b.WriteString("\n- No details provided")
	}
	return b.String()
}

func availability(windows []plan.AvailabilityWindow) string {
	var parts []string
	for _, w := range windows {
		if w.DayOfWeek < 1 || w.DayOfWeek > 7 {
			continue
		}
		part := dayNames[w.DayOfWeek]
		if w.MaxMinutes > 0 {
			part += fmt.Sprintf(" (max %d min)", w.MaxMinutes)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "an unspecified date"
	}
	return t.Format("2006-01-02")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
