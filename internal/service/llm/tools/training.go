package tools

import (
	"context"
	"errors"
	"fmt"
	"math"

	"stride/internal/domain/models/llm"
	"stride/internal/training"
)

// Tool names as exposed to the model.
const (
	ToolCalculateVDOT           = "calculate_vdot"
	ToolProjectRaceTime         = "project_race_time"
	ToolGetTrainingPaces        = "get_training_paces"
	ToolCalculateHRZones        = "calculate_hr_zones"
	ToolCheckMileageProgression = "check_mileage_progression"
	ToolConvertPace             = "convert_pace"
)

// VDOTTool implements 'calculate_vdot'.
type VDOTTool struct{}

func (VDOTTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolCalculateVDOT,
		Description: "Calculate the runner's VDOT fitness score from a recent race or time-trial result.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"distance_m": map[string]interface{}{
					"type":        "number",
					"description": "Race distance in meters (e.g. 5000 for a 5K, 42195 for a marathon).",
				},
				"time_s": map[string]interface{}{
					"type":        "number",
					"description": "Finishing time in seconds.",
				},
			},
			"required": []string{"distance_m", "time_s"},
		},
	}
}

func (VDOTTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	distance, err := requiredNumber(input, "distance_m")
	if err != nil {
		return nil, err
	}
	seconds, err := requiredNumber(input, "time_s")
	if err != nil {
		return nil, err
	}
	vdot, err := training.CalculateVDOT(distance, seconds)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"vdot": vdot}, nil
}

// RaceTimeTool implements 'project_race_time'.
type RaceTimeTool struct{}

func (RaceTimeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolProjectRaceTime,
		Description: "Project the finishing time for a race distance from a VDOT score.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"vdot": map[string]interface{}{
					"type":        "number",
					"description": "VDOT fitness score (15-90).",
				},
				"distance_m": map[string]interface{}{
					"type":        "number",
					"description": "Race distance in meters.",
				},
			},
			"required": []string{"vdot", "distance_m"},
		},
	}
}

func (RaceTimeTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	vdot, err := requiredNumber(input, "vdot")
	if err != nil {
		return nil, err
	}
	distance, err := requiredNumber(input, "distance_m")
	if err != nil {
		return nil, err
	}
	seconds, err := training.ProjectRaceTime(vdot, distance)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"seconds":   seconds,
		"formatted": training.FormatDuration(seconds),
	}, nil
}

// TrainingPacesTool implements 'get_training_paces'.
type TrainingPacesTool struct{}

func (TrainingPacesTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolGetTrainingPaces,
		Description: "Get easy, marathon, threshold, interval and repetition training paces (min/km) for a VDOT score.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"vdot": map[string]interface{}{
					"type":        "number",
					"description": "VDOT fitness score (15-90).",
				},
			},
			"required": []string{"vdot"},
		},
	}
}

func (TrainingPacesTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	vdot, err := requiredNumber(input, "vdot")
	if err != nil {
		return nil, err
	}
	paces, err := training.TrainingPaces(vdot)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, 10)
	for _, a := range training.Anchors {
		pace := paces.For(a.Intensity)
		out[string(a.Intensity)+"_min_per_km"] = round2(pace)
		out[string(a.Intensity)+"_formatted"] = training.FormatPace(pace) + "/km"
	}
	return out, nil
}

// HRZonesTool implements 'calculate_hr_zones'.
//
// Bands (percent of anchor): max_hr 50/60/70/80/90/100, lthr 65/85/90/95/100/106.
type HRZonesTool struct{}

func (HRZonesTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolCalculateHRZones,
		Description: "Calculate five heart-rate training zones from either maximum heart rate or lactate threshold heart rate. Provide exactly one of the two.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"max_hr": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum heart rate in bpm.",
				},
				"lthr": map[string]interface{}{
					"type":        "integer",
					"description": "Lactate threshold heart rate in bpm.",
				},
			},
			"required": []string{},
		},
	}
}

func (HRZonesTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	maxHR, _, err := numberArg(input, "max_hr")
	if err != nil {
		return nil, err
	}
	lthr, _, err := numberArg(input, "lthr")
	if err != nil {
		return nil, err
	}
	anchor, zones, err := training.HeartRateZones(int(math.Round(maxHR)), int(math.Round(lthr)))
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{"anchor": string(anchor)}
	for _, z := range zones {
		out[fmt.Sprintf("zone%d", z.Number)] = map[string]interface{}{
			"min":  z.Min,
			"max":  z.Max,
			"name": z.Name,
		}
	}
	return out, nil
}

// MileageProgressionTool implements 'check_mileage_progression'.
type MileageProgressionTool struct {
	config *ToolConfig
}

func NewMileageProgressionTool(config *ToolConfig) *MileageProgressionTool {
	if config == nil {
		config = DefaultToolConfig()
	}
	return &MileageProgressionTool{config: config}
}

func (t *MileageProgressionTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolCheckMileageProgression,
		Description: "Check a sequence of weekly volumes for unsafe increases (more than 10% week over week). A week after a recovery week (a drop of 30% or more) is compared with the week before the recovery.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"weekly_volumes": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "number"},
					"description": "Weekly volumes in order, all in the same unit (km or minutes).",
				},
			},
			"required": []string{"weekly_volumes"},
		},
	}
}

func (t *MileageProgressionTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	volumes, err := numberListArg(input, "weekly_volumes")
	if err != nil {
		return nil, err
	}
	if len(volumes) > t.config.MaxProgressionWeeks {
		return nil, fmt.Errorf("weekly_volumes may contain at most %d weeks", t.config.MaxProgressionWeeks)
	}
	if !training.ValidVolumes(volumes) {
		return nil, errors.New("weekly_volumes must not contain negative values")
	}

	found := training.CheckMileageProgression(volumes)
	warnings := make([]interface{}, 0, len(found))
	for _, w := range found {
		warnings = append(warnings, map[string]interface{}{
			"week_index":       w.WeekIndex,
			"percent_increase": w.PercentIncrease,
			"message":          w.Message,
		})
	}
	return map[string]interface{}{
		"safe":     len(found) == 0,
		"warnings": warnings,
	}, nil
}

// ConvertPaceTool implements 'convert_pace'.
type ConvertPaceTool struct{}

func (ConvertPaceTool) Definition() llm.ToolDefinition {
	units := make([]string, len(training.PaceUnits))
	for i, u := range training.PaceUnits {
		units[i] = string(u)
	}
	return llm.ToolDefinition{
		Name:        ToolConvertPace,
		Description: "Convert a pace or speed between min/km, min/mile, km/h and mph.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"value": map[string]interface{}{
					"type":        "number",
					"description": "The pace or speed to convert. Paces are decimal minutes (5.5 = 5:30).",
				},
				"from_unit": map[string]interface{}{
					"type": "string",
					"enum": units,
				},
				"to_unit": map[string]interface{}{
					"type": "string",
					"enum": units,
				},
			},
			"required": []string{"value", "from_unit", "to_unit"},
		},
	}
}

func (ConvertPaceTool) Execute(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	value, err := requiredNumber(input, "value")
	if err != nil {
		return nil, err
	}
	from, _ := stringArg(input, "from_unit")
	to, _ := stringArg(input, "to_unit")

	converted, err := training.ConvertPace(value, training.PaceUnit(from), training.PaceUnit(to))
	if err != nil {
		return nil, err
	}

	unit := training.PaceUnit(to)
	formatted := fmt.Sprintf("%.1f %s", converted, unit)
	if !unit.IsSpeed() {
		formatted = training.FormatPace(converted) + " " + string(unit)
	}
	return map[string]interface{}{
		"value":     math.Round(converted*1000) / 1000,
		"unit":      string(unit),
		"formatted": formatted,
	}, nil
}
