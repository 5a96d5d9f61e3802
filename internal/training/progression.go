package training

import (
	"fmt"
	"math"
)

const (
	// MaxWeeklyIncreasePercent is the largest safe week-over-week increase.
	MaxWeeklyIncreasePercent = 10.0

	// RecoveryDropPercent is the minimum drop that marks a recovery week.
	RecoveryDropPercent = 30.0

	percentEpsilon = 1e-9
)

// ProgressionWarning flags one unsafe week.
type ProgressionWarning struct {
	WeekIndex       int
	PercentIncrease float64
	Message         string
}

// CheckMileageProgression flags week-over-week increases above 10%.
//
// A week following a recovery week (a drop of at least 30%) is compared
// against the week before the recovery instead. The exception only reaches
// back one week, so consecutive recovery weeks do not chain.
func CheckMileageProgression(volumes []float64) []ProgressionWarning {
	var warnings []ProgressionWarning
	for i := 1; i < len(volumes); i++ {
		prev := volumes[i-1]
		base := prev
		baseIndex := i - 1
		if i >= 2 && isRecoveryWeek(volumes[i-2], prev) {
			base = volumes[i-2]
			baseIndex = i - 2
		}
		if base <= 0 {
			continue
		}

		increase := (volumes[i] - base) / base * 100
		if increase <= MaxWeeklyIncreasePercent+percentEpsilon {
			continue
		}
		increase = round(increase, 1)
		msg := fmt.Sprintf("Week %d increases volume by %.1f%% over week %d (%.1f -> %.1f); keep increases at or below %.0f%%",
			i+1, increase, baseIndex+1, base, volumes[i], MaxWeeklyIncreasePercent)
		warnings = append(warnings, ProgressionWarning{
			WeekIndex:       i,
			PercentIncrease: increase,
			Message:         msg,
		})
	}
	return warnings
}

func isRecoveryWeek(before, week float64) bool {
	if before <= 0 {
		return false
	}
	drop := (before - week) / before * 100
	return drop >= RecoveryDropPercent-percentEpsilon
}

// ValidVolumes reports whether every volume is finite and non-negative.
func ValidVolumes(volumes []float64) bool {
	for _, v := range volumes {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
