package plan

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// VolumeType says whether volumes are measured in kilometres or minutes.
type VolumeType string

const (
	VolumeTypeDistance VolumeType = "distance"
	VolumeTypeTime     VolumeType = "time"
)

// AvailabilityWindow is a day the runner can train.
type AvailabilityWindow struct {
	DayOfWeek  int `json:"day_of_week"` // 1=Sunday..7=Saturday
	MaxMinutes int `json:"max_minutes,omitempty"`
}

// ParseContext carries what the parser needs to resolve relative fields.
// The parser never mutates it.
type ParseContext struct {
	// PeakVolume is the runner's peak weekly volume, in km or minutes per VolumeType.
	PeakVolume   float64              `json:"peak_volume"`
	VolumeType   VolumeType           `json:"volume_type"`
	VDOT         *float64             `json:"vdot,omitempty"`
	Availability []AvailabilityWindow `json:"availability,omitempty"`
}

// Validate checks the context is internally consistent.
func (pc ParseContext) Validate() error {
	return validation.ValidateStruct(&pc,
		validation.Field(&pc.PeakVolume, validation.Min(0.0)),
		validation.Field(&pc.VolumeType, validation.In(VolumeTypeDistance, VolumeTypeTime)),
		validation.Field(&pc.VDOT, validation.NilOrNotEmpty, validation.Min(10.0), validation.Max(100.0)),
		validation.Field(&pc.Availability, validation.Each(validation.By(validateWindow))),
	)
}

// ResolvedVolume is an absolute volume split by unit.
// Exactly one of the fields is set when resolved from a percentage.
type ResolvedVolume struct {
	DistanceKm      float64
	DurationMinutes float64
}

// ResolvePercent converts a percent of peak volume into an absolute volume,
// rounded to two decimals.
// ok is false when no peak volume is known.
func (pc ParseContext) ResolvePercent(percent float64) (ResolvedVolume, bool) {
	if pc.PeakVolume <= 0 {
		return ResolvedVolume{}, false
	}
	value := math.Round(percent*pc.PeakVolume) / 100
	if pc.VolumeType == VolumeTypeTime {
		return ResolvedVolume{DurationMinutes: value}, true
	}
	return ResolvedVolume{DistanceKm: value}, true
}

// AvailableDays returns the runner's available days in the order given, without duplicates.
func (pc ParseContext) AvailableDays() []int {
	seen := make(map[int]bool)
	var days []int
	for _, w := range pc.Availability {
		if w.DayOfWeek < 1 || w.DayOfWeek > 7 || seen[w.DayOfWeek] {
			continue
		}
		seen[w.DayOfWeek] = true
		days = append(days, w.DayOfWeek)
	}
	return days
}

func validateWindow(value interface{}) error {
	w, _ := value.(AvailabilityWindow)
	return validation.ValidateStruct(&w,
		validation.Field(&w.DayOfWeek, validation.Required, validation.Min(1), validation.Max(7)),
		validation.Field(&w.MaxMinutes, validation.Min(0)),
	)
}
