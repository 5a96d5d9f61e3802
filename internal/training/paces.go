package training

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Intensity is a named training intensity.
type Intensity string

const (
	IntensityEasy       Intensity = "easy"
	IntensityMarathon   Intensity = "marathon"
	IntensityThreshold  Intensity = "threshold"
	IntensityInterval   Intensity = "interval"
	IntensityRepetition Intensity = "repetition"
)

// Anchor is a named intensity at a fixed fraction of VO2max.
type Anchor struct {
	Intensity Intensity
	Percent   float64 // percent of VO2max
}

// Anchors are ordered from slowest to fastest.
var Anchors = []Anchor{
	{IntensityEasy, 65},
	{IntensityMarathon, 80},
	{IntensityThreshold, 88},
	{IntensityInterval, 98},
	{IntensityRepetition, 105},
}

var intensityAliases = map[string]Intensity{
	"easy":       IntensityEasy,
	"recovery":   IntensityEasy,
	"long":       IntensityEasy,
	"aerobic":    IntensityEasy,
	"marathon":   IntensityMarathon,
	"mp":         IntensityMarathon,
	"steady":     IntensityMarathon,
	"threshold":  IntensityThreshold,
	"tempo":      IntensityThreshold,
	"lt":         IntensityThreshold,
	"interval":   IntensityInterval,
	"intervals":  IntensityInterval,
	"vo2max":     IntensityInterval,
	"vo2":        IntensityInterval,
	"repetition": IntensityRepetition,
	"reps":       IntensityRepetition,
	"rep":        IntensityRepetition,
}

// Paces holds the five training paces for a VDOT, in minutes per kilometre.
type Paces struct {
	Easy       float64
	Marathon   float64
	Threshold  float64
	Interval   float64
	Repetition float64
}

// For returns the pace for a named intensity.
func (p Paces) For(i Intensity) float64 {
	switch i {
	case IntensityMarathon:
		return p.Marathon
	case IntensityThreshold:
		return p.Threshold
	case IntensityInterval:
		return p.Interval
	case IntensityRepetition:
		return p.Repetition
	default:
		return p.Easy
	}
}

// TrainingPaces returns the pace table for vdot.
func TrainingPaces(vdot float64) (Paces, error) {
	if vdot < MinVDOT || vdot > MaxVDOT || math.IsNaN(vdot) {
		return Paces{}, ErrInvalidVDOT
	}
	return Paces{
		Easy:       paceAtPercent(vdot, 65),
		Marathon:   paceAtPercent(vdot, 80),
		Threshold:  paceAtPercent(vdot, 88),
		Interval:   paceAtPercent(vdot, 98),
		Repetition: paceAtPercent(vdot, 105),
	}, nil
}

// paceAtPercent solves oxygenCost(v) = percent% of vdot for v and returns min/km.
func paceAtPercent(vdot, percent float64) float64 {
	target := vdot * percent / 100
	const a, b = 0.000104, 0.182258
	c := -4.60 - target
	v := (-b + math.Sqrt(b*b-4*a*c)) / (2 * a)
	return 1000 / v
}

// ParseIntensity resolves a named intensity (with common aliases) or a numeric
// percent of VO2max such as "88" or "88%". ok is false when neither applies.
func ParseIntensity(raw string) (percent float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if named, found := intensityAliases[s]; found {
		for _, a := range Anchors {
			if a.Intensity == named {
				return a.Percent, true
			}
		}
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
		return v, true
	}
	return 0, false
}

// PaceForPercent interpolates the target pace for a percent of VO2max between
// the anchor paces of the table, clamping below easy and above repetition.
func PaceForPercent(paces Paces, percent float64) float64 {
	first, last := Anchors[0], Anchors[len(Anchors)-1]
	if percent <= first.Percent {
		return paces.For(first.Intensity)
	}
	if percent >= last.Percent {
		return paces.For(last.Intensity)
	}
	for i := 1; i < len(Anchors); i++ {
		lo, hi := Anchors[i-1], Anchors[i]
		if percent == hi.Percent {
			return paces.For(hi.Intensity)
		}
		if percent < hi.Percent {
			frac := (percent - lo.Percent) / (hi.Percent - lo.Percent)
			loPace, hiPace := paces.For(lo.Intensity), paces.For(hi.Intensity)
			return loPace + frac*(hiPace-loPace)
		}
	}
	return paces.For(last.Intensity)
}

// FormatPace renders a min/km pace as m:ss.
func FormatPace(minPerKm float64) string {
	total := int(math.Round(minPerKm * 60))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
