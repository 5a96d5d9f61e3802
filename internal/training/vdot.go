// Package training implements the deterministic running calculations offered
// to the model as tools: VDOT, race projection, training paces, heart-rate
// zones, pace conversion and weekly volume progression checks.
//
// Every function is pure and safe for concurrent use.
package training

import (
	"errors"
	"fmt"
	"math"
)

// Bounds accepted by the VDOT model. Outside them the equations stop
// describing human running.
const (
	MinVDOT = 15.0
	MaxVDOT = 90.0

	minRaceDistanceM = 400.0
	maxRaceDistanceM = 250000.0
)

var (
	ErrInvalidDistance = errors.New("distance_m must be between 400 and 250000 meters")
	ErrInvalidTime     = errors.New("time_s must be greater than zero")
	ErrInvalidVDOT     = fmt.Errorf("vdot must be between %.0f and %.0f", MinVDOT, MaxVDOT)
)

// oxygenCost is the VO2 (ml/kg/min) required to run at velocity v (m/min).
func oxygenCost(v float64) float64 {
	return -4.60 + 0.182258*v + 0.000104*v*v
}

// fractionOfMax is the fraction of VO2max sustainable for a race lasting t minutes.
func fractionOfMax(t float64) float64 {
	return 0.8 + 0.1894393*math.Exp(-0.012778*t) + 0.2989558*math.Exp(-0.1932605*t)
}

// CalculateVDOT returns the VDOT for a race performance, rounded to one decimal.
func CalculateVDOT(distanceM, timeS float64) (float64, error) {
	if distanceM < minRaceDistanceM || distanceM > maxRaceDistanceM || math.IsNaN(distanceM) {
		return 0, ErrInvalidDistance
	}
	if timeS <= 0 || math.IsNaN(timeS) || math.IsInf(timeS, 0) {
		return 0, ErrInvalidTime
	}
	return round(rawVDOT(distanceM, timeS/60), 1), nil
}

func rawVDOT(distanceM, minutes float64) float64 {
	v := distanceM / minutes
	return oxygenCost(v) / fractionOfMax(minutes)
}

// ProjectRaceTime returns the predicted finishing time in seconds for distanceM at the given VDOT.
func ProjectRaceTime(vdot, distanceM float64) (float64, error) {
	if vdot < MinVDOT || vdot > MaxVDOT || math.IsNaN(vdot) {
		return 0, ErrInvalidVDOT
	}
	if distanceM < minRaceDistanceM || distanceM > maxRaceDistanceM || math.IsNaN(distanceM) {
		return 0, ErrInvalidDistance
	}

	// rawVDOT decreases monotonically as time grows, so bisect on minutes.
	lo, hi := distanceM/1000.0, distanceM/20.0
	for i := 0; i < 200 && hi-lo > 1e-6; i++ {
		mid := (lo + hi) / 2
		if rawVDOT(distanceM, mid) > vdot {
			lo = mid
		} else {
			hi = mid
		}
	}
	return math.Round((lo + hi) / 2 * 60), nil
}

// FormatDuration renders seconds as h:mm:ss, or m:ss under one hour.
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
