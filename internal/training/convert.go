package training

import (
	"errors"
	"fmt"
	"math"
)

// PaceUnit is a unit of pace or speed.
type PaceUnit string

const (
	UnitMinPerKm    PaceUnit = "min/km"
	UnitMinPerMile  PaceUnit = "min/mile"
	UnitKmPerHour   PaceUnit = "km/h"
	UnitMilePerHour PaceUnit = "mph"
)

// PaceUnits lists the supported units.
var PaceUnits = []PaceUnit{UnitMinPerKm, UnitMinPerMile, UnitKmPerHour, UnitMilePerHour}

const kmPerMile = 1.609344

var ErrNonPositivePace = errors.New("value must be greater than zero")

// ConvertPace converts value between pace and speed units, pivoting through min/km.
func ConvertPace(value float64, from, to PaceUnit) (float64, error) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNonPositivePace
	}
	minPerKm, err := toMinPerKm(value, from)
	if err != nil {
		return 0, err
	}
	return fromMinPerKm(minPerKm, to)
}

func toMinPerKm(value float64, unit PaceUnit) (float64, error) {
	switch unit {
	case UnitMinPerKm:
		return value, nil
	case UnitMinPerMile:
		return value / kmPerMile, nil
	case UnitKmPerHour:
		return 60 / value, nil
	case UnitMilePerHour:
		return 60 / (value * kmPerMile), nil
	default:
		return 0, fmt.Errorf("unknown unit %q (supported: min/km, min/mile, km/h, mph)", unit)
	}
}

func fromMinPerKm(minPerKm float64, unit PaceUnit) (float64, error) {
	switch unit {
	case UnitMinPerKm:
		return minPerKm, nil
	case UnitMinPerMile:
		return minPerKm * kmPerMile, nil
	case UnitKmPerHour:
		return 60 / minPerKm, nil
	case UnitMilePerHour:
		return 60 / minPerKm / kmPerMile, nil
	default:
		return 0, fmt.Errorf("unknown unit %q (supported: min/km, min/mile, km/h, mph)", unit)
	}
}

// IsSpeed reports whether unit measures speed rather than pace.
func (u PaceUnit) IsSpeed() bool {
	return u == UnitKmPerHour || u == UnitMilePerHour
}
