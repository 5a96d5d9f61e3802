package training

import (
	"errors"
	"math"
)

// HRAnchor identifies which heart-rate value the zones are derived from.
type HRAnchor string

const (
	AnchorMaxHR HRAnchor = "max_hr"
	AnchorLTHR  HRAnchor = "lthr"
)

const (
	minAnchorBPM = 30
	maxAnchorBPM = 250
)

var (
	ErrHRAnchorMissing   = errors.New("provide exactly one of max_hr or lthr")
	ErrHRAnchorAmbiguous = errors.New("provide only one of max_hr or lthr, not both")
	ErrHRAnchorRange     = errors.New("heart rate must be between 30 and 250 bpm")
)

// Zone band edges as fractions of the anchor. Zone k spans edges[k-1]..edges[k].
var (
	maxHRBands = [6]float64{0.50, 0.60, 0.70, 0.80, 0.90, 1.00}
	lthrBands  = [6]float64{0.65, 0.85, 0.90, 0.95, 1.00, 1.06}
)

var zoneNames = [5]string{"Recovery", "Aerobic", "Tempo", "Threshold", "VO2max"}

// HRZone is an inclusive bpm range.
type HRZone struct {
	Number int
	Name   string
	Min    int
	Max    int
}

// HeartRateZones derives five contiguous zones from exactly one of maxHR or lthr.
// A zero value means "not given".
func HeartRateZones(maxHR, lthr int) (HRAnchor, []HRZone, error) {
	var anchor HRAnchor
	var bpm int
	var bands [6]float64
	switch {
	case maxHR > 0 && lthr > 0:
		return "", nil, ErrHRAnchorAmbiguous
	case maxHR > 0:
		anchor, bpm, bands = AnchorMaxHR, maxHR, maxHRBands
	case lthr > 0:
		anchor, bpm, bands = AnchorLTHR, lthr, lthrBands
	default:
		return "", nil, ErrHRAnchorMissing
	}
	if bpm < minAnchorBPM || bpm > maxAnchorBPM {
		return "", nil, ErrHRAnchorRange
	}

	var edges [6]int
	for i, frac := range bands {
		edges[i] = int(math.Round(frac * float64(bpm)))
	}

	zones := make([]HRZone, 5)
	for i := range zones {
		upper := edges[i+1] - 1
		if i == len(zones)-1 {
			upper = edges[i+1]
		}
		zones[i] = HRZone{
			Number: i + 1,
			Name:   zoneNames[i],
			Min:    edges[i],
			Max:    upper,
		}
	}
	return anchor, zones, nil
}
