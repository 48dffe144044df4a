package domain

import (
	"errors"
	"math"
)

const kgToLb = 2.2046226218

// ErrUnknownUnit is returned for weight units other than "kg" and "lb".
var ErrUnknownUnit = errors.New("unit must be \"kg\" or \"lb\"")

// WeightToKG converts a body weight given in unit to kilograms, rounded to
// two decimals so repeated round-trips through lb do not drift.
func WeightToKG(v float64, unit string) (float64, error) {
	switch unit {
	case "kg", "":
		return round2(v), nil
	case "lb":
		return round2(v / kgToLb), nil
	default:
		return 0, ErrUnknownUnit
	}
}

// KGToUnit converts kilograms to unit for display.
func KGToUnit(kg float64, unit string) (float64, error) {
	switch unit {
	case "kg", "":
		return kg, nil
	case "lb":
		return round2(kg * kgToLb), nil
	default:
		return 0, ErrUnknownUnit
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
