package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/drunkyet/internal/domain/bac"
)

// Weight units accepted by Calculation.
const (
	UnitKilograms = "kg"
	UnitPounds    = "lb"
	UnitPoundsAlt = "lbs"
)

// PoundsPerKilogram converts pound weights to kilograms.
const PoundsPerKilogram = 2.20462

// Calculation is the validated input shared by every adapter.
type Calculation struct {
	Weight        float64
	WeightUnit    string
	Sex           string
	CurrentDrinks float64
}

// Result is the outcome of a calculation.
type Result struct {
	DrinksToTarget float64 `json:"drinks_to_reach_target" yaml:"drinks_to_reach_target"`
	HoursToSober   float64 `json:"time_to_sober" yaml:"time_to_sober"`
	CurrentBAC     float64 `json:"current_bac" yaml:"current_bac"`
}

// Validate checks the calculation and returns an error wrapping ErrInvalidInput.
func (c Calculation) Validate() error {
	if math.IsNaN(c.Weight) || math.IsInf(c.Weight, 0) {
		return fmt.Errorf("%w: weight must be a finite number", ErrInvalidInput)
	}
	if c.Weight <= 0 {
		return fmt.Errorf("%w: weight must be greater than zero", ErrInvalidInput)
	}
	if _, err := unitFactor(c.WeightUnit); err != nil {
		return err
	}
	if kg := c.WeightKg(); kg <= 0 || math.IsInf(kg, 0) {
		return fmt.Errorf("%w: weight is out of range", ErrInvalidInput)
	}
	if math.IsNaN(c.CurrentDrinks) || math.IsInf(c.CurrentDrinks, 0) {
		return fmt.Errorf("%w: current_drinks must be a finite number", ErrInvalidInput)
	}
	if c.CurrentDrinks < 0 {
		return fmt.Errorf("%w: current_drinks must not be negative", ErrInvalidInput)
	}
	return nil
}

// WeightKg returns the weight converted to kilograms. Call Validate first.
func (c Calculation) WeightKg() float64 {
	f, err := unitFactor(c.WeightUnit)
	if err != nil {
		return c.Weight
	}
	return c.Weight / f
}

// Profile returns the core profile for the calculation.
func (c Calculation) Profile() bac.Profile {
	return bac.Profile{WeightKg: c.WeightKg(), Sex: c.Sex}
}

func unitFactor(unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", UnitKilograms:
		return 1, nil
	case UnitPounds, UnitPoundsAlt:
		return PoundsPerKilogram, nil
	default:
		return 0, fmt.Errorf("%w: unsupported weight_unit %q (use kg or lbs)", ErrInvalidInput, unit)
	}
}
