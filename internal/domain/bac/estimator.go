package bac

import (
	"math"
	"strings"
)

// Model holds the physiological parameters of the estimate. The zero value is
// not usable; start from StandardModel.
type Model struct {
	TargetBAC      float64
	GramsPerDrink  float64
	MetabolismRate float64
	FactorMale     float64
	FactorFemale   float64
	FactorOther    float64
}

// StandardModel returns the model built from the package constants.
func StandardModel() Model {
	return Model{
		TargetBAC:      TargetBAC,
		GramsPerDrink:  AlcoholGramsPerStandardDrink,
		MetabolismRate: MetabolismRate,
		FactorMale:     FactorMale,
		FactorFemale:   FactorFemale,
		FactorOther:    FactorOther,
	}
}

// Profile describes the subject of an estimate.
// WeightKg must be positive; the estimator does not check it.
type Profile struct {
	WeightKg float64
	Sex      string
}

// Estimate is the result of a single estimation.
type Estimate struct {
	// DrinksToTarget is the number of additional standard drinks to reach the
	// target BAC, rounded to one decimal. Never negative.
	DrinksToTarget float64
	// HoursToSober is the time until BAC returns to zero, rounded to one decimal.
	HoursToSober float64
	// CurrentBAC is the estimated BAC in percent, rounded to three decimals.
	CurrentBAC float64
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithModel replaces the whole model. Models with non-positive parameters are ignored.
func WithModel(m Model) Option {
	return func(e *Estimator) {
		if m.valid() {
			e.model = m
		}
	}
}

// WithTargetBAC overrides the target BAC, in percent.
func WithTargetBAC(target float64) Option {
	return func(e *Estimator) {
		if target > 0 {
			e.model.TargetBAC = target
		}
	}
}

// Estimator computes BAC estimates from a fixed Model. It holds no mutable
// state and is safe for concurrent use.
type Estimator struct {
	model Model
}

// NewEstimator creates an estimator using the standard model unless overridden.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{model: StandardModel()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns a copy of the estimator's model.
func (e *Estimator) Model() Model {
	return e.model
}

// WidmarkFactor returns the body-water factor for sex. "male" and "female"
// match case-insensitively; every other value gets the averaged factor.
func (e *Estimator) WidmarkFactor(sex string) float64 {
	switch strings.ToLower(sex) {
	case SexMale:
		return e.model.FactorMale
	case SexFemale:
		return e.model.FactorFemale
	default:
		return e.model.FactorOther
	}
}

// DrinksToTarget returns how many more standard drinks bring the subject to
// the target BAC:
//  1. total grams at target = target/100 * weight_g * r
//  2. total drinks at target = total grams / grams per drink
//  3. additional = total drinks - currentDrinks, clamped at 0
//
// The result is rounded to one decimal place.
func (e *Estimator) DrinksToTarget(weightKg float64, sex string, currentDrinks float64) float64 {
	r := e.WidmarkFactor(sex)
	weightGrams := weightKg * gramsPerKilogram

	targetGrams := (e.model.TargetBAC / 100) * weightGrams * r
	targetDrinks := targetGrams / e.model.GramsPerDrink

	additional := targetDrinks - currentDrinks
	if additional < 0 {
		return 0
	}
	return Round(additional, 1)
}

// CurrentBAC returns the unrounded BAC, in percent, after currentDrinks
// standard drinks. It is zero when no drinks were consumed.
func (e *Estimator) CurrentBAC(currentDrinks, weightKg float64, sex string) float64 {
	if currentDrinks <= 0 {
		return 0
	}
	r := e.WidmarkFactor(sex)
	weightGrams := weightKg * gramsPerKilogram
	alcoholGrams := currentDrinks * e.model.GramsPerDrink
	return (alcoholGrams / (weightGrams * r)) * 100
}

// TimeToSober returns the hours needed to eliminate the alcohol of
// currentDrinks at the model's metabolism rate, rounded to one decimal place.
func (e *Estimator) TimeToSober(currentDrinks, weightKg float64, sex string) float64 {
	if currentDrinks <= 0 {
		return 0
	}
	hours := e.CurrentBAC(currentDrinks, weightKg, sex) / e.model.MetabolismRate
	return Round(hours, 1)
}

// CurrentBACDecimals is the precision of Estimate.CurrentBAC.
const CurrentBACDecimals = 3

// Estimate computes every result for p after currentDrinks drinks.
func (e *Estimator) Estimate(p Profile, currentDrinks float64) Estimate {
	return Estimate{
		DrinksToTarget: e.DrinksToTarget(p.WeightKg, p.Sex, currentDrinks),
		HoursToSober:   e.TimeToSober(currentDrinks, p.WeightKg, p.Sex),
		CurrentBAC:     Round(e.CurrentBAC(currentDrinks, p.WeightKg, p.Sex), CurrentBACDecimals),
	}
}

func (m Model) valid() bool {
	return m.TargetBAC > 0 && m.GramsPerDrink > 0 && m.MetabolismRate > 0 &&
		m.FactorMale > 0 && m.FactorFemale > 0 && m.FactorOther > 0
}

// Round rounds v to decimals places, half away from zero.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

var standard = NewEstimator()

// WidmarkFactor returns the standard-model factor for sex.
func WidmarkFactor(sex string) float64 { return standard.WidmarkFactor(sex) }

// DrinksToTarget uses the standard model; see Estimator.DrinksToTarget.
func DrinksToTarget(weightKg float64, sex string, currentDrinks float64) float64 {
	return standard.DrinksToTarget(weightKg, sex, currentDrinks)
}

// TimeToSober uses the standard model; see Estimator.TimeToSober.
func TimeToSober(currentDrinks, weightKg float64, sex string) float64 {
	return standard.TimeToSober(currentDrinks, weightKg, sex)
}

// NormalizeSex maps sex onto one of SexMale, SexFemale or SexOther using the
// same rules as WidmarkFactor.
func NormalizeSex(sex string) string {
	switch strings.ToLower(sex) {
	case SexMale:
		return SexMale
	case SexFemale:
		return SexFemale
	default:
		return SexOther
	}
}
