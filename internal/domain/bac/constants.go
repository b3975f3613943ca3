// Package bac estimates blood alcohol content with the Widmark relation
//
//	BAC% = alcohol_grams / (body_weight_grams * r) * 100
//
// and answers two questions for a subject: how many more standard drinks reach
// the target BAC, and how many hours until BAC is back to zero.
package bac

const (
	// TargetBAC is the reference BAC, in percent, used by DrinksToTarget.
	TargetBAC = 0.10

	// AlcoholGramsPerStandardDrink is the pure alcohol mass of one standard drink.
	AlcoholGramsPerStandardDrink = 14.0

	// MetabolismRate is the BAC, in percent, eliminated per hour.
	MetabolismRate = 0.015

	// FactorMale is the Widmark body-water factor for male subjects.
	FactorMale = 0.68

	// FactorFemale is the Widmark body-water factor for female subjects.
	FactorFemale = 0.55

	// FactorOther is the mean of the male and female factors and applies to
	// every other sex category, including empty or unrecognized values.
	FactorOther = (FactorMale + FactorFemale) / 2
)

// Sex categories recognised by WidmarkFactor. Matching is case-insensitive.
const (
	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"
)

const gramsPerKilogram = 1000.0
