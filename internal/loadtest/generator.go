package loadtest

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/drunkyet/internal/app"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileKinds       = 6
)

// Ranges for generated profiles.
const (
	minWeightKg     = 45.0
	weightRangeKg   = 85.0
	maxDrinks       = 12.0
	weightDecimals  = 1
	drinksIncrement = 0.5
)

var sexes = []string{"male", "female", "other", "Male", "FEMALE", "nonbinary"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateRequests creates n random calculations with unique ids.
func generateRequests(n int) []Request {
	reqs := make([]Request, n)
	for i := range reqs {
		reqs[i] = generateSingleRequest()
	}
	return reqs
}

// generateSingleRequest mixes kilogram and pound weights and a spread of
// sex labels, including ones that fall back to the averaged factor.
func generateSingleRequest() Request {
	weightKg := minWeightKg + getRandomFloat()*weightRangeKg
	drinks := math.Round(getRandomFloat()*maxDrinks/drinksIncrement) * drinksIncrement

	r := Request{
		ID:            uuid.NewString(),
		Weight:        round(weightKg, weightDecimals),
		Sex:           sexes[randomIndex(len(sexes))],
		CurrentDrinks: drinks,
	}

	switch randomIndex(profileKinds) {
	case 0:
		r.WeightUnit = "lbs"
		r.Weight = round(weightKg*app.PoundsPerKilogram, weightDecimals)
	case 1:
		r.WeightUnit = "kg"
	}
	return r
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
