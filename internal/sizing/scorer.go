// Package sizing ranks garment size options against body measurements.
package sizing

import (
	"math"
	"sort"

	"github.com/spigell/fitting-room/internal/measurement"
)

// Size is a garment size label.
type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
	Size3XL Size = "3XL"
)

var sizeOrder = map[Size]int{
	SizeXS:  0,
	SizeS:   1,
	SizeM:   2,
	SizeL:   3,
	SizeXL:  4,
	SizeXXL: 5,
	Size3XL: 6,
}

// Valid reports whether s is one of the known labels.
func (s Size) Valid() bool {
	_, ok := sizeOrder[s]
	return ok
}

// Less orders sizes from XS to 3XL. Unknown sizes sort last.
func (s Size) Less(other Size) bool {
	a, okA := sizeOrder[s]
	b, okB := sizeOrder[other]
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	return a < b
}

// Fit descriptions, best to worst.
const (
	PerfectFit    = "Perfect Fit"
	GreatFit      = "Great Fit"
	GoodFit       = "Good Fit"
	AcceptableFit = "Acceptable Fit"
	PoorFit       = "Poor Fit"
)

// Measurements are the stated garment measurements in centimetres. Zero means absent.
type Measurements struct {
	Chest  float64 `json:"chest,omitempty" yaml:"chest"`
	Waist  float64 `json:"waist,omitempty" yaml:"waist"`
	Hips   float64 `json:"hips,omitempty" yaml:"hips"`
	Length float64 `json:"length,omitempty" yaml:"length"`
}

// Option is one purchasable size of a catalog item.
type Option struct {
	Size         Size         `json:"size" yaml:"size"`
	Measurements Measurements `json:"measurements" yaml:"measurements"`
	Stock        int          `json:"stock" yaml:"stock"`
}

// Recommendation is the score of a single size option for a user.
type Recommendation struct {
	Size           Size         `json:"size"`
	FitScore       int          `json:"fitScore"`
	FitDescription string       `json:"fitDescription"`
	Stock          int          `json:"stock"`
	Measurements   Measurements `json:"measurements"`
}

// Score computes a recommendation per option, best first. Ties keep input order.
func Score(user measurement.Body, options []Option) []Recommendation {
	body := user.InCentimeters()
	recommendations := make([]Recommendation, 0, len(options))

	for _, option := range options {
		score := fitScore(body, option.Measurements)
		recommendations = append(recommendations, Recommendation{
			Size:           option.Size,
			FitScore:       score,
			FitDescription: Describe(score),
			Stock:          option.Stock,
			Measurements:   option.Measurements,
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].FitScore > recommendations[j].FitScore
	})

	return recommendations
}

// Best returns the top recommendation, if any.
func Best(recommendations []Recommendation) (Recommendation, bool) {
	if len(recommendations) == 0 {
		return Recommendation{}, false
	}
	return recommendations[0], true
}

// Describe maps a fit score to its label.
func Describe(score int) string {
	switch {
	case score >= 90:
		return PerfectFit
	case score >= 75:
		return GreatFit
	case score >= 60:
		return GoodFit
	case score >= 40:
		return AcceptableFit
	default:
		return PoorFit
	}
}

func fitScore(body measurement.Body, garment Measurements) int {
	pairs := [][2]float64{
		{garment.Chest, body.Chest},
		{garment.Waist, body.Waist},
		{garment.Hips, body.Hips},
	}

	total := 0.0
	compared := 0
	for _, p := range pairs {
		if !present(p[0]) || !present(p[1]) {
			continue
		}
		total += dimensionScore(p[0], p[1])
		compared++
	}

	// No shared dimension means nothing to compare against.
	if compared == 0 {
		return 0
	}

	// math.Round rounds half away from zero.
	return int(math.Round(total / float64(compared)))
}

func dimensionScore(sizeValue, userValue float64) float64 {
	return math.Max(0, 100-2*math.Abs(sizeValue-userValue))
}

func present(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
