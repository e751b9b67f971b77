package sizing

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/spigell/fitting-room/internal/measurement"
)

func TestScoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	dimension := gen.Float64Range(0, 200)

	properties.Property("identical measurements always score 100", prop.ForAll(
		func(chest, waist, hips float64) bool {
			body := measurement.Body{Chest: chest, Waist: waist, Hips: hips, Unit: measurement.UnitCentimeters}
			got := Score(body, []Option{{Size: SizeM, Measurements: Measurements{Chest: chest, Waist: waist, Hips: hips}}})
			return got[0].FitScore == 100 && got[0].FitDescription == PerfectFit
		},
		gen.Float64Range(50, 200), dimension, dimension,
	))

	properties.Property("scores stay within bounds and are sorted best first", prop.ForAll(
		func(userChest float64, chests []float64) bool {
			body := measurement.Body{Chest: userChest, Unit: measurement.UnitCentimeters}
			options := make([]Option, 0, len(chests))
			for _, c := range chests {
				options = append(options, Option{Size: SizeL, Measurements: Measurements{Chest: c}})
			}

			got := Score(body, options)
			if len(got) != len(options) {
				return false
			}
			for i, rec := range got {
				if rec.FitScore < 0 || rec.FitScore > 100 {
					return false
				}
				if rec.FitDescription != Describe(rec.FitScore) {
					return false
				}
				if i > 0 && got[i-1].FitScore < rec.FitScore {
					return false
				}
			}
			return true
		},
		gen.Float64Range(50, 200), gen.SliceOf(dimension),
	))

	properties.Property("options without shared dimensions score zero", prop.ForAll(
		func(length float64) bool {
			body := measurement.Body{Chest: 100, Waist: 85, Hips: 100, Unit: measurement.UnitCentimeters}
			got := Score(body, []Option{{Size: SizeS, Measurements: Measurements{Length: length}}})
			return got[0].FitScore == 0 && got[0].FitDescription == PoorFit
		},
		dimension,
	))

	properties.Property("scoring is deterministic", prop.ForAll(
		func(chest, waist float64) bool {
			body := measurement.Body{Chest: 100, Waist: 85, Unit: measurement.UnitCentimeters}
			options := []Option{{Size: SizeM, Measurements: Measurements{Chest: chest, Waist: waist}}}
			return Score(body, options)[0] == Score(body, options)[0]
		},
		dimension, dimension,
	))

	properties.TestingRun(t)
}
