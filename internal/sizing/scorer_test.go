package sizing

import (
	"math"
	"testing"

	"github.com/spigell/fitting-room/internal/measurement"
)

func user(chest, waist, hips float64) measurement.Body {
	return measurement.Body{Chest: chest, Waist: waist, Hips: hips, Unit: measurement.UnitCentimeters}
}

func TestScoreExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		user        measurement.Body
		option      Measurements
		score       int
		description string
	}{
		{
			name:        "exact match",
			user:        user(100, 85, 100),
			option:      Measurements{Chest: 100, Waist: 85, Hips: 100},
			score:       100,
			description: PerfectFit,
		},
		{
			name:        "chest off by ten",
			user:        user(100, 0, 0),
			option:      Measurements{Chest: 110},
			score:       80,
			description: GreatFit,
		},
		{
			name:        "averages only shared dimensions",
			user:        user(100, 85, 100),
			option:      Measurements{Chest: 100, Waist: 85},
			score:       100,
			description: PerfectFit,
		},
		{
			name:        "no comparable dimensions",
			user:        user(100, 85, 100),
			option:      Measurements{Length: 70},
			score:       0,
			description: PoorFit,
		},
		{
			name:        "dimension score floors at zero",
			user:        user(100, 85, 0),
			option:      Measurements{Chest: 180, Waist: 85},
			score:       50,
			description: AcceptableFit,
		},
		{
			name:        "mean rounds half away from zero",
			user:        user(100, 100, 0),
			option:      Measurements{Chest: 100.25, Waist: 100},
			score:       100, // (99.5 + 100) / 2 = 99.75
			description: PerfectFit,
		},
		{
			name:        "half rounds up",
			user:        user(100, 0, 0),
			option:      Measurements{Chest: 110.25},
			score:       80, // 79.5
			description: GreatFit,
		},
		{
			name:        "good fit threshold",
			user:        user(100, 0, 0),
			option:      Measurements{Chest: 120},
			score:       60,
			description: GoodFit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.user, []Option{{Size: SizeM, Measurements: tt.option, Stock: 3}})
			if len(got) != 1 {
				t.Fatalf("expected 1 recommendation, got %d", len(got))
			}
			if got[0].FitScore != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, got[0].FitScore)
			}
			if got[0].FitDescription != tt.description {
				t.Fatalf("expected %q, got %q", tt.description, got[0].FitDescription)
			}
			if got[0].Stock != 3 || got[0].Size != SizeM {
				t.Fatalf("option fields not carried over: %+v", got[0])
			}
		})
	}
}

func TestScoreSortsBestFirstAndKeepsTieOrder(t *testing.T) {
	options := []Option{
		{Size: SizeS, Measurements: Measurements{Chest: 90}},
		{Size: SizeM, Measurements: Measurements{Chest: 100}},
		{Size: SizeL, Measurements: Measurements{Chest: 110}},
		{Size: SizeXL, Measurements: Measurements{Chest: 120}},
	}

	got := Score(user(100, 0, 0), options)

	order := []Size{SizeM, SizeS, SizeL, SizeXL}
	for i, size := range order {
		if got[i].Size != size {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, size, got[i].Size, got)
		}
	}
}

func TestScoreConvertsInches(t *testing.T) {
	body := measurement.Body{Chest: 40, Unit: measurement.UnitInches}
	got := Score(body, []Option{{Size: SizeL, Measurements: Measurements{Chest: 101.6}}})

	if got[0].FitScore != 100 {
		t.Fatalf("expected inches to be normalised, got %d", got[0].FitScore)
	}
}

func TestScoreIgnoresNonFiniteValues(t *testing.T) {
	got := Score(user(math.NaN(), 85, 0), []Option{{Size: SizeM, Measurements: Measurements{Chest: 100, Waist: 85}}})
	if got[0].FitScore != 100 {
		t.Fatalf("expected NaN chest to be skipped, got %d", got[0].FitScore)
	}
}

func TestScoreEmpty(t *testing.T) {
	got := Score(user(100, 85, 100), nil)
	if len(got) != 0 {
		t.Fatalf("expected no recommendations, got %d", len(got))
	}
	if _, ok := Best(got); ok {
		t.Fatalf("expected no best recommendation")
	}
}

func TestDescribeThresholds(t *testing.T) {
	cases := map[int]string{
		100: PerfectFit, 90: PerfectFit, 89: GreatFit, 75: GreatFit, 74: GoodFit,
		60: GoodFit, 59: AcceptableFit, 40: AcceptableFit, 39: PoorFit, 0: PoorFit,
	}
	for score, expect := range cases {
		if got := Describe(score); got != expect {
			t.Fatalf("score %d: expected %q, got %q", score, expect, got)
		}
	}
}

func TestSizeOrdering(t *testing.T) {
	if !SizeXS.Less(Size3XL) || Size3XL.Less(SizeXS) {
		t.Fatalf("unexpected ordering between XS and 3XL")
	}
	if Size("XXXS").Valid() {
		t.Fatalf("unknown size must be invalid")
	}
	if !SizeXXL.Less(Size("unknown")) {
		t.Fatalf("unknown sizes must sort last")
	}
}
