// Package measurement holds user body measurements and their validation rules.
package measurement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/fitting-room/internal/apperr"
)

// Unit is the length unit body measurements were entered in.
type Unit string

const (
	UnitCentimeters Unit = "cm"
	UnitInches      Unit = "inches"

	centimetersPerInch = 2.54
)

// Body is a user's body measurements. Lengths are in Unit, weight is in kilograms.
type Body struct {
	UserID        string    `json:"userId" yaml:"userId"`
	Chest         float64   `json:"chest" yaml:"chest"`
	Waist         float64   `json:"waist" yaml:"waist"`
	Hips          float64   `json:"hips" yaml:"hips"`
	Height        float64   `json:"height" yaml:"height"`
	Weight        float64   `json:"weight" yaml:"weight"`
	ShoulderWidth float64   `json:"shoulderWidth,omitempty" yaml:"shoulderWidth"`
	Inseam        float64   `json:"inseam,omitempty" yaml:"inseam"`
	Unit          Unit      `json:"unit" yaml:"unit"`
	LastUpdated   time.Time `json:"lastUpdated" yaml:"-"`
}

// ranges are expressed in centimetres and checked after normalisation.
type ranges struct {
	Chest         float64 `validate:"required,gte=50,lte=200"`
	Waist         float64 `validate:"required,gte=40,lte=180"`
	Hips          float64 `validate:"required,gte=50,lte=200"`
	Height        float64 `validate:"required,gte=100,lte=250"`
	Weight        float64 `validate:"required,gte=30,lte=300"`
	ShoulderWidth float64 `validate:"omitempty,gte=30,lte=80"`
	Inseam        float64 `validate:"omitempty,gte=50,lte=120"`
	Unit          Unit    `validate:"oneof=cm inches"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseUnit maps user input to a Unit. Empty input defaults to centimetres.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cm":
		return UnitCentimeters, nil
	case "in", "inch", "inches":
		return UnitInches, nil
	default:
		return "", apperr.Validation("unsupported unit %q", s)
	}
}

// InCentimeters returns a copy of b with every length expressed in centimetres.
func (b Body) InCentimeters() Body {
	if b.Unit != UnitInches {
		b.Unit = UnitCentimeters
		return b
	}

	convert := func(v float64) float64 { return v * centimetersPerInch }
	b.Chest = convert(b.Chest)
	b.Waist = convert(b.Waist)
	b.Hips = convert(b.Hips)
	b.Height = convert(b.Height)
	b.ShoulderWidth = convert(b.ShoulderWidth)
	b.Inseam = convert(b.Inseam)
	b.Unit = UnitCentimeters
	return b
}

// Validate checks that every present field lies in its plausible range.
func (b Body) Validate() error {
	unit := b.Unit
	if unit == "" {
		unit = UnitCentimeters
	}
	if unit != UnitCentimeters && unit != UnitInches {
		return apperr.Validation("unsupported unit %q", b.Unit)
	}

	b.Unit = unit
	cm := b.InCentimeters()
	err := validate.Struct(ranges{
		Chest:         cm.Chest,
		Waist:         cm.Waist,
		Hips:          cm.Hips,
		Height:        cm.Height,
		Weight:        cm.Weight,
		ShoulderWidth: cm.ShoulderWidth,
		Inseam:        cm.Inseam,
		Unit:          unit,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindValidation, err, "validate measurements")
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return apperr.Validation("invalid measurements: %s", strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
