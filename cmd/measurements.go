package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spigell/fitting-room/internal/measurement"
)

type measurementPrompt struct {
	flag     string
	label    string
	optional bool
}

var measurementPrompts = []measurementPrompt{
	{flag: "chest", label: "Chest"},
	{flag: "waist", label: "Waist"},
	{flag: "hips", label: "Hips"},
	{flag: "height", label: "Height"},
	{flag: "weight", label: "Weight (kg)"},
	{flag: "shoulder-width", label: "Shoulder width", optional: true},
	{flag: "inseam", label: "Inseam", optional: true},
}

var unitPrompt = promptui.Select{
	Label: "Unit",
	Items: []string{string(measurement.UnitCentimeters), string(measurement.UnitInches)},
}

var measurementsCmd = &cobra.Command{
	Use:   "measurements",
	Short: "Manage user body measurements",
}

var measurementsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save the user's body measurements, prompting for values not given as flags",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")

		body, err := measurementsFromFlags(cmd.Flags())
		if err != nil {
			a.fatal("reading measurements", err)
		}
		body.UserID = userID

		saved, err := a.measurementService().Save(ctx, body)
		if err != nil {
			a.fatal("saving measurements", err)
		}
		if err := printJSON(cmd.OutOrStdout(), saved); err != nil {
			a.fatal("printing measurements", err)
		}
	},
}

var measurementsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the user's body measurements",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := setup(ctx)
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")

		body, err := a.measurementService().Get(ctx, userID)
		if err != nil {
			a.fatal("getting measurements", err)
		}
		if err := printJSON(cmd.OutOrStdout(), body); err != nil {
			a.fatal("printing measurements", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(measurementsCmd)
	measurementsCmd.AddCommand(measurementsSetCmd, measurementsShowCmd)

	measurementsCmd.PersistentFlags().StringP("user", "u", "", "user id")
	measurementsCmd.MarkPersistentFlagRequired("user")

	for _, p := range measurementPrompts {
		measurementsSetCmd.Flags().Float64(p.flag, 0, strings.ToLower(p.label))
	}
	measurementsSetCmd.Flags().String("unit", "", "length unit: cm or inches")
	measurementsSetCmd.Flags().Bool("no-prompt", false, "do not prompt for missing values")
}

// measurementsFromFlags reads the values given as flags and prompts for the rest.
func measurementsFromFlags(flags *pflag.FlagSet) (measurement.Body, error) {
	noPrompt, _ := flags.GetBool("no-prompt")
	values := make(map[string]float64, len(measurementPrompts))

	for _, p := range measurementPrompts {
		if flags.Changed(p.flag) {
			values[p.flag], _ = flags.GetFloat64(p.flag)
			continue
		}
		if noPrompt {
			continue
		}
		v, err := promptValue(p)
		if err != nil {
			return measurement.Body{}, err
		}
		values[p.flag] = v
	}

	rawUnit, _ := flags.GetString("unit")
	if !flags.Changed("unit") && !noPrompt {
		_, selected, err := unitPrompt.Run()
		if err != nil {
			return measurement.Body{}, err
		}
		rawUnit = selected
	}

	unit, err := measurement.ParseUnit(rawUnit)
	if err != nil {
		return measurement.Body{}, err
	}

	return measurement.Body{
		Chest:         values["chest"],
		Waist:         values["waist"],
		Hips:          values["hips"],
		Height:        values["height"],
		Weight:        values["weight"],
		ShoulderWidth: values["shoulder-width"],
		Inseam:        values["inseam"],
		Unit:          unit,
	}, nil
}

func promptValue(p measurementPrompt) (float64, error) {
	label := p.label
	if p.optional {
		label += " (optional)"
	}

	prompt := promptui.Prompt{
		Label:    label,
		Validate: numberValidator(p.optional),
	}

	raw, err := prompt.Run()
	if err != nil {
		return 0, err
	}
	return parseNumber(raw)
}

func numberValidator(optional bool) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			if optional {
				return nil
			}
			return errors.New("a value is required")
		}
		v, err := parseNumber(input)
		if err != nil {
			return err
		}
		if v <= 0 {
			return errors.New("the value must be positive")
		}
		return nil
	}
}

func parseNumber(input string) (float64, error) {
	input = strings.TrimSpace(strings.ReplaceAll(input, ",", "."))
	if input == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", input)
	}
	return v, nil
}
