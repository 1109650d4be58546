package main

import (
	"encoding/json"
	"fmt"
	"os"

	"menuwise/internal/health"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type dishFile struct {
	Name            string               `yaml:"name"`
	NutritionalInfo health.Nutrition     `yaml:"nutritionalInfo"`
	DietaryTags     []health.DietaryTag  `yaml:"dietaryTags"`
	CookingMethod   health.CookingMethod `yaml:"cookingMethod"`
}

func newScoreCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a dish described in a YAML file",
		Example: `  menuwise score -f dish.yaml
  menuwise score -f dish.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read dish file: %w", err)
			}

			var d dishFile
			if err := yaml.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("parse dish file: %w", err)
			}

			b, err := health.Explain(d.NutritionalInfo, d.DietaryTags, d.CookingMethod)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(b)
			}

			if d.Name != "" {
				fmt.Fprintf(out, "%s\n", d.Name)
			}
			fmt.Fprintf(out, "health score:   %d\n", b.Score)
			fmt.Fprintf(out, "recommendation: %s\n", b.Recommendation)
			for _, a := range b.Adjustments {
				fmt.Fprintf(out, "  %+4d  %s\n", a.Delta, a.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML dish description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the breakdown as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCaloriesCmd() *cobra.Command {
	var b health.Biometrics
	var gender, activity string

	cmd := &cobra.Command{
		Use:     "calories",
		Short:   "Compute a daily calorie goal",
		Example: `  menuwise calories --weight 70 --height 175 --age 30 --gender male --activity moderate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b.Gender = health.Gender(gender)
			b.ActivityLevel = health.ActivityLevel(activity)

			if b.WeightKg <= 0 || b.HeightCm <= 0 || b.AgeYears <= 0 {
				return fmt.Errorf("weight, height and age must be positive")
			}
			if !b.Gender.Valid() {
				return fmt.Errorf("unknown gender %q", gender)
			}
			if !b.ActivityLevel.Valid() {
				return fmt.Errorf("unknown activity level %q", activity)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", health.DailyCalorieGoal(b))
			return nil
		},
	}

	cmd.Flags().Float64Var(&b.WeightKg, "weight", 0, "Weight in kg")
	cmd.Flags().Float64Var(&b.HeightCm, "height", 0, "Height in cm")
	cmd.Flags().IntVar(&b.AgeYears, "age", 0, "Age in years")
	cmd.Flags().StringVar(&gender, "gender", string(health.GenderOther), "male, female or other")
	cmd.Flags().StringVar(&activity, "activity", string(health.ActivityModerate), "Activity level")
	return cmd
}

func newBMICmd() *cobra.Command {
	var weight, height float64

	cmd := &cobra.Command{
		Use:     "bmi",
		Short:   "Compute body mass index",
		Example: `  menuwise bmi --weight 70 --height 175`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bmi, err := health.BMI(weight, height)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", health.FormatBMI(bmi), health.BMICategory(bmi))
			return nil
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", 0, "Weight in kg")
	cmd.Flags().Float64Var(&height, "height", 0, "Height in cm")
	return cmd
}
