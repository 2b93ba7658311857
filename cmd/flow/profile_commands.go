package main

import (
	"strings"

	"github.com/jrsteele09/flow-client/flows"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/users"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// answerFlags holds the questionnaire flags shared by onboard and profile.
type answerFlags struct {
	fs *pflag.FlagSet

	displayName, ageRange, gender, fitnessLevel string
	primaryGoal, injuries, location             string
	secondaryGoals, preferredDays, equipment    []string
	heightCM, daysPerWeek, minutes              int
	weightKG                                    float64
	cardio, strength, yoga, disclaimer          bool
}

func newAnswerFlags(fs *pflag.FlagSet) *answerFlags {
	f := &answerFlags{fs: fs}
	fs.StringVar(&f.displayName, "name", "", "display name")
	fs.StringVar(&f.ageRange, "age", "", "age range: "+users.AgeRanges)
	fs.StringVar(&f.gender, "gender", "", "gender: "+users.Genders)
	fs.IntVar(&f.heightCM, "height", 0, "height in cm")
	fs.Float64Var(&f.weightKG, "weight", 0, "weight in kg")
	fs.StringVar(&f.fitnessLevel, "level", "", "fitness level: "+users.FitnessLevels)
	fs.StringVar(&f.primaryGoal, "goal", "", "primary goal: "+users.Goals)
	fs.StringSliceVar(&f.secondaryGoals, "goals", nil, "comma separated secondary goals")
	fs.IntVar(&f.daysPerWeek, "days", 0, "workout days per week")
	fs.IntVar(&f.minutes, "minutes", 0, "minutes per session")
	fs.StringSliceVar(&f.preferredDays, "preferred-days", nil, "comma separated week days")
	fs.StringVar(&f.injuries, "injuries", "", "injuries or limitations")
	fs.StringSliceVar(&f.equipment, "equipment", nil, "comma separated equipment: "+users.Equipment)
	fs.StringVar(&f.location, "location", "", "workout location: "+users.WorkoutLocations)
	fs.BoolVar(&f.cardio, "cardio", false, "prefers cardio")
	fs.BoolVar(&f.strength, "strength", false, "prefers strength")
	fs.BoolVar(&f.yoga, "yoga", false, "interested in yoga")
	fs.BoolVar(&f.disclaimer, "accept-disclaimer", false, "accept the health disclaimer")
	return f
}

// optional returns v only when the flag was given on the command line.
func optional[T any](fs *pflag.FlagSet, name string, v T) *T {
	if !fs.Changed(name) {
		return nil
	}
	return utils.Ptr(v)
}

func trimmed(list []string) []string {
	var out []string
	for _, part := range list {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (f *answerFlags) onboarding() users.OnboardingRequest {
	return users.OnboardingRequest{
		DisplayName:              optional(f.fs, "name", f.displayName),
		AgeRange:                 optional(f.fs, "age", f.ageRange),
		Gender:                   optional(f.fs, "gender", f.gender),
		HeightCM:                 optional(f.fs, "height", f.heightCM),
		WeightKG:                 optional(f.fs, "weight", f.weightKG),
		FitnessLevel:             optional(f.fs, "level", f.fitnessLevel),
		PrimaryGoal:              optional(f.fs, "goal", f.primaryGoal),
		SecondaryGoals:           trimmed(f.secondaryGoals),
		DaysPerWeek:              optional(f.fs, "days", f.daysPerWeek),
		MinutesPerSession:        optional(f.fs, "minutes", f.minutes),
		PreferredDays:            trimmed(f.preferredDays),
		Injuries:                 optional(f.fs, "injuries", f.injuries),
		EquipmentAvailable:       trimmed(f.equipment),
		WorkoutLocation:          optional(f.fs, "location", f.location),
		PrefersCardio:            optional(f.fs, "cardio", f.cardio),
		PrefersStrength:          optional(f.fs, "strength", f.strength),
		InterestedInYoga:         optional(f.fs, "yoga", f.yoga),
		HealthDisclaimerAccepted: f.disclaimer,
	}
}

func (f *answerFlags) update() users.UpdateProfileRequest {
	return users.UpdateProfileRequest{
		DisplayName:       optional(f.fs, "name", f.displayName),
		HeightCM:          optional(f.fs, "height", f.heightCM),
		WeightKG:          optional(f.fs, "weight", f.weightKG),
		FitnessLevel:      optional(f.fs, "level", f.fitnessLevel),
		PrimaryGoal:       optional(f.fs, "goal", f.primaryGoal),
		DaysPerWeek:       optional(f.fs, "days", f.daysPerWeek),
		MinutesPerSession: optional(f.fs, "minutes", f.minutes),
	}
}

// onboardCmd walks the wizard with the answers given as flags, stopping at
// the first step that does not validate.
func (a *app) onboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard [answers...]",
		Short: "complete the onboarding questionnaire",
		Args:  cobra.NoArgs,
	}
	answers := newAnswerFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		wizard := flows.NewOnboardingWizard(a.store)
		req := answers.onboarding()
		wizard.Update(func(r *users.OnboardingRequest) { *r = req })
		for {
			step := wizard.Step()
			if fe := wizard.Next(); len(fe) > 0 {
				a.printf("Step %s needs attention:\n", step)
				return a.failure(nil, fe)
			}
			if step == flows.StepDisclaimer {
				break
			}
		}

		res := wizard.Submit(cmd.Context())
		if !res.Success {
			return a.failure(res.Error, res.FieldErrors)
		}
		a.printf("Onboarding complete\n")
		printProfile(a, res.Profile)
		return nil
	}
	return cmd
}

// profileCmd shows the profile, or updates it when any change flag is set.
func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [changes...]",
		Short: "show or update the profile",
		Args:  cobra.NoArgs,
	}
	changes := newAnswerFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		update := changes.update()
		if update.Empty() {
			res := a.store.FetchProfile(ctx)
			if !res.Success {
				return a.failure(res.Error, res.FieldErrors)
			}
			printProfile(a, res.Profile)
			return nil
		}

		res := a.store.UpdateProfile(ctx, update)
		if !res.Success {
			return a.failure(res.Error, res.FieldErrors)
		}
		a.printf("Profile updated\n")
		printProfile(a, res.Profile)
		return nil
	}
	return cmd
}
