package users

import (
	"time"

	"github.com/jrsteele09/flow-client/internal/utils"
)

// Allowed values for the questionnaire. They double as validator oneof
// parameters so the lists must stay space separated.
const (
	AgeRanges        = "18-29 30-45 46-65 65+"
	Genders          = "male female other prefer_not_to_say"
	FitnessLevels    = "beginner intermediate advanced"
	Goals            = "weight_loss muscle_gain flexibility endurance rehab_mobility general_fitness"
	WeekDays         = "monday tuesday wednesday thursday friday saturday sunday"
	Equipment        = "none dumbbells bands gym"
	WorkoutLocations = "home gym both"
)

const (
	LocationHome = "home"
	LocationGym  = "gym"
	LocationBoth = "both"
)

// Profile is the stored onboarding questionnaire for a user.
type Profile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	DisplayName  *string  `json:"display_name"`
	AgeRange     *string  `json:"age_range"`
	Gender       *string  `json:"gender"`
	HeightCM     *int     `json:"height_cm"`
	WeightKG     *float64 `json:"weight_kg"`
	FitnessLevel *string  `json:"fitness_level"`

	PrimaryGoal    *string  `json:"primary_goal"`
	SecondaryGoals []string `json:"secondary_goals"`

	DaysPerWeek       *int     `json:"days_per_week"`
	MinutesPerSession *int     `json:"minutes_per_session"`
	PreferredDays     []string `json:"preferred_days"`

	Injuries           *string  `json:"injuries"`
	EquipmentAvailable []string `json:"equipment_available"`
	WorkoutLocation    *string  `json:"workout_location"`

	PrefersCardio    *bool `json:"prefers_cardio"`
	PrefersStrength  *bool `json:"prefers_strength"`
	InterestedInYoga *bool `json:"interested_in_yoga"`

	HealthDisclaimerAcceptedAt *time.Time `json:"health_disclaimer_accepted_at"`
	OnboardingCompletedAt      *time.Time `json:"onboarding_completed_at"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// OnboardingCompleted reports whether the questionnaire has been submitted.
func (p *Profile) OnboardingCompleted() bool {
	return p != nil && p.OnboardingCompletedAt != nil
}

// OnboardingRequest is the body of POST /users/onboarding. Every answer is
// optional apart from the health disclaimer, which is checked separately so
// the backend can reject it with its own message.
type OnboardingRequest struct {
	DisplayName  *string  `json:"display_name,omitempty" validate:"omitempty,max=100"`
	AgeRange     *string  `json:"age_range,omitempty" validate:"omitempty,oneof=18-29 30-45 46-65 65+"`
	Gender       *string  `json:"gender,omitempty" validate:"omitempty,oneof=male female other prefer_not_to_say"`
	HeightCM     *int     `json:"height_cm,omitempty" validate:"omitempty,min=100,max=250"`
	WeightKG     *float64 `json:"weight_kg,omitempty" validate:"omitempty,min=30,max=300"`
	FitnessLevel *string  `json:"fitness_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`

	PrimaryGoal    *string  `json:"primary_goal,omitempty" validate:"omitempty,oneof=weight_loss muscle_gain flexibility endurance rehab_mobility general_fitness"`
	SecondaryGoals []string `json:"secondary_goals,omitempty" validate:"omitempty,dive,oneof=weight_loss muscle_gain flexibility endurance rehab_mobility general_fitness"`

	DaysPerWeek       *int     `json:"days_per_week,omitempty" validate:"omitempty,min=1,max=7"`
	MinutesPerSession *int     `json:"minutes_per_session,omitempty" validate:"omitempty,min=10,max=180"`
	PreferredDays     []string `json:"preferred_days,omitempty" validate:"omitempty,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`

	Injuries           *string  `json:"injuries,omitempty"`
	EquipmentAvailable []string `json:"equipment_available,omitempty" validate:"omitempty,dive,oneof=none dumbbells bands gym"`
	WorkoutLocation    *string  `json:"workout_location,omitempty" validate:"omitempty,oneof=home gym both"`

	PrefersCardio    *bool `json:"prefers_cardio,omitempty"`
	PrefersStrength  *bool `json:"prefers_strength,omitempty"`
	InterestedInYoga *bool `json:"interested_in_yoga,omitempty"`

	HealthDisclaimerAccepted bool `json:"health_disclaimer_accepted"`
}

// UpdateProfileRequest is the body of PUT /users/profile. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	DisplayName       *string  `json:"display_name,omitempty" validate:"omitempty,max=100"`
	HeightCM          *int     `json:"height_cm,omitempty" validate:"omitempty,min=100,max=250"`
	WeightKG          *float64 `json:"weight_kg,omitempty" validate:"omitempty,min=30,max=300"`
	FitnessLevel      *string  `json:"fitness_level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	PrimaryGoal       *string  `json:"primary_goal,omitempty" validate:"omitempty,oneof=weight_loss muscle_gain flexibility endurance rehab_mobility general_fitness"`
	DaysPerWeek       *int     `json:"days_per_week,omitempty" validate:"omitempty,min=1,max=7"`
	MinutesPerSession *int     `json:"minutes_per_session,omitempty" validate:"omitempty,min=10,max=180"`
}

// Empty reports whether the update carries no changes.
func (r UpdateProfileRequest) Empty() bool {
	return r.DisplayName == nil && r.HeightCM == nil && r.WeightKG == nil &&
		r.FitnessLevel == nil && r.PrimaryGoal == nil && r.DaysPerWeek == nil &&
		r.MinutesPerSession == nil
}

// ApplyOnboarding copies questionnaire answers onto the profile and stamps
// the completion times.
func (p *Profile) ApplyOnboarding(req OnboardingRequest, now time.Time) {
	p.DisplayName = req.DisplayName
	p.AgeRange = req.AgeRange
	p.Gender = req.Gender
	p.HeightCM = req.HeightCM
	p.WeightKG = req.WeightKG
	p.FitnessLevel = req.FitnessLevel
	p.PrimaryGoal = req.PrimaryGoal
	p.SecondaryGoals = req.SecondaryGoals
	p.DaysPerWeek = req.DaysPerWeek
	p.MinutesPerSession = req.MinutesPerSession
	p.PreferredDays = req.PreferredDays
	p.Injuries = req.Injuries
	p.EquipmentAvailable = req.EquipmentAvailable
	p.WorkoutLocation = req.WorkoutLocation
	p.PrefersCardio = req.PrefersCardio
	p.PrefersStrength = req.PrefersStrength
	p.InterestedInYoga = req.InterestedInYoga
	p.HealthDisclaimerAcceptedAt = &now
	p.OnboardingCompletedAt = &now
	p.UpdatedAt = now
}

// ApplyUpdate sets only the non nil fields of req.
func (p *Profile) ApplyUpdate(req UpdateProfileRequest, now time.Time) {
	utils.SetPtr(&p.DisplayName, req.DisplayName)
	utils.SetPtr(&p.HeightCM, req.HeightCM)
	utils.SetPtr(&p.WeightKG, req.WeightKG)
	utils.SetPtr(&p.FitnessLevel, req.FitnessLevel)
	utils.SetPtr(&p.PrimaryGoal, req.PrimaryGoal)
	utils.SetPtr(&p.DaysPerWeek, req.DaysPerWeek)
	utils.SetPtr(&p.MinutesPerSession, req.MinutesPerSession)
	p.UpdatedAt = now
}
