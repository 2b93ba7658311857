package flows

import (
	"context"
	"strings"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
)

type Step int

const (
	StepBasics Step = iota
	StepGoals
	StepAvailability
	StepLocation
	StepEquipment
	StepPreferences
	StepDisclaimer
)

func (s Step) String() string {
	switch s {
	case StepBasics:
		return "basics"
	case StepGoals:
		return "goals"
	case StepAvailability:
		return "availability"
	case StepLocation:
		return "location"
	case StepEquipment:
		return "equipment"
	case StepPreferences:
		return "preferences"
	case StepDisclaimer:
		return "disclaimer"
	}
	return "unknown"
}

// stepFields lists the JSON fields each step owns.
var stepFields = map[Step][]string{
	StepBasics:       {"display_name", "age_range", "gender", "height_cm", "weight_kg", "fitness_level"},
	StepGoals:        {"primary_goal", "secondary_goals"},
	StepAvailability: {"days_per_week", "minutes_per_session", "preferred_days"},
	StepLocation:     {"workout_location", "injuries"},
	StepEquipment:    {"equipment_available"},
	StepPreferences:  {"prefers_cardio", "prefers_strength", "interested_in_yoga"},
	StepDisclaimer:   {"health_disclaimer_accepted"},
}

// OnboardingWizard collects the questionnaire one step at a time.
type OnboardingWizard struct {
	auth    Onboarder
	answers users.OnboardingRequest
	step    Step
	history []Step
	done    bool
}

func NewOnboardingWizard(auth Onboarder) *OnboardingWizard {
	return &OnboardingWizard{auth: auth, step: StepBasics}
}

func (w *OnboardingWizard) Step() Step { return w.step }

func (w *OnboardingWizard) Done() bool { return w.done }

// Answers returns the answers collected so far.
func (w *OnboardingWizard) Answers() users.OnboardingRequest { return w.answers }

// Update edits the answers in place.
func (w *OnboardingWizard) Update(edit func(*users.OnboardingRequest)) {
	edit(&w.answers)
}

// Next validates the current step and moves forward. The equipment step is
// skipped for gym only users, who are assumed to have gym equipment.
func (w *OnboardingWizard) Next() validation.FieldErrors {
	if fe := w.validateStep(w.step); len(fe) > 0 {
		return fe
	}
	if w.step == StepDisclaimer {
		return nil
	}
	next := w.step + 1
	if next == StepEquipment && w.gymOnly() {
		w.answers.EquipmentAvailable = []string{"gym"}
		next++
	}
	w.history = append(w.history, w.step)
	w.step = next
	return nil
}

// Back returns to the previous step. It reports false on the first step.
func (w *OnboardingWizard) Back() bool {
	if len(w.history) == 0 {
		return false
	}
	w.step = w.history[len(w.history)-1]
	w.history = w.history[:len(w.history)-1]
	return true
}

// Submit sends the questionnaire. It is only allowed from the disclaimer
// step and validates every step again first.
func (w *OnboardingWizard) Submit(ctx context.Context) session.ProfileResult {
	if w.step != StepDisclaimer {
		return session.ProfileResult{Error: &apiclient.APIError{Message: "Finish the remaining steps first."}}
	}
	fe := validation.FieldErrors{}
	for step := StepBasics; step <= StepDisclaimer; step++ {
		if step == StepEquipment && w.gymOnly() {
			continue
		}
		fe.Merge(w.validateStep(step))
	}
	if len(fe) > 0 {
		return session.ProfileResult{FieldErrors: fe, Error: invalidForm()}
	}
	res := w.auth.CompleteOnboarding(ctx, w.answers)
	if res.Success {
		w.done = true
	}
	return res
}

func (w *OnboardingWizard) gymOnly() bool {
	return w.answers.WorkoutLocation != nil && *w.answers.WorkoutLocation == users.LocationGym
}

// validateStep runs the tag validation for the whole request and keeps the
// failures belonging to step, plus the answers the step insists on.
func (w *OnboardingWizard) validateStep(step Step) validation.FieldErrors {
	fe := validation.FieldErrors{}
	all := validation.Struct(w.answers)
	for field, msg := range all {
		if ownsField(step, field) {
			fe.Add(field, msg)
		}
	}

	a := w.answers
	switch step {
	case StepBasics:
		if a.FitnessLevel == nil {
			fe.Add("fitness_level", "is required")
		}
	case StepGoals:
		if a.PrimaryGoal == nil {
			fe.Add("primary_goal", "is required")
		}
	case StepAvailability:
		if a.DaysPerWeek == nil {
			fe.Add("days_per_week", "is required")
		}
		if a.DaysPerWeek != nil && len(a.PreferredDays) > *a.DaysPerWeek {
			fe.Add("preferred_days", "must not list more days than days_per_week")
		}
	case StepLocation:
		if a.WorkoutLocation == nil {
			fe.Add("workout_location", "is required")
		}
	case StepEquipment:
		if len(a.EquipmentAvailable) == 0 {
			fe.Add("equipment_available", "is required")
		}
	case StepDisclaimer:
		if !a.HealthDisclaimerAccepted {
			fe.Add("health_disclaimer_accepted", "must be accepted")
		}
	}
	return fe
}

func ownsField(step Step, field string) bool {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	for _, f := range stepFields[step] {
		if f == field {
			return true
		}
	}
	return false
}
