package users

import "time"

// ConsentStatus reports the consents recorded for an account.
type ConsentStatus struct {
	PrivacyConsentAt      *time.Time `json:"privacy_consent_at"`
	DataProcessingConsent bool       `json:"data_processing_consent"`
	MarketingConsent      bool       `json:"marketing_consent"`
}

// ConsentUpdateRequest changes the non nil consents.
type ConsentUpdateRequest struct {
	MarketingConsent      *bool `json:"marketing_consent,omitempty"`
	DataProcessingConsent *bool `json:"data_processing_consent,omitempty"`
}

func (u *User) Consent() ConsentStatus {
	return ConsentStatus{
		PrivacyConsentAt:      u.PrivacyConsentAt,
		DataProcessingConsent: u.DataProcessingConsent,
		MarketingConsent:      u.MarketingConsent,
	}
}

type DeleteAccountRequest struct {
	Confirm bool `json:"confirm"`
}

type DeleteAccountResponse struct {
	Message   string    `json:"message"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ExportedUser is the account section of a data export. Unlike User it
// includes the data processing consent.
type ExportedUser struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Role                  RoleType   `json:"role"`
	IsActive              bool       `json:"is_active"`
	IsVerified            bool       `json:"is_verified"`
	PrivacyConsentAt      *time.Time `json:"privacy_consent_at"`
	MarketingConsent      bool       `json:"marketing_consent"`
	DataProcessingConsent bool       `json:"data_processing_consent"`
	CreatedAt             time.Time  `json:"created_at"`
}

func (u *User) Export() ExportedUser {
	return ExportedUser{
		ID:                    u.ID,
		Email:                 u.Email,
		Role:                  u.Role,
		IsActive:              u.IsActive,
		IsVerified:            u.IsVerified,
		PrivacyConsentAt:      u.PrivacyConsentAt,
		MarketingConsent:      u.MarketingConsent,
		DataProcessingConsent: u.DataProcessingConsent,
		CreatedAt:             u.CreatedAt,
	}
}

type ExportedEnrollment struct {
	ID                     string     `json:"id"`
	ProgramID              string     `json:"program_id"`
	CurrentDay             int        `json:"current_day"`
	StartedAt              time.Time  `json:"started_at"`
	CompletedAt            *time.Time `json:"completed_at"`
	IsActive               bool       `json:"is_active"`
	TotalWorkoutsCompleted int        `json:"total_workouts_completed"`
	TotalMinutesCompleted  int        `json:"total_minutes_completed"`
	StreakDays             int        `json:"streak_days"`
	LastWorkoutAt          *time.Time `json:"last_workout_at"`
}

type ExportedCompletion struct {
	ID              string    `json:"id"`
	EnrollmentID    string    `json:"enrollment_id"`
	WorkoutID       string    `json:"workout_id"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Rating          *int      `json:"rating"`
	DifficultyFelt  *string   `json:"difficulty_felt"`
	Notes           *string   `json:"notes"`
}

// DataExport is everything stored about one account.
type DataExport struct {
	User               ExportedUser         `json:"user"`
	Profile            *Profile             `json:"profile"`
	Enrollments        []ExportedEnrollment `json:"enrollments"`
	WorkoutCompletions []ExportedCompletion `json:"workout_completions"`
	ExportedAt         time.Time            `json:"exported_at"`
}

// Anonymise drops the personal answers from a profile, keeping the training
// preferences.
func (p *Profile) Anonymise(now time.Time) {
	p.DisplayName = nil
	p.AgeRange = nil
	p.Gender = nil
	p.HeightCM = nil
	p.WeightKG = nil
	p.Injuries = nil
	p.UpdatedAt = now
}
