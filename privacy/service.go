// Package privacy implements the data subject requests: consent changes,
// data export and account erasure.
package privacy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/flow-client/auth"
	"github.com/jrsteele09/flow-client/authmodel"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/programs"
	"github.com/jrsteele09/flow-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	deletedEmailDomain = "deleted.local"
	deletedMessage     = "Account deleted successfully. Your data has been anonymized."
)

var (
	ConsentWithdrawalErr = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeConsentWithdrawal,
		"Withdrawing data processing consent requires account deletion. Use DELETE /privacy/account.")
	ConfirmationRequiredErr = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeConfirmationRequired,
		"Set confirm=true to proceed with account deletion")
)

// Revoker signs a user out of every session.
type Revoker interface {
	RevokeAll(userID string) error
}

type Repos struct {
	Users    users.UserRepo
	Profiles users.ProfileRepo
	OTPs     auth.OTPRepo
	Programs programs.Repo
}

type Service struct {
	repos   Repos
	tokens  Revoker
	nowTime func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(repos Repos, tokens Revoker, options ...ServiceOption) *Service {
	s := &Service{repos: repos, tokens: tokens, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) user(userID string) (*users.User, error) {
	user, err := s.repos.Users.GetByID(userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "[privacy.Service] GetByID")
	}
	return user, nil
}

func (s *Service) Consent(userID string) (users.ConsentStatus, error) {
	user, err := s.user(userID)
	if err != nil {
		return users.ConsentStatus{}, err
	}
	return user.Consent(), nil
}

// UpdateConsent applies the consents present in req. Data processing consent
// can only be withdrawn by deleting the account.
func (s *Service) UpdateConsent(userID string, req users.ConsentUpdateRequest) (users.ConsentStatus, error) {
	if req.DataProcessingConsent != nil && !*req.DataProcessingConsent {
		return users.ConsentStatus{}, ConsentWithdrawalErr
	}
	user, err := s.user(userID)
	if err != nil {
		return users.ConsentStatus{}, err
	}
	if req.MarketingConsent != nil {
		user.MarketingConsent = *req.MarketingConsent
	}
	if req.DataProcessingConsent != nil {
		user.DataProcessingConsent = true
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return users.ConsentStatus{}, errors.Wrap(err, "[privacy.Service.UpdateConsent] Upsert")
	}
	log.Info().Str("user_id", userID).Bool("marketing", user.MarketingConsent).Msg("consent updated")
	return user.Consent(), nil
}

// Export collects everything stored about userID.
func (s *Service) Export(userID string) (*users.DataExport, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	export := &users.DataExport{
		User:               user.Export(),
		Enrollments:        []users.ExportedEnrollment{},
		WorkoutCompletions: []users.ExportedCompletion{},
		ExportedAt:         s.nowTime(),
	}

	profile, err := s.repos.Profiles.GetByUserID(userID)
	switch {
	case err == nil:
		export.Profile = profile
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "[privacy.Service.Export] GetByUserID")
	}

	enrollments, err := s.repos.Programs.ListEnrollments(userID)
	if err != nil {
		return nil, errors.Wrap(err, "[privacy.Service.Export] ListEnrollments")
	}
	for _, e := range enrollments {
		export.Enrollments = append(export.Enrollments, users.ExportedEnrollment{
			ID:                     e.ID,
			ProgramID:              e.ProgramID,
			CurrentDay:             e.CurrentDay,
			StartedAt:              e.StartedAt,
			CompletedAt:            e.CompletedAt,
			IsActive:               e.IsActive,
			TotalWorkoutsCompleted: e.TotalWorkoutsCompleted,
			TotalMinutesCompleted:  e.TotalMinutesCompleted,
			StreakDays:             e.StreakDays,
			LastWorkoutAt:          e.LastWorkoutAt,
		})
		completions, err := s.repos.Programs.ListCompletions(e.ID)
		if err != nil {
			return nil, errors.Wrap(err, "[privacy.Service.Export] ListCompletions")
		}
		for _, c := range completions {
			export.WorkoutCompletions = append(export.WorkoutCompletions, users.ExportedCompletion{
				ID:              c.ID,
				EnrollmentID:    c.EnrollmentID,
				WorkoutID:       c.WorkoutID,
				CompletedAt:     c.CompletedAt,
				DurationMinutes: c.DurationMinutes,
				Rating:          c.Rating,
				DifficultyFelt:  c.DifficultyFelt,
				Notes:           c.Notes,
			})
		}
	}
	log.Info().Str("user_id", userID).Msg("data exported")
	return export, nil
}

// DeleteAccount erases userID. The row is kept, anonymised and deactivated,
// so training history stays consistent, but nothing in it identifies the
// person and every session is revoked.
func (s *Service) DeleteAccount(userID string, req users.DeleteAccountRequest) (*users.DeleteAccountResponse, error) {
	if !req.Confirm {
		return nil, ConfirmationRequiredErr
	}
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RevokeAll(userID); err != nil {
		return nil, errors.Wrap(err, "[privacy.Service.DeleteAccount] RevokeAll")
	}

	now := s.nowTime()
	user.Email = fmt.Sprintf("deleted_%s@%s", user.ID, deletedEmailDomain)
	user.PasswordHash = ""
	user.IsActive = false
	user.MarketingConsent = false
	user.DeletedAt = &now
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[privacy.Service.DeleteAccount] Upsert user")
	}

	profile, err := s.repos.Profiles.GetByUserID(userID)
	switch {
	case err == nil:
		profile.Anonymise(now)
		if err := s.repos.Profiles.Upsert(profile); err != nil {
			return nil, errors.Wrap(err, "[privacy.Service.DeleteAccount] Upsert profile")
		}
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "[privacy.Service.DeleteAccount] GetByUserID")
	}

	if err := s.repos.OTPs.DeleteByUserID(userID); err != nil {
		return nil, errors.Wrap(err, "[privacy.Service.DeleteAccount] DeleteByUserID")
	}
	log.Info().Str("user_id", userID).Msg("account deleted")
	return &users.DeleteAccountResponse{Message: deletedMessage, DeletedAt: now}, nil
}
