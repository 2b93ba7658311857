package users

import (
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	AlreadyOnboardedErr   = apperrors.NewCoded(http.StatusBadRequest, "", "Onboarding already completed. Use PUT /users/profile to update.")
	DisclaimerRequiredErr = apperrors.NewCoded(http.StatusBadRequest, "", "Health disclaimer must be accepted.")
	ProfileNotFoundErr    = apperrors.NewCoded(http.StatusNotFound, "", "Profile not found. Complete onboarding first.")
)

// ProfileService stores the onboarding questionnaire and profile edits.
type ProfileService struct {
	profiles ProfileRepo
	nowTime  func() time.Time
}

type ProfileServiceOption func(*ProfileService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ProfileServiceOption {
	return func(s *ProfileService) {
		s.nowTime = nowFunc
	}
}

func NewProfileService(profiles ProfileRepo, options ...ProfileServiceOption) *ProfileService {
	s := &ProfileService{profiles: profiles, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// CompleteOnboarding stores the questionnaire once. Later edits go through
// Update.
func (s *ProfileService) CompleteOnboarding(userID string, req OnboardingRequest) (*Profile, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	if !req.HealthDisclaimerAccepted {
		return nil, DisclaimerRequiredErr
	}

	now := s.nowTime()
	profile, err := s.profiles.GetByUserID(userID)
	switch {
	case err == nil && profile.OnboardingCompleted():
		return nil, AlreadyOnboardedErr
	case apperrors.Is(err, apperrors.ErrNotFound):
		profile = &Profile{UserID: userID, CreatedAt: now}
	case err != nil:
		return nil, errors.Wrap(err, "[ProfileService.CompleteOnboarding] GetByUserID")
	}

	profile.ApplyOnboarding(req, now)
	if err := s.profiles.Upsert(profile); err != nil {
		return nil, errors.Wrap(err, "[ProfileService.CompleteOnboarding] Upsert")
	}
	log.Info().Str("user_id", userID).Msg("onboarding completed")
	return profile, nil
}

func (s *ProfileService) Get(userID string) (*Profile, error) {
	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ProfileNotFoundErr
		}
		return nil, errors.Wrap(err, "[ProfileService.Get] GetByUserID")
	}
	return profile, nil
}

// Update applies the non nil fields of req.
func (s *ProfileService) Update(userID string, req UpdateProfileRequest) (*Profile, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	profile.ApplyUpdate(req, s.nowTime())
	if err := s.profiles.Upsert(profile); err != nil {
		return nil, errors.Wrap(err, "[ProfileService.Update] Upsert")
	}
	return profile, nil
}
