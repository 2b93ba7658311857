package users_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/users"
	fakeuserrepo "github.com/jrsteele09/flow-client/users/repofake"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	now      time.Time
	profiles users.ProfileRepo
	service  *users.ProfileService
}

func setupProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := &profileFixture{
		now:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		profiles: fakeuserrepo.NewFakeProfileRepo(),
	}
	f.service = users.NewProfileService(f.profiles, users.WithNowTime(func() time.Time { return f.now }))
	return f
}

func answers() users.OnboardingRequest {
	return users.OnboardingRequest{
		DisplayName:              utils.Ptr("Sam"),
		FitnessLevel:             utils.Ptr("beginner"),
		PrimaryGoal:              utils.Ptr("weight_loss"),
		DaysPerWeek:              utils.Ptr(3),
		WorkoutLocation:          utils.Ptr(users.LocationHome),
		EquipmentAvailable:       []string{"dumbbells"},
		HealthDisclaimerAccepted: true,
	}
}

func TestProfileService_CompleteOnboarding(t *testing.T) {
	t.Run("stores answers once", func(t *testing.T) {
		f := setupProfileFixture(t)

		profile, err := f.service.CompleteOnboarding("u-1", answers())
		require.NoError(t, err)
		require.Equal(t, "u-1", profile.UserID)
		require.True(t, profile.OnboardingCompleted())
		require.Equal(t, f.now, *profile.HealthDisclaimerAcceptedAt)

		_, err = f.service.CompleteOnboarding("u-1", answers())
		require.ErrorIs(t, err, users.AlreadyOnboardedErr)
	})

	t.Run("disclaimer required", func(t *testing.T) {
		f := setupProfileFixture(t)
		req := answers()
		req.HealthDisclaimerAccepted = false

		_, err := f.service.CompleteOnboarding("u-1", req)
		require.ErrorIs(t, err, users.DisclaimerRequiredErr)
	})

	t.Run("invalid answers are field errors", func(t *testing.T) {
		f := setupProfileFixture(t)
		req := answers()
		req.DaysPerWeek = utils.Ptr(9)

		_, err := f.service.CompleteOnboarding("u-1", req)
		var fe validation.FieldErrors
		require.ErrorAs(t, err, &fe)
		require.Contains(t, fe, "days_per_week")
	})
}

func TestProfileService_GetAndUpdate(t *testing.T) {
	f := setupProfileFixture(t)

	_, err := f.service.Get("u-1")
	require.ErrorIs(t, err, users.ProfileNotFoundErr)
	_, err = f.service.Update("u-1", users.UpdateProfileRequest{DaysPerWeek: utils.Ptr(4)})
	require.ErrorIs(t, err, users.ProfileNotFoundErr)

	_, err = f.service.CompleteOnboarding("u-1", answers())
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	updated, err := f.service.Update("u-1", users.UpdateProfileRequest{DaysPerWeek: utils.Ptr(4)})
	require.NoError(t, err)
	require.Equal(t, 4, utils.Value(updated.DaysPerWeek))
	require.Equal(t, "Sam", utils.Value(updated.DisplayName))
	require.Equal(t, f.now, updated.UpdatedAt)

	got, err := f.service.Get("u-1")
	require.NoError(t, err)
	require.Equal(t, 4, utils.Value(got.DaysPerWeek))
}
