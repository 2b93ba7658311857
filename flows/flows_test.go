package flows_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/flows"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
	"github.com/stretchr/testify/require"
)

// fakeAuth records calls and answers with scripted results.
type fakeAuth struct {
	calls      map[string]int
	signup     session.SignupResult
	verify     session.LoginResult
	action     session.ActionResult
	reset      session.ActionResult
	onboarding session.ProfileResult
	submitted  users.OnboardingRequest
	consents   session.Consents
}

func (f *fakeAuth) Signup(_ context.Context, email, _ string, consents session.Consents) session.SignupResult {
	f.calls["signup"]++
	f.consents = consents
	if f.signup.Success && f.signup.Email == "" {
		return session.SignupResult{Success: true, Email: email}
	}
	return f.signup
}

func (f *fakeAuth) VerifyOTP(_ context.Context, _, _ string, _ bool) session.LoginResult {
	f.calls["verify"]++
	return f.verify
}

func (f *fakeAuth) ResendOTP(_ context.Context, _ string) session.ActionResult {
	f.calls["resend"]++
	return f.action
}

func (f *fakeAuth) ForgotPassword(_ context.Context, _ string) session.ActionResult {
	f.calls["forgot"]++
	return f.action
}

func (f *fakeAuth) ResetPassword(_ context.Context, _, _, _ string) session.ActionResult {
	f.calls["reset"]++
	return f.reset
}

func (f *fakeAuth) CompleteOnboarding(_ context.Context, req users.OnboardingRequest) session.ProfileResult {
	f.calls["onboarding"]++
	f.submitted = req
	return f.onboarding
}

type testFixture struct {
	auth *fakeAuth
	ctx  context.Context
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	return &testFixture{
		auth: &fakeAuth{
			calls:      make(map[string]int),
			signup:     session.SignupResult{Success: true},
			verify:     session.LoginResult{Success: true, RequiresOnboarding: true},
			action:     session.ActionResult{Success: true, Message: "sent"},
			reset:      session.ActionResult{Success: true, Message: "reset"},
			onboarding: session.ProfileResult{Success: true, Profile: &users.Profile{ID: "p-1"}},
		},
		ctx: context.Background(),
	}
}

func validSignup() flows.SignupForm {
	return flows.SignupForm{
		Email:                 "sam@example.com",
		Password:              "Str0ngPassword",
		ConfirmPassword:       "Str0ngPassword",
		PrivacyConsent:        true,
		DataProcessingConsent: true,
	}
}

func TestSignupFlow(t *testing.T) {
	t.Run("invalid form never reaches the store", func(t *testing.T) {
		f := setupTestFixture(t)
		form := validSignup()
		form.Email = "not-an-email"
		form.ConfirmPassword = "different"
		form.DataProcessingConsent = false

		out := flows.NewSignupFlow(f.auth).Submit(f.ctx, form)
		require.False(t, out.OK())
		require.Equal(t, "must be a valid email address", out.FieldErrors["email"])
		require.Equal(t, "does not match", out.FieldErrors["confirm_password"])
		require.Equal(t, "must be accepted", out.FieldErrors["data_processing_consent"])
		require.Equal(t, 0, f.auth.calls["signup"])
	})

	t.Run("weak password", func(t *testing.T) {
		f := setupTestFixture(t)
		form := validSignup()
		form.Password, form.ConfirmPassword = "alllowercase", "alllowercase"
		out := flows.NewSignupFlow(f.auth).Submit(f.ctx, form)
		require.Contains(t, out.FieldErrors, "password")
		require.Equal(t, 0, f.auth.calls["signup"])
	})

	t.Run("pending registration", func(t *testing.T) {
		f := setupTestFixture(t)
		form := validSignup()
		form.MarketingConsent = true
		form.RememberMe = true
		out := flows.NewSignupFlow(f.auth).Submit(f.ctx, form)
		require.True(t, out.OK())
		require.Equal(t, "sam@example.com", out.Pending.Email)
		require.True(t, out.Pending.RememberMe)
		require.Equal(t, session.Consents{Privacy: true, DataProcessing: true, Marketing: true}, f.auth.consents)
	})

	t.Run("backend rejection", func(t *testing.T) {
		f := setupTestFixture(t)
		f.auth.signup = session.SignupResult{Error: &apiclient.APIError{Status: 400, Message: "Email already registered", Code: authmodel.CodeEmailExists}}
		out := flows.NewSignupFlow(f.auth).Submit(f.ctx, validSignup())
		require.False(t, out.OK())
		require.Equal(t, authmodel.CodeEmailExists, out.Error.Code)
	})
}

func TestOTPFlow(t *testing.T) {
	pending := flows.PendingRegistration{Email: "sam@example.com"}

	t.Run("malformed code", func(t *testing.T) {
		f := setupTestFixture(t)
		flow := flows.NewOTPFlow(f.auth, pending)
		for _, code := range []string{"", "12345", "12345a", "1234567"} {
			out := flow.Verify(f.ctx, code)
			require.Contains(t, out.FieldErrors, "code", code)
		}
		require.Equal(t, 0, f.auth.calls["verify"])
	})

	t.Run("rejected code stays on entry", func(t *testing.T) {
		for _, code := range []string{authmodel.CodeInvalidOTP, authmodel.CodeOTPExpired} {
			f := setupTestFixture(t)
			f.auth.verify = session.LoginResult{Error: &apiclient.APIError{Status: 400, Message: "nope", Code: code}}
			flow := flows.NewOTPFlow(f.auth, pending)
			out := flow.Verify(f.ctx, "123456")
			require.Equal(t, flows.OTPStepEnterCode, out.Step)
			require.True(t, out.CodeRejected)
			require.Equal(t, flows.OTPStepEnterCode, flow.Step())
		}
	})

	t.Run("network failure is not a code problem", func(t *testing.T) {
		f := setupTestFixture(t)
		f.auth.verify = session.LoginResult{Error: &apiclient.APIError{Message: apiclient.NetworkErrorMessage, Code: authmodel.CodeNetworkError}}
		out := flows.NewOTPFlow(f.auth, pending).Verify(f.ctx, "123456")
		require.False(t, out.CodeRejected)
		require.Equal(t, flows.OTPStepEnterCode, out.Step)
	})

	t.Run("verified", func(t *testing.T) {
		f := setupTestFixture(t)
		flow := flows.NewOTPFlow(f.auth, pending)
		out := flow.Verify(f.ctx, "123456")
		require.Equal(t, flows.OTPStepVerified, out.Step)
		require.True(t, out.RequiresOnboarding)

		flow.Verify(f.ctx, "123456")
		require.Equal(t, 1, f.auth.calls["verify"])
	})

	t.Run("resend", func(t *testing.T) {
		f := setupTestFixture(t)
		require.True(t, flows.NewOTPFlow(f.auth, pending).Resend(f.ctx).Success)
		require.Equal(t, 1, f.auth.calls["resend"])
	})
}

func TestPasswordResetFlow(t *testing.T) {
	t.Run("reset before request", func(t *testing.T) {
		f := setupTestFixture(t)
		out := flows.NewPasswordResetFlow(f.auth).Reset(f.ctx, "123456", "N3wPassword!", "N3wPassword!")
		require.NotNil(t, out.Error)
		require.Equal(t, 0, f.auth.calls["reset"])
	})

	t.Run("happy path", func(t *testing.T) {
		f := setupTestFixture(t)
		flow := flows.NewPasswordResetFlow(f.auth)
		out := flow.Request(f.ctx, "Sam@Example.com")
		require.Equal(t, flows.ResetStepReset, out.Step)
		require.Equal(t, "sam@example.com", flow.Email())

		out = flow.Reset(f.ctx, "123456", "N3wPassword!", "N3wPassword!")
		require.Nil(t, out.Error)
		require.Equal(t, flows.ResetStepDone, out.Step)
	})

	t.Run("local validation", func(t *testing.T) {
		f := setupTestFixture(t)
		flow := flows.NewPasswordResetFlow(f.auth)
		flow.Request(f.ctx, "sam@example.com")
		out := flow.Reset(f.ctx, "12ab56", "weakpassword", "other")
		require.Contains(t, out.FieldErrors, "code")
		require.Contains(t, out.FieldErrors, "new_password")
		require.Contains(t, out.FieldErrors, "confirm_password")
		require.Equal(t, 0, f.auth.calls["reset"])
	})

	t.Run("expired code keeps step", func(t *testing.T) {
		f := setupTestFixture(t)
		f.auth.reset = session.ActionResult{Error: &apiclient.APIError{Status: 400, Message: "expired", Code: authmodel.CodeOTPExpired}}
		flow := flows.NewPasswordResetFlow(f.auth)
		flow.Request(f.ctx, "sam@example.com")
		out := flow.Reset(f.ctx, "123456", "N3wPassword!", "N3wPassword!")
		require.True(t, out.CodeRejected)
		require.Equal(t, flows.ResetStepReset, flow.Step())

		flow.Back()
		require.Equal(t, flows.ResetStepRequest, flow.Step())
	})
}

func fillBasics(r *users.OnboardingRequest) {
	r.AgeRange = utils.Ptr("30-45")
	r.FitnessLevel = utils.Ptr("beginner")
}

func TestOnboardingWizard(t *testing.T) {
	t.Run("walks every step for home users", func(t *testing.T) {
		f := setupTestFixture(t)
		w := flows.NewOnboardingWizard(f.auth)
		require.Equal(t, flows.StepBasics, w.Step())
		require.False(t, w.Back())

		require.Contains(t, w.Next(), "fitness_level")
		w.Update(fillBasics)
		require.Empty(t, w.Next())
		require.Equal(t, flows.StepGoals, w.Step())

		w.Update(func(r *users.OnboardingRequest) { r.PrimaryGoal = utils.Ptr("weight_loss") })
		require.Empty(t, w.Next())

		w.Update(func(r *users.OnboardingRequest) {
			r.DaysPerWeek = utils.Ptr(2)
			r.PreferredDays = []string{"monday", "wednesday", "friday"}
		})
		require.Contains(t, w.Next(), "preferred_days")
		w.Update(func(r *users.OnboardingRequest) { r.PreferredDays = []string{"monday", "thursday"} })
		require.Empty(t, w.Next())

		w.Update(func(r *users.OnboardingRequest) { r.WorkoutLocation = utils.Ptr(users.LocationHome) })
		require.Empty(t, w.Next())
		require.Equal(t, flows.StepEquipment, w.Step())

		w.Update(func(r *users.OnboardingRequest) { r.EquipmentAvailable = []string{"dumbbells", "kettlebell"} })
		require.Contains(t, w.Next(), "equipment_available[1]")
		w.Update(func(r *users.OnboardingRequest) { r.EquipmentAvailable = []string{"dumbbells"} })
		require.Empty(t, w.Next())
		require.Equal(t, flows.StepPreferences, w.Step())
		require.Empty(t, w.Next())
		require.Equal(t, flows.StepDisclaimer, w.Step())

		res := w.Submit(f.ctx)
		require.False(t, res.Success)
		require.Contains(t, res.FieldErrors, "health_disclaimer_accepted")
		require.Equal(t, 0, f.auth.calls["onboarding"])

		w.Update(func(r *users.OnboardingRequest) { r.HealthDisclaimerAccepted = true })
		res = w.Submit(f.ctx)
		require.True(t, res.Success)
		require.True(t, w.Done())
		require.Equal(t, []string{"dumbbells"}, f.auth.submitted.EquipmentAvailable)
	})

	t.Run("gym users skip equipment", func(t *testing.T) {
		f := setupTestFixture(t)
		w := flows.NewOnboardingWizard(f.auth)
		w.Update(func(r *users.OnboardingRequest) {
			fillBasics(r)
			r.PrimaryGoal = utils.Ptr("muscle_gain")
			r.DaysPerWeek = utils.Ptr(4)
			r.WorkoutLocation = utils.Ptr(users.LocationGym)
		})
		for i := 0; i < 4; i++ {
			require.Empty(t, w.Next())
		}
		require.Equal(t, flows.StepPreferences, w.Step())
		require.Equal(t, []string{"gym"}, w.Answers().EquipmentAvailable)

		require.True(t, w.Back())
		require.Equal(t, flows.StepLocation, w.Step())
	})

	t.Run("submit only from the last step", func(t *testing.T) {
		f := setupTestFixture(t)
		w := flows.NewOnboardingWizard(f.auth)
		res := w.Submit(f.ctx)
		require.False(t, res.Success)
		require.Equal(t, 0, f.auth.calls["onboarding"])
	})

	t.Run("backend failure leaves wizard open", func(t *testing.T) {
		f := setupTestFixture(t)
		f.auth.onboarding = session.ProfileResult{Error: &apiclient.APIError{Status: 400, Message: "Onboarding already completed"}}
		w := flows.NewOnboardingWizard(f.auth)
		w.Update(func(r *users.OnboardingRequest) {
			fillBasics(r)
			r.PrimaryGoal = utils.Ptr("flexibility")
			r.DaysPerWeek = utils.Ptr(3)
			r.WorkoutLocation = utils.Ptr(users.LocationBoth)
			r.EquipmentAvailable = []string{"none"}
			r.HealthDisclaimerAccepted = true
		})
		for w.Step() != flows.StepDisclaimer {
			require.Empty(t, w.Next())
		}
		res := w.Submit(f.ctx)
		require.False(t, res.Success)
		require.False(t, w.Done())
	})
}
