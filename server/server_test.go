package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/mail/mailfake"
	"github.com/jrsteele09/flow-client/server"
	"github.com/jrsteele09/flow-client/users"
	"github.com/stretchr/testify/require"
)

const (
	password      = "Sup3rSecret"
	adminEmail    = "admin@flow.local"
	adminPassword = "Adm1nPassword"
)

type testConfig struct {
	config.EnvVars
	config.Client
	config.Session
	config.Tokens
	config.OTP
	config.Cors
	config.Mail
}

func (testConfig) GetAdminEmail() string    { return adminEmail }
func (testConfig) GetAdminPassword() string { return adminPassword }

type clock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

type testFixture struct {
	clock  *clock
	repos  server.Repos
	mailer *mailfake.MemorySender
	srv    *server.Server
	ts     *httptest.Server
	api    *apiclient.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		clock:  &clock{now: time.Now().UTC().Truncate(time.Second)},
		repos:  server.NewInMemoryRepos(),
		mailer: mailfake.NewMemorySender(),
	}
	srv, err := server.New(testConfig{}, f.repos, server.WithNowTime(f.clock.Now), server.WithMailer(f.mailer))
	require.NoError(t, err)
	f.srv = srv
	f.ts = httptest.NewServer(srv)
	t.Cleanup(f.ts.Close)
	f.api = apiclient.New(f.ts.URL + server.APIPrefix)
	return f
}

// signup registers email and returns the verification code it was sent.
func (f *testFixture) signup(t *testing.T, email string) string {
	t.Helper()
	resp := f.api.Signup(context.Background(), authmodel.SignupRequest{
		Email:                 email,
		Password:              password,
		PrivacyConsent:        true,
		DataProcessingConsent: true,
	})
	require.True(t, resp.OK(), "signup failed: %v", resp.Error)
	code, ok := f.mailer.LastCode(users.NormaliseEmail(email), authmodel.PurposeSignup)
	require.True(t, ok)
	return code
}

// member creates a verified account and returns its credential pair.
func (f *testFixture) member(t *testing.T, email string) authmodel.TokenResponse {
	t.Helper()
	code := f.signup(t, email)
	resp := f.api.VerifyOTP(context.Background(), authmodel.VerifyOTPRequest{Email: email, Code: code})
	require.True(t, resp.OK(), "verify failed: %v", resp.Error)
	return resp.Data
}

// onboard completes the questionnaire for a beginner aiming at weight loss.
func (f *testFixture) onboard(t *testing.T, accessToken string) {
	t.Helper()
	resp := f.api.CompleteOnboarding(context.Background(), users.OnboardingRequest{
		DisplayName:              utils.Ptr("Sam"),
		FitnessLevel:             utils.Ptr("beginner"),
		PrimaryGoal:              utils.Ptr("weight_loss"),
		HealthDisclaimerAccepted: true,
	}, apiclient.WithToken(accessToken))
	require.True(t, resp.OK(), "onboarding failed: %v", resp.Error)
}

// raw sends a request without the client library so the exact wire shape
// can be checked.
func (f *testFixture) raw(t *testing.T, method, path, body, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.ts.URL+server.APIPrefix+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	resp, body := f.raw(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", body["status"])
}

func TestSignupAndVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("signup returns 201 and mails a code", func(t *testing.T) {
		f := setupTestFixture(t)
		resp := f.api.Signup(ctx, authmodel.SignupRequest{
			Email: "Sam@Example.com", Password: password, PrivacyConsent: true, DataProcessingConsent: true,
		})
		require.True(t, resp.OK())
		require.Equal(t, http.StatusCreated, resp.Status)
		require.Equal(t, "sam@example.com", resp.Data.Email)
		require.NotEmpty(t, resp.Data.UserID)

		_, ok := f.mailer.LastCode("sam@example.com", authmodel.PurposeSignup)
		require.True(t, ok)
	})

	t.Run("consent required", func(t *testing.T) {
		f := setupTestFixture(t)
		resp := f.api.Signup(ctx, authmodel.SignupRequest{Email: "sam@example.com", Password: password, PrivacyConsent: true})
		require.False(t, resp.OK())
		require.Equal(t, http.StatusBadRequest, resp.Error.Status)
		require.Equal(t, authmodel.CodeConsentRequired, resp.Error.Code)
	})

	t.Run("invalid fields return 422", func(t *testing.T) {
		f := setupTestFixture(t)
		resp := f.api.Signup(ctx, authmodel.SignupRequest{Email: "not-an-email", Password: "short"})
		require.False(t, resp.OK())
		require.Equal(t, http.StatusUnprocessableEntity, resp.Error.Status)
		require.Equal(t, authmodel.CodeValidation, resp.Error.Code)
		require.Contains(t, resp.Error.Message, "email")
		require.Contains(t, resp.Error.Message, "password")
	})

	t.Run("verified duplicate rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		f.member(t, "sam@example.com")

		resp := f.api.Signup(ctx, authmodel.SignupRequest{
			Email: "sam@example.com", Password: password, PrivacyConsent: true, DataProcessingConsent: true,
		})
		require.False(t, resp.OK())
		require.Equal(t, authmodel.CodeEmailExists, resp.Error.Code)
	})

	t.Run("wrong code keeps the user unverified", func(t *testing.T) {
		f := setupTestFixture(t)
		code := f.signup(t, "sam@example.com")
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}

		resp := f.api.VerifyOTP(ctx, authmodel.VerifyOTPRequest{Email: "sam@example.com", Code: wrong})
		require.False(t, resp.OK())
		require.Equal(t, authmodel.CodeInvalidOTP, resp.Error.Code)

		signin := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: password})
		require.Equal(t, http.StatusForbidden, signin.Error.Status)
		require.Equal(t, authmodel.CodeEmailNotVerified, signin.Error.Code)
	})

	t.Run("verified code yields working tokens", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		require.Equal(t, "bearer", tokens.TokenType)
		require.Equal(t, 900, tokens.ExpiresIn)

		me := f.api.Me(ctx, apiclient.WithToken(tokens.AccessToken))
		require.True(t, me.OK())
		require.Equal(t, "sam@example.com", me.Data.Email)
		require.True(t, me.Data.IsVerified)

		status := f.api.Status(ctx, apiclient.WithToken(tokens.AccessToken))
		require.True(t, status.OK())
		require.False(t, status.Data.HasProfile)
		require.False(t, status.Data.OnboardingCompleted)
	})
}

func TestErrorShapes(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("malformed body", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodPost, "/auth/signin", "{not json", "")
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		detail, ok := body["detail"].([]any)
		require.True(t, ok)
		require.Len(t, detail, 1)
	})

	t.Run("coded rejection", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodPost, "/auth/signin", `{"email":"nobody@example.com","password":"whatever"}`, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		detail, ok := body["detail"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, authmodel.CodeInvalidCredentials, detail["code"])
		require.NotEmpty(t, detail["message"])
	})

	t.Run("missing bearer", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodGet, "/auth/me", "", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		require.Equal(t, "Not authenticated", body["detail"])
	})

	t.Run("invalid bearer", func(t *testing.T) {
		resp, body := f.raw(t, http.MethodGet, "/auth/status", "", "not-a-jwt")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Could not validate credentials", body["detail"])
	})

	t.Run("plain string detail", func(t *testing.T) {
		tokens := f.member(t, "shapes@example.com")
		resp, body := f.raw(t, http.MethodGet, "/users/profile", "", tokens.AccessToken)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, users.ProfileNotFoundErr.Message, body["detail"])
	})
}

func TestCORS(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+server.RouteAuthSignin, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("refresh rotates", func(t *testing.T) {
		f := setupTestFixture(t)
		first := f.member(t, "sam@example.com")

		second := f.api.Refresh(ctx, first.RefreshToken)
		require.True(t, second.OK())
		require.NotEqual(t, first.RefreshToken, second.Data.RefreshToken)

		reused := f.api.Refresh(ctx, first.RefreshToken)
		require.False(t, reused.OK())
		require.Equal(t, http.StatusUnauthorized, reused.Error.Status)
		require.Equal(t, authmodel.CodeInvalidRefreshToken, reused.Error.Code)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		out := f.api.Logout(ctx, tokens.RefreshToken)
		require.True(t, out.OK())
		require.NotEmpty(t, out.Data.Message)

		again := f.api.Refresh(ctx, tokens.RefreshToken)
		require.Equal(t, authmodel.CodeInvalidRefreshToken, again.Error.Code)
	})

	t.Run("logout with bearer revokes the access token", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp, _ := f.raw(t, http.MethodPost, "/auth/logout", `{"refresh_token":"`+tokens.RefreshToken+`"}`, tokens.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		me := f.api.Me(ctx, apiclient.WithToken(tokens.AccessToken))
		require.Equal(t, http.StatusUnauthorized, me.Error.Status)
	})

	t.Run("logout with unknown token still succeeds", func(t *testing.T) {
		f := setupTestFixture(t)
		out := f.api.Logout(ctx, "never-issued")
		require.True(t, out.OK())
	})
}

func TestPasswords(t *testing.T) {
	ctx := context.Background()

	t.Run("change password signs out other sessions", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		f.clock.Advance(time.Minute)

		resp := f.api.ChangePassword(ctx, authmodel.ChangePasswordRequest{CurrentPassword: password, NewPassword: "N3wPassword"},
			apiclient.WithToken(tokens.AccessToken))
		require.True(t, resp.OK(), "%v", resp.Error)

		refreshed := f.api.Refresh(ctx, tokens.RefreshToken)
		require.False(t, refreshed.OK())

		f.clock.Advance(time.Second)
		signin := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: "N3wPassword"})
		require.True(t, signin.OK())
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp := f.api.ChangePassword(ctx, authmodel.ChangePasswordRequest{CurrentPassword: "Wr0ngPassword", NewPassword: "N3wPassword"},
			apiclient.WithToken(tokens.AccessToken))
		require.False(t, resp.OK())
		require.Equal(t, authmodel.CodeInvalidPassword, resp.Error.Code)
	})

	t.Run("forgot and reset", func(t *testing.T) {
		f := setupTestFixture(t)
		f.member(t, "sam@example.com")

		forgot := f.api.ForgotPassword(ctx, "sam@example.com")
		require.True(t, forgot.OK())
		code, ok := f.mailer.LastCode("sam@example.com", authmodel.PurposePasswordReset)
		require.True(t, ok)

		reset := f.api.ResetPassword(ctx, authmodel.ResetPasswordRequest{Email: "sam@example.com", Code: code, NewPassword: "R3setPassword"})
		require.True(t, reset.OK(), "%v", reset.Error)

		old := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: password})
		require.Equal(t, authmodel.CodeInvalidCredentials, old.Error.Code)
		fresh := f.api.Signin(ctx, authmodel.SigninRequest{Email: "sam@example.com", Password: "R3setPassword"})
		require.True(t, fresh.OK())
	})

	t.Run("forgot for unknown email does not reveal it", func(t *testing.T) {
		f := setupTestFixture(t)
		forgot := f.api.ForgotPassword(ctx, "ghost@example.com")
		require.True(t, forgot.OK())
		require.Zero(t, f.mailer.Count())
	})
}

func TestOnboardingAndProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified user is rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		f.signup(t, "sam@example.com")
		user, err := f.repos.Users.GetByEmail("sam@example.com")
		require.NoError(t, err)
		tokens, err := f.srv.Tokens().Issue(user)
		require.NoError(t, err)

		resp, body := f.raw(t, http.MethodGet, "/users/profile", "", tokens.AccessToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Email not verified", body["detail"])
	})

	t.Run("disclaimer required", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp := f.api.CompleteOnboarding(ctx, users.OnboardingRequest{}, apiclient.WithToken(tokens.AccessToken))
		require.False(t, resp.OK())
		require.Equal(t, http.StatusBadRequest, resp.Error.Status)
		require.Equal(t, users.DisclaimerRequiredErr.Message, resp.Error.Message)
	})

	t.Run("onboarding once then update", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")
		f.onboard(t, tokens.AccessToken)

		status := f.api.Status(ctx, apiclient.WithToken(tokens.AccessToken))
		require.True(t, status.Data.HasProfile)
		require.True(t, status.Data.OnboardingCompleted)

		again := f.api.CompleteOnboarding(ctx, users.OnboardingRequest{HealthDisclaimerAccepted: true},
			apiclient.WithToken(tokens.AccessToken))
		require.False(t, again.OK())
		require.Equal(t, users.AlreadyOnboardedErr.Message, again.Error.Message)

		updated := f.api.UpdateProfile(ctx, users.UpdateProfileRequest{DisplayName: utils.Ptr("Samira")},
			apiclient.WithToken(tokens.AccessToken))
		require.True(t, updated.OK())
		require.Equal(t, "Samira", utils.Value(updated.Data.DisplayName))

		profile := f.api.GetProfile(ctx, apiclient.WithToken(tokens.AccessToken))
		require.True(t, profile.OK())
		require.Equal(t, "weight_loss", utils.Value(profile.Data.PrimaryGoal))
	})

	t.Run("invalid answers return 422", func(t *testing.T) {
		f := setupTestFixture(t)
		tokens := f.member(t, "sam@example.com")

		resp := f.api.CompleteOnboarding(ctx, users.OnboardingRequest{HeightCM: utils.Ptr(20), HealthDisclaimerAccepted: true},
			apiclient.WithToken(tokens.AccessToken))
		require.Equal(t, http.StatusUnprocessableEntity, resp.Error.Status)
	})
}
