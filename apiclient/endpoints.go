package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/programs"
	"github.com/jrsteele09/flow-client/users"
)

// Auth

func (c *Client) Signup(ctx context.Context, req authmodel.SignupRequest) Response[authmodel.SignupResponse] {
	return call[authmodel.SignupResponse](ctx, c, http.MethodPost, "/auth/signup", req, WithoutToken())
}

func (c *Client) VerifyOTP(ctx context.Context, req authmodel.VerifyOTPRequest) Response[authmodel.TokenResponse] {
	return call[authmodel.TokenResponse](ctx, c, http.MethodPost, "/auth/verify-otp", req, WithoutToken())
}

func (c *Client) ResendOTP(ctx context.Context, email string) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodPost, "/auth/resend-otp", authmodel.EmailRequest{Email: email}, WithoutToken())
}

func (c *Client) Signin(ctx context.Context, req authmodel.SigninRequest) Response[authmodel.TokenResponse] {
	return call[authmodel.TokenResponse](ctx, c, http.MethodPost, "/auth/signin", req, WithoutToken())
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) Response[authmodel.TokenResponse] {
	return call[authmodel.TokenResponse](ctx, c, http.MethodPost, "/auth/refresh",
		authmodel.RefreshTokenRequest{RefreshToken: refreshToken}, WithoutToken())
}

func (c *Client) Logout(ctx context.Context, refreshToken string) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodPost, "/auth/logout",
		authmodel.RefreshTokenRequest{RefreshToken: refreshToken}, WithoutToken())
}

func (c *Client) ForgotPassword(ctx context.Context, email string) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodPost, "/auth/forgot-password", authmodel.EmailRequest{Email: email}, WithoutToken())
}

func (c *Client) ResetPassword(ctx context.Context, req authmodel.ResetPasswordRequest) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodPost, "/auth/reset-password", req, WithoutToken())
}

func (c *Client) ChangePassword(ctx context.Context, req authmodel.ChangePasswordRequest, opts ...RequestOption) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodPost, "/auth/change-password", req, opts...)
}

// Status returns identity plus onboarding flags for the bearer token.
func (c *Client) Status(ctx context.Context, opts ...RequestOption) Response[users.AuthStatus] {
	return call[users.AuthStatus](ctx, c, http.MethodGet, "/auth/status", nil, opts...)
}

func (c *Client) Me(ctx context.Context, opts ...RequestOption) Response[users.User] {
	return call[users.User](ctx, c, http.MethodGet, "/auth/me", nil, opts...)
}

// Users

func (c *Client) CompleteOnboarding(ctx context.Context, req users.OnboardingRequest, opts ...RequestOption) Response[users.Profile] {
	return call[users.Profile](ctx, c, http.MethodPost, "/users/onboarding", req, opts...)
}

func (c *Client) GetProfile(ctx context.Context, opts ...RequestOption) Response[users.Profile] {
	return call[users.Profile](ctx, c, http.MethodGet, "/users/profile", nil, opts...)
}

func (c *Client) UpdateProfile(ctx context.Context, req users.UpdateProfileRequest, opts ...RequestOption) Response[users.Profile] {
	return call[users.Profile](ctx, c, http.MethodPut, "/users/profile", req, opts...)
}

// Privacy

func (c *Client) GetConsent(ctx context.Context, opts ...RequestOption) Response[users.ConsentStatus] {
	return call[users.ConsentStatus](ctx, c, http.MethodGet, "/privacy/consent", nil, opts...)
}

func (c *Client) UpdateConsent(ctx context.Context, req users.ConsentUpdateRequest, opts ...RequestOption) Response[users.ConsentStatus] {
	return call[users.ConsentStatus](ctx, c, http.MethodPut, "/privacy/consent", req, opts...)
}

func (c *Client) ExportData(ctx context.Context, opts ...RequestOption) Response[users.DataExport] {
	return call[users.DataExport](ctx, c, http.MethodGet, "/privacy/export", nil, opts...)
}

// DeleteAccount erases the signed in account. The body carries the
// confirmation flag.
func (c *Client) DeleteAccount(ctx context.Context, confirm bool, opts ...RequestOption) Response[users.DeleteAccountResponse] {
	return call[users.DeleteAccountResponse](ctx, c, http.MethodDelete, "/privacy/account", users.DeleteAccountRequest{Confirm: confirm}, opts...)
}

// Programs

func programPath(id string, suffix string) string {
	return "/programs/" + url.PathEscape(id) + suffix
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) ListPrograms(ctx context.Context, filter programs.ListFilter) Response[[]programs.Program] {
	q := url.Values{}
	if filter.Goal != "" {
		q.Set("goal", string(filter.Goal))
	}
	if filter.Difficulty != "" {
		q.Set("difficulty", string(filter.Difficulty))
	}
	if filter.Featured {
		q.Set("featured", "true")
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	return call[[]programs.Program](ctx, c, http.MethodGet, "/programs", nil, WithQuery(q))
}

func (c *Client) FeaturedPrograms(ctx context.Context, limit int) Response[[]programs.Program] {
	return call[[]programs.Program](ctx, c, http.MethodGet, "/programs/featured", nil, WithQuery(limitQuery(limit)))
}

func (c *Client) RecommendedPrograms(ctx context.Context, limit int, opts ...RequestOption) Response[programs.Recommended] {
	return call[programs.Recommended](ctx, c, http.MethodGet, "/programs/recommended", nil, append([]RequestOption{WithQuery(limitQuery(limit))}, opts...)...)
}

func (c *Client) ContinueSection(ctx context.Context, opts ...RequestOption) Response[programs.ContinueSection] {
	return call[programs.ContinueSection](ctx, c, http.MethodGet, "/programs/continue", nil, opts...)
}

func (c *Client) GetProgram(ctx context.Context, id string) Response[programs.ProgramDetail] {
	return call[programs.ProgramDetail](ctx, c, http.MethodGet, programPath(id, ""), nil)
}

func (c *Client) ProgramProgress(ctx context.Context, id string, opts ...RequestOption) Response[programs.EnrollmentProgress] {
	return call[programs.EnrollmentProgress](ctx, c, http.MethodGet, programPath(id, "/progress"), nil, opts...)
}

func (c *Client) ProgramWorkouts(ctx context.Context, id string, opts ...RequestOption) Response[[]programs.WorkoutWithProgress] {
	return call[[]programs.WorkoutWithProgress](ctx, c, http.MethodGet, programPath(id, "/workouts"), nil, opts...)
}

func (c *Client) Enroll(ctx context.Context, id string, opts ...RequestOption) Response[programs.EnrollResponse] {
	return call[programs.EnrollResponse](ctx, c, http.MethodPost, programPath(id, "/enroll"), nil, opts...)
}

func (c *Client) Unenroll(ctx context.Context, id string, opts ...RequestOption) Response[authmodel.MessageResponse] {
	return call[authmodel.MessageResponse](ctx, c, http.MethodDelete, programPath(id, "/enroll"), nil, opts...)
}

func (c *Client) CompleteWorkout(ctx context.Context, workoutID string, req programs.MarkCompleteRequest, opts ...RequestOption) Response[programs.MarkCompleteResponse] {
	return call[programs.MarkCompleteResponse](ctx, c, http.MethodPost, "/programs/workouts/"+url.PathEscape(workoutID)+"/complete", req, opts...)
}
