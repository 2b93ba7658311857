package session

import (
	"context"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/credentials"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/users"
)

// Login signs in with a password. On success the credential pair is stored
// for 30 days when rememberMe is set, otherwise for one day.
func (s *Store) Login(ctx context.Context, email, password string, rememberMe bool) LoginResult {
	var out LoginResult
	if !s.do(ctx, func(ctx context.Context) {
		s.setLoading(ctx, true)
		defer s.setLoading(ctx, false)

		resp := s.api.Signin(ctx, authmodel.SigninRequest{Email: users.NormaliseEmail(email), Password: password})
		if !resp.OK() {
			s.logger.Info().Str("code", resp.Error.Code).Msg("sign in rejected")
			out = LoginResult{Error: resp.Error}
			return
		}
		out = s.authenticate(ctx, resp.Data, rememberMe)
	}) {
		return LoginResult{Error: cancelledError()}
	}
	return out
}

// VerifyOTP confirms a signup code. A valid code signs the user in exactly as
// Login does. Failures are never retried and leave no credentials behind.
func (s *Store) VerifyOTP(ctx context.Context, email, code string, rememberMe bool) LoginResult {
	var out LoginResult
	if !s.do(ctx, func(ctx context.Context) {
		s.setLoading(ctx, true)
		defer s.setLoading(ctx, false)

		resp := s.api.VerifyOTP(ctx, authmodel.VerifyOTPRequest{Email: users.NormaliseEmail(email), Code: code})
		if !resp.OK() {
			s.logger.Info().Str("code", resp.Error.Code).Msg("otp verification rejected")
			out = LoginResult{Error: resp.Error}
			return
		}
		out = s.authenticate(ctx, resp.Data, rememberMe)
	}) {
		return LoginResult{Error: cancelledError()}
	}
	return out
}

// authenticate stores a freshly issued pair and loads the principal.
func (s *Store) authenticate(ctx context.Context, tokens authmodel.TokenResponse, rememberMe bool) LoginResult {
	if err := s.creds.Save(ctx, credentials.FromResponse(tokens, now()), rememberMe); err != nil {
		s.logger.Error().Err(err).Msg("failed to store credentials")
		s.clearCredentials(ctx)
		return LoginResult{Error: storageError()}
	}

	status := s.api.Status(ctx, apiclient.WithToken(tokens.AccessToken))
	if !status.OK() {
		s.logger.Warn().Str("code", status.Error.Code).Int("status", status.Status).Msg("status lookup after sign in failed")
		s.logout(ctx)
		return LoginResult{Error: status.Error}
	}

	s.applyStatus(ctx, status.Data)
	if status.Data.OnboardingCompleted {
		s.fetchProfile(ctx)
	}
	s.logger.Info().Str("user_id", status.Data.User.ID).Bool("onboarded", status.Data.OnboardingCompleted).Msg("signed in")
	return LoginResult{Success: true, RequiresOnboarding: !status.Data.OnboardingCompleted}
}

func (s *Store) applyStatus(ctx context.Context, status users.AuthStatus) {
	user := status.User
	s.setState(ctx, func(st *State) {
		st.User = &user
		st.HasCompletedOnboarding = status.OnboardingCompleted
		if status.OnboardingCompleted {
			st.Phase = PhaseAuthenticatedOnboarded
		} else {
			st.Phase = PhaseAuthenticatedNoProfile
			st.Profile = nil
		}
	})
}

// Signup registers an account. Required consents are checked before anything
// is sent. Success does not sign the user in; the returned email is awaiting
// its verification code.
func (s *Store) Signup(ctx context.Context, email, password string, consents Consents) SignupResult {
	fe := validation.FieldErrors{}
	if !consents.Privacy {
		fe.Add("privacy_consent", "must be accepted")
	}
	if !consents.DataProcessing {
		fe.Add("data_processing_consent", "must be accepted")
	}
	if len(fe) > 0 {
		return SignupResult{
			FieldErrors: fe,
			Error:       &apiclient.APIError{Message: "You must accept the privacy policy and data processing terms.", Code: authmodel.CodeConsentRequired},
		}
	}

	var out SignupResult
	if !s.do(ctx, func(ctx context.Context) {
		resp := s.api.Signup(ctx, authmodel.SignupRequest{
			Email:                 users.NormaliseEmail(email),
			Password:              password,
			PrivacyConsent:        consents.Privacy,
			DataProcessingConsent: consents.DataProcessing,
			MarketingConsent:      consents.Marketing,
		})
		if !resp.OK() {
			out = SignupResult{Error: resp.Error}
			return
		}
		out = SignupResult{Success: true, Email: resp.Data.Email}
	}) {
		return SignupResult{Error: cancelledError()}
	}
	return out
}

// Logout revokes the refresh token if possible and forgets the session.
// It always ends unauthenticated: ctx only bounds the remote revoke and the
// local state is cleared even when ctx is already done.
func (s *Store) Logout(ctx context.Context) {
	if !s.do(context.WithoutCancel(ctx), func(local context.Context) {
		s.revoke(ctx)
		s.forget(local)
		s.setLoading(local, false)
	}) {
		s.logger.Warn().Msg("logout skipped, the session store is closed")
	}
}

func (s *Store) logout(ctx context.Context) {
	s.revoke(ctx)
	s.forget(ctx)
}

// revoke tells the backend to drop the refresh token. Failures are logged
// only.
func (s *Store) revoke(ctx context.Context) {
	refresh, err := s.creds.RefreshToken(ctx)
	if err != nil {
		return
	}
	if resp := s.api.Logout(ctx, refresh); !resp.OK() {
		s.logger.Debug().Str("code", resp.Error.Code).Msg("remote logout failed")
	}
}

func (s *Store) forget(ctx context.Context) {
	s.clearCredentials(ctx)
	s.setState(ctx, reset)
	s.logger.Info().Msg("signed out")
}

// reset empties the state but leaves the loading flag to the operation that
// raised it.
func reset(st *State) {
	loading := st.IsLoading
	*st = Empty()
	st.IsLoading = loading
}

func (s *Store) clearCredentials(ctx context.Context) {
	if err := s.creds.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear credentials")
	}
}

// RefreshAuth swaps the refresh token for a new pair. Any failure signs the
// user out and reports false.
func (s *Store) RefreshAuth(ctx context.Context) bool {
	var ok bool
	if !s.do(ctx, func(ctx context.Context) { ok = s.refreshAuth(ctx) }) {
		return false
	}
	return ok
}

func (s *Store) refreshAuth(ctx context.Context) bool {
	refresh, err := s.creds.RefreshToken(ctx)
	if err != nil {
		s.logger.Debug().Msg("no refresh token")
		s.logout(ctx)
		return false
	}
	resp := s.api.Refresh(ctx, refresh)
	if !resp.OK() {
		if ctx.Err() != nil {
			return false
		}
		s.logger.Info().Str("code", resp.Error.Code).Msg("refresh rejected")
		s.logout(ctx)
		return false
	}
	if err := s.creds.Rotate(ctx, credentials.FromResponse(resp.Data, now())); err != nil {
		s.logger.Error().Err(err).Msg("failed to store refreshed credentials")
		s.logout(ctx)
		return false
	}
	return true
}

// CheckAuth reconciles the local state with the backend. Without a stored
// access token it settles on unauthenticated without any request. An
// expired access token gets one refresh and one more attempt. The loading
// flag is always cleared, even when ctx ends before the check can run.
func (s *Store) CheckAuth(ctx context.Context) {
	if s.do(ctx, func(ctx context.Context) {
		s.setLoading(ctx, true)
		defer s.setLoading(ctx, false)
		s.checkAuth(ctx, false)
	}) {
		return
	}
	s.do(context.WithoutCancel(ctx), s.settle)
}

// settle ends an abandoned check. An unresolved session without a stored
// access token is known to be signed out.
func (s *Store) settle(ctx context.Context) {
	if s.state.Phase == PhaseUnknown {
		if _, err := s.creds.AccessToken(ctx); err != nil {
			s.setState(ctx, reset)
		}
	}
	s.setLoading(ctx, false)
}

func (s *Store) checkAuth(ctx context.Context, alreadyRetried bool) {
	access, err := s.creds.AccessToken(ctx)
	if err != nil {
		s.setState(ctx, reset)
		return
	}

	resp := s.api.Status(ctx, apiclient.WithToken(access))
	switch {
	case resp.OK():
		s.applyStatus(ctx, resp.Data)
		if resp.Data.OnboardingCompleted && s.state.Profile == nil {
			s.fetchProfile(ctx)
		}
	case resp.Error.IsAuth() && !alreadyRetried:
		if s.refreshAuth(ctx) {
			s.checkAuth(ctx, true)
		}
	case ctx.Err() != nil:
		// Abandoned by the caller, keep what we have.
	default:
		s.logger.Info().Str("code", resp.Error.Code).Int("status", resp.Status).Msg("session check failed")
		s.logout(ctx)
	}
}

// ResendOTP asks for a new signup code.
func (s *Store) ResendOTP(ctx context.Context, email string) ActionResult {
	if fe := validation.Var("email", email, "required,email"); len(fe) > 0 {
		return ActionResult{FieldErrors: fe, Error: validationError()}
	}
	return s.action(ctx, func(ctx context.Context) apiclient.Response[authmodel.MessageResponse] {
		return s.api.ResendOTP(ctx, users.NormaliseEmail(email))
	})
}

// ForgotPassword starts a reset. The backend answers the same way whether or
// not the account exists.
func (s *Store) ForgotPassword(ctx context.Context, email string) ActionResult {
	if fe := validation.Var("email", email, "required,email"); len(fe) > 0 {
		return ActionResult{FieldErrors: fe, Error: validationError()}
	}
	return s.action(ctx, func(ctx context.Context) apiclient.Response[authmodel.MessageResponse] {
		return s.api.ForgotPassword(ctx, users.NormaliseEmail(email))
	})
}

// ResetPassword completes a reset with the emailed code.
func (s *Store) ResetPassword(ctx context.Context, email, code, newPassword string) ActionResult {
	req := authmodel.ResetPasswordRequest{Email: users.NormaliseEmail(email), Code: code, NewPassword: newPassword}
	fe := validation.Struct(req)
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		fe.Add("new_password", err.Error())
	}
	if len(fe) > 0 {
		return ActionResult{FieldErrors: fe, Error: validationError()}
	}
	return s.action(ctx, func(ctx context.Context) apiclient.Response[authmodel.MessageResponse] {
		return s.api.ResetPassword(ctx, req)
	})
}

// ChangePassword updates the password of the signed in user. The backend
// revokes every session on success, so the local one is ended too.
func (s *Store) ChangePassword(ctx context.Context, current, next string) ActionResult {
	req := authmodel.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	fe := validation.Struct(req)
	if err := users.ValidatePasswordStrength(next); err != nil {
		fe.Add("new_password", err.Error())
	}
	if len(fe) > 0 {
		return ActionResult{FieldErrors: fe, Error: validationError()}
	}

	var out ActionResult
	if !s.do(ctx, func(ctx context.Context) {
		if !s.state.IsAuthenticated {
			out = ActionResult{Error: notAuthenticatedError()}
			return
		}
		resp := s.authed.ChangePassword(ctx, req)
		if !resp.OK() {
			out = ActionResult{Error: resp.Error}
			return
		}
		s.logout(ctx)
		out = ActionResult{Success: true, Message: resp.Data.Message}
	}) {
		return ActionResult{Error: cancelledError()}
	}
	return out
}

// DeleteAccount erases the signed in account on the backend. Every session is
// revoked there, so on success only local state is cleared.
func (s *Store) DeleteAccount(ctx context.Context, confirm bool) ActionResult {
	var out ActionResult
	if !s.do(ctx, func(ctx context.Context) {
		if !s.state.IsAuthenticated {
			out = ActionResult{Error: notAuthenticatedError()}
			return
		}
		resp := s.authed.DeleteAccount(ctx, confirm)
		if !resp.OK() {
			out = ActionResult{Error: resp.Error}
			return
		}
		s.forget(ctx)
		out = ActionResult{Success: true, Message: resp.Data.Message}
	}) {
		return ActionResult{Error: cancelledError()}
	}
	return out
}

func (s *Store) action(ctx context.Context, call func(ctx context.Context) apiclient.Response[authmodel.MessageResponse]) ActionResult {
	var out ActionResult
	if !s.do(ctx, func(ctx context.Context) {
		resp := call(ctx)
		if !resp.OK() {
			out = ActionResult{Error: resp.Error}
			return
		}
		out = ActionResult{Success: true, Message: resp.Data.Message}
	}) {
		return ActionResult{Error: cancelledError()}
	}
	return out
}

// CompleteOnboarding submits the onboarding answers and moves the session to
// onboarded.
func (s *Store) CompleteOnboarding(ctx context.Context, req users.OnboardingRequest) ProfileResult {
	fe := validation.Struct(req)
	if !req.HealthDisclaimerAccepted {
		fe.Add("health_disclaimer_accepted", "must be accepted")
	}
	if len(fe) > 0 {
		return ProfileResult{FieldErrors: fe, Error: validationError()}
	}

	var out ProfileResult
	if !s.do(ctx, func(ctx context.Context) {
		if !s.state.IsAuthenticated {
			out = ProfileResult{Error: notAuthenticatedError()}
			return
		}
		resp := s.authed.CompleteOnboarding(ctx, req)
		if !resp.OK() {
			out = ProfileResult{Error: resp.Error}
			return
		}
		profile := resp.Data
		s.setState(ctx, func(st *State) {
			st.Profile = &profile
			st.HasCompletedOnboarding = true
			st.Phase = PhaseAuthenticatedOnboarded
		})
		s.logger.Info().Str("user_id", profile.UserID).Msg("onboarding completed")
		out = ProfileResult{Success: true, Profile: &profile}
	}) {
		return ProfileResult{Error: cancelledError()}
	}
	return out
}

// FetchProfile loads the profile of the signed in user.
func (s *Store) FetchProfile(ctx context.Context) ProfileResult {
	var out ProfileResult
	if !s.do(ctx, func(ctx context.Context) {
		if !s.state.IsAuthenticated {
			out = ProfileResult{Error: notAuthenticatedError()}
			return
		}
		out = s.fetchProfile(ctx)
	}) {
		return ProfileResult{Error: cancelledError()}
	}
	return out
}

func (s *Store) fetchProfile(ctx context.Context) ProfileResult {
	resp := s.authed.GetProfile(ctx)
	if !resp.OK() {
		s.logger.Warn().Str("code", resp.Error.Code).Msg("profile fetch failed")
		return ProfileResult{Error: resp.Error}
	}
	profile := resp.Data
	s.setState(ctx, func(st *State) { st.Profile = &profile })
	return ProfileResult{Success: true, Profile: &profile}
}

// UpdateProfile changes profile answers after onboarding.
func (s *Store) UpdateProfile(ctx context.Context, req users.UpdateProfileRequest) ProfileResult {
	if fe := validation.Struct(req); len(fe) > 0 {
		return ProfileResult{FieldErrors: fe, Error: validationError()}
	}

	var out ProfileResult
	if !s.do(ctx, func(ctx context.Context) {
		if !s.state.IsAuthenticated {
			out = ProfileResult{Error: notAuthenticatedError()}
			return
		}
		resp := s.authed.UpdateProfile(ctx, req)
		if !resp.OK() {
			out = ProfileResult{Error: resp.Error}
			return
		}
		profile := resp.Data
		s.setState(ctx, func(st *State) { st.Profile = &profile })
		out = ProfileResult{Success: true, Profile: &profile}
	}) {
		return ProfileResult{Error: cancelledError()}
	}
	return out
}
