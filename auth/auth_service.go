// Package auth implements the dev backend's account lifecycle: signup with
// OTP verification, password sign in, token refresh and revocation, and the
// password reset and change flows.
package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/config"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/mail"
	"github.com/jrsteele09/flow-client/token"
	"github.com/jrsteele09/flow-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const otpRateWindow = time.Hour

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo
	Profiles users.ProfileRepo
	OTPs     OTPRepo
}

// Service provides the account operations behind the /auth routes.
type Service struct {
	repos   Repos
	tokens  *token.Manager
	mailer  mail.Sender
	otpCfg  config.OTPConfig
	nowTime func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, tokens *token.Manager, mailer mail.Sender, otpCfg config.OTPConfig, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Profiles == nil {
		return nil, errors.New("[NewService] Profiles repo is required")
	}
	if repos.OTPs == nil {
		return nil, errors.New("[NewService] OTPs repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if mailer == nil {
		return nil, errors.New("[NewService] mailer is required")
	}
	if otpCfg == nil {
		return nil, errors.New("[NewService] OTP config is required")
	}

	s := &Service{
		repos:   repos,
		tokens:  tokens,
		mailer:  mailer,
		otpCfg:  otpCfg,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Signup registers an unverified account and mails a signup code. An
// unverified account with the same email is replaced.
func (s *Service) Signup(ctx context.Context, req authmodel.SignupRequest) (*authmodel.SignupResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	email := users.NormaliseEmail(req.Email)

	existing, err := s.repos.Users.GetByEmail(email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, EmailExistsErr
	case err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound):
		return nil, errors.Wrap(err, "[Service.Signup] GetByEmail")
	}

	if !req.PrivacyConsent || !req.DataProcessingConsent {
		return nil, ConsentRequiredErr
	}

	if existing != nil {
		if err := s.deleteUser(existing.ID); err != nil {
			return nil, err
		}
		log.Debug().Str("user_id", existing.ID).Msg("replaced unverified account")
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Signup] HashPassword")
	}
	now := s.nowTime()
	user := &users.User{
		Email:                 email,
		Role:                  users.RoleMember,
		IsActive:              true,
		PrivacyConsentAt:      utils.Ptr(now),
		DataProcessingConsent: req.DataProcessingConsent,
		MarketingConsent:      req.MarketingConsent,
		CreatedAt:             now,
		PasswordHash:          hash,
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.Signup] Upsert")
	}
	log.Info().Str("user_id", user.ID).Msg("user created")

	if err := s.issueOTP(ctx, user, authmodel.PurposeSignup); err != nil {
		return nil, err
	}
	return &authmodel.SignupResponse{Message: SignupMessage, UserID: user.ID, Email: user.Email}, nil
}

func (s *Service) deleteUser(userID string) error {
	if err := s.repos.OTPs.DeleteByUserID(userID); err != nil {
		return errors.Wrap(err, "[Service.deleteUser] OTPs.DeleteByUserID")
	}
	if err := s.repos.Profiles.DeleteByUserID(userID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return errors.Wrap(err, "[Service.deleteUser] Profiles.DeleteByUserID")
	}
	if err := s.repos.Users.Delete(userID); err != nil {
		return errors.Wrap(err, "[Service.deleteUser] Users.Delete")
	}
	return nil
}

// issueOTP creates a code for purpose, invalidating older unused ones, and
// mails it. Delivery failures are logged rather than returned so the caller
// can still ask for a resend.
func (s *Service) issueOTP(ctx context.Context, user *users.User, purpose string) error {
	now := s.nowTime()
	recent, err := s.repos.OTPs.CountSince(user.ID, purpose, now.Add(-otpRateWindow))
	if err != nil {
		return errors.Wrap(err, "[Service.issueOTP] CountSince")
	}
	if recent >= s.otpCfg.GetOTPMaxRequestsPerHour() {
		return OTPRateLimitedErr
	}
	if err := s.repos.OTPs.InvalidateUnused(user.ID, purpose, now); err != nil {
		return errors.Wrap(err, "[Service.issueOTP] InvalidateUnused")
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.repos.OTPs.Insert(&OTP{
		UserID:    user.ID,
		Purpose:   purpose,
		CodeHash:  hashCode(code),
		ExpiresAt: now.Add(s.otpCfg.GetOTPExpiry()),
		CreatedAt: now,
	}); err != nil {
		return errors.Wrap(err, "[Service.issueOTP] Insert")
	}

	sent := true
	if err := s.mailer.SendOTP(ctx, user.Email, code, purpose); err != nil {
		sent = false
		log.Warn().Err(err).Str("user_id", user.ID).Str("purpose", purpose).Msg("failed to deliver one time code")
	}
	log.Info().Str("user_id", user.ID).Str("purpose", purpose).Bool("email_sent", sent).Msg("OTP created")
	return nil
}

// checkOTP spends the newest code for purpose if it matches.
func (s *Service) checkOTP(email, code, purpose string) (*users.User, error) {
	user, err := s.repos.Users.GetByEmail(email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, UnknownOTPUserErr
		}
		return nil, errors.Wrap(err, "[Service.checkOTP] GetByEmail")
	}

	otp, err := s.repos.OTPs.Latest(user.ID, purpose)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, NoValidOTPErr
		}
		return nil, errors.Wrap(err, "[Service.checkOTP] Latest")
	}
	now := s.nowTime()
	if otp.Expired(now) {
		return nil, OTPExpiredErr
	}

	otp.Attempts++
	if otp.Attempts > s.otpCfg.GetOTPMaxVerifyAttempts() {
		otp.UsedAt = &now
		if err := s.repos.OTPs.Update(otp); err != nil {
			return nil, errors.Wrap(err, "[Service.checkOTP] Update")
		}
		return nil, OTPMaxAttemptsErr
	}
	if !otp.Matches(code) {
		if err := s.repos.OTPs.Update(otp); err != nil {
			return nil, errors.Wrap(err, "[Service.checkOTP] Update")
		}
		return nil, WrongOTPErr
	}

	otp.UsedAt = &now
	if err := s.repos.OTPs.Update(otp); err != nil {
		return nil, errors.Wrap(err, "[Service.checkOTP] Update")
	}
	log.Info().Str("user_id", user.ID).Str("purpose", purpose).Msg("OTP verified")
	return user, nil
}

// VerifyOTP verifies a signup code, marks the account verified and signs
// the user in.
func (s *Service) VerifyOTP(req authmodel.VerifyOTPRequest) (*authmodel.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.checkOTP(users.NormaliseEmail(req.Email), req.Code, authmodel.PurposeSignup)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		if err := s.repos.Users.SetVerified(user.ID, true); err != nil {
			return nil, errors.Wrap(err, "[Service.VerifyOTP] SetVerified")
		}
		user.IsVerified = true
	}
	return s.issueTokens(user)
}

// ResendOTP mails a fresh signup code. Unknown addresses get the same
// answer as known ones.
func (s *Service) ResendOTP(ctx context.Context, req authmodel.EmailRequest) (*authmodel.MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return &authmodel.MessageResponse{Message: ResendUnknownMessage}, nil
		}
		return nil, errors.Wrap(err, "[Service.ResendOTP] GetByEmail")
	}
	if user.IsVerified {
		return &authmodel.MessageResponse{Message: AlreadyVerifiedMsg}, nil
	}
	if err := s.issueOTP(ctx, user, authmodel.PurposeSignup); err != nil {
		return nil, err
	}
	return &authmodel.MessageResponse{Message: ResendMessage}, nil
}

// Signin checks a password and issues a credential pair.
func (s *Service) Signin(req authmodel.SigninRequest) (*authmodel.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, InvalidCredentialsErr
		}
		return nil, errors.Wrap(err, "[Service.Signin] GetByEmail")
	}
	if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, InvalidCredentialsErr
	}
	if !user.IsVerified {
		return nil, EmailNotVerifiedErr
	}
	if !user.IsActive {
		return nil, AccountInactiveErr
	}
	log.Info().Str("user_id", user.ID).Msg("user authenticated")
	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *users.User) (*authmodel.TokenResponse, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.issueTokens] Issue")
	}
	return pair, nil
}

// Refresh rotates a refresh token.
func (s *Service) Refresh(req authmodel.RefreshTokenRequest) (*authmodel.TokenResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	pair, user, err := s.tokens.Refresh(req.RefreshToken)
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRefreshToken):
		return nil, InvalidRefreshTokenErr
	case apperrors.Is(err, apperrors.ErrUserInactive):
		return nil, UserInactiveErr
	case err != nil:
		return nil, errors.Wrap(err, "[Service.Refresh] Refresh")
	}
	log.Info().Str("user_id", user.ID).Msg("tokens refreshed")
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are not an error.
func (s *Service) Logout(req authmodel.RefreshTokenRequest) *authmodel.MessageResponse {
	if req.RefreshToken != "" && s.tokens.RevokeRefreshToken(req.RefreshToken) {
		log.Info().Msg("refresh token revoked")
	}
	return &authmodel.MessageResponse{Message: LogoutMessage}
}

// ForgotPassword mails a reset code to verified accounts. Everyone else gets
// the same neutral answer.
func (s *Service) ForgotPassword(ctx context.Context, req authmodel.EmailRequest) (*authmodel.MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByEmail(req.Email)
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, errors.Wrap(err, "[Service.ForgotPassword] GetByEmail")
	}
	if user == nil || !user.IsVerified {
		return &authmodel.MessageResponse{Message: ForgotUnknownMessage}, nil
	}
	if err := s.issueOTP(ctx, user, authmodel.PurposePasswordReset); err != nil {
		return nil, err
	}
	return &authmodel.MessageResponse{Message: ForgotMessage}, nil
}

// ResetPassword sets a new password using a reset code and signs the user
// out everywhere.
func (s *Service) ResetPassword(req authmodel.ResetPasswordRequest) (*authmodel.MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	user, err := s.checkOTP(users.NormaliseEmail(req.Email), req.Code, authmodel.PurposePasswordReset)
	if err != nil {
		return nil, err
	}
	if err := s.setPassword(user.ID, req.NewPassword); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("password reset")
	return &authmodel.MessageResponse{Message: ResetMessage}, nil
}

// ChangePassword replaces the password of a signed in user after checking
// the current one, then signs them out everywhere.
func (s *Service) ChangePassword(user *users.User, req authmodel.ChangePasswordRequest) (*authmodel.MessageResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !users.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return nil, InvalidPasswordErr
	}
	if err := s.setPassword(user.ID, req.NewPassword); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", user.ID).Msg("password changed")
	return &authmodel.MessageResponse{Message: ChangePasswordMessage}, nil
}

func (s *Service) setPassword(userID, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "[Service.setPassword] HashPassword")
	}
	if err := s.repos.Users.SetPassword(userID, hash); err != nil {
		return errors.Wrap(err, "[Service.setPassword] SetPassword")
	}
	if err := s.tokens.RevokeAll(userID); err != nil {
		return errors.Wrap(err, "[Service.setPassword] RevokeAll")
	}
	return nil
}

// Authenticate resolves a bearer access token to an active user.
func (s *Service) Authenticate(accessToken string) (*users.User, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, InvalidAccessTokenErr
	}
	user, err := s.repos.Users.GetByID(claims.UserID)
	if err != nil {
		return nil, InvalidAccessTokenErr
	}
	if !user.IsActive {
		return nil, DeactivatedErr
	}
	return user, nil
}

// RequireVerified rejects users who have not confirmed their email.
func RequireVerified(user *users.User) error {
	if !user.IsVerified {
		return NotVerifiedErr
	}
	return nil
}

// Status reports identity plus onboarding progress.
func (s *Service) Status(user *users.User) (*users.AuthStatus, error) {
	status := &users.AuthStatus{User: *user}
	profile, err := s.repos.Profiles.GetByUserID(user.ID)
	switch {
	case err == nil:
		status.HasProfile = true
		status.OnboardingCompleted = profile.OnboardingCompleted()
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "[Service.Status] GetByUserID")
	}
	return status, nil
}

// CreateAdmin creates a verified admin account. It fails with EMAIL_EXISTS
// when the address is taken.
func (s *Service) CreateAdmin(email, password string) (*users.User, error) {
	email = users.NormaliseEmail(email)
	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		return nil, EmailExistsErr
	}
	if err := users.ValidatePasswordLength(password); err != nil {
		return nil, errors.Wrap(err, "[Service.CreateAdmin]")
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CreateAdmin] HashPassword")
	}
	now := s.nowTime()
	admin := &users.User{
		Email:                 email,
		Role:                  users.RoleAdmin,
		IsActive:              true,
		IsVerified:            true,
		PrivacyConsentAt:      utils.Ptr(now),
		DataProcessingConsent: true,
		CreatedAt:             now,
		PasswordHash:          hash,
	}
	if err := s.repos.Users.Upsert(admin); err != nil {
		return nil, errors.Wrap(err, "[Service.CreateAdmin] Upsert")
	}
	log.Info().Str("user_id", admin.ID).Msg("admin user created")
	return admin, nil
}

// SetActive activates or deactivates an account. Deactivation signs the
// user out everywhere.
func (s *Service) SetActive(userID string, active bool) error {
	if err := s.repos.Users.SetActive(userID, active); err != nil {
		return errors.Wrap(err, "[Service.SetActive] SetActive")
	}
	if !active {
		if err := s.tokens.RevokeAll(userID); err != nil {
			return errors.Wrap(err, "[Service.SetActive] RevokeAll")
		}
	}
	return nil
}

// ListUsers pages through accounts for the admin area.
func (s *Service) ListUsers(offset, limit int) ([]*users.User, error) {
	list, err := s.repos.Users.List(offset, limit)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ListUsers] List")
	}
	return list, nil
}
