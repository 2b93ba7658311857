package auth

import (
	"net/http"

	"github.com/jrsteele09/flow-client/authmodel"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
)

// Rejections reported to API callers. Each carries the status the server
// responds with.
var (
	EmailExistsErr         = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeEmailExists, "Email already registered")
	ConsentRequiredErr     = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeConsentRequired, "Privacy and data processing consent required")
	OTPRateLimitedErr      = apperrors.NewCoded(http.StatusTooManyRequests, authmodel.CodeOTPRateLimited, "Too many OTP requests. Try again later.")
	UnknownOTPUserErr      = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeInvalidOTP, "Invalid email or code")
	NoValidOTPErr          = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeInvalidOTP, "Invalid or expired code")
	OTPExpiredErr          = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeOTPExpired, "Code has expired. Request a new one.")
	OTPMaxAttemptsErr      = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeOTPMaxAttempts, "Too many failed attempts")
	WrongOTPErr            = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeInvalidOTP, "Invalid code")
	InvalidCredentialsErr  = apperrors.NewCoded(http.StatusUnauthorized, authmodel.CodeInvalidCredentials, "Invalid email or password")
	EmailNotVerifiedErr    = apperrors.NewCoded(http.StatusForbidden, authmodel.CodeEmailNotVerified, "Email not verified")
	AccountInactiveErr     = apperrors.NewCoded(http.StatusUnauthorized, authmodel.CodeAccountInactive, "Account is deactivated")
	InvalidRefreshTokenErr = apperrors.NewCoded(http.StatusUnauthorized, authmodel.CodeInvalidRefreshToken, "Invalid or expired refresh token")
	UserInactiveErr        = apperrors.NewCoded(http.StatusUnauthorized, authmodel.CodeUserInactive, "User not found or inactive")
	InvalidPasswordErr     = apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeInvalidPassword, "Current password is incorrect")

	// Bearer authentication failures carry no code, matching the plain
	// string detail the API returns for them.
	InvalidAccessTokenErr = apperrors.NewCoded(http.StatusUnauthorized, "", "Could not validate credentials")
	DeactivatedErr        = apperrors.NewCoded(http.StatusForbidden, "", "User account is deactivated")
	NotVerifiedErr        = apperrors.NewCoded(http.StatusForbidden, "", "Email not verified")
)

// Acknowledgements.
const (
	SignupMessage         = "Account created. Please check your email for verification code."
	ResendUnknownMessage  = "If the email exists, a verification code has been sent."
	AlreadyVerifiedMsg    = "Email is already verified."
	ResendMessage         = "Verification code sent to your email."
	ForgotUnknownMessage  = "If the email exists, a reset code has been sent."
	ForgotMessage         = "Password reset code sent to your email."
	ResetMessage          = "Password reset successfully. Please sign in."
	ChangePasswordMessage = "Password changed successfully. Please sign in again."
	LogoutMessage         = "Logged out successfully."
)
