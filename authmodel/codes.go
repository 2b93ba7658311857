// Package authmodel holds the wire types and machine readable error codes
// shared by the API client and the dev backend.
package authmodel

// Machine readable codes carried in error bodies.
const (
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeConsentRequired     = "CONSENT_REQUIRED"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeOTPMaxAttempts      = "OTP_MAX_ATTEMPTS"
	CodeOTPRateLimited      = "OTP_RATE_LIMITED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	CodeAccountInactive     = "ACCOUNT_INACTIVE"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUserInactive        = "USER_INACTIVE"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNetworkError        = "NETWORK_ERROR"

	CodeProgramNotFound      = "PROGRAM_NOT_FOUND"
	CodeProgramNotPublished  = "PROGRAM_NOT_PUBLISHED"
	CodeAlreadyEnrolled      = "ALREADY_ENROLLED"
	CodeMaxEnrollments       = "MAX_ENROLLMENTS_REACHED"
	CodeNotEnrolled          = "NOT_ENROLLED"
	CodeWorkoutNotFound      = "WORKOUT_NOT_FOUND"
	CodeAlreadyCompleted     = "ALREADY_COMPLETED"
	CodePreviousNotCompleted = "PREVIOUS_NOT_COMPLETED"
	CodeDuplicateWorkoutDay  = "DUPLICATE_WORKOUT_DAY"

	CodeConsentWithdrawal    = "CONSENT_WITHDRAWAL_REQUIRES_DELETION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
)

// OTP purposes.
const (
	PurposeSignup        = "signup"
	PurposePasswordReset = "password_reset"
)
