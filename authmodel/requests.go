package authmodel

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	// Email is lower cased by the backend before storage.
	// Required: Yes
	Email string `json:"email" validate:"required,email"`

	// Password must be 8 to 128 characters.
	// Required: Yes
	// Security: Never log this value
	Password string `json:"password" validate:"required,min=8,max=128"`

	// PrivacyConsent and DataProcessingConsent must both be true or the
	// backend rejects the request with CONSENT_REQUIRED.
	PrivacyConsent        bool `json:"privacy_consent"`
	DataProcessingConsent bool `json:"data_processing_consent"`

	// MarketingConsent is optional and defaults to false.
	MarketingConsent bool `json:"marketing_consent"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`

	// Code is the 6 digit one time code sent by email.
	// Behavior: Single use, invalidated when a newer code is issued
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// EmailRequest is the body of POST /auth/resend-otp and /auth/forgot-password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SigninRequest is the body of POST /auth/signin.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh and /auth/logout.
type RefreshTokenRequest struct {
	// RefreshToken is the opaque token issued with the last credential pair.
	// Behavior: Rotated on refresh, the old value stops working immediately
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}
