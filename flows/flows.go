// Package flows drives the multi step screens that sit in front of the
// session store: signup, code verification, password reset and the
// onboarding questionnaire. Each flow validates locally before anything is
// sent and keeps track of which step the user is on.
package flows

import (
	"context"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
)

// Registrar is the part of the session store the signup and code flows use.
type Registrar interface {
	Signup(ctx context.Context, email, password string, consents session.Consents) session.SignupResult
	VerifyOTP(ctx context.Context, email, code string, rememberMe bool) session.LoginResult
	ResendOTP(ctx context.Context, email string) session.ActionResult
}

// PasswordResetter is the part of the session store the reset flow uses.
type PasswordResetter interface {
	ForgotPassword(ctx context.Context, email string) session.ActionResult
	ResetPassword(ctx context.Context, email, code, newPassword string) session.ActionResult
}

// Onboarder submits the questionnaire.
type Onboarder interface {
	CompleteOnboarding(ctx context.Context, req users.OnboardingRequest) session.ProfileResult
}

var _ interface {
	Registrar
	PasswordResetter
	Onboarder
} = (*session.Store)(nil)

// codeRejected reports errors that mean the user should fix or replace the
// code rather than start over.
func codeRejected(err *apiclient.APIError) bool {
	if err == nil {
		return false
	}
	switch err.Code {
	case authmodel.CodeInvalidOTP, authmodel.CodeOTPExpired, authmodel.CodeOTPMaxAttempts:
		return true
	}
	return false
}

func invalidForm() *apiclient.APIError {
	return &apiclient.APIError{Message: "Please correct the highlighted fields.", Code: authmodel.CodeValidation}
}
