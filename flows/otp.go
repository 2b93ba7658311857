package flows

import (
	"context"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/session"
)

type OTPStep int

const (
	OTPStepEnterCode OTPStep = iota
	OTPStepVerified
)

type OTPOutcome struct {
	Step               OTPStep
	RequiresOnboarding bool
	FieldErrors        validation.FieldErrors
	Error              *apiclient.APIError
	// CodeRejected is set when the backend refused the code itself, so the
	// screen should clear the input and offer a resend.
	CodeRejected bool
}

// OTPFlow verifies the code sent after signup.
type OTPFlow struct {
	auth    Registrar
	pending PendingRegistration
	step    OTPStep
}

func NewOTPFlow(auth Registrar, pending PendingRegistration) *OTPFlow {
	return &OTPFlow{auth: auth, pending: pending}
}

func (f *OTPFlow) Step() OTPStep { return f.step }

func (f *OTPFlow) Email() string { return f.pending.Email }

// Verify checks the code format and submits it. Any failure keeps the flow
// on code entry.
func (f *OTPFlow) Verify(ctx context.Context, code string) OTPOutcome {
	if f.step == OTPStepVerified {
		return OTPOutcome{Step: f.step}
	}
	if fe := validation.Var("code", code, "required,len=6,numeric"); len(fe) > 0 {
		return OTPOutcome{Step: f.step, FieldErrors: fe, Error: invalidForm()}
	}
	res := f.auth.VerifyOTP(ctx, f.pending.Email, code, f.pending.RememberMe)
	if !res.Success {
		return OTPOutcome{Step: f.step, Error: res.Error, CodeRejected: codeRejected(res.Error)}
	}
	f.step = OTPStepVerified
	return OTPOutcome{Step: f.step, RequiresOnboarding: res.RequiresOnboarding}
}

// Resend asks for a fresh code for the pending email.
func (f *OTPFlow) Resend(ctx context.Context) session.ActionResult {
	return f.auth.ResendOTP(ctx, f.pending.Email)
}
