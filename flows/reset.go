package flows

import (
	"context"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/users"
)

type ResetStep int

const (
	ResetStepRequest ResetStep = iota
	ResetStepReset
	ResetStepDone
)

type ResetOutcome struct {
	Step         ResetStep
	Message      string
	FieldErrors  validation.FieldErrors
	Error        *apiclient.APIError
	CodeRejected bool
}

type resetForm struct {
	Code            string `json:"code" validate:"required,len=6,numeric"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// PasswordResetFlow walks through requesting a code and choosing a new
// password with it.
type PasswordResetFlow struct {
	auth  PasswordResetter
	email string
	step  ResetStep
}

func NewPasswordResetFlow(auth PasswordResetter) *PasswordResetFlow {
	return &PasswordResetFlow{auth: auth}
}

func (f *PasswordResetFlow) Step() ResetStep { return f.step }

func (f *PasswordResetFlow) Email() string { return f.email }

// Request sends a reset code to email.
func (f *PasswordResetFlow) Request(ctx context.Context, email string) ResetOutcome {
	if fe := validation.Var("email", email, "required,email"); len(fe) > 0 {
		return ResetOutcome{Step: f.step, FieldErrors: fe, Error: invalidForm()}
	}
	res := f.auth.ForgotPassword(ctx, email)
	if !res.Success {
		return ResetOutcome{Step: f.step, FieldErrors: res.FieldErrors, Error: res.Error}
	}
	f.email = users.NormaliseEmail(email)
	f.step = ResetStepReset
	return ResetOutcome{Step: f.step, Message: res.Message}
}

// Reset sets the new password. A rejected code keeps the flow on this step.
func (f *PasswordResetFlow) Reset(ctx context.Context, code, newPassword, confirm string) ResetOutcome {
	if f.step != ResetStepReset {
		return ResetOutcome{Step: f.step, Error: &apiclient.APIError{Message: "Request a reset code first."}}
	}
	form := resetForm{Code: code, NewPassword: newPassword, ConfirmPassword: confirm}
	fe := validation.Struct(form)
	if _, ok := fe["new_password"]; !ok {
		if err := users.ValidatePasswordStrength(newPassword); err != nil {
			fe.Add("new_password", err.Error())
		}
	}
	if len(fe) > 0 {
		return ResetOutcome{Step: f.step, FieldErrors: fe, Error: invalidForm()}
	}

	res := f.auth.ResetPassword(ctx, f.email, code, newPassword)
	if !res.Success {
		return ResetOutcome{Step: f.step, FieldErrors: res.FieldErrors, Error: res.Error, CodeRejected: codeRejected(res.Error)}
	}
	f.step = ResetStepDone
	return ResetOutcome{Step: f.step, Message: res.Message}
}

// Back returns to the request step so a different email can be used.
func (f *PasswordResetFlow) Back() {
	if f.step == ResetStepReset {
		f.step = ResetStepRequest
	}
}
