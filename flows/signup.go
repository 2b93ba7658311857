package flows

import (
	"context"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
)

type SignupForm struct {
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword       string `json:"confirm_password" validate:"required,eqfield=Password"`
	PrivacyConsent        bool   `json:"privacy_consent" validate:"required"`
	DataProcessingConsent bool   `json:"data_processing_consent" validate:"required"`
	MarketingConsent      bool   `json:"marketing_consent"`
	RememberMe            bool   `json:"remember_me"`
}

// Validate returns the problems with the form, if any.
func (f SignupForm) Validate() validation.FieldErrors {
	fe := validation.Struct(f)
	if _, ok := fe["password"]; !ok && f.Password != "" {
		if err := users.ValidatePasswordStrength(f.Password); err != nil {
			fe.Add("password", err.Error())
		}
	}
	return fe
}

// PendingRegistration is an account waiting for its emailed code.
type PendingRegistration struct {
	Email      string
	RememberMe bool
}

type SignupOutcome struct {
	Pending     *PendingRegistration
	FieldErrors validation.FieldErrors
	Error       *apiclient.APIError
}

func (o SignupOutcome) OK() bool { return o.Pending != nil }

type SignupFlow struct {
	auth Registrar
}

func NewSignupFlow(auth Registrar) *SignupFlow {
	return &SignupFlow{auth: auth}
}

// Submit validates the form and registers the account.
func (f *SignupFlow) Submit(ctx context.Context, form SignupForm) SignupOutcome {
	if fe := form.Validate(); len(fe) > 0 {
		return SignupOutcome{FieldErrors: fe, Error: invalidForm()}
	}
	res := f.auth.Signup(ctx, form.Email, form.Password, session.Consents{
		Privacy:        form.PrivacyConsent,
		DataProcessing: form.DataProcessingConsent,
		Marketing:      form.MarketingConsent,
	})
	if !res.Success {
		return SignupOutcome{FieldErrors: res.FieldErrors, Error: res.Error}
	}
	return SignupOutcome{Pending: &PendingRegistration{Email: res.Email, RememberMe: form.RememberMe}}
}
