package main

import (
	"github.com/jrsteele09/flow-client/flows"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) signupCmd() *cobra.Command {
	var form flows.SignupForm
	cmd := &cobra.Command{
		Use:   "signup --email E --password P --confirm P --privacy --data-processing",
		Short: "create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome := flows.NewSignupFlow(a.store).Submit(cmd.Context(), form)
			if !outcome.OK() {
				return a.failure(outcome.Error, outcome.FieldErrors)
			}
			a.printf("Verification code sent to %s\nRun: flow verify --email %s --code CODE\n", outcome.Pending.Email, outcome.Pending.Email)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "repeat the password")
	fs.BoolVar(&form.PrivacyConsent, "privacy", false, "accept the privacy policy")
	fs.BoolVar(&form.DataProcessingConsent, "data-processing", false, "accept data processing")
	fs.BoolVar(&form.MarketingConsent, "marketing", false, "receive marketing email")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var pending flows.PendingRegistration
	var code string
	cmd := &cobra.Command{
		Use:   "verify --email E --code C",
		Short: "verify the emailed signup code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome := flows.NewOTPFlow(a.store, pending).Verify(cmd.Context(), code)
			if outcome.Step != flows.OTPStepVerified {
				if outcome.CodeRejected {
					a.printf("Request a new code with: flow resend --email %s\n", pending.Email)
				}
				return a.failure(outcome.Error, outcome.FieldErrors)
			}
			a.printf("Email verified, you are signed in\n")
			if outcome.RequiresOnboarding {
				a.printf("Next: flow onboard\n")
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&pending.Email, "email", "", "email used at signup")
	fs.StringVar(&code, "code", "", "6 digit code")
	fs.BoolVar(&pending.RememberMe, "remember", false, "stay signed in")
	return cmd
}

func (a *app) resendCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resend --email E",
		Short: "send a new signup code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := flows.NewOTPFlow(a.store, flows.PendingRegistration{Email: email}).Resend(cmd.Context())
			if !res.Success {
				return a.failure(res.Error, res.FieldErrors)
			}
			a.printf("%s\n", res.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email used at signup")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	var remember bool
	cmd := &cobra.Command{
		Use:   "login --email E --password P [--remember]",
		Short: "sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errors.Wrap(errUsage, "email and password required")
			}
			res := a.store.Login(cmd.Context(), email, password, remember)
			if !res.Success {
				return a.failure(res.Error, nil)
			}
			a.printf("Signed in as %s\n", users.NormaliseEmail(email))
			if res.RequiresOnboarding {
				a.printf("Next: flow onboard\n")
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "password")
	fs.BoolVar(&remember, "remember", false, "stay signed in")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "sign out and forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.store.Logout(cmd.Context())
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.store.CheckAuth(ctx)
			st := a.store.State()
			if !st.IsAuthenticated || st.User == nil {
				a.printf("Not signed in\n")
				return nil
			}
			a.printf("Signed in as %s (%s)\n", st.User.Email, st.User.Role)
			a.printf("Phase: %s\n", st.Phase)
			a.printf("Remember me: %t\n", a.store.Credentials().RememberMe(ctx))
			if !st.HasCompletedOnboarding {
				a.printf("Next: flow onboard\n")
			}
			return nil
		},
	}
}

func (a *app) forgotCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot --email E",
		Short: "request a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome := flows.NewPasswordResetFlow(a.store).Request(cmd.Context(), email)
			if outcome.Step != flows.ResetStepReset {
				return a.failure(outcome.Error, outcome.FieldErrors)
			}
			a.printf("%s\nRun: flow reset --email %s --code CODE --password P --confirm P\n", outcome.Message, email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

// resetCmd completes a reset started by forgot in an earlier invocation.
func (a *app) resetCmd() *cobra.Command {
	var email, code, password, confirm string
	cmd := &cobra.Command{
		Use:   "reset --email E --code C --password P --confirm P",
		Short: "choose a new password with a reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password != confirm {
				return a.failure(nil, validation.FieldErrors{"confirm_password": "passwords do not match"})
			}
			res := a.store.ResetPassword(cmd.Context(), email, code, password)
			if !res.Success {
				return a.failure(res.Error, res.FieldErrors)
			}
			a.printf("%s\nSign in with: flow login --email %s --password P\n", res.Message, users.NormaliseEmail(email))
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&code, "code", "", "6 digit code")
	fs.StringVar(&password, "password", "", "new password")
	fs.StringVar(&confirm, "confirm", "", "repeat the new password")
	return cmd
}

func (a *app) passwdCmd() *cobra.Command {
	var current, next, confirm string
	cmd := &cobra.Command{
		Use:   "passwd --current P --new P --confirm P",
		Short: "change the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if next != confirm {
				return a.failure(nil, validation.FieldErrors{"confirm_password": "passwords do not match"})
			}
			res := a.store.ChangePassword(cmd.Context(), current, next)
			if !res.Success {
				return a.failure(res.Error, res.FieldErrors)
			}
			a.printf("%s\n", res.Message)
			if a.store.State().Phase == session.PhaseUnauthenticated {
				a.printf("Sign in again with the new password\n")
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&current, "current", "", "current password")
	fs.StringVar(&next, "new", "", "new password")
	fs.StringVar(&confirm, "confirm", "", "repeat the new password")
	return cmd
}
