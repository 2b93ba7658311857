package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/credentials"
	"github.com/jrsteele09/flow-client/guard"
	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/storage/sqlitestore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type app struct {
	cfg   config.Config
	out   io.Writer
	db    *sqlitestore.Store
	store *session.Store
}

// annotationPath marks commands that need the session. A non empty value is
// checked with the route guard before the command runs.
const annotationPath = "guard_path"

// Guarded paths for member commands.
const (
	pathOnboarding = "/onboarding"
	pathProfile    = "/profile"
	pathSettings   = "/settings"
	pathDashboard  = "/dashboard"
	pathPrograms   = "/programs"
)

var errUsage = errors.New("invalid usage")

func withPath(path string, cmd *cobra.Command) *cobra.Command {
	cmd.Annotations = map[string]string{annotationPath: path}
	return cmd
}

func (a *app) commands() []*cobra.Command {
	return []*cobra.Command{
		withPath("", a.signupCmd()),
		withPath("", a.verifyCmd()),
		withPath("", a.resendCmd()),
		withPath("", a.loginCmd()),
		withPath("", a.logoutCmd()),
		withPath("", a.statusCmd()),
		withPath("", a.forgotCmd()),
		withPath("", a.resetCmd()),
		withPath(pathSettings, a.passwdCmd()),
		withPath(pathOnboarding, a.onboardCmd()),
		withPath(pathProfile, a.profileCmd()),
		withPath(pathSettings, a.consentCmd()),
		withPath(pathSettings, a.exportCmd()),
		withPath(pathSettings, a.deleteAccountCmd()),
		withPath("", a.programsCmd()),
		withPath("", a.programCmd()),
		withPath(pathDashboard, a.recommendedCmd()),
		withPath(pathDashboard, a.continueCmd()),
		withPath(pathPrograms, a.enrollCmd()),
		withPath(pathPrograms, a.unenrollCmd()),
		withPath(pathPrograms, a.workoutsCmd()),
		withPath(pathPrograms, a.progressCmd()),
		withPath(pathPrograms, a.completeCmd()),
	}
}

func newRootCmd(a *app) *cobra.Command {
	subcommands := a.commands()
	root := &cobra.Command{
		Use:               "flow",
		Short:             "terminal client for the Flow backend",
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			printUsage(a.cfg, a.out, subcommands)
			if len(args) > 0 {
				return errors.Wrapf(errUsage, "unknown command %q", args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, ok := cmd.Annotations[annotationPath]
			if !ok {
				return nil
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			if path == "" {
				return nil
			}
			a.store.CheckAuth(cmd.Context())
			return gate(guard.Decide(path, a.store.State()))
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if !cmd.HasParent() {
			printUsage(a.cfg, a.out, subcommands)
			return
		}
		fmt.Fprintf(a.out, "usage: flow %s\n%s", cmd.Use, cmd.Flags().FlagUsages())
	})
	root.AddCommand(subcommands...)
	return root
}

// open connects the credential database and the session store.
func (a *app) open(ctx context.Context) error {
	db, err := sqlitestore.Open(a.cfg.GetStoragePath())
	if err != nil {
		return err
	}
	a.db = db
	api := apiclient.New(a.cfg.GetAPIBaseURL(), apiclient.WithTimeout(a.cfg.GetHTTPTimeout()))
	a.store = session.Open(ctx, api, db, session.WithCredentialOptions(
		credentials.WithExpiries(a.cfg.GetRememberMeExpiry(), a.cfg.GetSessionExpiry())))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// run executes one CLI invocation against the configured backend.
func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	a := &app{cfg: cfg, out: out}
	defer a.close()

	root := newRootCmd(a)
	// A nil slice makes cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	return root.ExecuteContext(ctx)
}

// gate turns a guard redirect into a hint for the next command to run.
func gate(d guard.Decision) error {
	switch d.Action {
	case guard.ActionRender:
		return nil
	case guard.ActionRedirectLogin:
		return errors.New("not signed in, run: flow login --email E --password P")
	case guard.ActionRedirectOnboarding:
		return errors.New("finish onboarding first, run: flow onboard")
	case guard.ActionRedirectHome:
		return errors.New("not available for this account")
	}
	return errors.New("session is still loading, try again")
}

// authed runs an authenticated call, refreshing the session once on a 401.
func authed[T any](ctx context.Context, a *app, call func(c *apiclient.Client) apiclient.Response[T]) apiclient.Response[T] {
	resp := call(a.store.Client())
	if resp.Error != nil && resp.Error.Status == http.StatusUnauthorized && a.store.RefreshAuth(ctx) {
		resp = call(a.store.Client())
	}
	return resp
}

// failure prints any field problems and returns the API error.
func (a *app) failure(apiErr *apiclient.APIError, fe validation.FieldErrors) error {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", field, fe[field])
	}
	if apiErr == nil {
		return errors.New("invalid input")
	}
	return apiErr
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func printUsage(cfg config.Config, out io.Writer, commands []*cobra.Command) {
	fmt.Fprintln(out, figure.NewFigure(cfg.GetAppName(), "cybermedium", true).String())
	fmt.Fprintln(out, "usage: flow <command> [flags] [args]")
	fmt.Fprintln(out)
	for _, c := range commands {
		fmt.Fprintf(out, "  %-15s %s\n", c.Name(), c.Short)
	}
}

// exactlyOne requires a single positional argument called name.
func exactlyOne(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "usage: flow %s\n", cmd.Use)
			return errors.Wrapf(errUsage, "%s required", name)
		}
		return nil
	}
}
