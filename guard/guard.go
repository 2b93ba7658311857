// Package guard decides what a navigation to a protected path should do
// given the current session state.
package guard

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
)

type Action int

const (
	// ActionLoading means the session is still resolving and nothing should
	// be decided yet.
	ActionLoading Action = iota
	ActionRender
	ActionRedirectLogin
	ActionRedirectOnboarding
	// ActionRedirectHome sends signed in users away from areas their role
	// cannot see.
	ActionRedirectHome
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRender:
		return "render"
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionRedirectOnboarding:
		return "redirect_onboarding"
	case ActionRedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

// Decision is the outcome for one path. Target is set for redirects and
// ReturnTo holds the path a login should come back to.
type Decision struct {
	Action   Action
	Path     string
	Target   string
	ReturnTo string
}

// IsRedirect reports whether the decision navigates elsewhere.
func (d Decision) IsRedirect() bool {
	return d.Target != ""
}

type Guard struct {
	loginPath      string
	onboardingPath string
	homePath       string
	publicPaths    map[string]bool
	adminPrefixes  []string
}

type Option func(*Guard)

func WithLoginPath(p string) Option {
	return func(g *Guard) {
		g.loginPath = p
	}
}

func WithOnboardingPath(p string) Option {
	return func(g *Guard) {
		g.onboardingPath = p
	}
}

func WithHomePath(p string) Option {
	return func(g *Guard) {
		g.homePath = p
	}
}

// WithPublicPaths lists paths rendered without any session checks.
func WithPublicPaths(paths ...string) Option {
	return func(g *Guard) {
		for _, p := range paths {
			g.publicPaths[p] = true
		}
	}
}

// WithAdminPrefixes restricts paths under these prefixes to admins.
func WithAdminPrefixes(prefixes ...string) Option {
	return func(g *Guard) {
		g.adminPrefixes = append(g.adminPrefixes, prefixes...)
	}
}

const (
	DefaultLoginPath      = "/login"
	DefaultOnboardingPath = "/onboarding"
	DefaultHomePath       = "/dashboard"
)

func New(opts ...Option) *Guard {
	g := &Guard{
		loginPath:      DefaultLoginPath,
		onboardingPath: DefaultOnboardingPath,
		homePath:       DefaultHomePath,
		publicPaths:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.publicPaths[g.loginPath] = true
	return g
}

var defaultGuard = New(WithAdminPrefixes("/admin"))

// Decide evaluates path against s with the default paths.
func Decide(path string, s session.State) Decision {
	return defaultGuard.Decide(path, s)
}

// Decide evaluates path against s. Nothing is decided while the session is
// loading, whatever the path.
func (g *Guard) Decide(path string, s session.State) Decision {
	attempted := path
	if attempted == "" {
		attempted = "/"
	}
	path = clean(path)
	d := Decision{Path: path}
	switch {
	case s.IsLoading:
		d.Action = ActionLoading
	case g.publicPaths[path]:
		d.Action = ActionRender
	case !s.IsAuthenticated:
		d.Action = ActionRedirectLogin
		d.ReturnTo = attempted
		d.Target = g.loginPath + "?returnTo=" + url.QueryEscape(attempted)
	case !s.HasCompletedOnboarding && path != g.onboardingPath:
		d.Action = ActionRedirectOnboarding
		d.Target = g.onboardingPath
	case g.adminOnly(path) && (s.User == nil || s.User.Role != users.RoleAdmin):
		d.Action = ActionRedirectHome
		d.Target = g.homePath
	default:
		d.Action = ActionRender
	}
	return d
}

func (g *Guard) adminOnly(path string) bool {
	for _, prefix := range g.adminPrefixes {
		if path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// LoginPath returns the login route the guard redirects to.
func (g *Guard) LoginPath() string { return g.loginPath }

func (g *Guard) OnboardingPath() string { return g.onboardingPath }

func clean(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// ReturnTarget reads the returnTo parameter of a login URL, falling back to
// home. Only local paths are accepted.
func (g *Guard) ReturnTarget(rawQuery string) string {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return g.homePath
	}
	target := q.Get("returnTo")
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return g.homePath
	}
	return target
}
