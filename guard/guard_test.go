package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/flow-client/guard"
	"github.com/jrsteele09/flow-client/session"
	"github.com/jrsteele09/flow-client/users"
	"github.com/stretchr/testify/require"
)

func signedIn(onboarded bool, role users.RoleType) session.State {
	phase := session.PhaseAuthenticatedNoProfile
	if onboarded {
		phase = session.PhaseAuthenticatedOnboarded
	}
	return session.State{
		User:                   &users.User{ID: "u-1", Email: "sam@example.com", Role: role},
		IsAuthenticated:        true,
		HasCompletedOnboarding: onboarded,
		Phase:                  phase,
	}
}

func TestDecide(t *testing.T) {
	loading := session.State{IsLoading: true}
	loadingSignedIn := signedIn(true, users.RoleMember)
	loadingSignedIn.IsLoading = true

	tests := []struct {
		name       string
		path       string
		state      session.State
		wantAction guard.Action
		wantTarget string
	}{
		{"loading on protected path", "/dashboard", loading, guard.ActionLoading, ""},
		{"loading on login path", "/login", loading, guard.ActionLoading, ""},
		{"loading while signed in", "/onboarding", loadingSignedIn, guard.ActionLoading, ""},
		{"signed out", "/programs/abc", session.Empty(), guard.ActionRedirectLogin, "/login?returnTo=%2Fprograms%2Fabc"},
		{"signed out keeps query", "/programs?goal=strength", session.Empty(), guard.ActionRedirectLogin, "/login?returnTo=%2Fprograms%3Fgoal%3Dstrength"},
		{"signed out on login page", "/login", session.Empty(), guard.ActionRender, ""},
		{"not onboarded", "/dashboard", signedIn(false, users.RoleMember), guard.ActionRedirectOnboarding, "/onboarding"},
		{"not onboarded on onboarding page", "/onboarding", signedIn(false, users.RoleMember), guard.ActionRender, ""},
		{"onboarded", "/dashboard", signedIn(true, users.RoleMember), guard.ActionRender, ""},
		{"onboarded revisits onboarding", "/onboarding", signedIn(true, users.RoleMember), guard.ActionRender, ""},
		{"member in admin area", "/admin/users", signedIn(true, users.RoleMember), guard.ActionRedirectHome, "/dashboard"},
		{"admin in admin area", "/admin", signedIn(true, users.RoleAdmin), guard.ActionRender, ""},
		{"admin prefix is a path segment", "/administrator", signedIn(true, users.RoleMember), guard.ActionRender, ""},
		{"trailing slash", "/dashboard/", signedIn(false, users.RoleMember), guard.ActionRedirectOnboarding, "/onboarding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := guard.Decide(tt.path, tt.state)
			require.Equal(t, tt.wantAction, d.Action)
			require.Equal(t, tt.wantTarget, d.Target)
			require.Equal(t, tt.wantTarget != "", d.IsRedirect())
		})
	}
}

func TestDecide_CustomPaths(t *testing.T) {
	g := guard.New(
		guard.WithLoginPath("/signin"),
		guard.WithOnboardingPath("/welcome"),
		guard.WithHomePath("/home"),
		guard.WithPublicPaths("/", "/programs"),
	)

	t.Run("public path skips checks", func(t *testing.T) {
		require.Equal(t, guard.ActionRender, g.Decide("/programs", session.Empty()).Action)
	})

	t.Run("login redirect uses configured path", func(t *testing.T) {
		d := g.Decide("/home", session.Empty())
		require.Equal(t, "/signin?returnTo=%2Fhome", d.Target)
		require.Equal(t, "/home", d.ReturnTo)
	})

	t.Run("onboarding redirect uses configured path", func(t *testing.T) {
		require.Equal(t, "/welcome", g.Decide("/home", signedIn(false, users.RoleMember)).Target)
	})
}

func TestReturnTarget(t *testing.T) {
	g := guard.New()
	require.Equal(t, "/programs/abc", g.ReturnTarget("returnTo=%2Fprograms%2Fabc"))
	require.Equal(t, guard.DefaultHomePath, g.ReturnTarget(""))
	require.Equal(t, guard.DefaultHomePath, g.ReturnTarget("returnTo=https%3A%2F%2Fevil.example"))
	require.Equal(t, guard.DefaultHomePath, g.ReturnTarget("returnTo=%2F%2Fevil.example"))
}

func TestWatch(t *testing.T) {
	g := guard.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths := make(chan string)
	states := make(chan session.State)
	decisions := g.Watch(ctx, paths, states)

	next := func() guard.Decision {
		t.Helper()
		select {
		case d := <-decisions:
			return d
		case <-time.After(time.Second):
			t.Fatal("no decision")
		}
		return guard.Decision{}
	}

	paths <- "/dashboard"
	states <- session.State{IsLoading: true}
	require.Equal(t, guard.ActionLoading, next().Action)

	states <- signedIn(false, users.RoleMember)
	require.Equal(t, guard.ActionRedirectOnboarding, next().Action)

	paths <- "/onboarding"
	require.Equal(t, guard.ActionRender, next().Action)

	states <- session.Empty()
	d := next()
	require.Equal(t, guard.ActionRedirectLogin, d.Action)
	require.Equal(t, "/onboarding", d.ReturnTo)

	cancel()
	require.Eventually(t, func() bool {
		_, ok := <-decisions
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMiddleware(t *testing.T) {
	g := guard.New()
	state := session.Empty()
	handler := g.Middleware(func(*http.Request) session.State { return state })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("signed out redirects to login", func(t *testing.T) {
		state = session.Empty()
		rec := serve("/programs?goal=strength")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login?returnTo=%2Fprograms%3Fgoal%3Dstrength", rec.Header().Get("Location"))
	})

	t.Run("loading asks to retry", func(t *testing.T) {
		state = session.State{IsLoading: true}
		rec := serve("/dashboard")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "1", rec.Header().Get("Retry-After"))
	})

	t.Run("onboarded renders", func(t *testing.T) {
		state = signedIn(true, users.RoleMember)
		require.Equal(t, http.StatusOK, serve("/dashboard").Code)
	})
}
