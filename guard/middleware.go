package guard

import (
	"net/http"

	"github.com/jrsteele09/flow-client/session"
	"github.com/rs/zerolog/log"
)

// Middleware applies the guard to server rendered pages. stateFor returns
// the session state for the request. A loading session answers 503 with a
// Retry-After so the page is requested again once it has settled.
func (g *Guard) Middleware(stateFor func(*http.Request) session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempted := r.URL.Path
			if r.URL.RawQuery != "" {
				attempted += "?" + r.URL.RawQuery
			}
			d := g.Decide(attempted, stateFor(r))
			switch d.Action {
			case ActionRender:
				next.ServeHTTP(w, r)
			case ActionLoading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Loading", http.StatusServiceUnavailable)
			default:
				log.Debug().Str("path", d.Path).Str("action", d.Action.String()).Str("target", d.Target).Msg("guard redirect")
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
			}
		})
	}
}
