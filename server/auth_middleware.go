package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/flow-client/auth"
	"github.com/jrsteele09/flow-client/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated *users.User
	ContextKeyUser ContextKey = "user"
	// ContextKeyAccessToken stores the raw bearer token
	ContextKeyAccessToken ContextKey = "access_token"
)

// bearerToken returns the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, message)
}

// currentUser returns the user injected by RequireAuth.
func currentUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return user
}

// RequireAuth is middleware that validates a Bearer access token and injects
// the active user it belongs to.
func (s *Server) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}

		user, err := s.auth.Authenticate(token)
		if errors.Is(err, auth.InvalidAccessTokenErr) {
			unauthorized(w, auth.InvalidAccessTokenErr.Message)
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		ctx = context.WithValue(ctx, ContextKeyAccessToken, token)
		next(w, r.WithContext(ctx))
	}
}

// RequireVerified rejects users who have not confirmed their email. It must
// run after RequireAuth.
func (s *Server) RequireVerified(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireVerified(currentUser(r)); err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r)
	}
}

// RequireAdmin checks if the authenticated user holds the admin role
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

// Member returns the middleware for routes that need a verified account.
func (s *Server) Member() []func(http.HandlerFunc) http.HandlerFunc {
	return s.APIMiddleware(s.RequireAuth, s.RequireVerified)
}

// Admin returns the middleware for the admin area.
func (s *Server) Admin() []func(http.HandlerFunc) http.HandlerFunc {
	return s.APIMiddleware(s.RequireAuth, s.RequireVerified, s.RequireAdmin)
}
