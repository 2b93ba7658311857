package server

import (
	"net/http"

	"github.com/jrsteele09/flow-client/users"
)

// OnboardingHandler stores the questionnaire and creates the profile.
func (s *Server) OnboardingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.OnboardingRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		profile, err := s.profiles.CompleteOnboarding(currentUser(r).ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, profile)
	}
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.profiles.Get(currentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.UpdateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		profile, err := s.profiles.Update(currentUser(r).ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}
