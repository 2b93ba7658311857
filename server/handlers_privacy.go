package server

import (
	"net/http"

	"github.com/jrsteele09/flow-client/users"
)

func (s *Server) GetConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consent, err := s.privacy.Consent(currentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, consent)
	}
}

func (s *Server) UpdateConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.ConsentUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		consent, err := s.privacy.UpdateConsent(currentUser(r).ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, consent)
	}
}

// ExportDataHandler returns everything held about the caller.
func (s *Server) ExportDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := s.privacy.Export(currentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, export)
	}
}

// DeleteAccountHandler anonymises the caller and revokes every session.
func (s *Server) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req users.DeleteAccountRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := s.privacy.DeleteAccount(currentUser(r).ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
