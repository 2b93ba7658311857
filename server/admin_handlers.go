package server

import (
	"math"
	"net/http"

	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/programs"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

// AdminUsersListHandler pages through all accounts
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, fe := queryInt(r, "offset", 0, 0, math.MaxInt32)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}
		limit, fe := queryInt(r, "limit", defaultAdminPageSize, 1, maxAdminPageSize)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}

		list, err := s.auth.ListUsers(offset, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// AdminSetActiveHandler activates or deactivates the account named in the
// path. Admins cannot deactivate themselves.
func (s *Server) AdminSetActiveHandler(active bool) http.HandlerFunc {
	message := "User deactivated"
	if active {
		message = "User activated"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.PathValue("id")
		if !active && userID == currentUser(r).ID {
			writeDetail(w, http.StatusBadRequest, "Admins cannot deactivate their own account")
			return
		}
		if err := s.auth.SetActive(userID, active); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: message})
	}
}

// AdminProgramsListHandler lists the whole catalog, unpublished programs
// included unless include_unpublished=false.
func (s *Server) AdminProgramsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeUnpublished := true
		if r.URL.Query().Get("include_unpublished") != "" {
			v, fe := queryBool(r, "include_unpublished")
			if len(fe) > 0 {
				writeValidation(w, "query", fe)
				return
			}
			includeUnpublished = v
		}
		limit, fe := queryInt(r, "limit", programs.DefaultAdminListLimit, 1, programs.MaxAdminListLimit)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}
		offset, fe := queryInt(r, "offset", 0, 0, math.MaxInt32)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}

		list, err := s.programs.AdminList(includeUnpublished, offset, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// AdminCreateProgramHandler creates an unpublished program.
func (s *Server) AdminCreateProgramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programs.ProgramCreate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		detail, err := s.programs.Create(req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

func (s *Server) AdminGetProgramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := s.programs.AdminGet(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) AdminUpdateProgramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programs.ProgramUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		p, err := s.programs.Update(r.PathValue("id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) AdminDeleteProgramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.programs.Delete(r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: "Program deleted successfully"})
	}
}

// AdminPublishHandler shows or hides the program in the member catalog.
func (s *Server) AdminPublishHandler(publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.programs.SetPublished(r.PathValue("id"), publish)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) AdminAddWorkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programs.WorkoutCreate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		workout, err := s.programs.AddWorkout(r.PathValue("id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, workout)
	}
}

func (s *Server) AdminGetWorkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workout, err := s.programs.GetWorkout(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, workout)
	}
}

func (s *Server) AdminUpdateWorkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programs.WorkoutUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		workout, err := s.programs.UpdateWorkout(r.PathValue("id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, workout)
	}
}

func (s *Server) AdminDeleteWorkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.programs.DeleteWorkout(r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: "Workout deleted successfully"})
	}
}
