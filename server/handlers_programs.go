package server

import (
	"math"
	"net/http"

	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/jrsteele09/flow-client/programs"
)

const (
	defaultProgramLimit = 50
	maxProgramLimit     = 100
	defaultHomeLimit    = 6
	maxHomeLimit        = 20
)

func (s *Server) ListProgramsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problems := validation.FieldErrors{}
		limit, fe := queryInt(r, "limit", defaultProgramLimit, 1, maxProgramLimit)
		problems.Merge(fe)
		offset, fe := queryInt(r, "offset", 0, 0, math.MaxInt32)
		problems.Merge(fe)
		featured, fe := queryBool(r, "featured")
		problems.Merge(fe)
		if len(problems) > 0 {
			writeValidation(w, "query", problems)
			return
		}

		q := r.URL.Query()
		list, err := s.programs.List(programs.ListFilter{
			Goal:       programs.Goal(q.Get("goal")),
			Difficulty: programs.Difficulty(q.Get("difficulty")),
			Featured:   featured,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) FeaturedProgramsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, fe := queryInt(r, "limit", defaultHomeLimit, 1, maxHomeLimit)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}
		list, err := s.programs.Featured(limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RecommendedProgramsHandler matches the catalog against the caller's profile.
func (s *Server) RecommendedProgramsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, fe := queryInt(r, "limit", defaultHomeLimit, 1, maxHomeLimit)
		if len(fe) > 0 {
			writeValidation(w, "query", fe)
			return
		}
		recommended, err := s.programs.Recommend(currentUser(r).ID, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recommended)
	}
}

func (s *Server) ContinueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section, err := s.programs.Continue(currentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, section)
	}
}

func (s *Server) GetProgramHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := s.programs.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) ProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progress, err := s.programs.Progress(currentUser(r).ID, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, progress)
	}
}

func (s *Server) ProgramWorkoutsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workouts, err := s.programs.Workouts(currentUser(r).ID, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, workouts)
	}
}

func (s *Server) EnrollHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		programID := r.PathValue("id")
		enrollment, err := s.programs.Enroll(currentUser(r).ID, programID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, programs.EnrollResponse{
			EnrollmentID: enrollment.ID,
			ProgramID:    programID,
			Message:      "Successfully enrolled in program",
		})
	}
}

// UnenrollHandler pauses the enrollment. Progress is kept for a later resume.
func (s *Server) UnenrollHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.programs.Unenroll(currentUser(r).ID, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, authmodel.MessageResponse{Message: "Successfully unenrolled from program"})
	}
}

func (s *Server) CompleteWorkoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req programs.MarkCompleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := validation.Struct(req).Err(); err != nil {
			writeError(w, r, err)
			return
		}
		resp, err := s.programs.CompleteWorkout(currentUser(r).ID, r.PathValue("id"), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
