package programs

import (
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/flow-client/authmodel"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	MaxActiveEnrollments = 3
	defaultListLimit     = 50
	maxListLimit         = 100
	defaultFeatureLimit  = 6
)

// Service implements catalog browsing, enrollment and workout progress.
type Service struct {
	repo     Repo
	profiles users.ProfileRepo
	nowTime  func() time.Time
}

type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(repo Repo, profiles users.ProfileRepo, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] programs repo is required")
	}
	if profiles == nil {
		return nil, errors.New("[NewService] profiles repo is required")
	}
	s := &Service{repo: repo, profiles: profiles, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func programNotFound() error {
	return codedProgramNotFound(http.StatusNotFound)
}

func notEnrolled(status int) error {
	return apperrors.NewCoded(status, authmodel.CodeNotEnrolled, "Not enrolled in this program")
}

func published(all []*Program) []*Program {
	out := make([]*Program, 0, len(all))
	for _, p := range all {
		if p.IsPublished {
			out = append(out, p)
		}
	}
	return out
}

func byOrder(list []*Program) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].OrderIndex != list[j].OrderIndex {
			return list[i].OrderIndex < list[j].OrderIndex
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func byFeatured(list []*Program) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsFeatured != list[j].IsFeatured {
			return list[i].IsFeatured
		}
		if list[i].OrderIndex != list[j].OrderIndex {
			return list[i].OrderIndex < list[j].OrderIndex
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func page(list []*Program, offset, limit int) []Program {
	out := make([]Program, 0)
	if offset >= len(list) {
		return out
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	for _, p := range list[offset:end] {
		out = append(out, *p)
	}
	return out
}

// List returns published programs ordered by their catalog position.
func (s *Service) List(filter ListFilter) ([]Program, error) {
	all, err := s.repo.ListPrograms()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.List] list programs")
	}
	matches := make([]*Program, 0)
	for _, p := range published(all) {
		if filter.Goal != "" && p.Goal != filter.Goal {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Featured && !p.IsFeatured {
			continue
		}
		matches = append(matches, p)
	}
	byOrder(matches)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	return page(matches, max(filter.Offset, 0), limit), nil
}

// Featured returns featured programs for the home screen.
func (s *Service) Featured(limit int) ([]Program, error) {
	if limit <= 0 {
		limit = defaultFeatureLimit
	}
	return s.List(ListFilter{Featured: true, Limit: limit})
}

// Recommend matches programs to the user's goal and fitness level, falling
// back to featured programs when nothing matches.
func (s *Service) Recommend(userID string, limit int) (Recommended, error) {
	if limit <= 0 {
		limit = defaultFeatureLimit
	}
	all, err := s.repo.ListPrograms()
	if err != nil {
		return Recommended{}, errors.Wrap(err, "[Service.Recommend] list programs")
	}
	candidates := published(all)

	reason := "Popular programs"
	var goal, level string
	if profile, err := s.profiles.GetByUserID(userID); err == nil {
		goal = utils.Value(profile.PrimaryGoal)
		level = utils.Value(profile.FitnessLevel)
		if goal != "" {
			reason = "Based on your goal: " + strings.ReplaceAll(goal, "_", " ")
		}
	}

	matches := make([]*Program, 0)
	for _, p := range candidates {
		if goal != "" && string(p.Goal) != goal {
			continue
		}
		if level != "" && string(p.Difficulty) != level {
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) == 0 {
		matches = candidates
		reason = "Featured programs"
	}
	byFeatured(matches)
	return Recommended{Programs: page(matches, 0, limit), Reason: reason}, nil
}

// Get returns a published program with its workouts.
func (s *Service) Get(programID string) (*ProgramDetail, error) {
	p, err := s.repo.GetProgram(programID)
	if err != nil || !p.IsPublished {
		return nil, programNotFound()
	}
	return s.detail(p)
}

func (s *Service) activeCount(userID string) (int, error) {
	list, err := s.repo.ListEnrollments(userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range list {
		if e.Running() {
			count++
		}
	}
	return count, nil
}

// Enroll starts a program. A paused enrollment resumes where it stopped and a
// completed one restarts from day one.
func (s *Service) Enroll(userID, programID string) (*Enrollment, error) {
	p, err := s.repo.GetProgram(programID)
	if err != nil {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeProgramNotFound, "Program not found")
	}
	if !p.IsPublished {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeProgramNotPublished, "Program is not available")
	}

	existing, err := s.repo.GetEnrollment(userID, programID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.Enroll] get enrollment")
	}
	if existing != nil && existing.Running() {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeAlreadyEnrolled, "Already enrolled in this program")
	}

	active, err := s.activeCount(userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Enroll] count enrollments")
	}
	if active >= MaxActiveEnrollments {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeMaxEnrollments,
			"Maximum 3 active programs allowed")
	}

	now := s.nowTime()
	enrollment := existing
	switch {
	case enrollment == nil:
		enrollment = &Enrollment{UserID: userID, ProgramID: programID, StartedAt: now, CurrentDay: 1, IsActive: true}
	case enrollment.CompletedAt != nil:
		if err := s.repo.DeleteCompletions(enrollment.ID); err != nil {
			return nil, errors.Wrap(err, "[Service.Enroll] reset completions")
		}
		*enrollment = Enrollment{ID: enrollment.ID, UserID: userID, ProgramID: programID, StartedAt: now, CurrentDay: 1, IsActive: true}
	default:
		enrollment.IsActive = true
		enrollment.PausedAt = nil
	}
	if err := s.repo.UpsertEnrollment(enrollment); err != nil {
		return nil, errors.Wrap(err, "[Service.Enroll] save enrollment")
	}
	log.Info().Str("user_id", userID).Str("program_id", programID).Msg("User enrolled in program")
	return enrollment, nil
}

// Unenroll pauses an enrollment, keeping its progress.
func (s *Service) Unenroll(userID, programID string) error {
	enrollment, err := s.repo.GetEnrollment(userID, programID)
	if err != nil {
		return notEnrolled(http.StatusBadRequest)
	}
	now := s.nowTime()
	enrollment.IsActive = false
	enrollment.PausedAt = &now
	if err := s.repo.UpsertEnrollment(enrollment); err != nil {
		return errors.Wrap(err, "[Service.Unenroll] save enrollment")
	}
	log.Info().Str("user_id", userID).Str("program_id", programID).Msg("User unenrolled from program")
	return nil
}

func workoutByDay(workouts []*Workout, day int) *Workout {
	for _, w := range workouts {
		if w.DayNumber == day {
			return w
		}
	}
	return nil
}

func completedSet(list []*Completion) map[string]*Completion {
	set := make(map[string]*Completion, len(list))
	for _, c := range list {
		set[c.WorkoutID] = c
	}
	return set
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CompleteWorkout records a finished workout. Days must be completed in order.
func (s *Service) CompleteWorkout(userID, workoutID string, req MarkCompleteRequest) (*MarkCompleteResponse, error) {
	workout, err := s.repo.GetWorkout(workoutID)
	if err != nil {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeWorkoutNotFound, "Workout not found")
	}
	enrollment, err := s.repo.GetEnrollment(userID, workout.ProgramID)
	if err != nil || !enrollment.IsActive {
		return nil, notEnrolled(http.StatusBadRequest)
	}

	workouts, err := s.repo.ListWorkouts(workout.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CompleteWorkout] list workouts")
	}
	completions, err := s.repo.ListCompletions(enrollment.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CompleteWorkout] list completions")
	}
	done := completedSet(completions)
	if _, ok := done[workoutID]; ok {
		return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeAlreadyCompleted, "Workout already completed")
	}
	if workout.DayNumber > 1 {
		if prev := workoutByDay(workouts, workout.DayNumber-1); prev != nil {
			if _, ok := done[prev.ID]; !ok {
				return nil, apperrors.NewCoded(http.StatusBadRequest, authmodel.CodePreviousNotCompleted,
					"Complete the previous workout first")
			}
		}
	}

	now := s.nowTime()
	completion := &Completion{
		EnrollmentID:    enrollment.ID,
		WorkoutID:       workoutID,
		CompletedAt:     now,
		DurationMinutes: utils.ValueOr(req.DurationMinutes, workout.DurationMinutes),
		Rating:          req.Rating,
		DifficultyFelt:  req.DifficultyFelt,
		Notes:           req.Notes,
	}
	if err := s.repo.AddCompletion(completion); err != nil {
		return nil, errors.Wrap(err, "[Service.CompleteWorkout] add completion")
	}

	switch {
	case enrollment.LastWorkoutAt == nil:
		enrollment.StreakDays = 1
	case sameDay(*enrollment.LastWorkoutAt, now):
	case sameDay(enrollment.LastWorkoutAt.AddDate(0, 0, 1), now):
		enrollment.StreakDays++
	default:
		enrollment.StreakDays = 1
	}
	enrollment.TotalWorkoutsCompleted++
	enrollment.TotalMinutesCompleted += completion.DurationMinutes
	enrollment.LastWorkoutAt = &now
	enrollment.CurrentDay = workout.DayNumber + 1

	programCompleted := enrollment.TotalWorkoutsCompleted >= len(workouts)
	if programCompleted {
		enrollment.CompletedAt = &now
	}
	if err := s.repo.UpsertEnrollment(enrollment); err != nil {
		return nil, errors.Wrap(err, "[Service.CompleteWorkout] save enrollment")
	}

	resp := &MarkCompleteResponse{
		CompletionID:     completion.ID,
		WorkoutID:        workoutID,
		ProgramCompleted: programCompleted,
		Message:          "Workout completed!",
	}
	if programCompleted {
		resp.Message = "Congratulations! You've completed the program!"
	} else if next := workoutByDay(workouts, workout.DayNumber+1); next != nil {
		resp.NextWorkoutID = &next.ID
	}

	log.Info().Str("user_id", userID).Str("workout_id", workoutID).Bool("program_completed", programCompleted).Msg("Workout completed")
	return resp, nil
}

func (s *Service) progress(enrollment *Enrollment) (*EnrollmentProgress, error) {
	p, err := s.repo.GetProgram(enrollment.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.progress] get program")
	}
	workouts, err := s.repo.ListWorkouts(enrollment.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.progress] list workouts")
	}
	total := len(workouts)
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(enrollment.TotalWorkoutsCompleted)/float64(total)*1000) / 10
	}
	progress := &EnrollmentProgress{
		EnrollmentID:          enrollment.ID,
		Program:               *p,
		CurrentDay:            enrollment.CurrentDay,
		TotalDays:             total,
		ProgressPercent:       percent,
		WorkoutsCompleted:     enrollment.TotalWorkoutsCompleted,
		TotalMinutesCompleted: enrollment.TotalMinutesCompleted,
		StreakDays:            enrollment.StreakDays,
		StartedAt:             enrollment.StartedAt,
		LastWorkoutAt:         enrollment.LastWorkoutAt,
		IsActive:              enrollment.IsActive,
		CompletedAt:           enrollment.CompletedAt,
	}
	if enrollment.CurrentDay <= total {
		if next := workoutByDay(workouts, enrollment.CurrentDay); next != nil {
			cp := *next
			progress.NextWorkout = &cp
		}
	}
	return progress, nil
}

// Progress returns the user's progress through one program.
func (s *Service) Progress(userID, programID string) (*EnrollmentProgress, error) {
	enrollment, err := s.repo.GetEnrollment(userID, programID)
	if err != nil {
		return nil, notEnrolled(http.StatusNotFound)
	}
	return s.progress(enrollment)
}

// Continue returns the running enrollments for the home screen.
func (s *Service) Continue(userID string) (*ContinueSection, error) {
	list, err := s.repo.ListEnrollments(userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Continue] list enrollments")
	}
	running := make([]*Enrollment, 0, len(list))
	for _, e := range list {
		if e.Running() {
			running = append(running, e)
		}
	}
	// Never trained first, then most recent.
	sort.SliceStable(running, func(i, j int) bool {
		a, b := running[i].LastWorkoutAt, running[j].LastWorkoutAt
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return a.After(*b)
	})

	section := &ContinueSection{Enrollments: make([]EnrollmentProgress, 0, len(running))}
	for _, e := range running {
		progress, err := s.progress(e)
		if err != nil {
			return nil, err
		}
		section.Enrollments = append(section.Enrollments, *progress)
	}
	return section, nil
}

// Workouts lists a program's workouts with completion and lock flags.
func (s *Service) Workouts(userID, programID string) ([]WorkoutWithProgress, error) {
	enrollment, err := s.repo.GetEnrollment(userID, programID)
	if err != nil {
		return nil, notEnrolled(http.StatusNotFound)
	}
	workouts, err := s.repo.ListWorkouts(programID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Workouts] list workouts")
	}
	completions, err := s.repo.ListCompletions(enrollment.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Workouts] list completions")
	}
	done := completedSet(completions)

	out := make([]WorkoutWithProgress, 0, len(workouts))
	for _, w := range workouts {
		item := WorkoutWithProgress{Workout: *w}
		if c, ok := done[w.ID]; ok {
			item.IsCompleted = true
			completedAt := c.CompletedAt
			item.CompletedAt = &completedAt
		} else if w.DayNumber > 1 {
			if prev := workoutByDay(workouts, w.DayNumber-1); prev != nil {
				_, prevDone := done[prev.ID]
				item.IsLocked = !prevDone
			}
		}
		out = append(out, item)
	}
	return out, nil
}
