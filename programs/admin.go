package programs

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/flow-client/authmodel"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/internal/utils"
	"github.com/jrsteele09/flow-client/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAdminListLimit = 100
	MaxAdminListLimit     = 500
)

type WorkoutCreate struct {
	WeekNumber       int       `json:"week_number" validate:"required,min=1"`
	DayNumber        int       `json:"day_number" validate:"required,min=1"`
	Title            string    `json:"title" validate:"required,max=200"`
	Description      *string   `json:"description,omitempty"`
	Intensity        Intensity `json:"intensity" validate:"required,oneof=low medium high"`
	DurationMinutes  int       `json:"duration_minutes" validate:"required,min=1"`
	VideoURL         string    `json:"video_url" validate:"required,max=500"`
	VideoTitle       *string   `json:"video_title,omitempty" validate:"omitempty,max=200"`
	VideoThumbnail   *string   `json:"video_thumbnail,omitempty" validate:"omitempty,max=500"`
	CaloriesEstimate *int      `json:"calories_estimate,omitempty" validate:"omitempty,min=0"`
	EquipmentNeeded  []string  `json:"equipment_needed,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	IsRestDay        bool      `json:"is_rest_day"`
}

// WorkoutUpdate changes the non nil fields of a workout.
type WorkoutUpdate struct {
	Title            *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description      *string    `json:"description,omitempty"`
	Intensity        *Intensity `json:"intensity,omitempty" validate:"omitempty,oneof=low medium high"`
	DurationMinutes  *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=1"`
	VideoURL         *string    `json:"video_url,omitempty" validate:"omitempty,max=500"`
	VideoTitle       *string    `json:"video_title,omitempty" validate:"omitempty,max=200"`
	VideoThumbnail   *string    `json:"video_thumbnail,omitempty" validate:"omitempty,max=500"`
	CaloriesEstimate *int       `json:"calories_estimate,omitempty" validate:"omitempty,min=0"`
	EquipmentNeeded  []string   `json:"equipment_needed,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	IsRestDay        *bool      `json:"is_rest_day,omitempty"`
}

type ProgramCreate struct {
	Title             string          `json:"title" validate:"required,max=200"`
	Description       *string         `json:"description,omitempty"`
	ThumbnailURL      *string         `json:"thumbnail_url,omitempty" validate:"omitempty,max=500"`
	Goal              Goal            `json:"goal" validate:"required,oneof=weight_loss muscle_gain flexibility endurance general_fitness rehab_mobility"`
	Difficulty        Difficulty      `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	EquipmentNeeded   []string        `json:"equipment_needed,omitempty"`
	DurationWeeks     int             `json:"duration_weeks" validate:"required,min=1,max=52"`
	DaysPerWeek       int             `json:"days_per_week" validate:"required,min=1,max=7"`
	MinutesPerSession int             `json:"minutes_per_session" validate:"required,min=5,max=180"`
	IsFeatured        bool            `json:"is_featured"`
	Workouts          []WorkoutCreate `json:"workouts,omitempty" validate:"omitempty,dive"`
}

// ProgramUpdate changes the non nil fields of a program.
type ProgramUpdate struct {
	Title             *string     `json:"title,omitempty" validate:"omitempty,max=200"`
	Description       *string     `json:"description,omitempty"`
	ThumbnailURL      *string     `json:"thumbnail_url,omitempty" validate:"omitempty,max=500"`
	Goal              *Goal       `json:"goal,omitempty" validate:"omitempty,oneof=weight_loss muscle_gain flexibility endurance general_fitness rehab_mobility"`
	Difficulty        *Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	EquipmentNeeded   []string    `json:"equipment_needed,omitempty"`
	DurationWeeks     *int        `json:"duration_weeks,omitempty" validate:"omitempty,min=1,max=52"`
	DaysPerWeek       *int        `json:"days_per_week,omitempty" validate:"omitempty,min=1,max=7"`
	MinutesPerSession *int        `json:"minutes_per_session,omitempty" validate:"omitempty,min=5,max=180"`
	IsFeatured        *bool       `json:"is_featured,omitempty"`
	IsPublished       *bool       `json:"is_published,omitempty"`
	OrderIndex        *int        `json:"order_index,omitempty"`
}

// ProgramNotFoundErr is the plain detail returned by admin lookups.
var ProgramNotFoundErr = apperrors.NewCoded(http.StatusNotFound, "", "Program not found")

// WorkoutNotFoundErr is the plain detail returned by admin workout lookups.
var WorkoutNotFoundErr = apperrors.NewCoded(http.StatusNotFound, "", "Workout not found")

func codedProgramNotFound(status int) error {
	return apperrors.NewCoded(status, authmodel.CodeProgramNotFound, "Program not found")
}

func codedWorkoutNotFound() error {
	return apperrors.NewCoded(http.StatusNotFound, authmodel.CodeWorkoutNotFound, "Workout not found")
}

func duplicateDay(day int) error {
	return apperrors.NewCoded(http.StatusBadRequest, authmodel.CodeDuplicateWorkoutDay, "A workout already exists for day "+strconv.Itoa(day))
}

// AdminList pages through the whole catalog, unpublished programs included
// unless asked otherwise.
func (s *Service) AdminList(includeUnpublished bool, offset, limit int) ([]Program, error) {
	all, err := s.repo.ListPrograms()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.AdminList] list programs")
	}
	if !includeUnpublished {
		all = published(all)
	}
	byOrder(all)
	if limit <= 0 {
		limit = DefaultAdminListLimit
	}
	return page(all, max(offset, 0), min(limit, MaxAdminListLimit)), nil
}

// AdminGet returns any program with its workouts.
func (s *Service) AdminGet(programID string) (*ProgramDetail, error) {
	p, err := s.repo.GetProgram(programID)
	if err != nil {
		return nil, ProgramNotFoundErr
	}
	return s.detail(p)
}

func (s *Service) detail(p *Program) (*ProgramDetail, error) {
	workouts, err := s.repo.ListWorkouts(p.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.detail] list workouts")
	}
	d := &ProgramDetail{Program: *p, Workouts: make([]Workout, 0, len(workouts))}
	for _, w := range workouts {
		d.Workouts = append(d.Workouts, *w)
	}
	d.TotalWorkouts = len(d.Workouts)
	return d, nil
}

// Create adds an unpublished program, with its workouts when given.
func (s *Service) Create(req ProgramCreate) (*ProgramDetail, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	days := map[int]bool{}
	for _, w := range req.Workouts {
		if days[w.DayNumber] {
			return nil, duplicateDay(w.DayNumber)
		}
		days[w.DayNumber] = true
	}

	now := s.nowTime()
	p := &Program{
		Title:             req.Title,
		Description:       req.Description,
		ThumbnailURL:      req.ThumbnailURL,
		Goal:              req.Goal,
		Difficulty:        req.Difficulty,
		EquipmentNeeded:   req.EquipmentNeeded,
		DurationWeeks:     req.DurationWeeks,
		DaysPerWeek:       req.DaysPerWeek,
		MinutesPerSession: req.MinutesPerSession,
		IsFeatured:        req.IsFeatured,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.UpsertProgram(p); err != nil {
		return nil, errors.Wrap(err, "[Service.Create] upsert program")
	}
	for _, wc := range req.Workouts {
		if _, err := s.addWorkout(p.ID, wc); err != nil {
			return nil, err
		}
	}
	log.Info().Str("program_id", p.ID).Str("title", p.Title).Msg("program created")
	return s.detail(p)
}

// Update applies the non nil fields of req.
func (s *Service) Update(programID string, req ProgramUpdate) (*Program, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProgram(programID)
	if err != nil {
		return nil, codedProgramNotFound(http.StatusNotFound)
	}
	utils.Set(&p.Title, req.Title)
	utils.SetPtr(&p.Description, req.Description)
	utils.SetPtr(&p.ThumbnailURL, req.ThumbnailURL)
	utils.Set(&p.Goal, req.Goal)
	utils.Set(&p.Difficulty, req.Difficulty)
	utils.SetSlice(&p.EquipmentNeeded, req.EquipmentNeeded)
	utils.Set(&p.DurationWeeks, req.DurationWeeks)
	utils.Set(&p.DaysPerWeek, req.DaysPerWeek)
	utils.Set(&p.MinutesPerSession, req.MinutesPerSession)
	utils.Set(&p.IsFeatured, req.IsFeatured)
	utils.Set(&p.IsPublished, req.IsPublished)
	utils.Set(&p.OrderIndex, req.OrderIndex)
	p.UpdatedAt = s.nowTime()

	if err := s.repo.UpsertProgram(p); err != nil {
		return nil, errors.Wrap(err, "[Service.Update] upsert program")
	}
	log.Info().Str("program_id", programID).Msg("program updated")
	return p, nil
}

// SetPublished shows or hides a program in the catalog.
func (s *Service) SetPublished(programID string, published bool) (*Program, error) {
	return s.Update(programID, ProgramUpdate{IsPublished: utils.Ptr(published)})
}

// Delete removes a program with everything hanging off it.
func (s *Service) Delete(programID string) error {
	if err := s.repo.DeleteProgram(programID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return codedProgramNotFound(http.StatusNotFound)
		}
		return errors.Wrap(err, "[Service.Delete] delete program")
	}
	log.Info().Str("program_id", programID).Msg("program deleted")
	return nil
}

// AddWorkout appends a workout to a program. Each day holds one workout.
func (s *Service) AddWorkout(programID string, req WorkoutCreate) (*Workout, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProgram(programID); err != nil {
		return nil, codedProgramNotFound(http.StatusBadRequest)
	}
	return s.addWorkout(programID, req)
}

func (s *Service) addWorkout(programID string, req WorkoutCreate) (*Workout, error) {
	now := s.nowTime()
	w := &Workout{
		ProgramID:        programID,
		WeekNumber:       req.WeekNumber,
		DayNumber:        req.DayNumber,
		Title:            req.Title,
		Description:      req.Description,
		Intensity:        req.Intensity,
		DurationMinutes:  req.DurationMinutes,
		VideoURL:         req.VideoURL,
		VideoTitle:       req.VideoTitle,
		VideoThumbnail:   req.VideoThumbnail,
		CaloriesEstimate: req.CaloriesEstimate,
		EquipmentNeeded:  req.EquipmentNeeded,
		Tags:             req.Tags,
		IsRestDay:        req.IsRestDay,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.UpsertWorkout(w); err != nil {
		if apperrors.Is(err, apperrors.ErrUnsupported) {
			return nil, duplicateDay(req.DayNumber)
		}
		return nil, errors.Wrap(err, "[Service.addWorkout] upsert workout")
	}
	log.Info().Str("program_id", programID).Str("workout_id", w.ID).Msg("workout added")
	return w, nil
}

// GetWorkout returns any workout, published or not.
func (s *Service) GetWorkout(workoutID string) (*Workout, error) {
	w, err := s.repo.GetWorkout(workoutID)
	if err != nil {
		return nil, WorkoutNotFoundErr
	}
	return w, nil
}

// UpdateWorkout applies the non nil fields of req.
func (s *Service) UpdateWorkout(workoutID string, req WorkoutUpdate) (*Workout, error) {
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}
	w, err := s.repo.GetWorkout(workoutID)
	if err != nil {
		return nil, codedWorkoutNotFound()
	}
	utils.Set(&w.Title, req.Title)
	utils.SetPtr(&w.Description, req.Description)
	utils.Set(&w.Intensity, req.Intensity)
	utils.Set(&w.DurationMinutes, req.DurationMinutes)
	utils.Set(&w.VideoURL, req.VideoURL)
	utils.SetPtr(&w.VideoTitle, req.VideoTitle)
	utils.SetPtr(&w.VideoThumbnail, req.VideoThumbnail)
	utils.SetPtr(&w.CaloriesEstimate, req.CaloriesEstimate)
	utils.SetSlice(&w.EquipmentNeeded, req.EquipmentNeeded)
	utils.SetSlice(&w.Tags, req.Tags)
	utils.Set(&w.IsRestDay, req.IsRestDay)
	w.UpdatedAt = s.nowTime()

	if err := s.repo.UpsertWorkout(w); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateWorkout] upsert workout")
	}
	log.Info().Str("workout_id", workoutID).Msg("workout updated")
	return w, nil
}

func (s *Service) DeleteWorkout(workoutID string) error {
	if err := s.repo.DeleteWorkout(workoutID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return codedWorkoutNotFound()
		}
		return errors.Wrap(err, "[Service.DeleteWorkout] delete workout")
	}
	log.Info().Str("workout_id", workoutID).Msg("workout deleted")
	return nil
}
