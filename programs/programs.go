// Package programs models the workout catalog, enrollments and progress.
package programs

import "time"

type Goal string

const (
	GoalWeightLoss     Goal = "weight_loss"
	GoalMuscleGain     Goal = "muscle_gain"
	GoalFlexibility    Goal = "flexibility"
	GoalEndurance      Goal = "endurance"
	GoalGeneralFitness Goal = "general_fitness"
	GoalRehabMobility  Goal = "rehab_mobility"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// Program is a curated collection of workouts.
type Program struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	ThumbnailURL      *string    `json:"thumbnail_url"`
	Goal              Goal       `json:"goal"`
	Difficulty        Difficulty `json:"difficulty"`
	EquipmentNeeded   []string   `json:"equipment_needed"`
	DurationWeeks     int        `json:"duration_weeks"`
	DaysPerWeek       int        `json:"days_per_week"`
	MinutesPerSession int        `json:"minutes_per_session"`
	IsFeatured        bool       `json:"is_featured"`
	IsPublished       bool       `json:"is_published"`
	OrderIndex        int        `json:"order_index"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Workout is a single session within a program. DayNumber is the overall
// day across weeks and is unique within a program.
type Workout struct {
	ID               string    `json:"id"`
	ProgramID        string    `json:"program_id"`
	WeekNumber       int       `json:"week_number"`
	DayNumber        int       `json:"day_number"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	Intensity        Intensity `json:"intensity"`
	DurationMinutes  int       `json:"duration_minutes"`
	VideoURL         string    `json:"video_url"`
	VideoTitle       *string   `json:"video_title"`
	VideoThumbnail   *string   `json:"video_thumbnail"`
	CaloriesEstimate *int      `json:"calories_estimate"`
	EquipmentNeeded  []string  `json:"equipment_needed"`
	Tags             []string  `json:"tags"`
	IsRestDay        bool      `json:"is_rest_day"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ProgramDetail struct {
	Program
	Workouts      []Workout `json:"workouts"`
	TotalWorkouts int       `json:"total_workouts"`
}

type WorkoutWithProgress struct {
	Workout
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	IsLocked    bool       `json:"is_locked"` // previous day not completed yet
}

// Enrollment tracks one user's run through a program.
type Enrollment struct {
	ID                     string
	UserID                 string
	ProgramID              string
	CurrentDay             int
	TotalWorkoutsCompleted int
	TotalMinutesCompleted  int
	StreakDays             int
	StartedAt              time.Time
	LastWorkoutAt          *time.Time
	CompletedAt            *time.Time
	PausedAt               *time.Time
	IsActive               bool
}

// Running reports whether the enrollment counts towards the active limit.
func (e *Enrollment) Running() bool {
	return e.IsActive && e.CompletedAt == nil
}

type Completion struct {
	ID              string
	EnrollmentID    string
	WorkoutID       string
	CompletedAt     time.Time
	DurationMinutes int
	Rating          *int
	DifficultyFelt  *string
	Notes           *string
}

type EnrollResponse struct {
	EnrollmentID string `json:"enrollment_id"`
	ProgramID    string `json:"program_id"`
	Message      string `json:"message"`
}

type MarkCompleteRequest struct {
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,min=1"`
	Rating          *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	DifficultyFelt  *string `json:"difficulty_felt,omitempty" validate:"omitempty,oneof=easy just_right hard"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type MarkCompleteResponse struct {
	CompletionID     string  `json:"completion_id"`
	WorkoutID        string  `json:"workout_id"`
	NextWorkoutID    *string `json:"next_workout_id"`
	ProgramCompleted bool    `json:"program_completed"`
	Message          string  `json:"message"`
}

type EnrollmentProgress struct {
	EnrollmentID          string     `json:"enrollment_id"`
	Program               Program    `json:"program"`
	CurrentDay            int        `json:"current_day"`
	TotalDays             int        `json:"total_days"`
	ProgressPercent       float64    `json:"progress_percent"`
	WorkoutsCompleted     int        `json:"workouts_completed"`
	TotalMinutesCompleted int        `json:"total_minutes_completed"`
	StreakDays            int        `json:"streak_days"`
	StartedAt             time.Time  `json:"started_at"`
	LastWorkoutAt         *time.Time `json:"last_workout_at"`
	IsActive              bool       `json:"is_active"`
	CompletedAt           *time.Time `json:"completed_at"`
	NextWorkout           *Workout   `json:"next_workout"`
}

// ContinueSection lists the active enrollments shown on the home screen.
type ContinueSection struct {
	Enrollments []EnrollmentProgress `json:"enrollments"`
}

type Recommended struct {
	Programs []Program `json:"programs"`
	Reason   string    `json:"reason"`
}

// ListFilter narrows GET /programs. Zero values mean no filter.
type ListFilter struct {
	Goal       Goal
	Difficulty Difficulty
	Featured   bool
	Limit      int
	Offset     int
}
