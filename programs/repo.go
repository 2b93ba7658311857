package programs

// Repo stores the catalog and per user progress.
type Repo interface {
	UpsertProgram(p *Program) error
	GetProgram(id string) (*Program, error)
	ListPrograms() ([]*Program, error)
	// DeleteProgram removes the program with its workouts, enrollments and
	// completions.
	DeleteProgram(id string) error

	UpsertWorkout(w *Workout) error
	GetWorkout(id string) (*Workout, error)
	ListWorkouts(programID string) ([]*Workout, error) // ordered by day number
	DeleteWorkout(id string) error

	UpsertEnrollment(e *Enrollment) error
	GetEnrollment(userID, programID string) (*Enrollment, error)
	ListEnrollments(userID string) ([]*Enrollment, error)

	AddCompletion(c *Completion) error
	ListCompletions(enrollmentID string) ([]*Completion, error)
	DeleteCompletions(enrollmentID string) error
}
