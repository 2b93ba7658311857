package fakeprogramrepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/programs"
)

var _ programs.Repo = (*FakeProgramRepo)(nil)

type FakeProgramRepo struct {
	programs    map[string]*programs.Program
	workouts    map[string]*programs.Workout
	enrollments map[string]*programs.Enrollment // keyed by user id + program id
	completions map[string][]*programs.Completion
	lock        sync.RWMutex
}

func New() programs.Repo {
	return &FakeProgramRepo{
		programs:    make(map[string]*programs.Program),
		workouts:    make(map[string]*programs.Workout),
		enrollments: make(map[string]*programs.Enrollment),
		completions: make(map[string][]*programs.Completion),
	}
}

func enrollmentKey(userID, programID string) string {
	return userID + "/" + programID
}

func (r *FakeProgramRepo) UpsertProgram(p *programs.Program) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	cp := *p
	r.programs[p.ID] = &cp
	return nil
}

func (r *FakeProgramRepo) GetProgram(id string) (*programs.Program, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.programs[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *FakeProgramRepo) ListPrograms() ([]*programs.Program, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*programs.Program, 0, len(r.programs))
	for _, p := range r.programs {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *FakeProgramRepo) DeleteProgram(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.programs[id]; !ok {
		return errors.ErrNotFound
	}
	for wid, w := range r.workouts {
		if w.ProgramID == id {
			delete(r.workouts, wid)
		}
	}
	for key, e := range r.enrollments {
		if e.ProgramID == id {
			delete(r.completions, e.ID)
			delete(r.enrollments, key)
		}
	}
	delete(r.programs, id)
	return nil
}

func (r *FakeProgramRepo) UpsertWorkout(w *programs.Workout) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.programs[w.ProgramID]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "program %s", w.ProgramID)
	}
	for id, existing := range r.workouts {
		if existing.ProgramID == w.ProgramID && existing.DayNumber == w.DayNumber && id != w.ID {
			return errors.Wrapf(errors.ErrUnsupported, "day %d already has a workout", w.DayNumber)
		}
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	cp := *w
	r.workouts[w.ID] = &cp
	return nil
}

func (r *FakeProgramRepo) GetWorkout(id string) (*programs.Workout, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *FakeProgramRepo) ListWorkouts(programID string) ([]*programs.Workout, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*programs.Workout, 0)
	for _, w := range r.workouts {
		if w.ProgramID == programID {
			cp := *w
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DayNumber < list[j].DayNumber })
	return list, nil
}

func (r *FakeProgramRepo) DeleteWorkout(id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.workouts[id]; !ok {
		return errors.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

func (r *FakeProgramRepo) UpsertEnrollment(e *programs.Enrollment) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	cp := *e
	r.enrollments[enrollmentKey(e.UserID, e.ProgramID)] = &cp
	return nil
}

func (r *FakeProgramRepo) GetEnrollment(userID, programID string) (*programs.Enrollment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.enrollments[enrollmentKey(userID, programID)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *FakeProgramRepo) ListEnrollments(userID string) ([]*programs.Enrollment, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*programs.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.UserID == userID {
			cp := *e
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.Before(list[j].StartedAt) })
	return list, nil
}

func (r *FakeProgramRepo) AddCompletion(c *programs.Completion) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, existing := range r.completions[c.EnrollmentID] {
		if existing.WorkoutID == c.WorkoutID {
			return errors.Wrapf(errors.ErrUnsupported, "workout %s already completed", c.WorkoutID)
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	cp := *c
	r.completions[c.EnrollmentID] = append(r.completions[c.EnrollmentID], &cp)
	return nil
}

func (r *FakeProgramRepo) ListCompletions(enrollmentID string) ([]*programs.Completion, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	src := r.completions[enrollmentID]
	list := make([]*programs.Completion, 0, len(src))
	for _, c := range src {
		cp := *c
		list = append(list, &cp)
	}
	return list, nil
}

func (r *FakeProgramRepo) DeleteCompletions(enrollmentID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.completions, enrollmentID)
	return nil
}
