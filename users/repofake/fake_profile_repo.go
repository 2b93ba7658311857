package fakeuserrepo

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/users"
)

var _ users.ProfileRepo = (*FakeProfileRepo)(nil)

type FakeProfileRepo struct {
	profiles map[string]*users.Profile // keyed by user id
	lock     sync.RWMutex
}

func NewFakeProfileRepo() users.ProfileRepo {
	return &FakeProfileRepo{profiles: make(map[string]*users.Profile)}
}

func (pr *FakeProfileRepo) Upsert(profile *users.Profile) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	cp := *profile
	pr.profiles[profile.UserID] = &cp
	return nil
}

func (pr *FakeProfileRepo) GetByUserID(userID string) (*users.Profile, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	p, ok := pr.profiles[userID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (pr *FakeProfileRepo) DeleteByUserID(userID string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	delete(pr.profiles, userID)
	return nil
}
