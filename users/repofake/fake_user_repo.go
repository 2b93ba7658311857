package fakeuserrepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = users.NormaliseEmail(user.Email)
	if prev, ok := ur.users[user.ID]; ok && prev.Email != user.Email {
		delete(ur.emailIds, prev.Email)
	}
	if existingID, ok := ur.emailIds[user.Email]; ok && existingID != user.ID {
		delete(ur.users, existingID)
	}
	cp := *user
	ur.users[user.ID] = &cp
	ur.emailIds[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	delete(ur.emailIds, user.Email)
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[users.NormaliseEmail(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	cp := *ur.users[id]
	return &cp, nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		cp := *v
		userList = append(userList, &cp)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].CreatedAt.Before(userList[j].CreatedAt) ||
			(userList[i].CreatedAt.Equal(userList[j].CreatedAt) && userList[i].ID < userList[j].ID)
	})

	if offset >= len(userList) {
		return []*users.User{}, nil
	}
	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) SetActive(id string, active bool) error {
	return ur.update(id, func(u *users.User) { u.IsActive = active })
}

func (ur *FakeUserRepo) SetVerified(id string, verified bool) error {
	return ur.update(id, func(u *users.User) { u.IsVerified = verified })
}

func (ur *FakeUserRepo) SetPassword(id string, passwordHash string) error {
	return ur.update(id, func(u *users.User) { u.PasswordHash = passwordHash })
}

func (ur *FakeUserRepo) update(id string, fn func(u *users.User)) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.ErrUserNotFound
	}
	fn(user)
	return nil
}
