package refreshrepofake

import (
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	byUser map[string]map[string]struct{} // user ID to token hashes
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() refresh.Repo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
		byUser: make(map[string]map[string]struct{}),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	cp := *refreshToken
	tr.tokens[cp.TokenHash] = &cp
	if tr.byUser[cp.UserID] == nil {
		tr.byUser[cp.UserID] = make(map[string]struct{})
	}
	tr.byUser[cp.UserID][cp.TokenHash] = struct{}{}
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(tokenHash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(tr.tokens, tokenHash)
	delete(tr.byUser[rt.UserID], tokenHash)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(tokenHash string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUserID(userID string) (int, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	hashes := tr.byUser[userID]
	for h := range hashes {
		delete(tr.tokens, h)
	}
	delete(tr.byUser, userID)
	return len(hashes), nil
}

func (tr *FakeRefreshTokenRepo) ListByUserID(userID string) ([]*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	list := make([]*refresh.StoredRefreshToken, 0, len(tr.byUser[userID]))
	for h := range tr.byUser[userID] {
		cp := *tr.tokens[h]
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
