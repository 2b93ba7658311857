package fakestoragerepo

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/storage"
)

var _ storage.Repo = (*FakeStorageRepo)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means never
}

type FakeStorageRepo struct {
	entries map[string]entry
	nowTime func() time.Time
	lock    sync.Mutex
}

type Option func(*FakeStorageRepo)

// WithNowTime sets the clock used for expiry checks.
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *FakeStorageRepo) {
		r.nowTime = nowFunc
	}
}

func New(opts ...Option) *FakeStorageRepo {
	r := &FakeStorageRepo{entries: make(map[string]entry), nowTime: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FakeStorageRepo) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = r.nowTime().Add(ttl)
	}
	r.entries[key] = e
	return nil
}

func (r *FakeStorageRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !r.nowTime().Before(e.expiresAt) {
		delete(r.entries, key)
		return nil, errors.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (r *FakeStorageRepo) Delete(_ context.Context, key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.entries, key)
	return nil
}

// Keys returns the live keys, used by tests to assert what was persisted.
func (r *FakeStorageRepo) Keys() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	keys := make([]string, 0, len(r.entries))
	now := r.nowTime()
	for k, e := range r.entries {
		if e.expiresAt.IsZero() || now.Before(e.expiresAt) {
			keys = append(keys, k)
		}
	}
	return keys
}

// ExpiresAt reports when key expires, zero if it never does.
func (r *FakeStorageRepo) ExpiresAt(key string) (time.Time, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	e, ok := r.entries[key]
	return e.expiresAt, ok
}
