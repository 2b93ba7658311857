package fakeotprepo

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/flow-client/auth"
	"github.com/jrsteele09/flow-client/internal/errors"
)

var _ auth.OTPRepo = (*FakeOTPRepo)(nil)

type FakeOTPRepo struct {
	otps []*auth.OTP // in creation order
	lock sync.RWMutex
}

func NewFakeOTPRepo() auth.OTPRepo {
	return &FakeOTPRepo{}
}

func (r *FakeOTPRepo) Insert(otp *auth.OTP) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}
	cp := *otp
	r.otps = append(r.otps, &cp)
	return nil
}

func (r *FakeOTPRepo) Update(otp *auth.OTP) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i, o := range r.otps {
		if o.ID == otp.ID {
			cp := *otp
			r.otps[i] = &cp
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *FakeOTPRepo) Latest(userID, purpose string) (*auth.OTP, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for i := len(r.otps) - 1; i >= 0; i-- {
		o := r.otps[i]
		if o.UserID == userID && o.Purpose == purpose && !o.Used() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *FakeOTPRepo) CountSince(userID, purpose string, since time.Time) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	n := 0
	for _, o := range r.otps {
		if o.UserID == userID && o.Purpose == purpose && !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *FakeOTPRepo) InvalidateUnused(userID, purpose string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, o := range r.otps {
		if o.UserID == userID && o.Purpose == purpose && !o.Used() {
			usedAt := at
			o.UsedAt = &usedAt
		}
	}
	return nil
}

func (r *FakeOTPRepo) DeleteByUserID(userID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	kept := r.otps[:0]
	for _, o := range r.otps {
		if o.UserID != userID {
			kept = append(kept, o)
		}
	}
	r.otps = kept
	return nil
}
