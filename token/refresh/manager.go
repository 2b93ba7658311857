package refresh

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/pkg/errors"
)

const defaultTokenLength = 32

// Config is the slice of token configuration the manager needs.
type Config interface {
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

// Manager issues, validates and rotates opaque refresh tokens.
type Manager struct {
	repo    Repo
	config  Config
	nowTime func() time.Time
}

type ManagerOption func(*Manager)

func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(repo Repo, cfg Config, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:    repo,
		config:  cfg,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Hash is the storage key for a raw token.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Create generates a URL safe token for userID and stores its hash.
func (m *Manager) Create(userID string) (string, error) {
	length := m.config.GetRefreshTokenLength()
	if length <= 0 {
		length = defaultTokenLength
	}
	tokenBytes := make([]byte, length)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] rand.Read")
	}
	raw := base64.RawURLEncoding.EncodeToString(tokenBytes)

	now := m.nowTime()
	if err := m.repo.Upsert(&StoredRefreshToken{
		TokenHash: Hash(raw),
		UserID:    userID,
		ExpiresAt: now.Add(m.config.GetRefreshTokenExpiry()),
		CreatedAt: now,
	}); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] Upsert")
	}
	return raw, nil
}

// Validate returns the record for raw if it exists and has not expired.
// Expired records are removed.
func (m *Manager) Validate(raw string) (*StoredRefreshToken, error) {
	if raw == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	hash := Hash(raw)
	rt, err := m.repo.Get(hash)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if !m.nowTime().Before(rt.ExpiresAt) {
		_ = m.repo.Delete(hash)
		return nil, apperrors.ErrInvalidRefreshToken
	}
	return rt, nil
}

// Consume validates raw and deletes it so it cannot be used again.
func (m *Manager) Consume(raw string) (*StoredRefreshToken, error) {
	rt, err := m.Validate(raw)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Delete(rt.TokenHash); err != nil {
		// Lost a race with another rotation of the same token.
		return nil, apperrors.ErrInvalidRefreshToken
	}
	return rt, nil
}

// Revoke deletes raw. Unknown tokens are ignored.
func (m *Manager) Revoke(raw string) bool {
	return m.repo.Delete(Hash(raw)) == nil
}

// RevokeAll deletes every refresh token held by userID.
func (m *Manager) RevokeAll(userID string) (int, error) {
	n, err := m.repo.DeleteByUserID(userID)
	if err != nil {
		return 0, errors.Wrap(err, "[Manager.RevokeAll] DeleteByUserID")
	}
	return n, nil
}

// Active counts the unexpired tokens held by userID.
func (m *Manager) Active(userID string) (int, error) {
	list, err := m.repo.ListByUserID(userID)
	if err != nil {
		return 0, errors.Wrap(err, "[Manager.Active] ListByUserID")
	}
	now := m.nowTime()
	n := 0
	for _, rt := range list {
		if now.Before(rt.ExpiresAt) {
			n++
		}
	}
	return n, nil
}
