package token

import (
	"sync"
	"time"
)

// RevokedTokenCache remembers access tokens that must stop working before
// they expire, either one at a time by jti or every token a user was issued
// before a cutoff.
type RevokedTokenCache interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	RevokeUser(userID string, cutoff time.Time) error
	RevokedBefore(userID string) (time.Time, bool)
	Cleanup(now time.Time)
}

type InMemoryRevokedTokenCache struct {
	revoked map[string]time.Time // jti to token expiry
	users   map[string]time.Time // user id to cutoff
	mu      sync.RWMutex
}

func NewInMemoryRevokedTokenCache() RevokedTokenCache {
	return &InMemoryRevokedTokenCache{
		revoked: make(map[string]time.Time),
		users:   make(map[string]time.Time),
	}
}

func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

func (c *InMemoryRevokedTokenCache) RevokeUser(userID string, cutoff time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.users[userID]; !ok || cutoff.After(existing) {
		c.users[userID] = cutoff
	}
	return nil
}

func (c *InMemoryRevokedTokenCache) RevokedBefore(userID string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cutoff, ok := c.users[userID]
	return cutoff, ok
}

// Cleanup drops jti entries whose tokens have expired anyway. User cutoffs
// are kept because they are small and apply to any older token.
func (c *InMemoryRevokedTokenCache) Cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}
