// Package storage is the durable key/value store the client keeps its
// credentials and persisted session in. Entries may carry an expiry after
// which they read as missing.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Repo interface {
	// Set stores value under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns errors.ErrNotFound for missing and expired keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, repo Repo, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "[storage.SetJSON] marshal %s", key)
	}
	return repo.Set(ctx, key, data, ttl)
}

// GetJSON loads key and unmarshals it into v.
func GetJSON(ctx context.Context, repo Repo, key string, v any) error {
	data, err := repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "[storage.GetJSON] unmarshal %s", key)
	}
	return nil
}
