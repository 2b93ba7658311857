package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/storage"
	fakestoragerepo "github.com/jrsteele09/flow-client/storage/repofake"
	"github.com/jrsteele09/flow-client/storage/sqlitestore"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func runRepoContract(t *testing.T, repo storage.Repo, c *clock) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k", []byte("v1"), 0))
		require.NoError(t, repo.Set(ctx, "k", []byte("v2"), 0))
		got, err := repo.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("v2"), got)

		require.NoError(t, repo.Delete(ctx, "k"))
		_, err = repo.Get(ctx, "k")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, "k"))
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "short", []byte("x"), time.Hour))
		require.NoError(t, repo.Set(ctx, "long", []byte("y"), 48*time.Hour))

		c.now = c.now.Add(59 * time.Minute)
		_, err := repo.Get(ctx, "short")
		require.NoError(t, err)

		c.now = c.now.Add(time.Minute)
		_, err = repo.Get(ctx, "short")
		require.ErrorIs(t, err, apperrors.ErrNotFound)
		_, err = repo.Get(ctx, "long")
		require.NoError(t, err)
	})

	t.Run("json helpers", func(t *testing.T) {
		type persisted struct {
			IsAuthenticated bool `json:"isAuthenticated"`
		}
		require.NoError(t, storage.SetJSON(ctx, repo, "auth-storage", persisted{IsAuthenticated: true}, 0))
		var out persisted
		require.NoError(t, storage.GetJSON(ctx, repo, "auth-storage", &out))
		require.True(t, out.IsAuthenticated)
	})
}

func TestFakeStorageRepo(t *testing.T) {
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	runRepoContract(t, fakestoragerepo.New(fakestoragerepo.WithNowTime(c.Now)), c)
}

func TestSQLiteStore(t *testing.T) {
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "nested", "flow.db")
	store, err := sqlitestore.Open(path, sqlitestore.WithNowTime(c.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runRepoContract(t, store, c)

	t.Run("survives reopen", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, "access_token", []byte("abc"), 24*time.Hour))
		require.NoError(t, store.Close())

		reopened, err := sqlitestore.Open(path, sqlitestore.WithNowTime(c.Now))
		require.NoError(t, err)
		t.Cleanup(func() { _ = reopened.Close() })

		got, err := reopened.Get(ctx, "access_token")
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), got)

		c.now = c.now.Add(25 * time.Hour)
		n, err := reopened.PurgeExpired(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(1))
	})
}
