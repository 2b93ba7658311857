// Package sqlitestore persists client storage in a local SQLite file using
// the pure Go modernc driver.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ storage.Repo = (*Store)(nil)

type Store struct {
	db      *sql.DB
	nowTime func() time.Time
}

type Option func(*Store)

// WithNowTime sets the clock used for expiry checks.
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// Open creates the database file and its directory if needed and applies
// pending migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] create data folder")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.Open] open database")
	}
	// A single connection keeps writes serialised for SQLite.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitestore.Open] ping database")
	}

	s := &Store{db: db, nowTime: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug().Str("path", path).Msg("client storage opened")
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return errors.Wrap(err, "[sqlitestore.migrate] create schema_migrations")
	}

	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "[sqlitestore.migrate] read migrations")
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied int
		if err := s.db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE filename = ?`, name).Scan(&applied); err != nil {
			return errors.Wrapf(err, "[sqlitestore.migrate] check %s", name)
		}
		if applied > 0 {
			continue
		}
		body, err := fs.ReadFile(migrations, "migrations/"+name)
		if err != nil {
			return errors.Wrapf(err, "[sqlitestore.migrate] read %s", name)
		}
		if _, err := s.db.Exec(string(body)); err != nil {
			return errors.Wrapf(err, "[sqlitestore.migrate] apply %s", name)
		}
		if _, err := s.db.Exec(`INSERT INTO schema_migrations (filename) VALUES (?)`, name); err != nil {
			return errors.Wrapf(err, "[sqlitestore.migrate] record %s", name)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.nowTime().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return errors.Wrapf(err, "[Store.Set] %s", key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv_entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[Store.Get] %s", key)
	}
	if expiresAt.Valid && s.nowTime().UnixMilli() >= expiresAt.Int64 {
		if err := s.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to purge expired entry")
		}
		return nil, apperrors.ErrNotFound
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "[Store.Delete] %s", key)
	}
	return nil
}

// PurgeExpired removes every expired entry and returns how many were dropped.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.nowTime().UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "[Store.PurgeExpired]")
	}
	return res.RowsAffected()
}
