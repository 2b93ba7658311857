package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/credentials"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	fakestoragerepo "github.com/jrsteele09/flow-client/storage/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	repo  *fakestoragerepo.FakeStorageRepo
	store *credentials.Store
	now   time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	f.repo = fakestoragerepo.New(fakestoragerepo.WithNowTime(func() time.Time { return f.now }))
	f.store = credentials.NewStore(f.repo)
	return f
}

func signedAccess(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": "admin",
		"type": "access",
		"exp":  exp.Unix(),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestSave_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("remember me keeps tokens for 30 days", func(t *testing.T) {
		f := setupTestFixture(t)
		tok := credentials.FromResponse(authmodel.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900}, f.now)
		require.NoError(t, f.store.Save(ctx, tok, true))

		exp, ok := f.repo.ExpiresAt(credentials.AccessTokenKey)
		require.True(t, ok)
		require.Equal(t, f.now.Add(30*24*time.Hour), exp)
		exp, ok = f.repo.ExpiresAt(credentials.RefreshTokenKey)
		require.True(t, ok)
		require.Equal(t, f.now.Add(30*24*time.Hour), exp)
		require.True(t, f.store.RememberMe(ctx))
	})

	t.Run("session tokens last one day", func(t *testing.T) {
		f := setupTestFixture(t)
		tok := credentials.FromResponse(authmodel.TokenResponse{AccessToken: "a", RefreshToken: "r"}, f.now)
		require.NoError(t, f.store.Save(ctx, tok, false))

		f.now = f.now.Add(23 * time.Hour)
		access, err := f.store.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "a", access)

		f.now = f.now.Add(time.Hour)
		_, err = f.store.AccessToken(ctx)
		require.ErrorIs(t, err, apperrors.ErrNoToken)
		_, err = f.store.RefreshToken(ctx)
		require.ErrorIs(t, err, apperrors.ErrNoToken)
	})

	t.Run("empty pair rejected", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Error(t, f.store.Save(ctx, nil, false))
	})
}

func TestRotate_KeepsRememberMe(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(ctx, credentials.FromResponse(authmodel.TokenResponse{AccessToken: "a1", RefreshToken: "r1"}, f.now), true))

	f.now = f.now.Add(time.Hour)
	require.NoError(t, f.store.Rotate(ctx, credentials.FromResponse(authmodel.TokenResponse{AccessToken: "a2", RefreshToken: "r2"}, f.now)))

	refresh, err := f.store.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "r2", refresh)
	exp, _ := f.repo.ExpiresAt(credentials.RefreshTokenKey)
	require.Equal(t, f.now.Add(30*24*time.Hour), exp)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(ctx, credentials.FromResponse(authmodel.TokenResponse{AccessToken: "a", RefreshToken: "r"}, f.now), false))
	require.NoError(t, f.store.Clear(ctx))
	require.Empty(t, f.repo.Keys())
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.store.Token()
	require.ErrorIs(t, err, apperrors.ErrNoToken)

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	access := signedAccess(t, exp)
	require.NoError(t, f.store.Save(ctx, credentials.FromResponse(authmodel.TokenResponse{AccessToken: access, RefreshToken: "r"}, f.now), false))

	tok, err := f.store.Token()
	require.NoError(t, err)
	require.Equal(t, access, tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.True(t, exp.Equal(tok.Expiry))
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := credentials.ParseClaims(signedAccess(t, exp))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, "access", claims.Type)
	require.True(t, exp.Equal(claims.ExpiresAt))

	_, err = credentials.ParseClaims("not-a-jwt")
	require.Error(t, err)
}
