// Package credentials owns the access/refresh token pair on the client. The
// pair is kept in durable storage as two entries whose lifetime depends on
// whether the user asked to be remembered.
package credentials

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/flow-client/authmodel"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/storage"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	rememberMeKey   = "remember_me"

	DefaultRememberMeExpiry = 30 * 24 * time.Hour
	DefaultSessionExpiry    = 24 * time.Hour
)

// FromResponse converts a token response into an oauth2.Token carrying both
// halves of the pair.
func FromResponse(resp authmodel.TokenResponse, now time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{"expires_in": resp.ExpiresIn})
}

var _ oauth2.TokenSource = (*Store)(nil)

// Store persists the credential pair. It doubles as the oauth2.TokenSource
// the API client pulls bearer tokens from.
type Store struct {
	repo           storage.Repo
	rememberExpiry time.Duration
	sessionExpiry  time.Duration
	lock           sync.Mutex
}

type Option func(*Store)

// WithExpiries overrides the entry lifetimes for remembered and plain sessions.
func WithExpiries(remember, session time.Duration) Option {
	return func(s *Store) {
		s.rememberExpiry = remember
		s.sessionExpiry = session
	}
}

func NewStore(repo storage.Repo, opts ...Option) *Store {
	s := &Store{
		repo:           repo,
		rememberExpiry: DefaultRememberMeExpiry,
		sessionExpiry:  DefaultSessionExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a freshly issued pair.
func (s *Store) Save(ctx context.Context, tok *oauth2.Token, rememberMe bool) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.Wrap(apperrors.ErrNoToken, "[Store.Save]")
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	ttl := s.sessionExpiry
	if rememberMe {
		ttl = s.rememberExpiry
	}
	if err := s.repo.Set(ctx, AccessTokenKey, []byte(tok.AccessToken), ttl); err != nil {
		return errors.Wrap(err, "[Store.Save] access token")
	}
	if err := s.repo.Set(ctx, RefreshTokenKey, []byte(tok.RefreshToken), ttl); err != nil {
		return errors.Wrap(err, "[Store.Save] refresh token")
	}
	if err := s.repo.Set(ctx, rememberMeKey, []byte(strconv.FormatBool(rememberMe)), ttl); err != nil {
		return errors.Wrap(err, "[Store.Save] remember me")
	}
	return nil
}

// Rotate replaces both tokens after a refresh, keeping the remember me choice
// made at sign in.
func (s *Store) Rotate(ctx context.Context, tok *oauth2.Token) error {
	return s.Save(ctx, tok, s.RememberMe(ctx))
}

// RememberMe reports the choice made when the current pair was first saved.
func (s *Store) RememberMe(ctx context.Context) bool {
	raw, err := s.repo.Get(ctx, rememberMeKey)
	if err != nil {
		return false
	}
	remember, _ := strconv.ParseBool(string(raw))
	return remember
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	raw, err := s.repo.Get(ctx, key)
	if apperrors.Is(err, apperrors.ErrNotFound) || (err == nil && len(raw) == 0) {
		return "", apperrors.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrapf(err, "[Store.get] %s", key)
	}
	return string(raw), nil
}

// AccessToken returns errors.ErrNoToken when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

// RefreshToken returns errors.ErrNoToken when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

// Clear removes both tokens. Every key is attempted even if one fails.
func (s *Store) Clear(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var first error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, rememberMeKey} {
		if err := s.repo.Delete(ctx, key); err != nil && first == nil {
			first = errors.Wrapf(err, "[Store.Clear] %s", key)
		}
	}
	return first
}

// Token implements oauth2.TokenSource. The expiry comes from the access
// token's own claims when they can be read.
func (s *Store) Token() (*oauth2.Token, error) {
	ctx := context.Background()
	access, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if refresh, err := s.RefreshToken(ctx); err == nil {
		tok.RefreshToken = refresh
	}
	if claims, err := ParseClaims(access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

// Claims are the fields the client reads from an access token.
type Claims struct {
	Subject   string
	Role      string
	Type      string
	ExpiresAt time.Time
}

// ParseClaims reads an access token without verifying its signature. The
// client never holds the signing key, so the result is only used for display
// and expiry hints.
func ParseClaims(access string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, mc); err != nil {
		return Claims{}, errors.Wrap(err, "[ParseClaims]")
	}
	c := Claims{}
	c.Subject, _ = mc.GetSubject()
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if typ, ok := mc["type"].(string); ok {
		c.Type = typ
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
