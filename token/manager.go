// Package token issues and verifies the dev backend's credentials: short
// lived signed access tokens (HS256 by default, RS256 optionally) and opaque
// rotating refresh tokens.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/flow-client/authmodel"
	"github.com/jrsteele09/flow-client/internal/config"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/token/refresh"
	"github.com/jrsteele09/flow-client/users"
	"github.com/pkg/errors"
)

const (
	TokenTypeBearer = "bearer"
	accessTokenType = "access"
)

// Claims is the verified content of an access token.
type Claims struct {
	UserID    string
	Role      users.RoleType
	ID        string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	signer            Signer
	refresh           *refresh.Manager
	userRepo          users.UserRepo
	revokedCache      RevokedTokenCache
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revokedCache = cache
	}
}

// WithAccessTokenExpiry overrides the configured access token lifetime.
func WithAccessTokenExpiry(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = d
	}
}

func New(refreshRepo refresh.Repo, userRepo users.UserRepo, signer Signer, cfg config.TokenConfig, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:            signer,
		userRepo:          userRepo,
		revokedCache:      NewInMemoryRevokedTokenCache(),
		accessTokenExpiry: cfg.GetAccessTokenExpiry(),
		nowFunc:           time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = 15 * time.Minute
	}
	m.refresh = refresh.NewManager(refreshRepo, cfg, refresh.WithNowTime(func() time.Time { return m.nowFunc() }))
	return m
}

func (c *Manager) CreateAccessToken(user *users.User) (string, error) {
	now := c.nowFunc()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"type": accessTokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(c.accessTokenExpiry).Unix(),
		"jti":  uuid.New().String(),
	}
	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.CreateAccessToken] Sign")
	}
	return signed, nil
}

// Issue creates a fresh credential pair for user.
func (c *Manager) Issue(user *users.User) (*authmodel.TokenResponse, error) {
	accessToken, err := c.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := c.refresh.Create(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Issue] refresh.Create")
	}
	return &authmodel.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(c.accessTokenExpiry.Seconds()),
	}, nil
}

func (c *Manager) parse(rawToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(rawToken, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Verify checks the signature, expiry, token type and revocation state of
// an access token.
func (c *Manager) Verify(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.ErrNoToken
	}
	claims, err := c.parse(rawToken)
	if err != nil {
		return nil, err
	}

	if tokenType, _ := claims["type"].(string); tokenType != accessTokenType {
		return nil, apperrors.ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, apperrors.ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	jti, _ := claims["jti"].(string)

	out := &Claims{UserID: sub, Role: users.RoleType(role), ID: jti}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}

	if jti != "" && c.revokedCache.IsRevoked(jti) {
		return nil, apperrors.ErrInvalidToken
	}
	if cutoff, ok := c.revokedCache.RevokedBefore(sub); ok && out.IssuedAt.Before(cutoff) {
		return nil, apperrors.ErrInvalidToken
	}
	return out, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is only
// spent once the user has been checked, so a deactivated account does not
// lose it.
func (c *Manager) Refresh(rawRefreshToken string) (*authmodel.TokenResponse, *users.User, error) {
	rt, err := c.refresh.Validate(rawRefreshToken)
	if err != nil {
		return nil, nil, err
	}
	user, err := c.userRepo.GetByID(rt.UserID)
	if err != nil || !user.IsActive {
		return nil, nil, apperrors.ErrUserInactive
	}
	if _, err := c.refresh.Consume(rawRefreshToken); err != nil {
		return nil, nil, err
	}
	pair, err := c.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RevokeRefreshToken reports whether the token existed.
func (c *Manager) RevokeRefreshToken(rawRefreshToken string) bool {
	return c.refresh.Revoke(rawRefreshToken)
}

// RevokeAccessToken stops a single access token from verifying again.
func (c *Manager) RevokeAccessToken(rawToken string) error {
	claims, err := c.parse(rawToken)
	if err != nil {
		return errors.Wrap(err, "[Manager.RevokeAccessToken] invalid token")
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return errors.New("[Manager.RevokeAccessToken] token missing jti claim")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return errors.New("[Manager.RevokeAccessToken] token missing exp claim")
	}
	return c.revokedCache.Add(jti, exp.Time)
}

// RevokeAll signs userID out everywhere: every refresh token is deleted and
// access tokens issued before this second stop verifying.
func (c *Manager) RevokeAll(userID string) error {
	if _, err := c.refresh.RevokeAll(userID); err != nil {
		return err
	}
	return c.revokedCache.RevokeUser(userID, c.nowFunc().Truncate(time.Second))
}

// ActiveSessions counts the unexpired refresh tokens held by userID.
func (c *Manager) ActiveSessions(userID string) (int, error) {
	return c.refresh.Active(userID)
}

func (c *Manager) CleanupRevokedTokens() {
	c.revokedCache.Cleanup(c.nowFunc())
}

func (c *Manager) AccessTokenExpiry() time.Duration {
	return c.accessTokenExpiry
}
