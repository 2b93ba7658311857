package refresh

import (
	"time"
)

// StoredRefreshToken is the server side record of an issued refresh token.
// The client holds the raw token; only its SHA-256 hash is kept here.
type StoredRefreshToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repo stores refresh token records keyed by token hash. A user can hold
// several at once, one per signed in device.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(tokenHash string) error
	Get(tokenHash string) (*StoredRefreshToken, error)
	DeleteByUserID(userID string) (int, error)
	ListByUserID(userID string) ([]*StoredRefreshToken, error)
}
