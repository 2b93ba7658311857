package config

import (
	"path/filepath"
	"time"
)

type ClientConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetStoragePath() string
}

type SessionConfig interface {
	GetRememberMeExpiry() time.Duration
	GetSessionExpiry() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIBaseURL returns the backend root including the version prefix.
func (Client) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000/api/v1")
}

// GetHTTPTimeout is zero unless configured, leaving the transport default in place.
func (Client) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("HTTP_TIMEOUT", 0)
}

func (Client) GetStoragePath() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "flow.db")
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetRememberMeExpiry() time.Duration {
	return 30 * 24 * time.Hour
}

func (Session) GetSessionExpiry() time.Duration {
	return 24 * time.Hour
}
