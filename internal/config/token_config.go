package config

import (
	"path/filepath"
	"strings"
	"time"
)

type TokenConfig interface {
	GetSecretKey() string
	GetJWTAlgorithm() string
	GetSigningKeyPath() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type OTPConfig interface {
	GetOTPExpiry() time.Duration
	GetOTPMaxRequestsPerHour() int
	GetOTPMaxVerifyAttempts() int
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetSecretKey() string {
	return GetEnv("SECRET_KEY", "change-me-in-production-use-long-random-string")
}

// GetJWTAlgorithm is HS256 or RS256.
func (Tokens) GetJWTAlgorithm() string {
	return strings.ToUpper(GetEnv("ALGORITHM", "HS256"))
}

// GetSigningKeyPath is where the RS256 private key is kept. It is created on
// first use.
func (Tokens) GetSigningKeyPath() string {
	return GetEnv("SIGNING_KEY_PATH", filepath.Join(EnvVars{}.GetDataFolder(), "signing_key.pem"))
}

func (Tokens) GetAccessTokenExpiry() time.Duration {
	return time.Duration(GetEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute
}

func (Tokens) GetRefreshTokenExpiry() time.Duration {
	return time.Duration(GetEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 30)) * 24 * time.Hour
}

func (Tokens) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

type OTP struct{}

var _ OTPConfig = OTP{}

func (OTP) GetOTPExpiry() time.Duration {
	return time.Duration(GetEnvInt("OTP_EXPIRE_MINUTES", 10)) * time.Minute
}

func (OTP) GetOTPMaxRequestsPerHour() int {
	return GetEnvInt("OTP_MAX_ATTEMPTS", 3)
}

func (OTP) GetOTPMaxVerifyAttempts() int {
	return GetEnvInt("OTP_MAX_VERIFY_ATTEMPTS", 5)
}
