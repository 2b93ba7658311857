package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	ClientConfig
	SessionConfig
	TokenConfig
	OTPConfig
	CorsConfig
	MailConfig
	AdminConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Client
	Session
	Tokens
	OTP
	Cors
	Mail
	Admin
}

// New loads a .env file from the working directory when present and returns
// the environment backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
