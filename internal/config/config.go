package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration. Every backend except
// composition itself is optional: an empty value disables it.
type Config struct {
	// Environment
	Environment string
	Port        string

	// Persistence (optional)
	DatabaseURL string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Validate HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string

	// Audio
	SampleRate         int
	CompositionSeconds float64

	// Rendered audio storage. S3 is used when S3Bucket is set.
	AudioDir           string
	S3Bucket           string
	S3Region           string
	PublicAudioBaseURL string

	// Track recommendations (optional)
	SpotifyClientID     string
	SpotifyClientSecret string
}

func Load() *Config {
	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		AuthMode:            getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
		JWTSecret:           getEnv("JWT_SECRET", ""),
		SampleRate:          getEnvInt("SAMPLE_RATE", 44100),
		CompositionSeconds:  getEnvFloat("COMPOSITION_SECONDS", 15),
		AudioDir:            getEnv("AUDIO_DIR", "./audio"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		PublicAudioBaseURL:  getEnv("PUBLIC_AUDIO_BASE_URL", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

// IsGatewayMode returns true if running behind an auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsJWTMode returns true if bearer tokens are validated locally
func (c *Config) IsJWTMode() bool {
	return c.AuthMode == "jwt"
}

// IsProduction returns true in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
