package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ContextMode is the process-wide sync context. It is computed once at
// startup and never changes: privileged processes may talk to the primary
// datastore and trigger full syncs, restricted ones only ever read the local
// snapshot.
type ContextMode string

const (
	ContextPrivileged ContextMode = "privileged"
	ContextRestricted ContextMode = "restricted"
)

// Config holds all application configuration
type Config struct {
	NodeEnv     string
	Port        string
	JWTSecret   string
	Context     ContextMode
	SnapshotDir string
	Database    DatabaseConfig
}

// DatabaseConfig holds primary datastore connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ctx, err := resolveContext(getEnv("SYNC_CONTEXT", string(ContextPrivileged)))
	if err != nil {
		return nil, err
	}

	return &Config{
		NodeEnv:     getEnv("NODE_ENV", "development"),
		Port:        getEnv("PORT", "3001"),
		JWTSecret:   jwtSecret,
		Context:     ctx,
		SnapshotDir: getEnv("SNAPSHOT_DIR", "./snapshot_data"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "pricedesk"),
		},
	}, nil
}

// resolveContext validates the static context signal. An unknown value is a
// startup error, not a silent downgrade to privileged.
func resolveContext(raw string) (ContextMode, error) {
	switch ContextMode(raw) {
	case ContextPrivileged, ContextRestricted:
		return ContextMode(raw), nil
	default:
		return "", fmt.Errorf("invalid SYNC_CONTEXT %q (want privileged or restricted)", raw)
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
