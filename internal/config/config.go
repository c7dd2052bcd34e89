package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string

	// Addr is the HTTP listen address.
	Addr string

	// LogPath optionally tees logs into a file.
	LogPath string

	// AdminName is the bootstrap admin's display name on first run.
	AdminName string

	// AdminEmail is the bootstrap admin's email on first run.
	AdminEmail string

	// MaxCoverBytes bounds cover upload size.
	MaxCoverBytes int64
}

// Defaults.
const (
	DefaultDBPath        = "knjiznica.sqlite3"
	DefaultAddr          = ":8080"
	DefaultAdminName     = "Admin"
	DefaultAdminEmail    = "admin@localhost"
	DefaultMaxCoverBytes = 5 << 20
)

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory. Missing values fall back
// to defaults; flags may override the result afterwards.
func Load() (*Config, error) {
	// .env is optional, ignore a missing file.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:        getenv("KNJIZNICA_DB", DefaultDBPath),
		Addr:          getenv("KNJIZNICA_ADDR", DefaultAddr),
		LogPath:       os.Getenv("KNJIZNICA_LOG"),
		AdminName:     getenv("KNJIZNICA_ADMIN_NAME", DefaultAdminName),
		AdminEmail:    getenv("KNJIZNICA_ADMIN_EMAIL", DefaultAdminEmail),
		MaxCoverBytes: DefaultMaxCoverBytes,
	}

	if s := os.Getenv("KNJIZNICA_MAX_COVER_BYTES"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid KNJIZNICA_MAX_COVER_BYTES: %q", s)
		}
		cfg.MaxCoverBytes = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
