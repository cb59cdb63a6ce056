package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	ServerPort    string
	LogLevel      string
	RelayKey      string
	CORSOrigins   []string
	VoteRateLimit int

	// set when .env could not be read; logged once the logger exists
	EnvFileMissing bool
}

func Load() (*Config, error) {
	envErr := godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	defaultDriver := DriverSQLite
	if databaseURL != "" {
		defaultDriver = DriverPostgres
	}

	cfg := &Config{
		DBDriver:       getEnv("DB_DRIVER", defaultDriver),
		DBPath:         getEnv("DB_PATH", "showdown.db"),
		DatabaseURL:    databaseURL,
		ServerPort:     getEnv("SERVER_PORT", getEnv("PORT", "3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RelayKey:       getEnv("RELAY_KEY", ""),
		CORSOrigins:    parseList(getEnv("CORS_ORIGINS", "")),
		VoteRateLimit:  getEnvInt("VOTE_RATE_LIMIT", 30),
		EnvFileMissing: envErr != nil,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server must refuse to start with.
func (c *Config) Validate() error {
	if c.RelayKey == "" {
		return fmt.Errorf("RELAY_KEY is required")
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.VoteRateLimit <= 0 {
		return fmt.Errorf("VOTE_RATE_LIMIT must be positive, got %d", c.VoteRateLimit)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var Module = fx.Provide(Load)
