package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the hub server configuration. All values come from the
// environment; the zero-config default runs against a local sqlite file.
type Config struct {
	Port             string
	DBDriver         string // "sqlite" or "postgres"
	SQLitePath       string
	PGHost           string
	PGPort           string
	PGUser           string
	PGPassword       string
	PGDatabase       string
	BroadcastTimeout time.Duration
}

// Load reads configuration from the environment.
func Load() *Config {
	timeout := 5 * time.Second
	if v := os.Getenv("BROADCAST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	return &Config{
		Port:             getEnv("PORT", ":8000"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "./data/agent_data.db"),
		PGHost:           getEnv("POSTGRES_HOST", "localhost"),
		PGPort:           getEnv("POSTGRES_PORT", "5432"),
		PGUser:           getEnv("POSTGRES_USER", "postgres"),
		PGPassword:       getEnv("POSTGRES_PASSWORD", "postgres"),
		PGDatabase:       getEnv("POSTGRES_DB", "agent_data"),
		BroadcastTimeout: timeout,
	}
}

// DriverName maps the configured engine to its database/sql driver name.
func (c *Config) DriverName() string {
	if c.DBDriver == "postgres" {
		return "pgx"
	}
	return "sqlite"
}

// DSN builds the driver-specific connection string.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
			c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
	}
	return c.SQLitePath
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
