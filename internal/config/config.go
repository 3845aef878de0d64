// Package config reads the server settings from TT_-prefixed environment
// variables, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Calendar fan-out
	FanoutTimeout time.Duration
	FanoutPolicy  string

	// Sessions
	SessionTTL   time.Duration
	SessionSweep time.Duration

	// Timezone used to resolve "today" when a request names no date.
	Timezone string

	// Extra browser origins (host patterns) allowed to open /ws. Same-host
	// origins and clients sending no Origin are always allowed.
	WSOrigins []string
}

// Load reads the environment after applying any .env files given (or ./.env
// when none are). Variables already set in the environment win over the file.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		Port:          getEnv("TT_PORT", "8080"),
		DBPath:        getEnv("TT_DB_PATH", "tasktreasure.db"),
		LogLevel:      getEnv("TT_LOG_LEVEL", "info"),
		LogFormat:     getEnv("TT_LOG_FORMAT", "text"),
		FanoutTimeout: getEnvDuration("TT_FANOUT_TIMEOUT", calendar.DefaultTimeout),
		FanoutPolicy:  getEnv("TT_FANOUT_POLICY", string(calendar.PolicyBestEffort)),
		SessionTTL:    getEnvDuration("TT_SESSION_TTL", 30*24*time.Hour),
		SessionSweep:  getEnvDuration("TT_SESSION_SWEEP", time.Hour),
		Timezone:      getEnv("TT_TIMEZONE", "Local"),
		WSOrigins:     getEnvList("TT_WS_ORIGINS"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.FanoutTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid fan-out timeout %v: must be positive", c.FanoutTimeout))
	}
	if _, err := calendar.ParsePolicy(c.FanoutPolicy); err != nil {
		errors = append(errors, err.Error())
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session ttl %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionSweep < time.Second {
		errors = append(errors, fmt.Sprintf("invalid session sweep interval %v: must be at least 1 second", c.SessionSweep))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) Policy() calendar.Policy {
	p, err := calendar.ParsePolicy(c.FanoutPolicy)
	if err != nil {
		return calendar.PolicyBestEffort
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
