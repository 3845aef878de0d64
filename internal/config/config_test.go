package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
)

func validConfig() Config {
	return Config{
		Port:          "8080",
		DBPath:        "tasktreasure.db",
		LogLevel:      "info",
		LogFormat:     "text",
		FanoutTimeout: 5 * time.Second,
		FanoutPolicy:  "best_effort",
		SessionTTL:    time.Hour,
		SessionSweep:  time.Minute,
		Timezone:      "UTC",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "non-numeric port", mutate: func(c *Config) { c.Port = "abc" }, errorString: "invalid port 'abc'"},
		{name: "port out of range", mutate: func(c *Config) { c.Port = "70000" }, errorString: "between 1 and 65535"},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }, errorString: "database path cannot be empty"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, errorString: "invalid log format"},
		{name: "zero timeout", mutate: func(c *Config) { c.FanoutTimeout = 0 }, errorString: "fan-out timeout"},
		{name: "bad policy", mutate: func(c *Config) { c.FanoutPolicy = "yolo" }, errorString: "unknown fan-out policy"},
		{name: "short session", mutate: func(c *Config) { c.SessionTTL = time.Second }, errorString: "session ttl"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, errorString: "invalid timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Count(err.Error(), "\n- ") != 2 {
		t.Errorf("error = %q, want two entries", err.Error())
	}
}

// unsetEnv removes keys for the duration of the test. Going through
// t.Setenv first restores the original values afterwards, including any
// that godotenv sets.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "TT_PORT", "TT_DB_PATH", "TT_FANOUT_TIMEOUT", "TT_FANOUT_POLICY", "TT_SESSION_TTL", "TT_WS_ORIGINS")
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Port != "8080" || cfg.DBPath != "tasktreasure.db" {
		t.Errorf("port/db = %q/%q", cfg.Port, cfg.DBPath)
	}
	if cfg.FanoutTimeout != 5*time.Second {
		t.Errorf("fan-out timeout = %v, want 5s", cfg.FanoutTimeout)
	}
	if cfg.Policy() != calendar.PolicyBestEffort {
		t.Errorf("policy = %q", cfg.Policy())
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("session ttl = %v, want 720h", cfg.SessionTTL)
	}
	if len(cfg.WSOrigins) != 0 {
		t.Errorf("ws origins = %v, want none", cfg.WSOrigins)
	}
}

func TestLoadWSOrigins(t *testing.T) {
	t.Setenv("TT_WS_ORIGINS", " app.tasktreasure.example, ,*.tasktreasure.dev ")
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	want := []string{"app.tasktreasure.example", "*.tasktreasure.dev"}
	if strings.Join(cfg.WSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("ws origins = %q, want %q", cfg.WSOrigins, want)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	unsetEnv(t, "TT_PORT", "TT_FANOUT_POLICY")
	t.Setenv("TT_DB_PATH", "from-env.db")

	path := filepath.Join(t.TempDir(), ".env")
	content := "TT_PORT=9090\nTT_FANOUT_POLICY=strict\nTT_DB_PATH=from-file.db\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg := Load(path)
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if cfg.Policy() != calendar.PolicyStrict {
		t.Errorf("policy = %q, want strict", cfg.Policy())
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("db path = %q, environment should win over file", cfg.DBPath)
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Europe/Stockholm"
	if got := cfg.Location().String(); got != "Europe/Stockholm" {
		t.Errorf("location = %q", got)
	}
	cfg.Timezone = "nowhere"
	if cfg.Location() != time.Local {
		t.Error("expected fallback to time.Local")
	}
}
