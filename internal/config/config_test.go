package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := LoadWithEnvFile("", "")
	require.NoError(t, err)

	assert.Equal(t, "./data/crease.db", cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Live.PollInterval.Duration)
	assert.Equal(t, 6, cfg.Live.RecentBalls)
	assert.Equal(t, 800*time.Millisecond, cfg.Batch.Delay.Duration)
	assert.Equal(t, "enforce", cfg.Scoring.ConsecutiveOver)
	assert.Equal(t, "t20", cfg.Scoring.DefaultFormat)
	assert.Equal(t, 15*time.Second, cfg.Client.Timeout.Duration)
	assert.Empty(t, cfg.Feed.Brokers)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "crease.toml", `
[database]
path = "/var/lib/crease/live.db"

[live]
poll_interval = "2s"

[scoring]
consecutive_over = "advisory"

[feed]
brokers = ["kafka-1:9092", "kafka-2:9092"]
`)
	cfg, err := LoadWithEnvFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/crease/live.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Live.PollInterval.Duration)
	assert.Equal(t, "advisory", cfg.Scoring.ConsecutiveOver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Feed.Brokers)
	// Untouched sections keep defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvOverridesTOML(t *testing.T) {
	path := writeFile(t, "crease.toml", "[server]\naddr = \":9000\"\n")
	t.Setenv("CREASE_SERVER_ADDR", ":7000")
	t.Setenv("CREASE_LIVE_POLL_INTERVAL", "750ms")
	t.Setenv("CREASE_FEED_BROKERS", "a:9092,b:9092")

	cfg, err := LoadWithEnvFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 750*time.Millisecond, cfg.Live.PollInterval.Duration)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Feed.Brokers)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	path := writeFile(t, "crease.toml", "[batch]\ndelay = \"1s\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadWithEnvFile("", "")
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Batch.Delay.Duration)
}

func TestLoad_DotEnv(t *testing.T) {
	env := writeFile(t, ".env", "CREASE_DATABASE_PATH=/tmp/from-dotenv.db\nCREASE_LOG_LEVEL=debug\n")
	// Variables already set win over the .env file.
	t.Setenv("CREASE_LOG_LEVEL", "warn")
	// Registered so the value written by godotenv is restored afterwards.
	t.Setenv("CREASE_DATABASE_PATH", "")
	require.NoError(t, os.Unsetenv("CREASE_DATABASE_PATH"))

	cfg, err := LoadWithEnvFile("", env)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := LoadWithEnvFile("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "[server]\nport = 80\n", "unknown keys server.port"},
		{"bad duration", "[live]\npoll_interval = \"soon\"\n", "invalid duration"},
		{"bad rule", "[scoring]\nconsecutive_over = \"sometimes\"\n", "scoring.consecutive_over"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "log.format"},
		{"zero interval", "[live]\npoll_interval = \"0s\"\n", "live.poll_interval"},
		{"malformed", "[live\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnvFile(writeFile(t, "crease.toml", tt.content), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := LoadWithEnvFile(filepath.Join(t.TempDir(), "nope.toml"), "")
	assert.Error(t, err)
}
