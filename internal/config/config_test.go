package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanEnv clears every variable Load reads so the host environment does not
// leak into a test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FSRS45_CONFIG", "FSRS45_DB_PATH", "FSRS45_LOG_LEVEL", "FSRS45_LOG_FORMAT",
		"FSRS45_HTTP_ADDR", "FSRS45_HTTP_READ_TIMEOUT", "FSRS45_HTTP_WRITE_TIMEOUT",
		"FSRS45_HTTP_SHUTDOWN_TIMEOUT", "FSRS45_EVAL_WORKERS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".fsrs45", "cards.db"), cfg.DB.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 4, cfg.Eval.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	cleanEnv(t)
	t.Setenv("FSRS45_DB_PATH", "/tmp/other.db")
	t.Setenv("FSRS45_LOG_LEVEL", "DEBUG")
	t.Setenv("FSRS45_HTTP_ADDR", ":9999")
	t.Setenv("FSRS45_HTTP_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("FSRS45_EVAL_WORKERS", "8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DB.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 8, cfg.Eval.Workers)
}

func TestLoadYAML(t *testing.T) {
	cleanEnv(t)
	path := writeYAML(t, `
db:
  path: "/data/cards.db"
log:
  level: "warn"
  format: "json"
http:
  addr: "0.0.0.0:8081"
  shutdown_timeout: "5s"
eval:
  workers: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/cards.db", cfg.DB.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "0.0.0.0:8081", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 2, cfg.Eval.Workers)
}

func TestLoadEnvBeatsYAML(t *testing.T) {
	cleanEnv(t)
	path := writeYAML(t, "log:\n  level: \"warn\"\n")
	t.Setenv("FSRS45_CONFIG", path)
	t.Setenv("FSRS45_LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cleanEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:   DBConfig{Path: "/tmp/cards.db"},
			Log:  LogConfig{Level: "info", Format: "json"},
			HTTP: HTTPConfig{Addr: ":8080", ShutdownTimeout: time.Second},
			Eval: EvalConfig{Workers: 4},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.DB.Path = " " }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }},
		{"zero shutdown timeout", func(c *Config) { c.HTTP.ShutdownTimeout = 0 }},
		{"negative read timeout", func(c *Config) { c.HTTP.ReadTimeout = -time.Second }},
		{"zero workers", func(c *Config) { c.Eval.Workers = 0 }},
		{"too many workers", func(c *Config) { c.Eval.Workers = 1000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandHome("~/x/cards.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "cards.db"), got)

	got, err = expandHome("/abs/cards.db")
	require.NoError(t, err)
	assert.Equal(t, "/abs/cards.db", got)
}
