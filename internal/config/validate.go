package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
)

// Validate checks the loaded configuration and expands a leading "~/" in
// the database path. Load calls it automatically.
func (c *Config) Validate() error {
	path, err := expandHome(strings.TrimSpace(c.DB.Path))
	if err != nil {
		return fmt.Errorf("db.path: %w", err)
	}
	if path == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	c.DB.Path = path

	c.Log.Level = strings.ToLower(c.Log.Level)
	if !oneOf(c.Log.Level, logLevels) {
		return fmt.Errorf("log.level must be one of %s (got %q)", strings.Join(logLevels, ", "), c.Log.Level)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("log.format must be one of %s (got %q)", strings.Join(logFormats, ", "), c.Log.Format)
	}

	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdown_timeout must be > 0 (got %s)", c.HTTP.ShutdownTimeout)
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return fmt.Errorf("http timeouts must be >= 0")
	}

	if c.Eval.Workers < 1 || c.Eval.Workers > 256 {
		return fmt.Errorf("eval.workers must be in [1, 256] (got %d)", c.Eval.Workers)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
