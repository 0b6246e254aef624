// Package config loads application settings from an optional YAML file and
// FSRS45_* environment variables.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	DB   DBConfig   `yaml:"db"`
	Log  LogConfig  `yaml:"log"`
	HTTP HTTPConfig `yaml:"http"`
	Eval EvalConfig `yaml:"eval"`
}

// DBConfig holds the SQLite database settings.
type DBConfig struct {
	Path string `yaml:"path" env:"FSRS45_DB_PATH" env-default:"~/.fsrs45/cards.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"FSRS45_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"FSRS45_LOG_FORMAT" env-default:"console"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"             env:"FSRS45_HTTP_ADDR"             env-default:"127.0.0.1:8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"FSRS45_HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"FSRS45_HTTP_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"FSRS45_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// EvalConfig holds settings of the calibration report.
type EvalConfig struct {
	Workers int `yaml:"workers" env:"FSRS45_EVAL_WORKERS" env-default:"4"`
}
