package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvAPIURL   = "QUIZERA_API_URL"
	EnvHost     = "QUIZERA_HOST"
	EnvDataFile = "QUIZERA_DATA_FILE"
	EnvLogLevel = "QUIZERA_LOG_LEVEL"
)

// parseEnv loads dotenvFile into the process environment (variables already
// set are not overwritten; a missing file is ignored) and copies the known
// variables into cfg. An unreadable or malformed dotenv file is reported, but
// the process environment is still applied.
func parseEnv(cfg *Config, dotenvFile string) error {
	var loadErr error
	if dotenvFile != "" {
		if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			loadErr = fmt.Errorf("load %s: %w", dotenvFile, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHost)); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataFile)); v != "" {
		cfg.DataFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	return loadErr
}
