package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"hashfs/internal/config"
)

const logLevelEnvKey = "HASHFS_LOG_LEVEL"

// configureLogger installs the default slog logger. Precedence:
// --log-level flag, then the environment, then the config file.
func configureLogger(flagLevel, configLevel string) error {
	raw := selectedLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)
	level, err := parseLogLevel(raw)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(level))
	return nil
}

func selectedLogLevel(flagLevel, envLevel, configLevel string) string {
	if strings.TrimSpace(flagLevel) != "" {
		return flagLevel
	}
	if strings.TrimSpace(envLevel) != "" {
		return envLevel
	}
	if strings.TrimSpace(configLevel) != "" {
		return configLevel
	}
	return config.DefaultLogLevel
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return slog.LevelInfo, nil
	}
	if strings.EqualFold(value, "warning") {
		value = "warn"
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
