package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultBackendBaseURL = "http://localhost:9080"

type CLIConfig struct {
	BackendBaseURL string
	RequestTimeout time.Duration
	PageSize       int
	LogFile        string
	LogLevel       slog.Level
}

type MockConfig struct {
	Addr      string
	SeedStock bool
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		BackendBaseURL: strings.TrimRight(envDefault("BACKEND_BASE_URL", DefaultBackendBaseURL), "/"),
		RequestTimeout: envDurationDefault("SKALA_REQUEST_TIMEOUT", 30*time.Second),
		PageSize:       envIntDefault("SKALA_PAGE_SIZE", 0),
		LogFile:        strings.TrimSpace(os.Getenv("SKALA_LOG_FILE")),
		LogLevel:       envLevelDefault("SKALA_LOG_LEVEL", slog.LevelInfo),
	}
}

func LoadMockFromEnv() MockConfig {
	addr := envDefault("SKALA_MOCK_ADDR", ":9080")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return MockConfig{
		Addr:      addr,
		SeedStock: envBoolDefault("SKALA_MOCK_SEED", true),
	}
}

// Logger opens the client log. Without a log file the records are dropped,
// since the dashboard owns the terminal. The returned closer is never nil.
func (c CLIConfig) Logger() (*slog.Logger, io.Closer, error) {
	if c.LogFile == "" {
		return slog.New(slog.DiscardHandler), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: c.LogLevel})), f, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
