package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config captures the console settings.
type Config struct {
	AdminBind    string
	PollInterval time.Duration
	LogsInterval time.Duration
	LogFile      string
	LogLevel     logrus.Level
}

const (
	defaultConfigPath   = "~/.config/hoverdeck/config.toml"
	defaultAdminBind    = "127.0.0.1:8888"
	defaultLogFile      = "~/.local/state/hoverdeck/hoverdeck.log"
	defaultPollInterval = 2 * time.Second
	defaultLogsInterval = 10 * time.Second
	minInterval         = 250 * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		AdminBind:    defaultAdminBind,
		PollInterval: defaultPollInterval,
		LogsInterval: defaultLogsInterval,
		LogFile:      mustExpand(defaultLogFile),
		LogLevel:     logrus.InfoLevel,
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing or a field is empty.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		AdminBind    string `toml:"admin_bind"`
		PollInterval string `toml:"poll_interval"`
		LogsInterval string `toml:"logs_interval"`
		LogFile      string `toml:"log_file"`
		LogLevel     string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if bind := strings.TrimSpace(raw.AdminBind); bind != "" {
		cfg.AdminBind = bind
	}
	if cfg.PollInterval, err = parseInterval("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.LogsInterval, err = parseInterval("logs_interval", raw.LogsInterval, defaultLogsInterval); err != nil {
		return Config{}, err
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
		cfg.LogLevel = parsed
	}

	return cfg, nil
}

func parseInterval(key, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d < minInterval {
		return 0, fmt.Errorf("parse config: %s %s below minimum %s", key, d, minInterval)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
