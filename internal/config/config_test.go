package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AdminBind != defaultAdminBind {
		t.Fatalf("AdminBind = %q, want %q", cfg.AdminBind, defaultAdminBind)
	}
	if cfg.PollInterval != defaultPollInterval || cfg.LogsInterval != defaultLogsInterval {
		t.Fatalf("intervals = %v/%v, want defaults", cfg.PollInterval, cfg.LogsInterval)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != logrus.InfoLevel {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
admin_bind = "  10.0.0.5:8888  "
poll_interval = "5s"
logs_interval = " 30s "
log_file = "  ~/logs/deck.log  "
log_level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AdminBind != "10.0.0.5:8888" {
		t.Fatalf("AdminBind = %q, want %q", cfg.AdminBind, "10.0.0.5:8888")
	}
	if cfg.PollInterval != 5*time.Second || cfg.LogsInterval != 30*time.Second {
		t.Fatalf("intervals = %v/%v, want 5s/30s", cfg.PollInterval, cfg.LogsInterval)
	}
	if cfg.LogFile != filepath.Join(home, "logs", "deck.log") {
		t.Fatalf("LogFile = %q, want expanded path", cfg.LogFile)
	}
	if cfg.LogLevel != logrus.DebugLevel {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
admin_bind = "   "
poll_interval = ""
log_level = ""
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AdminBind != defaultAdminBind {
		t.Fatalf("AdminBind = %q, want %q", cfg.AdminBind, defaultAdminBind)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid toml", `admin_bind = [`, "parse config"},
		{"bad duration", `poll_interval = "soon"`, "poll_interval"},
		{"too fast", `logs_interval = "1ms"`, "below minimum"},
		{"bad level", `log_level = "loud"`, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}
