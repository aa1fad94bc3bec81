package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("DAYBOOK_HOME", home)
	for _, key := range []string{
		"DAYBOOK_BACKEND",
		"DAYBOOK_WEBDAV_URL",
		"DAYBOOK_WEBDAV_USERNAME",
		"DAYBOOK_WEBDAV_PASSWORD",
		"DAYBOOK_WEBDAV_TOKEN",
		"DAYBOOK_WEBDAV_FOLDER",
		"DAYBOOK_LOCAL_PATH",
		"DAYBOOK_LOG_LEVEL",
		"DAYBOOK_DEBOUNCE_DELAY",
		"DAYBOOK_COMMIT_DELAY",
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendLocal {
		t.Fatalf("Backend = %q, want local", cfg.Backend)
	}
	if cfg.LocalPath != filepath.Join(home, "journal") {
		t.Fatalf("LocalPath = %q", cfg.LocalPath)
	}
	if cfg.LogLevel != "info" || !cfg.PrettyLog {
		t.Fatalf("logging defaults = %q/%v", cfg.LogLevel, cfg.PrettyLog)
	}
	if cfg.DebounceDelay != time.Second || cfg.CommitDelay != 30*time.Minute {
		t.Fatalf("delays = %s/%s", cfg.DebounceDelay, cfg.CommitDelay)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := isolateHome(t)
	writeConfig(t, home, `
backend: webdav
webdav:
  url: https://cloud.example.com
  username: alice
  password: app-pass
  folder: Journal
log_level: debug
commit_delay: 10m
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendWebDAV {
		t.Fatalf("Backend = %q, want webdav", cfg.Backend)
	}
	if cfg.WebDAV.URL != "https://cloud.example.com" || cfg.WebDAV.Username != "alice" {
		t.Fatalf("WebDAV = %#v", cfg.WebDAV)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.CommitDelay != 10*time.Minute {
		t.Fatalf("CommitDelay = %s, want 10m", cfg.CommitDelay)
	}
	// Untouched keys keep their defaults.
	if cfg.DebounceDelay != time.Second {
		t.Fatalf("DebounceDelay = %s, want 1s", cfg.DebounceDelay)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	home := isolateHome(t)
	writeConfig(t, home, "log_level: debug\n")

	t.Setenv("DAYBOOK_LOG_LEVEL", "error")
	t.Setenv("DAYBOOK_DEBOUNCE_DELAY", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("LogLevel = %q, want the env value", cfg.LogLevel)
	}
	if cfg.DebounceDelay != 250*time.Millisecond {
		t.Fatalf("DebounceDelay = %s, want 250ms", cfg.DebounceDelay)
	}
}

func TestLoadRejectsIncompleteWebDAV(t *testing.T) {
	home := isolateHome(t)
	writeConfig(t, home, `
backend: webdav
webdav:
  url: https://cloud.example.com
  username: alice
`)

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted webdav config without credentials")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolateHome(t)
	t.Setenv("DAYBOOK_BACKEND", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted an unknown backend")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := isolateHome(t)
	writeConfig(t, home, "backend: [not\n")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed yaml")
	}
}

func TestResolveHomeHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DAYBOOK_HOME", dir)

	home, err := ResolveHome()
	if err != nil {
		t.Fatalf("ResolveHome: %v", err)
	}
	if home != dir {
		t.Fatalf("home = %q, want %q", home, dir)
	}
}
