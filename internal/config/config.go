package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDirName is the folder under the user's home directory.
	DefaultDirName = ".daybook"
	configFileName = "config.yaml"

	// BackendWebDAV stores months on a remote WebDAV folder.
	BackendWebDAV = "webdav"
	// BackendLocal stores months in a local key-value tree.
	BackendLocal = "local"
)

// WebDAV holds the remote-store credentials. Password is a basic-auth app
// password; Token, when set, wins and is sent as a bearer token.
type WebDAV struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
	Folder   string `yaml:"folder"`
}

// Config is everything daybook needs to run. Values come from
// ~/.daybook/config.yaml, overridden by DAYBOOK_* environment variables.
type Config struct {
	Backend   string `yaml:"backend"`    // "webdav" | "local"
	WebDAV    WebDAV `yaml:"webdav"`     // remote store settings
	LocalPath string `yaml:"local_path"` // local store directory (default: <home>/journal)

	LogLevel  string `yaml:"log_level"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log"` // colored dev output vs JSON

	DebounceDelay time.Duration `yaml:"debounce_delay"` // autosave delay after last keystroke
	CommitDelay   time.Duration `yaml:"commit_delay"`   // inactivity window before session commit
}

// ResolveHome determines where daybook keeps its config and local journal,
// defaulting to ~/.daybook. DAYBOOK_HOME overrides it.
func ResolveHome() (string, error) {
	if override, ok := os.LookupEnv("DAYBOOK_HOME"); ok {
		override = strings.TrimSpace(override)
		if override != "" {
			return normalizePath(override)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// Load builds the effective configuration: defaults, then the config file if
// present, then environment overrides.
func Load() (*Config, error) {
	home, err := ResolveHome()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Backend:       BackendLocal,
		LocalPath:     filepath.Join(home, "journal"),
		LogLevel:      "info",
		PrettyLog:     true,
		DebounceDelay: time.Second,
		CommitDelay:   30 * time.Minute,
	}

	path := filepath.Join(home, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; env and defaults carry it.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Backend, "DAYBOOK_BACKEND")
	setString(&cfg.WebDAV.URL, "DAYBOOK_WEBDAV_URL")
	setString(&cfg.WebDAV.Username, "DAYBOOK_WEBDAV_USERNAME")
	setString(&cfg.WebDAV.Password, "DAYBOOK_WEBDAV_PASSWORD")
	setString(&cfg.WebDAV.Token, "DAYBOOK_WEBDAV_TOKEN")
	setString(&cfg.WebDAV.Folder, "DAYBOOK_WEBDAV_FOLDER")
	setString(&cfg.LocalPath, "DAYBOOK_LOCAL_PATH")
	setString(&cfg.LogLevel, "DAYBOOK_LOG_LEVEL")
	setDuration(&cfg.DebounceDelay, "DAYBOOK_DEBOUNCE_DELAY")
	setDuration(&cfg.CommitDelay, "DAYBOOK_COMMIT_DELAY")
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.LocalPath == "" {
			return errors.New("local backend requires a local_path")
		}
	case BackendWebDAV:
		if c.WebDAV.URL == "" || c.WebDAV.Username == "" {
			return errors.New("webdav backend requires url and username")
		}
		if c.WebDAV.Password == "" && c.WebDAV.Token == "" {
			return errors.New("webdav backend requires a password or token")
		}
	default:
		return fmt.Errorf("unknown backend %q (expected %s or %s)", c.Backend, BackendWebDAV, BackendLocal)
	}

	if c.DebounceDelay <= 0 || c.CommitDelay <= 0 {
		return errors.New("debounce_delay and commit_delay must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return
	}
	*dst = d
}

func normalizePath(input string) (string, error) {
	if strings.HasPrefix(input, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		input = filepath.Join(home, strings.TrimPrefix(input, "~"))
	}
	return input, nil
}
