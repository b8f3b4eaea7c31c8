// Package config loads the CLI's settings from the environment, after
// merging optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL  = "http://localhost:8080"
	DefaultWebURL  = "http://localhost:5173"
	DefaultTimeout = 30 * time.Second
)

// Config holds the runtime settings.
type Config struct {
	APIURL  string        // backend origin
	WebURL  string        // website opened by "quilmes web"
	Timeout time.Duration // per-request HTTP timeout
	Debug   bool          // write a debug log
	Home    string        // state directory (cookies, log, tickets)
}

// Load reads .env from the working directory and from the state directory,
// then the QUILMES_* variables. Variables already set in the process win
// over both files.
func Load() (Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return Config{}, err
	}
	home, err := homeDir()
	if err != nil {
		return Config{}, err
	}
	if err := loadEnvFile(filepath.Join(home, ".env")); err != nil {
		return Config{}, err
	}
	// The home .env may itself move the state directory.
	if home, err = homeDir(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:  strings.TrimRight(envStr("QUILMES_API_URL", DefaultAPIURL), "/"),
		WebURL:  envStr("QUILMES_WEB_URL", DefaultWebURL),
		Timeout: DefaultTimeout,
		Debug:   envBool("QUILMES_DEBUG"),
		Home:    home,
	}
	if v := os.Getenv("QUILMES_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid QUILMES_HTTP_TIMEOUT %q", v)
		}
		cfg.Timeout = d
	}
	if err := checkURL("QUILMES_API_URL", cfg.APIURL); err != nil {
		return Config{}, err
	}
	if err := checkURL("QUILMES_WEB_URL", cfg.WebURL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CookiePath is where the session cookies are persisted.
func (c Config) CookiePath() string { return filepath.Join(c.Home, "cookies.json") }

// LogPath is the debug log file.
func (c Config) LogPath() string { return filepath.Join(c.Home, "debug.log") }

// TicketsDir holds generated PDF tickets.
func (c Config) TicketsDir() string { return filepath.Join(c.Home, "tickets") }

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

func homeDir() (string, error) {
	if h := os.Getenv("QUILMES_HOME"); h != "" {
		return h, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home directory: %w", err)
	}
	return filepath.Join(userHome, ".quilmes"), nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
