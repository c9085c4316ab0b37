package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sadopc/kitchenos/internal/api"
	"github.com/sadopc/kitchenos/internal/store"
)

const DefaultDemoAddr = "127.0.0.1:8787"

// Config holds the configuration for the application.
type Config struct {
	APIURL   string
	DBPath   string
	Timeout  time.Duration
	LogFile  string
	DemoAddr string
}

// LoadDotEnv reads a .env file into the environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		APIURL:   TrimURL(os.Getenv("KITCHENOS_API_URL")),
		DBPath:   os.Getenv("KITCHENOS_DB_PATH"),
		Timeout:  api.DefaultTimeout,
		LogFile:  strings.TrimSpace(os.Getenv("KITCHENOS_LOG_FILE")),
		DemoAddr: os.Getenv("KITCHENOS_DEMO_ADDR"),
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = p
	}

	if raw := os.Getenv("KITCHENOS_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("KITCHENOS_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("KITCHENOS_TIMEOUT must be positive, got %s", raw)
		}
		cfg.Timeout = d
	}

	if cfg.DemoAddr == "" {
		cfg.DemoAddr = DefaultDemoAddr
	}

	return cfg, nil
}

// TrimURL strips whitespace and one pair of surrounding quotes, which
// often survive copy-pasting into shell profiles.
func TrimURL(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return strings.TrimRight(s, "/")
}
