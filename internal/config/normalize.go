package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPOD()
	c.normalizeBackground()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPOD() {
	c.APOD.APIKey = strings.TrimSpace(c.APOD.APIKey)
	if c.APOD.APIKey == "" {
		if value, ok := os.LookupEnv("APOD_API_KEY"); ok && strings.TrimSpace(value) != "" {
			c.APOD.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("NASA_API_KEY"); ok && strings.TrimSpace(value) != "" {
			c.APOD.APIKey = strings.TrimSpace(value)
		} else {
			c.APOD.APIKey = defaultAPODAPIKey
		}
	}
	c.APOD.BaseURL = strings.TrimSpace(c.APOD.BaseURL)
	if c.APOD.BaseURL == "" {
		c.APOD.BaseURL = defaultAPODBaseURL
	}
	if c.APOD.TimeoutSeconds == 0 {
		c.APOD.TimeoutSeconds = defaultAPODTimeout
	}
}

func (c *Config) normalizeBackground() {
	args := make([]string, 0, len(c.Background.Command))
	for _, arg := range c.Background.Command {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	if len(args) == 0 {
		args = nil
	}
	c.Background.Command = args
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
