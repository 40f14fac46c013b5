package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the site configuration file expected at the source root.
const FileName = "orgweave.yaml"

// Config is the site configuration.
type Config struct {
	SiteURL string     `yaml:"site_url"`
	RSS     *RSSConfig `yaml:"rss,omitempty"`
}

// RSSConfig enables feed generation when present.
type RSSConfig struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language,omitempty"`
	Copyright   string `yaml:"copyright,omitempty"`
	TTL         int    `yaml:"ttl,omitempty"`
}

// Load reads the configuration from the source directory.
func Load(sourceDir string) (*Config, error) {
	path := filepath.Join(sourceDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	if cfg.RSS != nil && cfg.RSS.TTL == 0 {
		cfg.RSS.TTL = 60
	}

	return &cfg, nil
}

// Validate checks the configuration for required fields.
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("site_url cannot be empty")
	}
	if c.RSS != nil {
		if c.RSS.Title == "" {
			return fmt.Errorf("rss.title cannot be empty")
		}
		if c.RSS.Link == "" {
			return fmt.Errorf("rss.link cannot be empty")
		}
		if c.RSS.Description == "" {
			return fmt.Errorf("rss.description cannot be empty")
		}
		if c.RSS.TTL < 0 {
			return fmt.Errorf("rss.ttl must not be negative")
		}
	}
	return nil
}
