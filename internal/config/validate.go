package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateContent(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateContent() error {
	if c.Content.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/listforge/config.toml"
		}
		return fmt.Errorf("content.base_url is required; edit %s (create with 'listforge config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateExport() error {
	if strings.TrimSpace(c.Export.PathTemplate) == "" {
		return errors.New("export.path_template must be set")
	}
	if c.Export.ValidationTTLSeconds <= 0 {
		return errors.New("export.validation_ttl_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
