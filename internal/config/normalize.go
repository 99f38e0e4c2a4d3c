package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) != "" {
		if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
			return fmt.Errorf("paths.export_dir: %w", err)
		}
	} else {
		c.Paths.ExportDir = ""
	}
	return nil
}

func (c *Config) normalizeServices() {
	c.Content.BaseURL = strings.TrimRight(strings.TrimSpace(c.Content.BaseURL), "/")
	c.Content.APIKey = strings.TrimSpace(c.Content.APIKey)
	if c.Content.TimeoutSeconds <= 0 {
		c.Content.TimeoutSeconds = defaultContentTimeout
	}
	c.Validation.BaseURL = strings.TrimRight(strings.TrimSpace(c.Validation.BaseURL), "/")
	c.Validation.APIKey = strings.TrimSpace(c.Validation.APIKey)
	if c.Validation.TimeoutSeconds <= 0 {
		c.Validation.TimeoutSeconds = defaultValidationTimeout
	}
}

func (c *Config) normalizeExport() {
	c.Export.Marketplace = strings.TrimSpace(c.Export.Marketplace)
	if c.Export.Marketplace == "" {
		c.Export.Marketplace = defaultMarketplace
	}
	if strings.TrimSpace(c.Export.PathTemplate) == "" {
		c.Export.PathTemplate = defaultPathTemplate
	}
	if c.Export.ValidationTTLSeconds <= 0 {
		c.Export.ValidationTTLSeconds = defaultValidationTTLSeconds
	}
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
