package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLanguages(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLanguages() error {
	if c.Languages.Target == "" {
		return errors.New("languages.target must be set")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.MaxAttempts > 10 {
		return fmt.Errorf("translation.max_attempts %d is unreasonably high (max 10)", c.Translation.MaxAttempts)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.MaxAttempts > 10 {
		return fmt.Errorf("synthesis.max_attempts %d is unreasonably high (max 10)", c.Synthesis.MaxAttempts)
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.OriginalVolume < 0 || c.Export.OriginalVolume > 1 {
		return fmt.Errorf("export.original_volume %.2f must be between 0 and 1", c.Export.OriginalVolume)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
