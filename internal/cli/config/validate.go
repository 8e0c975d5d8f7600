package config

import (
	"fmt"
	"strings"

	"github.com/jengamon/lexi/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	if _, err := output.ParseMode(c.Output); err != nil {
		return err
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave_interval must not be negative, got %s", c.AutosaveInterval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.HistoryKeep < 0 {
		return fmt.Errorf("history_keep must not be negative, got %d", c.HistoryKeep)
	}
	return nil
}

// RequireProject returns the configured project name or an error telling the
// user how to pick one.
func (c *Config) RequireProject() (string, error) {
	if c.Project == "" {
		return "", fmt.Errorf("no project selected\nHint: pass --project NAME, set LEXI_PROJECT, or add project: NAME to lexi.yaml")
	}
	return c.Project, nil
}
