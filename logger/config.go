package logger

import (
	"fmt"
	"slices"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error"}
	formats = []string{FormatJSON, FormatConsole}
)

// Config is the logging section of the service configuration.
// Timestamps are always on once ApplyDefaults has run.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"` // stdout, stderr or a file path
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

func (c *Config) ApplyDefaults() {
	c.Level = cmpOr(c.Level, "info")
	c.Format = cmpOr(c.Format, FormatConsole)
	c.Output = cmpOr(c.Output, "stdout")
	c.Timestamp = true
}

func (c *Config) Validate() error {
	if !slices.Contains(levels, c.Level) {
		return fmt.Errorf("logging.level: %q is not one of %v", c.Level, levels)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("logging.format: %q is not one of %v", c.Format, formats)
	}
	return nil
}

func cmpOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
