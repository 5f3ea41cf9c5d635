package jwt

import (
	"errors"
	"time"
)

// DefaultLifetime is the token lifetime used when none is configured.
const DefaultLifetime = time.Hour

// Config configures the token codec.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Secret is the HMAC signing key. Rotating it invalidates every issued token.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Lifetime is how long an issued token stays valid (default: 1h).
	Lifetime time.Duration `yaml:"lifetime" mapstructure:"lifetime"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Lifetime == 0 {
		c.Lifetime = DefaultLifetime
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	if c.Lifetime < time.Second {
		return errors.New("jwt: lifetime must be at least one second")
	}
	return nil
}
