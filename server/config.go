package server

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kbukum/forohub/security"
	"github.com/kbukum/forohub/server/middleware"
	"github.com/kbukum/forohub/util"
)

// Config is the server section of forohub's configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`

	// Timeouts accept Go durations ("15s", "1m").
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// MaxBodySize caps request bodies, e.g. "1MB".
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`

	CORS middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
	TLS  security.TLSConfig    `yaml:"tls" mapstructure:"tls"`

	// TrustedProxies are the CIDRs or addresses whose X-Forwarded-For is
	// believed when resolving the client address. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = time.Minute
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	c.CORS.ApplyDefaults()
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("server.%s must be non-negative (got: %s)", name, d)
		}
	}
	if c.MaxBodySize != "" {
		if _, err := util.ParseByteSize(c.MaxBodySize); err != nil {
			return fmt.Errorf("server.max_body_size: %w", err)
		}
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("server.trusted_proxies: %q is neither an IP nor a CIDR", p)
			}
		}
	}
	return c.TLS.Validate()
}

// Address is host:port as passed to net.Listen.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
