package config

import (
	"fmt"

	"github.com/kbukum/forohub/auth/jwt"
	"github.com/kbukum/forohub/auth/password"
	"github.com/kbukum/forohub/database"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
	"github.com/kbukum/forohub/resilience"
	"github.com/kbukum/forohub/server"
	"github.com/kbukum/forohub/users"
)

// ServiceName is the name config files and env files are resolved under.
const ServiceName = "forohub"

// MinProductionSecretLength is the shortest JWT secret accepted in production.
const MinProductionSecretLength = 32

// Sections are the top-level config keys environment variables may set.
var Sections = []string{"service", "logging", "server", "database", "auth", "telemetry", "admin"}

// Config is forohub's complete configuration.
type Config struct {
	Service   ServiceConfig        `yaml:"service" mapstructure:"service"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
	Database  database.Config      `yaml:"database" mapstructure:"database"`
	Auth      AuthConfig           `yaml:"auth" mapstructure:"auth"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Admin     AdminConfig          `yaml:"admin" mapstructure:"admin"`
}

// AuthConfig groups token, secret hashing and login throttling settings.
type AuthConfig struct {
	JWT        jwt.Config                 `yaml:"jwt" mapstructure:"jwt"`
	Password   password.Config            `yaml:"password" mapstructure:"password"`
	LoginLimit resilience.RateLimitConfig `yaml:"login_limit" mapstructure:"login_limit"`
}

// AdminConfig optionally seeds an administrator at startup. Seeding is
// skipped when Email is empty.
type AdminConfig struct {
	Nombre     string `yaml:"nombre" mapstructure:"nombre"`
	Email      string `yaml:"email" mapstructure:"email"`
	Contrasena string `yaml:"contrasena" mapstructure:"contrasena"`
}

// Enabled reports whether an administrator should be seeded.
func (c *AdminConfig) Enabled() bool {
	return c.Email != ""
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.Service.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.JWT.ApplyDefaults()
	c.Auth.Password.ApplyDefaults()
	c.Auth.LoginLimit.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Admin.Enabled() && c.Admin.Nombre == "" {
		c.Admin.Nombre = "Administrador"
	}
}

// Validate validates every section and the cross-section rules.
func (c *Config) Validate() error {
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Auth.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if c.Service.IsProduction() && len(c.Auth.JWT.Secret) < MinProductionSecretLength {
		return fmt.Errorf("auth.jwt.secret must be at least %d bytes in production (got: %d)",
			MinProductionSecretLength, len(c.Auth.JWT.Secret))
	}
	if err := c.Auth.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	if err := c.Auth.LoginLimit.Validate(); err != nil {
		return fmt.Errorf("auth.login_limit: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if c.Admin.Enabled() && len(c.Admin.Contrasena) < c.Auth.Password.MinLength {
		return fmt.Errorf("admin.contrasena must be at least %d characters", c.Auth.Password.MinLength)
	}
	if len(c.Admin.Contrasena) > users.MaxSecretBytes {
		return fmt.Errorf("admin.contrasena must be at most %d bytes", users.MaxSecretBytes)
	}
	return nil
}

// Load resolves, reads, defaults and validates forohub's configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	var cfg Config
	opts = append([]LoaderOption{WithEnvSections(Sections...)}, opts...)
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
