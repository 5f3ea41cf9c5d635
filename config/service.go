package config

import (
	"fmt"
	"slices"
)

// Environments a deployment may declare.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to the service configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
}

// Validate validates the service configuration.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("service.name is required")
	}
	valid := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(valid, c.Environment) {
		return fmt.Errorf("service.environment must be one of %v (got: %s)", valid, c.Environment)
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}
