// Package config loads forohub's configuration.
//
// Settings come from a config.yml found in the usual locations (or given
// with WithConfigFile), then from the environment, with a .env file loaded
// first when present. Environment variables map onto nested keys by
// splitting on underscores, so AUTH_JWT_SECRET sets auth.jwt.secret. Only
// variables whose first segment names a config section are considered.
//
//	cfg, err := config.Load()
package config
