// Package database opens the gorm connection forohub stores accounts in.
//
// The driver is picked from configuration: "postgres" for deployments and
// "sqlite" for local runs and tests (":memory:" works). Connecting is
// retried with exponential backoff through resilience.Retry. On Start the
// component applies versioned SQL migrations (golang-migrate), then gorm
// auto-migration when enabled, then any seed functions.
//
//	comp := database.NewComponent(cfg.Database, log).
//	    WithMigrations(users.Migrations()).
//	    WithSeed(users.SeedProfiles)
//	registry.Register(comp)
//	// after Start:
//	db := comp.DB().WithContext(ctx)
package database
