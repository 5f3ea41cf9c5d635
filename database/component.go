package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/forohub/component"
	"github.com/kbukum/forohub/logger"
)

const componentName = "database"

var _ component.Component = (*Component)(nil)

// Component wraps DB for the component registry.
type Component struct {
	db     *DB
	cfg    Config
	log    *logger.Logger
	models     []interface{}
	migrations *Migrations
	seeds      []func(context.Context, *DB) error
}

// NewComponent creates a database component. It connects on Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	if log == nil {
		log = logger.NewNop()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent(componentName),
	}
}

// WithMigrations registers the SQL migrations applied on Start when
// cfg.Migrate is set.
func (c *Component) WithMigrations(m Migrations) *Component {
	c.migrations = &m
	return c
}

// WithAutoMigrate registers models migrated on Start when cfg.AutoMigrate is set.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithSeed registers fn to run after migration on every Start.
// Seeds must be idempotent.
func (c *Component) WithSeed(fn func(context.Context, *DB) error) *Component {
	c.seeds = append(c.seeds, fn)
	return c
}

// DB returns the connection, or nil before Start.
func (c *Component) DB() *DB {
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return componentName }

// Start connects, migrates and seeds. The connection is closed again if
// any step fails.
func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	if err := c.prepare(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	c.db = db
	return nil
}

func (c *Component) prepare(ctx context.Context, db *DB) error {
	if c.cfg.Migrate && c.migrations != nil {
		if err := db.MigrateUp(*c.migrations); err != nil {
			return fmt.Errorf("database migrate: %w", err)
		}
	}
	if c.cfg.AutoMigrate && len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}
	for _, seed := range c.seeds {
		if err := seed(ctx, db); err != nil {
			return fmt.Errorf("database seed: %w", err)
		}
	}
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Health pings the database with a short deadline.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.db == nil {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.db.PingContext(pingCtx); err != nil {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}
