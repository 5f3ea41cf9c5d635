package database

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrations is a tree of versioned SQL migrations with one directory per
// driver under Root, each holding VERSION_name.up.sql and
// VERSION_name.down.sql files.
type Migrations struct {
	FS   fs.FS
	Root string
}

func (m Migrations) dir(driver string) string {
	return path.Join(m.Root, driver)
}

// MigrateUp applies every pending migration for the connection's driver.
// Having nothing to apply is not an error.
func (d *DB) MigrateUp(m Migrations) error {
	mg, err := d.migrator(m)
	if err != nil {
		return err
	}
	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, _, _ := mg.Version()
	d.log.Info("database migrations applied", map[string]interface{}{
		"driver":  d.cfg.Driver,
		"version": version,
	})
	return nil
}

// MigrateDown rolls back every applied migration.
func (d *DB) MigrateDown(m Migrations) error {
	mg, err := d.migrator(m)
	if err != nil {
		return err
	}
	if err := mg.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrateVersion returns the applied version and whether the last
// migration failed halfway.
func (d *DB) MigrateVersion(m Migrations) (uint, bool, error) {
	mg, err := d.migrator(m)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// migrator builds a golang-migrate instance on the shared pool. It must
// not be closed; that would close the pool.
func (d *DB) migrator(m Migrations) (*migrate.Migrate, error) {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	var driver migratedb.Driver
	switch d.cfg.Driver {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("no migration driver for %q", d.cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(m.FS, m.dir(d.cfg.Driver))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, d.cfg.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return mg, nil
}
