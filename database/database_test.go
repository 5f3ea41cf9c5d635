package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/forohub/component"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex"`
}

func memoryConfig() Config {
	return Config{Driver: DriverSQLite, DSN: ":memory:", MaxRetries: 1, AutoMigrate: true, LogLevel: "silent"}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{DSN: "host=localhost"}
	cfg.ApplyDefaults()
	if cfg.Driver != DriverPostgres || cfg.MaxOpenConns != 25 || cfg.MaxRetries != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	mem := memoryConfig()
	mem.ApplyDefaults()
	if mem.MaxOpenConns != 1 {
		t.Errorf("in-memory sqlite must use a single connection, got %d", mem.MaxOpenConns)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}},
		{"missing dsn", Config{Driver: DriverSQLite}},
		{"bad duration", Config{Driver: DriverSQLite, DSN: "x", SlowQueryThreshold: "soon"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	seeded := 0
	comp := NewComponent(memoryConfig(), nil).
		WithAutoMigrate(&widget{}).
		WithSeed(func(ctx context.Context, db *DB) error {
			seeded++
			return db.WithContext(ctx).Create(&widget{Name: "seed"}).Error
		})
	ctx := context.Background()

	if comp.DB() != nil {
		t.Error("DB() should be nil before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if seeded != 1 {
		t.Errorf("expected one seed run, got %d", seeded)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	var count int64
	comp.DB().WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 1 {
		t.Errorf("expected seeded row, got %d", count)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := comp.DB().Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestDuplicateAndNotFound(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	if err := db.WithContext(ctx).Create(&widget{Name: "a"}).Error; err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = db.WithContext(ctx).Create(&widget{Name: "a"}).Error
	if !IsDuplicateError(err) {
		t.Errorf("expected duplicate error, got %v", err)
	}
	if appErr := FromDatabase(err, "widget"); appErr.HTTPStatus != 409 {
		t.Errorf("expected 409, got %d", appErr.HTTPStatus)
	}

	var w widget
	err = db.WithContext(ctx).Where("name = ?", "missing").First(&w).Error
	if !IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if appErr := FromDatabase(err, "widget"); appErr.HTTPStatus != 404 {
		t.Errorf("expected 404, got %d", appErr.HTTPStatus)
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, memoryConfig(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	_ = db.AutoMigrate(&widget{})

	boom := errors.New("boom")
	err = db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "tx"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.WithContext(ctx).Model(&widget{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}

func TestFromDatabase_Generic(t *testing.T) {
	if FromDatabase(nil, "x") != nil {
		t.Error("nil error maps to nil")
	}
	if got := FromDatabase(errors.New("syntax error"), "x"); got.HTTPStatus != 500 {
		t.Errorf("expected 500, got %d", got.HTTPStatus)
	}
	if !IsConnectionError(errors.New("dial tcp: connection refused")) {
		t.Error("expected connection error")
	}
}

func TestOpen_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := memoryConfig()
	cfg.MaxRetries = 3
	if _, err := Open(ctx, cfg, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
