// Package sqlstore persists measurements, catalog items, preset images and
// try-on requests with gorm on sqlite or postgres.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Store bundles the repositories sharing one connection pool.
type Store struct {
	db *gorm.DB

	Measurements *GormMeasurementRepository
	Catalog      *GormCatalogRepository
	Presets      *GormPresetImageRepository
	TryOns       *GormTryOnRepository
}

// Open connects to the configured database and migrates the schema.
func Open(ctx context.Context, cfg Config, log *zap.Logger, debug bool) (*Store, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, debug),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Driver, err)
	}

	store := New(db)
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = "fitting-room.db"
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres, "postgresql":
		if dsn == "" {
			return nil, errors.New("database.dsn is required for postgres")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Measurements: NewGormMeasurementRepository(db),
		Catalog:      NewGormCatalogRepository(db),
		Presets:      NewGormPresetImageRepository(db),
		TryOns:       NewGormTryOnRepository(db),
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return apperr.Persistence(err, "migrate schema")
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// dbError maps gorm errors onto the application error kinds.
func dbError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format+" not found", args...)
	}
	return apperr.Persistence(err, format, args...)
}
