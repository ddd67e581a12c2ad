package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/prodsched/pkg/domain/repositories"
	"github.com/vsinha/prodsched/pkg/infrastructure/config"
)

// Store implements the scheduling repositories on Postgres through gorm
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Verify interface compliance
var (
	_ repositories.OrderRepository    = (*Store)(nil)
	_ repositories.CapacityRepository = (*Store)(nil)
	_ repositories.ScheduleRepository = (*Store)(nil)
	_ repositories.TransactionManager = (*Store)(nil)
	_ repositories.UnitOfWork         = (*Store)(nil)
)

// NewStore wraps an open gorm connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SetClock replaces the time source used for transition and supersede timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Open connects to Postgres with pool settings from cfg
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if log != nil && log.Core().Enabled(zap.DebugLevel) {
		level = logger.Info
	}

	db, err := gorm.Open(pgdriver.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// AutoMigrate creates or updates every scheduling table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate scheduling tables: %w", err)
	}
	return nil
}

// Orders returns the store as an OrderRepository
func (s *Store) Orders() repositories.OrderRepository {
	return s
}

// Schedules returns the store as a ScheduleRepository
func (s *Store) Schedules() repositories.ScheduleRepository {
	return s
}

// WithinTransaction runs fn against a store bound to one database transaction
func (s *Store) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, uow repositories.UnitOfWork) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, now: s.now})
	})
}
