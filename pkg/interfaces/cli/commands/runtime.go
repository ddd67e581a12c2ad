package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/application/services/orchestration"
	"github.com/vsinha/prodsched/pkg/application/services/priority"
	"github.com/vsinha/prodsched/pkg/application/services/scheduling"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
	"github.com/vsinha/prodsched/pkg/domain/services"
	"github.com/vsinha/prodsched/pkg/infrastructure/config"
	"github.com/vsinha/prodsched/pkg/infrastructure/events"
	"github.com/vsinha/prodsched/pkg/infrastructure/lock"
	"github.com/vsinha/prodsched/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodsched/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/prodsched/pkg/infrastructure/repositories/postgres"
)

// Backend is a store that serves every repository the orchestrator needs
type Backend interface {
	repositories.OrderRepository
	repositories.CapacityRepository
	repositories.ScheduleRepository
	repositories.TransactionManager
}

var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*postgres.Store)(nil)
)

// Runtime holds the wired services for one CLI invocation
type Runtime struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        Backend
	StateMachine *services.DepartmentStateMachine
	Orchestrator *orchestration.SchedulingOrchestrator
	Events       *events.InMemoryEventStore

	closers []func() error
}

// NewRuntime opens the configured store and lock backend and wires the orchestrator
func NewRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	store, err := rt.openStore(cfg)
	if err != nil {
		return nil, err
	}
	rt.Store = store

	locker, err := rt.openLocker(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	pipeline, err := entities.NewPipeline(cfg.Scheduling.PipelineDepartments())
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.StateMachine = services.NewDepartmentStateMachine(pipeline)
	rt.Events = events.NewInMemoryEventStore(logger, events.WithRetention(cfg.Events.Retention))
	if cfg.Events.Audit {
		if err := events.NewAuditLog(logger).Subscribe(rt.Events); err != nil {
			rt.Close()
			return nil, err
		}
	}

	department := entities.Department(cfg.Scheduling.Department)
	committer, err := scheduling.NewCommitter(store, rt.StateMachine, locker, department,
		scheduling.WithEventStore(rt.Events),
		scheduling.WithLogger(logger),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	queueBuilder, err := priority.NewQueueBuilder(cfg.Priority.Rules())
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Orchestrator, err = orchestration.NewSchedulingOrchestrator(orchestration.Dependencies{
		Orders:       store,
		Capacity:     store,
		Schedules:    store,
		Transactions: store,
		StateMachine: rt.StateMachine,
		QueueBuilder: queueBuilder,
		Committer:    committer,
		EventStore:   rt.Events,
		Logger:       logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) openStore(cfg *config.Config) (Backend, error) {
	if !cfg.Database.Enabled() {
		rt.Logger.Info("using in-memory store")
		return memory.NewStore(), nil
	}

	db, err := postgres.Open(cfg.Database, rt.Logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, sqlDB.Close)

	if cfg.Database.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			rt.Close()
			return nil, err
		}
	}
	rt.Logger.Info("using postgres store",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))
	return postgres.NewStore(db), nil
}

func (rt *Runtime) openLocker(ctx context.Context, cfg *config.Config) (scheduling.WeekLocker, error) {
	if cfg.Lock.Backend != "redis" {
		return lock.NewLocalWeekLocker(), nil
	}

	client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, client.Close)
	return lock.NewRedisWeekLocker(client, cfg.Lock.Prefix, cfg.Lock.TTL, cfg.Lock.Retry, rt.Logger)
}

// Import loads orders and staffing CSV files into the store. Empty paths are skipped.
func (rt *Runtime) Import(ctx context.Context, ordersFile, staffingFile string) error {
	loader := csv.NewLoader(entities.Department(rt.Config.Scheduling.Department))

	if ordersFile != "" {
		orders, err := loader.LoadOrders(ordersFile)
		if err != nil {
			return fmt.Errorf("error loading orders: %w", err)
		}
		for _, o := range orders {
			if !rt.StateMachine.Pipeline().Contains(o.CurrentDepartment) {
				return fmt.Errorf("order %s: unknown department %q", o.OrderID, o.CurrentDepartment)
			}
		}
		if err := rt.Store.LoadOrders(ctx, orders); err != nil {
			return fmt.Errorf("failed to load orders into store: %w", err)
		}
		rt.Logger.Info("orders imported", zap.String("file", ordersFile), zap.Int("count", len(orders)))
	}

	if staffingFile != "" {
		settings, err := loader.LoadStaffing(staffingFile)
		if err != nil {
			return fmt.Errorf("error loading staffing: %w", err)
		}
		if err := rt.Store.LoadCapacitySettings(ctx, settings); err != nil {
			return fmt.Errorf("failed to load staffing into store: %w", err)
		}
		rt.Logger.Info("staffing imported", zap.String("file", staffingFile), zap.Int("count", len(settings)))
	}
	return nil
}

// Close drains pending event handlers and releases connections
func (rt *Runtime) Close() {
	if rt.Events != nil {
		rt.Events.Drain()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.Logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	rt.closers = nil
}
