package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
	"github.com/vsinha/prodsched/pkg/domain/services"
	"github.com/vsinha/prodsched/pkg/infrastructure/events"
)

// WeekLocker serialises commits that target the same scheduling week
type WeekLocker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases the lock.
	Lock(ctx context.Context, key string) (func(), error)
}

// Committer turns an accepted proposal into durable schedule entries and department transitions
type Committer struct {
	txManager    repositories.TransactionManager
	stateMachine *services.DepartmentStateMachine
	locker       WeekLocker
	eventStore   events.EventStore
	source       entities.Department
	logger       *zap.Logger
	now          func() time.Time
}

// CommitterOption configures optional Committer collaborators
type CommitterOption func(*Committer)

// WithEventStore publishes commit events to store
func WithEventStore(store events.EventStore) CommitterOption {
	return func(c *Committer) { c.eventStore = store }
}

// WithClock overrides the time source used for entry timestamps
func WithClock(now func() time.Time) CommitterOption {
	return func(c *Committer) { c.now = now }
}

// WithLogger sets the committer's logger
func WithLogger(logger *zap.Logger) CommitterOption {
	return func(c *Committer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCommitter creates a Committer that advances orders out of source
func NewCommitter(
	txManager repositories.TransactionManager,
	stateMachine *services.DepartmentStateMachine,
	locker WeekLocker,
	source entities.Department,
	opts ...CommitterOption,
) (*Committer, error) {
	if txManager == nil {
		return nil, fmt.Errorf("transaction manager cannot be nil")
	}
	if stateMachine == nil {
		return nil, fmt.Errorf("state machine cannot be nil")
	}
	if locker == nil {
		return nil, fmt.Errorf("week locker cannot be nil")
	}
	if _, err := stateMachine.NextDepartment(source); err != nil {
		return nil, fmt.Errorf("invalid scheduling department: %w", err)
	}

	c := &Committer{
		txManager:    txManager,
		stateMachine: stateMachine,
		locker:       locker,
		source:       source,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("committer")
	return c, nil
}

// Source returns the department whose queue this committer schedules
func (c *Committer) Source() entities.Department {
	return c.source
}

// Commit persists one entry per scheduled order and advances each order to the next department,
// all inside a single transaction. Orders that left the source department since generation are
// skipped and reported in StaleOrderIDs. Any storage failure rolls the whole commit back.
func (c *Committer) Commit(
	ctx context.Context,
	proposal *entities.ScheduleProposal,
	week entities.WorkWeekConfig,
	capacitySnapshot []entities.EmployeeCapacitySetting,
) (*dto.CommitResult, error) {
	if proposal == nil {
		return nil, &entities.ValidationError{Field: "proposal", Reason: "cannot be empty"}
	}
	if err := week.Validate(); err != nil {
		return nil, err
	}

	checked := proposal.Clone()
	checked.Week = week
	if err := checked.Validate(); err != nil {
		var violation *entities.InvariantViolation
		if errors.As(err, &violation) {
			c.logger.DPanic("refusing to commit proposal", zap.Error(err))
		}
		return nil, err
	}

	target, err := c.stateMachine.NextDepartment(c.source)
	if err != nil {
		return nil, err
	}

	unlock, err := c.locker.Lock(ctx, week.WeekKey())
	if err != nil {
		return nil, fmt.Errorf("failed to lock week %s: %w", week.WeekKey(), err)
	}
	defer unlock()

	commitID := uuid.New()
	var (
		entries  []*entities.ScheduleEntry
		stale    []*entities.StaleStateError
		overflow int
	)

	err = c.txManager.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		entries, stale, overflow = nil, nil, 0
		createdAt := c.now().UTC()

		for _, date := range checked.Dates() {
			scheduledDate, err := entities.ParseDate(date)
			if err != nil {
				return err
			}
			for _, order := range checked.Days[date] {
				err := uow.Orders().TransitionDepartment(ctx, order.OrderID, c.source, target)
				var staleErr *entities.StaleStateError
				switch {
				case errors.As(err, &staleErr):
					stale = append(stale, staleErr)
					continue
				case errors.Is(err, repositories.ErrOrderNotFound):
					stale = append(stale, &entities.StaleStateError{OrderID: order.OrderID, Expected: c.source})
					continue
				case err != nil:
					return &entities.PersistenceError{Op: "transition " + string(order.OrderID), Err: err}
				}

				entry, err := entities.NewScheduleEntry(
					commitID, order.OrderID, scheduledDate, checked.MoldFor(order.OrderID), capacitySnapshot,
				)
				if err != nil {
					return err
				}
				entry.CreatedAt = createdAt
				entries = append(entries, entry)
			}
		}

		if err := uow.Schedules().PersistScheduleEntries(ctx, entries); err != nil {
			var violation *entities.InvariantViolation
			if errors.As(err, &violation) {
				c.logger.DPanic("schedule entry invariant broken", zap.Error(err))
				return err
			}
			return &entities.PersistenceError{Op: "persist schedule entries", Err: err}
		}

		pending, err := uow.Orders().FetchPendingOrders(ctx, c.source)
		if err != nil {
			return &entities.PersistenceError{Op: "count overflow", Err: err}
		}
		overflow = len(pending)
		return nil
	})
	if err != nil {
		var persistErr *entities.PersistenceError
		var violation *entities.InvariantViolation
		if !errors.As(err, &persistErr) && !errors.As(err, &violation) {
			err = &entities.PersistenceError{Op: "commit", Err: err}
		}
		c.logger.Error("schedule commit rolled back",
			zap.String("week", week.WeekKey()),
			zap.Stringer("commit_id", commitID),
			zap.Error(err))
		return nil, err
	}

	result := &dto.CommitResult{
		CommitID:       commitID,
		WeekStart:      entities.NormalizeDate(week.WeekStart),
		ScheduledCount: len(entries),
		OverflowCount:  overflow,
		StaleOrderIDs:  make([]entities.OrderID, 0, len(stale)),
	}
	for _, s := range stale {
		result.StaleOrderIDs = append(result.StaleOrderIDs, s.OrderID)
	}

	c.logger.Info("schedule committed",
		zap.String("week", week.WeekKey()),
		zap.Stringer("commit_id", commitID),
		zap.Int("scheduled", result.ScheduledCount),
		zap.Int("overflow", result.OverflowCount),
		zap.Int("stale", len(result.StaleOrderIDs)))

	c.publish(result, entries, stale, target)
	return result, nil
}

func (c *Committer) publish(
	result *dto.CommitResult,
	entries []*entities.ScheduleEntry,
	stale []*entities.StaleStateError,
	target entities.Department,
) {
	if c.eventStore == nil {
		return
	}

	var batch []events.Event
	batch = append(batch, events.NewScheduleCommittedEvent(events.ScheduleCommitted{
		CommitID:       result.CommitID,
		WeekStart:      result.WeekStart,
		Department:     c.source,
		ScheduledCount: result.ScheduledCount,
		OverflowCount:  result.OverflowCount,
		StaleCount:     len(stale),
	}))
	for _, entry := range entries {
		date := entry.ScheduledDate
		batch = append(batch, events.NewOrderAdvancedEvent(events.OrderAdvanced{
			OrderID:       entry.OrderID,
			From:          c.source,
			To:            target,
			ScheduledDate: &date,
		}))
	}
	for _, s := range stale {
		batch = append(batch, events.NewOrderStaleEvent(s))
	}

	for _, e := range batch {
		if err := c.eventStore.AppendEvent(e.StreamID(), e); err != nil {
			c.logger.Warn("failed to publish event", zap.String("type", e.Type()), zap.Error(err))
		}
	}
}
