package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/application/services/capacity"
	"github.com/vsinha/prodsched/pkg/application/services/priority"
	"github.com/vsinha/prodsched/pkg/application/services/scheduling"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
	"github.com/vsinha/prodsched/pkg/domain/services"
	"github.com/vsinha/prodsched/pkg/infrastructure/events"
)

// SchedulingOrchestrator coordinates the generate / edit / commit flow for one scheduling department
// and exposes department progression for the downstream queues
type SchedulingOrchestrator struct {
	orderRepo    repositories.OrderRepository
	capacityRepo repositories.CapacityRepository
	scheduleRepo repositories.ScheduleRepository
	txManager    repositories.TransactionManager
	stateMachine *services.DepartmentStateMachine
	queueBuilder *priority.QueueBuilder
	generator    *scheduling.Generator
	editor       *scheduling.Editor
	committer    *scheduling.Committer
	eventStore   events.EventStore
	logger       *zap.Logger
	clock        func() time.Time
}

// Dependencies groups the collaborators an orchestrator needs
type Dependencies struct {
	Orders       repositories.OrderRepository
	Capacity     repositories.CapacityRepository
	Schedules    repositories.ScheduleRepository
	Transactions repositories.TransactionManager
	StateMachine *services.DepartmentStateMachine
	QueueBuilder *priority.QueueBuilder
	Committer    *scheduling.Committer
	EventStore   events.EventStore // optional
	Logger       *zap.Logger       // optional
	Clock        func() time.Time  // optional
}

// NewSchedulingOrchestrator creates a new scheduling orchestrator
func NewSchedulingOrchestrator(deps Dependencies) (*SchedulingOrchestrator, error) {
	switch {
	case deps.Orders == nil:
		return nil, fmt.Errorf("order repository cannot be nil")
	case deps.Capacity == nil:
		return nil, fmt.Errorf("capacity repository cannot be nil")
	case deps.Schedules == nil:
		return nil, fmt.Errorf("schedule repository cannot be nil")
	case deps.Transactions == nil:
		return nil, fmt.Errorf("transaction manager cannot be nil")
	case deps.StateMachine == nil:
		return nil, fmt.Errorf("state machine cannot be nil")
	case deps.QueueBuilder == nil:
		return nil, fmt.Errorf("queue builder cannot be nil")
	case deps.Committer == nil:
		return nil, fmt.Errorf("committer cannot be nil")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &SchedulingOrchestrator{
		orderRepo:    deps.Orders,
		capacityRepo: deps.Capacity,
		scheduleRepo: deps.Schedules,
		txManager:    deps.Transactions,
		stateMachine: deps.StateMachine,
		queueBuilder: deps.QueueBuilder,
		generator:    scheduling.NewGenerator(logger),
		editor:       scheduling.NewEditor(logger),
		committer:    deps.Committer,
		eventStore:   deps.EventStore,
		logger:       logger.Named("orchestrator"),
		clock:        clock,
	}, nil
}

// Department returns the department whose queue is scheduled
func (so *SchedulingOrchestrator) Department() entities.Department {
	return so.committer.Source()
}

// GenerateSchedule builds a disposable proposal for week from the department's pending queue
func (so *SchedulingOrchestrator) GenerateSchedule(
	ctx context.Context,
	week entities.WorkWeekConfig,
) (*dto.GenerationResult, error) {
	if err := week.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Prioritise pending orders, holding back those missing a stock model
	view, err := so.PriorityQueue(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: Resolve daily capacity from staffing
	settings, err := so.capacityRepo.FetchCapacitySettings(ctx, so.Department())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capacity settings: %w", err)
	}
	perDay := capacity.Effective(week, settings)

	// Step 3: Allocate
	result := so.generator.Generate(view.Queue, perDay, week)
	result.NeedsInformation = view.NeedsInformation
	if week.CapacityOverride <= 0 {
		result.Staffing = capacity.Breakdown(settings)
	}

	so.logger.Info("schedule generated",
		zap.String("department", string(so.Department())),
		zap.String("week", week.WeekKey()),
		zap.Int("capacity_per_day", perDay),
		zap.Int("scheduled", result.ScheduledCount()),
		zap.Int("overflow", len(result.Overflow)),
		zap.Int("needs_information", len(result.NeedsInformation)))

	return result, nil
}

// EditSchedule applies one manual edit and reports the days the new proposal overbooks
// against the proposal week's effective capacity
func (so *SchedulingOrchestrator) EditSchedule(
	ctx context.Context,
	proposal *entities.ScheduleProposal,
	op dto.EditOperation,
) (*dto.EditResult, error) {
	edited, err := so.editor.Apply(proposal, op)
	if err != nil {
		return nil, err
	}

	settings, err := so.capacityRepo.FetchCapacitySettings(ctx, so.Department())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch capacity settings: %w", err)
	}
	perDay := capacity.Effective(edited.Week, settings)
	overbooked := scheduling.OverbookedDates(edited, perDay)
	if len(overbooked) > 0 {
		so.logger.Info("manual edit overbooks days",
			zap.String("order_id", string(op.OrderID)),
			zap.Int("capacity_per_day", perDay),
			zap.Strings("dates", overbooked))
	}

	return &dto.EditResult{Proposal: edited, Capacity: perDay, Overbooked: overbooked}, nil
}

// CommitSchedule persists an accepted proposal using the current staffing as the assignment snapshot
func (so *SchedulingOrchestrator) CommitSchedule(
	ctx context.Context,
	proposal *entities.ScheduleProposal,
	week entities.WorkWeekConfig,
) (*dto.CommitResult, error) {
	settings, err := so.capacityRepo.FetchCapacitySettings(ctx, so.Department())
	if err != nil {
		return nil, &entities.PersistenceError{Op: "fetch capacity snapshot", Err: err}
	}

	var active []entities.EmployeeCapacitySetting
	for _, s := range settings {
		if s.IsActive {
			active = append(active, s)
		}
	}

	return so.committer.Commit(ctx, proposal, week, active)
}

// GetDepartmentCounts returns the number of orders in every non-terminal department
func (so *SchedulingOrchestrator) GetDepartmentCounts(ctx context.Context) (map[entities.Department]int, error) {
	stored, err := so.orderRepo.DepartmentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count departments: %w", err)
	}

	counts := so.stateMachine.EmptyCounts()
	for dept, n := range stored {
		if _, tracked := counts[dept]; tracked {
			counts[dept] = n
		}
	}
	return counts, nil
}

// PriorityQueue returns the department's pending orders in scheduling order
func (so *SchedulingOrchestrator) PriorityQueue(ctx context.Context) (*dto.QueueView, error) {
	pending, err := so.orderRepo.FetchPendingOrders(ctx, so.Department())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending orders: %w", err)
	}

	orders := make([]entities.ProductionOrder, len(pending))
	for i, o := range pending {
		orders[i] = *o
	}

	today := so.clock()
	ready, needsInfo := priority.Partition(orders)
	queue := so.queueBuilder.BuildQueue(ready, today)

	byUrgency := make(map[string]int)
	for level, n := range priority.GroupByUrgency(queue) {
		byUrgency[level.String()] = n
	}

	return &dto.QueueView{
		Department:       so.Department(),
		Queue:            queue,
		NeedsInformation: so.queueBuilder.BuildQueue(needsInfo, today),
		ByUrgency:        byUrgency,
	}, nil
}

// ListSchedule returns active committed entries with from <= date < to
func (so *SchedulingOrchestrator) ListSchedule(ctx context.Context, from, to time.Time) (*dto.ScheduleView, error) {
	from, to = entities.NormalizeDate(from), entities.NormalizeDate(to)
	if !to.After(from) {
		return nil, &entities.ValidationError{Field: "to", Reason: "must be after from"}
	}

	entries, err := so.scheduleRepo.ActiveEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return &dto.ScheduleView{From: from, To: to, Entries: entries}, nil
}

// ProgressOrder advances an order out of a downstream department to the next stage.
// Orders in the scheduling department only advance through CommitSchedule.
func (so *SchedulingOrchestrator) ProgressOrder(ctx context.Context, orderID entities.OrderID) (*dto.ProgressResult, error) {
	order, err := so.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.CurrentDepartment
	if from == so.Department() {
		return nil, &entities.ValidationError{
			Field:  "order_id",
			Reason: fmt.Sprintf("order %s is in %s and advances through a schedule commit", orderID, from),
		}
	}
	if so.stateMachine.IsTerminal(from) {
		return nil, &entities.IllegalTransitionError{From: from, To: from}
	}
	to, err := so.stateMachine.NextDepartment(from)
	if err != nil {
		return nil, err
	}
	if err := so.stateMachine.ValidateTransition(from, to); err != nil {
		return nil, err
	}

	err = so.txManager.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		return uow.Orders().TransitionDepartment(ctx, orderID, from, to)
	})
	if err != nil {
		var stale *entities.StaleStateError
		if errors.As(err, &stale) {
			return nil, err
		}
		return nil, &entities.PersistenceError{Op: "progress " + string(orderID), Err: err}
	}

	if so.eventStore != nil {
		e := events.NewOrderAdvancedEvent(events.OrderAdvanced{OrderID: orderID, From: from, To: to})
		if err := so.eventStore.AppendEvent(e.StreamID(), e); err != nil {
			so.logger.Warn("failed to publish event", zap.String("type", e.Type()), zap.Error(err))
		}
	}

	so.logger.Info("order advanced",
		zap.String("order_id", string(orderID)),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	return &dto.ProgressResult{OrderID: orderID, From: from, To: to}, nil
}

// DepartmentHistory returns the order's completed department transitions
func (so *SchedulingOrchestrator) DepartmentHistory(
	ctx context.Context,
	orderID entities.OrderID,
) ([]entities.DepartmentTransition, error) {
	return so.orderRepo.DepartmentHistory(ctx, orderID)
}
