package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	store.SetClock(func() time.Time { return monday.Add(9 * time.Hour) })
	require.NoError(t, store.LoadOrders(context.Background(), []*entities.ProductionOrder{
		{OrderID: "AG002", StockModelID: "CF-ALPINE", CurrentDepartment: entities.Cutting},
		{OrderID: "AG001", StockModelID: "CF-ALPINE", CurrentDepartment: entities.Cutting},
		{OrderID: "AG003", StockModelID: "CF-HUNTER", CurrentDepartment: entities.QC},
	}))
	return store
}

func entry(t *testing.T, orderID entities.OrderID, date time.Time) *entities.ScheduleEntry {
	t.Helper()
	e, err := entities.NewScheduleEntry(uuid.New(), orderID, date, "", nil)
	require.NoError(t, err)
	return e
}

func TestStore_FetchPendingOrders(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	pending, err := store.FetchPendingOrders(ctx, entities.Cutting)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, entities.OrderID("AG001"), pending[0].OrderID)

	// returned orders are copies
	pending[0].CurrentDepartment = entities.Shipping
	again, err := store.GetOrder(ctx, "AG001")
	require.NoError(t, err)
	assert.Equal(t, entities.Cutting, again.CurrentDepartment)
}

func TestStore_TransitionDepartment(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	require.NoError(t, store.TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging))

	err := store.TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging)
	var stale *entities.StaleStateError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, entities.LayupPlugging, stale.Actual)

	err = store.TransitionDepartment(ctx, "AG999", entities.Cutting, entities.LayupPlugging)
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))

	history, err := store.DepartmentHistory(ctx, "AG001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.LayupPlugging, history[0].To)
	assert.Equal(t, monday.Add(9*time.Hour), history[0].CompletedAt)

	counts, err := store.DepartmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entities.Cutting])
	assert.Equal(t, 1, counts[entities.LayupPlugging])
	assert.Equal(t, 1, counts[entities.QC])
}

func TestStore_PersistSupersedesActiveEntry(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{entry(t, "AG001", monday)}))
	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{entry(t, "AG001", monday.AddDate(0, 0, 2))}))

	active, err := store.ActiveEntryFor(ctx, "AG001")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, monday.AddDate(0, 0, 2), active.ScheduledDate)
	assert.Equal(t, entities.AutoMold, active.MoldID)

	all := store.AllEntries()
	require.Len(t, all, 2)
	assert.False(t, all[0].IsActive())

	none, err := store.ActiveEntryFor(ctx, "AG002")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStore_PersistRejectsDuplicateBatch(t *testing.T) {
	store := seededStore(t)

	err := store.PersistScheduleEntries(context.Background(), []*entities.ScheduleEntry{
		entry(t, "AG001", monday),
		entry(t, "AG001", monday.AddDate(0, 0, 1)),
	})
	var violation *entities.InvariantViolation
	assert.True(t, errors.As(err, &violation))
	assert.Empty(t, store.AllEntries())
}

func TestStore_ActiveEntriesWindow(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{
		entry(t, "AG002", monday.AddDate(0, 0, 1)),
		entry(t, "AG001", monday.AddDate(0, 0, 1)),
		entry(t, "AG003", monday.AddDate(0, 0, 7)),
	}))

	week, err := store.ActiveEntries(ctx, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, entities.OrderID("AG001"), week[0].OrderID)
	assert.Equal(t, entities.OrderID("AG002"), week[1].OrderID)
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	boom := errors.New("disk full")

	err := store.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		if err := uow.Orders().TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging); err != nil {
			return err
		}
		if err := uow.Schedules().PersistScheduleEntries(ctx, []*entities.ScheduleEntry{entry(t, "AG001", monday)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	order, err := store.GetOrder(ctx, "AG001")
	require.NoError(t, err)
	assert.Equal(t, entities.Cutting, order.CurrentDepartment)
	assert.Empty(t, store.AllEntries())

	history, err := store.DepartmentHistory(ctx, "AG001")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_TransactionIsolation(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	inside := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
			if err := uow.Orders().TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging); err != nil {
				return err
			}
			close(inside)
			<-release
			return errors.New("operator cancelled")
		})
	}()
	<-inside

	// uncommitted work is invisible to readers
	counts, err := store.DepartmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[entities.Cutting])
	assert.Zero(t, counts[entities.LayupPlugging])

	loadDone := make(chan error, 1)
	go func() {
		loadDone <- store.LoadOrders(ctx, []*entities.ProductionOrder{
			{OrderID: "AG004", StockModelID: "CF-ALPINE", CurrentDepartment: entities.Cutting},
		})
	}()
	close(release)

	require.EqualError(t, <-txDone, "operator cancelled")
	require.NoError(t, <-loadDone)

	// the rolled back transaction does not discard the load that waited on it
	pending, err := store.FetchPendingOrders(ctx, entities.Cutting)
	require.NoError(t, err)
	ids := make([]entities.OrderID, len(pending))
	for i, o := range pending {
		ids[i] = o.OrderID
	}
	assert.Equal(t, []entities.OrderID{"AG001", "AG002", "AG004"}, ids)

	history, err := store.DepartmentHistory(ctx, "AG001")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_TransactionKeepsConcurrentLoad(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	inside := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
			close(inside)
			<-release
			return uow.Orders().TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging)
		})
	}()
	<-inside

	loadDone := make(chan error, 1)
	go func() {
		loadDone <- store.LoadOrders(ctx, []*entities.ProductionOrder{
			{OrderID: "AG004", StockModelID: "CF-ALPINE", CurrentDepartment: entities.Cutting},
		})
	}()
	close(release)

	require.NoError(t, <-txDone)
	require.NoError(t, <-loadDone)

	counts, err := store.DepartmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[entities.Cutting])
	assert.Equal(t, 1, counts[entities.LayupPlugging])
}

func TestStore_FailNextPersist(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	store.FailNextPersist(errors.New("connection reset"))

	err := store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{entry(t, "AG001", monday)})
	require.Error(t, err)

	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{entry(t, "AG001", monday)}))
	assert.Len(t, store.AllEntries(), 1)
}

func TestStore_CapacitySettings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.LoadCapacitySettings(ctx, []entities.EmployeeCapacitySetting{
		{EmployeeID: "E2", Department: entities.Cutting, IsActive: true},
		{EmployeeID: "E1", Department: entities.Cutting, IsActive: false},
		{EmployeeID: "E3", Department: entities.Paint, IsActive: true},
	}))
	require.NoError(t, store.LoadCapacitySettings(ctx, []entities.EmployeeCapacitySetting{
		{EmployeeID: "E1", Department: entities.Cutting, IsActive: true},
	}))

	settings, err := store.FetchCapacitySettings(ctx, entities.Cutting)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "E1", settings[0].EmployeeID)
	assert.True(t, settings[0].IsActive)
}
