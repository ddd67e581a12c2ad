package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// projectRoot walks up from this file to the directory holding go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestStore opens an isolated schema per test. Skipped unless DB_HOST is set.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	if root := projectRoot(); root != "" {
		_ = godotenv.Load(filepath.Join(root, ".env"))
	}
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set, skipping postgres tests")
	}

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "prodsched"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "prodsched"))
	schema := fmt.Sprintf("test_prodsched_%d", time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(pgdriver.Open(baseDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error)

	db, err := gorm.Open(pgdriver.Open(baseDSN+" search_path="+schema), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
		setupDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema))
		if sqlDB, err := setupDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := NewStore(db)
	store.SetClock(func() time.Time { return monday.Add(9 * time.Hour) })
	require.NoError(t, store.LoadOrders(context.Background(), []*entities.ProductionOrder{
		{OrderID: "AG001", StockModelID: "CF-ALPINE", DueDate: monday.AddDate(0, 0, 3), CurrentDepartment: entities.Cutting},
		{OrderID: "AG002", StockModelID: "CF-ALPINE", CurrentDepartment: entities.Cutting},
		{OrderID: "AG003", StockModelID: "CF-HUNTER", CurrentDepartment: entities.QC},
	}))
	return store
}

func TestPostgresStore_Orders(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	pending, err := store.FetchPendingOrders(ctx, entities.Cutting)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, entities.OrderID("AG001"), pending[0].OrderID)
	assert.True(t, pending[0].DueDate.Equal(monday.AddDate(0, 0, 3)))
	assert.True(t, pending[1].DueDate.IsZero())

	_, err = store.GetOrder(ctx, "AG999")
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestPostgresStore_TransitionDepartment(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging))

	err := store.TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging)
	var stale *entities.StaleStateError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, entities.LayupPlugging, stale.Actual)

	history, err := store.DepartmentHistory(ctx, "AG001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.Cutting, history[0].From)

	counts, err := store.DepartmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entities.Cutting])
	assert.Equal(t, 1, counts[entities.LayupPlugging])
	assert.Equal(t, 1, counts[entities.QC])
}

func TestPostgresStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	err := store.WithinTransaction(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		if err := uow.Orders().TransitionDepartment(ctx, "AG001", entities.Cutting, entities.LayupPlugging); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	order, err := store.GetOrder(ctx, "AG001")
	require.NoError(t, err)
	assert.Equal(t, entities.Cutting, order.CurrentDepartment)
}

func TestPostgresStore_ScheduleEntries(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	snapshot := []entities.EmployeeCapacitySetting{{
		EmployeeID: "EMP-CUT-1", Department: entities.Cutting,
		Rate: decimal.RequireFromString("2.5"), Hours: decimal.NewFromInt(4), IsActive: true,
	}}
	first, err := entities.NewScheduleEntry(uuid.New(), "AG001", monday, "", snapshot)
	require.NoError(t, err)
	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{first}))

	got, err := store.ActiveEntryFor(ctx, "AG001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.AutoMold, got.MoldID)
	require.Len(t, got.EmployeeAssignments, 1)
	assert.True(t, got.EmployeeAssignments[0].Rate.Equal(decimal.RequireFromString("2.5")))

	second, err := entities.NewScheduleEntry(uuid.New(), "AG001", monday.AddDate(0, 0, 2), "MOLD-3", nil)
	require.NoError(t, err)
	require.NoError(t, store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{second}))

	active, err := store.ActiveEntries(ctx, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "MOLD-3", active[0].MoldID)

	none, err := store.ActiveEntryFor(ctx, "AG002")
	require.NoError(t, err)
	assert.Nil(t, none)

	dup, err := entities.NewScheduleEntry(uuid.New(), "AG002", monday, "", nil)
	require.NoError(t, err)
	err = store.PersistScheduleEntries(ctx, []*entities.ScheduleEntry{dup, dup})
	var violation *entities.InvariantViolation
	assert.True(t, errors.As(err, &violation))
}

func TestPostgresStore_CapacitySettings(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.LoadCapacitySettings(ctx, []entities.EmployeeCapacitySetting{
		{EmployeeID: "EMP-2", Department: entities.Cutting, Rate: decimal.NewFromInt(1), Hours: decimal.NewFromInt(8), IsActive: true},
		{EmployeeID: "EMP-1", Department: entities.Cutting, Rate: decimal.NewFromInt(2), Hours: decimal.NewFromInt(8), IsActive: true},
	}))
	require.NoError(t, store.LoadCapacitySettings(ctx, []entities.EmployeeCapacitySetting{
		{EmployeeID: "EMP-2", Department: entities.Cutting, Rate: decimal.NewFromInt(1), Hours: decimal.NewFromInt(8), IsActive: false},
	}))

	settings, err := store.FetchCapacitySettings(ctx, entities.Cutting)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "EMP-1", settings[0].EmployeeID)
	assert.False(t, settings[1].IsActive)
}
