package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

func TestAuditLog_RecordsSchedulingEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewInMemoryEventStore(nil)
	audit := NewAuditLog(zap.New(core))
	require.NoError(t, audit.Subscribe(store))

	week := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	commitID := uuid.New()
	committed := NewScheduleCommittedEvent(ScheduleCommitted{
		CommitID: commitID, WeekStart: week, Department: entities.Cutting, ScheduledCount: 2, StaleCount: 1,
	})
	require.NoError(t, store.AppendEvent(committed.StreamID(), committed))
	require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{
		OrderID: "AG001", From: entities.Cutting, To: entities.LayupPlugging,
	})))
	require.NoError(t, store.AppendEvent("AG002", NewOrderStaleEvent(&entities.StaleStateError{
		OrderID: "AG002", Expected: entities.Cutting, Actual: entities.CNC,
	})))
	store.Drain()

	require.Equal(t, 3, logs.Len())

	commits := logs.FilterField(zap.String("type", ScheduleCommittedEvent)).All()
	require.Len(t, commits, 1)
	fields := commits[0].ContextMap()
	assert.Equal(t, "week-2025-03-03", fields["stream"])
	assert.Equal(t, commitID.String(), fields["commit_id"])
	assert.Equal(t, int64(2), fields["scheduled"])

	advanced := logs.FilterField(zap.String("stream", "AG001")).All()
	require.Len(t, advanced, 1)
	assert.Equal(t, zapcore.InfoLevel, advanced[0].Level)
	assert.Equal(t, string(entities.LayupPlugging), advanced[0].ContextMap()["to"])

	stale := logs.FilterField(zap.String("type", OrderStaleEvent)).All()
	require.Len(t, stale, 1)
	assert.Equal(t, zapcore.WarnLevel, stale[0].Level)
	assert.Equal(t, string(entities.CNC), stale[0].ContextMap()["actual"])
}

func TestAuditLog_FiltersTypes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewInMemoryEventStore(nil)
	audit := NewAuditLog(zap.New(core), OrderStaleEvent)
	require.NoError(t, audit.Subscribe(store))

	assert.Equal(t, []string{OrderStaleEvent}, audit.Types())
	assert.False(t, audit.CanHandle(OrderAdvancedEvent))

	require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{OrderID: "AG001"})))
	store.Drain()
	assert.Equal(t, 0, logs.Len())
}
