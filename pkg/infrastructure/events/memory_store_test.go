package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{
		OrderID: "AG001", From: entities.Cutting, To: entities.LayupPlugging,
	})))
	require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{
		OrderID: "AG001", From: entities.LayupPlugging, To: entities.Barcode,
	})))
	require.NoError(t, store.AppendEvent("AG002", NewOrderStaleEvent(&entities.StaleStateError{
		OrderID: "AG002", Expected: entities.Cutting, Actual: entities.CNC,
	})))

	stream, err := store.ReadEvents("AG001", 1)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, 1, stream[0].Version())
	assert.Equal(t, 2, stream[1].Version())
	assert.Equal(t, entities.Barcode, stream[1].Data().(OrderAdvanced).To)

	tail, err := store.ReadEvents("AG001", 2)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	missing, err := store.ReadEvents("AG999", 1)
	require.NoError(t, err)
	assert.Empty(t, missing)

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, OrderStaleEvent, all[2].Type())
}

type recordingHandler struct {
	mu       sync.Mutex
	types    map[string]bool
	received []Event
}

func (h *recordingHandler) CanHandle(eventType string) bool { return h.types[eventType] }

func (h *recordingHandler) Handle(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, e)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventStore_Subscribe(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	handler := &recordingHandler{types: map[string]bool{ScheduleCommittedEvent: true}}
	require.NoError(t, store.Subscribe([]string{ScheduleCommittedEvent}, handler))

	week := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	committed := NewScheduleCommittedEvent(ScheduleCommitted{WeekStart: week, ScheduledCount: 4})
	require.NoError(t, store.AppendEvent(committed.StreamID(), committed))
	require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{OrderID: "AG001"})))
	store.Drain()

	require.Equal(t, 1, handler.count())
	assert.Equal(t, "week-2025-03-03", handler.received[0].StreamID())

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent(committed.StreamID(), committed))
	store.Drain()

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventStore_RejectsEmptyStream(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	assert.Error(t, store.AppendEvent("", NewEvent(OrderAdvancedEvent, "", nil)))
	assert.Equal(t, 0, store.Len())
}

func TestInMemoryEventStore_Retention(t *testing.T) {
	store := NewInMemoryEventStore(nil, WithRetention(3))

	advance := func(id entities.OrderID) {
		require.NoError(t, store.AppendEvent(string(id), NewOrderAdvancedEvent(OrderAdvanced{OrderID: id})))
	}
	advance("AG001") // seq 0, AG001 v1
	advance("AG002") // seq 1, AG002 v1
	advance("AG001") // seq 2, AG001 v2
	advance("AG003") // seq 3, AG003 v1
	advance("AG001") // seq 4, AG001 v3

	assert.Equal(t, 3, store.Len())

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].Sequence())
	assert.Equal(t, 4, all[2].Sequence())

	since, err := store.ReadAllEvents(4)
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "AG001", since[0].StreamID())

	past, err := store.ReadAllEvents(10)
	require.NoError(t, err)
	assert.Empty(t, past)

	// AG002 was fully evicted; AG001 keeps counting versions past the dropped head
	gone, err := store.ReadEvents("AG002", 1)
	require.NoError(t, err)
	assert.Empty(t, gone)

	stream, err := store.ReadEvents("AG001", 1)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, 2, stream[0].Version())
	assert.Equal(t, 3, stream[1].Version())

	advance("AG002")
	again, err := store.ReadEvents("AG002", 1)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2, again[0].Version())
}

func TestInMemoryEventStore_Unbounded(t *testing.T) {
	store := NewInMemoryEventStore(nil, WithRetention(0))
	for i := 0; i < 50; i++ {
		require.NoError(t, store.AppendEvent("AG001", NewOrderAdvancedEvent(OrderAdvanced{OrderID: "AG001"})))
	}
	assert.Equal(t, 50, store.Len())
}
