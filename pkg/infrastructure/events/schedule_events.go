package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

const (
	ScheduleCommittedEvent = "schedule.committed"
	OrderAdvancedEvent     = "order.advanced"
	OrderStaleEvent        = "order.stale"
)

type ScheduleCommitted struct {
	CommitID       uuid.UUID           `json:"commit_id"`
	WeekStart      time.Time           `json:"week_start"`
	Department     entities.Department `json:"department"`
	ScheduledCount int                 `json:"scheduled_count"`
	OverflowCount  int                 `json:"overflow_count"`
	StaleCount     int                 `json:"stale_count"`
}

type OrderAdvanced struct {
	OrderID       entities.OrderID    `json:"order_id"`
	From          entities.Department `json:"from"`
	To            entities.Department `json:"to"`
	ScheduledDate *time.Time          `json:"scheduled_date,omitempty"`
}

type OrderStale struct {
	OrderID  entities.OrderID    `json:"order_id"`
	Expected entities.Department `json:"expected"`
	Actual   entities.Department `json:"actual"`
}

// NewScheduleCommittedEvent is streamed per scheduling week
func NewScheduleCommittedEvent(data ScheduleCommitted) Event {
	return NewEvent(ScheduleCommittedEvent, "week-"+data.WeekStart.Format(entities.DateLayout), data)
}

// NewOrderAdvancedEvent is streamed per order
func NewOrderAdvancedEvent(data OrderAdvanced) Event {
	return NewEvent(OrderAdvancedEvent, string(data.OrderID), data)
}

func NewOrderStaleEvent(stale *entities.StaleStateError) Event {
	return NewEvent(OrderStaleEvent, string(stale.OrderID), OrderStale{
		OrderID:  stale.OrderID,
		Expected: stale.Expected,
		Actual:   stale.Actual,
	})
}
