package repositories

import (
	"context"
	"time"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// ScheduleRepository provides durable storage for committed schedule entries
type ScheduleRepository interface {
	// PersistScheduleEntries stores entries, superseding any active entry for the same order
	PersistScheduleEntries(ctx context.Context, entries []*entities.ScheduleEntry) error

	// ActiveEntries returns non-superseded entries with from <= scheduled date < to
	ActiveEntries(ctx context.Context, from, to time.Time) ([]*entities.ScheduleEntry, error)

	// ActiveEntryFor returns nil without error when the order has no active entry
	ActiveEntryFor(ctx context.Context, orderID entities.OrderID) (*entities.ScheduleEntry, error)
}
