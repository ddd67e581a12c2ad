package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// PersistScheduleEntries appends entries and supersedes any active entry for the same orders
func (s *Store) PersistScheduleEntries(ctx context.Context, entries []*entities.ScheduleEntry) error {
	defer s.lockWrite()()

	if err := s.persistErr; err != nil {
		s.persistErr = nil
		return err
	}

	batch := make(map[entities.OrderID]bool, len(entries))
	for _, e := range entries {
		if batch[e.OrderID] {
			return &entities.InvariantViolation{
				Rule:   "one schedule entry per order per commit",
				Detail: fmt.Sprintf("order %s appears twice in batch", e.OrderID),
			}
		}
		batch[e.OrderID] = true
	}

	supersededAt := s.now().UTC()
	for _, existing := range s.entries {
		if existing.IsActive() && batch[existing.OrderID] {
			at := supersededAt
			existing.SupersededAt = &at
		}
	}
	for _, e := range entries {
		copied := *e
		s.entries = append(s.entries, &copied)
	}
	return nil
}

// ActiveEntries returns active entries with from <= scheduled date < to, ordered by date then order id
func (s *Store) ActiveEntries(ctx context.Context, from, to time.Time) ([]*entities.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entities.ScheduleEntry
	for _, e := range s.entries {
		if !e.IsActive() || e.ScheduledDate.Before(from) || !e.ScheduledDate.Before(to) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out, nil
}

// ActiveEntryFor returns the order's active entry, or nil
func (s *Store) ActiveEntryFor(ctx context.Context, orderID entities.OrderID) (*entities.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.OrderID == orderID && e.IsActive() {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

// AllEntries returns every entry including superseded ones, in insertion order
func (s *Store) AllEntries() []*entities.ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.ScheduleEntry, len(s.entries))
	for i, e := range s.entries {
		copied := *e
		out[i] = &copied
	}
	return out
}
