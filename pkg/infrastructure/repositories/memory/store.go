package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

// Store is an in-memory implementation of every scheduling repository.
// Transactions are serialised and work on a copy that is swapped in on success.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	orders   map[entities.OrderID]*entities.ProductionOrder
	settings []entities.EmployeeCapacitySetting
	entries  []*entities.ScheduleEntry
	history  []entities.DepartmentTransition

	now        func() time.Time
	persistErr error
}

// Verify interface compliance
var (
	_ repositories.OrderRepository    = (*Store)(nil)
	_ repositories.CapacityRepository = (*Store)(nil)
	_ repositories.ScheduleRepository = (*Store)(nil)
	_ repositories.TransactionManager = (*Store)(nil)
	_ repositories.UnitOfWork         = (*Store)(nil)
)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		orders: make(map[entities.OrderID]*entities.ProductionOrder),
		now:    time.Now,
	}
}

// SetClock overrides the time source used for transition and supersede timestamps
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNextPersist makes the next PersistScheduleEntries call return err
func (s *Store) FailNextPersist(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistErr = err
}

// Orders returns the store as an OrderRepository
func (s *Store) Orders() repositories.OrderRepository {
	return s
}

// Schedules returns the store as a ScheduleRepository
func (s *Store) Schedules() repositories.ScheduleRepository {
	return s
}

// WithinTransaction runs fn against a private working copy of orders, entries and history.
// The copy replaces the live state only when fn succeeds, so readers never observe uncommitted changes.
// Writes made outside a transaction wait for the running one to finish.
func (s *Store) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, uow repositories.UnitOfWork) error,
) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.workingCopy()
	err := fn(ctx, work)

	s.mu.Lock()
	defer s.mu.Unlock()
	// an injected failure survives transactions that never persisted
	s.persistErr = work.persistErr
	if err != nil {
		return err
	}
	s.orders, s.entries, s.history = work.orders, work.entries, work.history
	return nil
}

// lockWrite serialises a write with any running transaction
func (s *Store) lockWrite() func() {
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func (s *Store) workingCopy() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := &Store{
		orders:     make(map[entities.OrderID]*entities.ProductionOrder, len(s.orders)),
		settings:   append([]entities.EmployeeCapacitySetting(nil), s.settings...),
		entries:    make([]*entities.ScheduleEntry, len(s.entries)),
		history:    append([]entities.DepartmentTransition(nil), s.history...),
		now:        s.now,
		persistErr: s.persistErr,
	}
	for id, o := range s.orders {
		copied := *o
		work.orders[id] = &copied
	}
	for i, e := range s.entries {
		copied := *e
		work.entries[i] = &copied
	}
	return work
}
