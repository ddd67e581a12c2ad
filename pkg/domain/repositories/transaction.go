package repositories

import "context"

// UnitOfWork exposes the repositories bound to one storage transaction
type UnitOfWork interface {
	Orders() OrderRepository
	Schedules() ScheduleRepository
}

// TransactionManager runs fn inside a single storage transaction.
// A non-nil error from fn rolls back every write made through the UnitOfWork.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
