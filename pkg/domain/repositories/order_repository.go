package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// ErrOrderNotFound is returned when an order id is unknown to the store
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository provides access to production orders and their department membership
type OrderRepository interface {
	// FetchPendingOrders returns orders currently sitting in dept
	FetchPendingOrders(ctx context.Context, dept entities.Department) ([]*entities.ProductionOrder, error)
	GetOrder(ctx context.Context, orderID entities.OrderID) (*entities.ProductionOrder, error)

	// TransitionDepartment moves an order from -> to only if it is still in from.
	// Returns *entities.StaleStateError otherwise.
	TransitionDepartment(ctx context.Context, orderID entities.OrderID, from, to entities.Department) error

	DepartmentCounts(ctx context.Context) (map[entities.Department]int, error)

	// DepartmentHistory returns the order's completed transitions, oldest first
	DepartmentHistory(ctx context.Context, orderID entities.OrderID) ([]entities.DepartmentTransition, error)
	LoadOrders(ctx context.Context, orders []*entities.ProductionOrder) error
}
