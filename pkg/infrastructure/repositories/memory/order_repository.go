package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

// LoadOrders adds or replaces orders in the store
func (s *Store) LoadOrders(ctx context.Context, orders []*entities.ProductionOrder) error {
	defer s.lockWrite()()

	for _, o := range orders {
		if o == nil || o.OrderID == "" {
			return fmt.Errorf("order id cannot be empty")
		}
		copied := *o
		s.orders[o.OrderID] = &copied
	}
	return nil
}

// FetchPendingOrders returns copies of the orders in dept, ordered by order id
func (s *Store) FetchPendingOrders(ctx context.Context, dept entities.Department) ([]*entities.ProductionOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*entities.ProductionOrder
	for _, o := range s.orders {
		if o.CurrentDepartment == dept {
			copied := *o
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].OrderID < pending[j].OrderID
	})
	return pending, nil
}

// GetOrder returns a copy of the order
func (s *Store) GetOrder(ctx context.Context, orderID entities.OrderID) (*entities.ProductionOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
	}
	copied := *o
	return &copied, nil
}

// TransitionDepartment moves the order only if it is still in from
func (s *Store) TransitionDepartment(
	ctx context.Context,
	orderID entities.OrderID,
	from, to entities.Department,
) error {
	defer s.lockWrite()()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
	}
	if err := entities.CheckDepartment(orderID, from, o.CurrentDepartment); err != nil {
		return err
	}

	o.CurrentDepartment = to
	s.history = append(s.history, entities.DepartmentTransition{
		OrderID:     orderID,
		From:        from,
		To:          to,
		CompletedAt: s.now().UTC(),
	})
	return nil
}

// DepartmentCounts returns the number of orders per department
func (s *Store) DepartmentCounts(ctx context.Context) (map[entities.Department]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[entities.Department]int)
	for _, o := range s.orders {
		counts[o.CurrentDepartment]++
	}
	return counts, nil
}

// DepartmentHistory returns the order's transitions in the order they happened
func (s *Store) DepartmentHistory(ctx context.Context, orderID entities.OrderID) ([]entities.DepartmentTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
	}
	var out []entities.DepartmentTransition
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out, nil
}
