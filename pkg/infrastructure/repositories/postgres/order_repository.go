package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

// LoadOrders upserts orders by order id
func (s *Store) LoadOrders(ctx context.Context, orders []*entities.ProductionOrder) error {
	if len(orders) == 0 {
		return nil
	}
	models := make([]OrderModel, 0, len(orders))
	for _, o := range orders {
		if o == nil || o.OrderID == "" {
			return fmt.Errorf("order id cannot be empty")
		}
		models = append(models, toOrderModel(o))
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_name", "model_id", "stock_model_id", "order_date", "due_date",
			"source", "current_department", "updated_at",
		}),
	}).Create(&models).Error
}

// FetchPendingOrders returns the orders currently in dept, ordered by order id
func (s *Store) FetchPendingOrders(ctx context.Context, dept entities.Department) ([]*entities.ProductionOrder, error) {
	var models []OrderModel
	err := s.db.WithContext(ctx).
		Where("current_department = ?", string(dept)).
		Order("order_id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*entities.ProductionOrder, len(models))
	for i, m := range models {
		orders[i] = m.toEntity()
	}
	return orders, nil
}

// GetOrder loads one order
func (s *Store) GetOrder(ctx context.Context, orderID entities.OrderID) (*entities.ProductionOrder, error) {
	var m OrderModel
	err := s.db.WithContext(ctx).First(&m, "order_id = ?", string(orderID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

// TransitionDepartment locks the order row, re-checks its department and moves it.
// The update is conditional on the source department so it is safe outside a transaction too.
func (s *Store) TransitionDepartment(
	ctx context.Context,
	orderID entities.OrderID,
	from, to entities.Department,
) error {
	db := s.db.WithContext(ctx)

	var m OrderModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, "order_id = ?", string(orderID)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return err
	}
	if err := entities.CheckDepartment(orderID, from, entities.Department(m.CurrentDepartment)); err != nil {
		return err
	}

	now := s.now().UTC()
	res := db.Model(&OrderModel{}).
		Where("order_id = ? AND current_department = ?", string(orderID), string(from)).
		Updates(map[string]interface{}{
			"current_department": string(to),
			"updated_at":         now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &entities.StaleStateError{OrderID: orderID, Expected: from}
	}

	return db.Create(&DepartmentTransitionModel{
		OrderID:        string(orderID),
		FromDepartment: string(from),
		ToDepartment:   string(to),
		CompletedAt:    now,
	}).Error
}

// DepartmentCounts groups orders by current department
func (s *Store) DepartmentCounts(ctx context.Context) (map[entities.Department]int, error) {
	var rows []struct {
		CurrentDepartment string
		Count             int
	}
	err := s.db.WithContext(ctx).
		Model(&OrderModel{}).
		Select("current_department, count(*) as count").
		Group("current_department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entities.Department]int, len(rows))
	for _, r := range rows {
		counts[entities.Department(r.CurrentDepartment)] = r.Count
	}
	return counts, nil
}

// DepartmentHistory returns the order's transitions oldest first
func (s *Store) DepartmentHistory(ctx context.Context, orderID entities.OrderID) ([]entities.DepartmentTransition, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	var models []DepartmentTransitionModel
	err := s.db.WithContext(ctx).
		Where("order_id = ?", string(orderID)).
		Order("completed_at, id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]entities.DepartmentTransition, len(models))
	for i, m := range models {
		out[i] = entities.DepartmentTransition{
			OrderID:     entities.OrderID(m.OrderID),
			From:        entities.Department(m.FromDepartment),
			To:          entities.Department(m.ToDepartment),
			CompletedAt: m.CompletedAt.UTC(),
		}
	}
	return out, nil
}
