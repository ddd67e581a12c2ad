package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// PersistScheduleEntries supersedes the active entries of the batch's orders and inserts the batch
func (s *Store) PersistScheduleEntries(ctx context.Context, entries []*entities.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[entities.OrderID]bool, len(entries))
	models := make([]ScheduleEntryModel, 0, len(entries))
	for _, e := range entries {
		if seen[e.OrderID] {
			return &entities.InvariantViolation{
				Rule:   "one schedule entry per order per commit",
				Detail: fmt.Sprintf("order %s appears twice in batch", e.OrderID),
			}
		}
		seen[e.OrderID] = true
		ids = append(ids, string(e.OrderID))

		m, err := toEntryModel(e)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	db := s.db.WithContext(ctx)
	err := db.Model(&ScheduleEntryModel{}).
		Where("order_id IN ? AND superseded_at IS NULL", ids).
		Update("superseded_at", s.now().UTC()).Error
	if err != nil {
		return fmt.Errorf("failed to supersede entries: %w", err)
	}

	if err := db.Create(&models).Error; err != nil {
		return fmt.Errorf("failed to insert entries: %w", err)
	}
	return nil
}

// ActiveEntries returns active entries with from <= scheduled date < to
func (s *Store) ActiveEntries(ctx context.Context, from, to time.Time) ([]*entities.ScheduleEntry, error) {
	var models []ScheduleEntryModel
	err := s.db.WithContext(ctx).
		Where("superseded_at IS NULL AND scheduled_date >= ? AND scheduled_date < ?", from, to).
		Order("scheduled_date, order_id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]*entities.ScheduleEntry, 0, len(models))
	for _, m := range models {
		e, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ActiveEntryFor returns the order's active entry, or nil
func (s *Store) ActiveEntryFor(ctx context.Context, orderID entities.OrderID) (*entities.ScheduleEntry, error) {
	var m ScheduleEntryModel
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND superseded_at IS NULL", string(orderID)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.toEntity()
}
