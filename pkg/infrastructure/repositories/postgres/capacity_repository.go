package postgres

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// LoadCapacitySettings upserts settings by (employee, department)
func (s *Store) LoadCapacitySettings(ctx context.Context, settings []entities.EmployeeCapacitySetting) error {
	if len(settings) == 0 {
		return nil
	}
	models := make([]CapacitySettingModel, len(settings))
	for i, st := range settings {
		models[i] = CapacitySettingModel{
			EmployeeID: st.EmployeeID,
			Department: string(st.Department),
			Rate:       st.Rate,
			Hours:      st.Hours,
			IsActive:   st.IsActive,
		}
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "department"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "hours", "is_active", "updated_at"}),
	}).Create(&models).Error
}

// FetchCapacitySettings returns every setting for dept ordered by employee id
func (s *Store) FetchCapacitySettings(ctx context.Context, dept entities.Department) ([]entities.EmployeeCapacitySetting, error) {
	var models []CapacitySettingModel
	err := s.db.WithContext(ctx).
		Where("department = ?", string(dept)).
		Order("employee_id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]entities.EmployeeCapacitySetting, len(models))
	for i, m := range models {
		out[i] = m.toEntity()
	}
	return out, nil
}
