package repositories

import (
	"context"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// CapacityRepository provides access to employee staffing settings
type CapacityRepository interface {
	FetchCapacitySettings(ctx context.Context, dept entities.Department) ([]entities.EmployeeCapacitySetting, error)
	LoadCapacitySettings(ctx context.Context, settings []entities.EmployeeCapacitySetting) error
}
