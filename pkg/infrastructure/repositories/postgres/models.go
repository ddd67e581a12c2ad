package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// OrderModel is the production_orders row
type OrderModel struct {
	OrderID           string     `gorm:"primaryKey;size:64"`
	CustomerName      string     `gorm:"size:256"`
	ModelID           string     `gorm:"size:128"`
	StockModelID      string     `gorm:"size:128"`
	OrderDate         *time.Time `gorm:"type:date"`
	DueDate           *time.Time `gorm:"type:date;index"`
	Source            string     `gorm:"size:64"`
	CurrentDepartment string     `gorm:"size:64;not null;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OrderModel) TableName() string {
	return "production_orders"
}

// DepartmentTransitionModel records when an order completed a department
type DepartmentTransitionModel struct {
	ID             uint      `gorm:"primaryKey"`
	OrderID        string    `gorm:"size:64;not null;index"`
	FromDepartment string    `gorm:"size:64;not null"`
	ToDepartment   string    `gorm:"size:64;not null"`
	CompletedAt    time.Time `gorm:"not null"`
}

func (DepartmentTransitionModel) TableName() string {
	return "department_transitions"
}

// CapacitySettingModel is one employee's staffing for a department
type CapacitySettingModel struct {
	ID         uint            `gorm:"primaryKey"`
	EmployeeID string          `gorm:"size:64;not null;uniqueIndex:idx_capacity_employee_department"`
	Department string          `gorm:"size:64;not null;uniqueIndex:idx_capacity_employee_department"`
	Rate       decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	Hours      decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	IsActive   bool            `gorm:"not null;default:true"`
	UpdatedAt  time.Time
}

func (CapacitySettingModel) TableName() string {
	return "employee_capacity_settings"
}

// ScheduleEntryModel is a committed schedule entry. The partial unique index keeps one active entry per order.
type ScheduleEntryModel struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CommitID            uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderID             string         `gorm:"size:64;not null;uniqueIndex:idx_schedule_entries_active_order,where:superseded_at IS NULL"`
	ScheduledDate       time.Time      `gorm:"type:date;not null;index"`
	MoldID              string         `gorm:"size:64;not null;default:auto"`
	EmployeeAssignments datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time
	SupersededAt        *time.Time
}

func (ScheduleEntryModel) TableName() string {
	return "schedule_entries"
}

// AllModels lists every table for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&OrderModel{},
		&DepartmentTransitionModel{},
		&CapacitySettingModel{},
		&ScheduleEntryModel{},
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func toOrderModel(o *entities.ProductionOrder) OrderModel {
	return OrderModel{
		OrderID:           string(o.OrderID),
		CustomerName:      o.CustomerName,
		ModelID:           o.ModelID,
		StockModelID:      o.StockModelID,
		OrderDate:         optionalTime(o.OrderDate),
		DueDate:           optionalTime(o.DueDate),
		Source:            o.Source,
		CurrentDepartment: string(o.CurrentDepartment),
	}
}

func (m OrderModel) toEntity() *entities.ProductionOrder {
	return &entities.ProductionOrder{
		OrderID:           entities.OrderID(m.OrderID),
		CustomerName:      m.CustomerName,
		ModelID:           m.ModelID,
		StockModelID:      m.StockModelID,
		OrderDate:         derefTime(m.OrderDate),
		DueDate:           derefTime(m.DueDate),
		Source:            m.Source,
		CurrentDepartment: entities.Department(m.CurrentDepartment),
		UrgencyLevel:      entities.Low,
	}
}

func (m CapacitySettingModel) toEntity() entities.EmployeeCapacitySetting {
	return entities.EmployeeCapacitySetting{
		EmployeeID: m.EmployeeID,
		Department: entities.Department(m.Department),
		Rate:       m.Rate,
		Hours:      m.Hours,
		IsActive:   m.IsActive,
	}
}

func toEntryModel(e *entities.ScheduleEntry) (ScheduleEntryModel, error) {
	assignments, err := json.Marshal(e.EmployeeAssignments)
	if err != nil {
		return ScheduleEntryModel{}, fmt.Errorf("failed to encode employee assignments: %w", err)
	}
	return ScheduleEntryModel{
		ID:                  e.ID,
		CommitID:            e.CommitID,
		OrderID:             string(e.OrderID),
		ScheduledDate:       e.ScheduledDate,
		MoldID:              e.MoldID,
		EmployeeAssignments: datatypes.JSON(assignments),
		CreatedAt:           e.CreatedAt,
		SupersededAt:        e.SupersededAt,
	}, nil
}

func (m ScheduleEntryModel) toEntity() (*entities.ScheduleEntry, error) {
	var assignments []entities.EmployeeCapacitySetting
	if len(m.EmployeeAssignments) > 0 {
		if err := json.Unmarshal(m.EmployeeAssignments, &assignments); err != nil {
			return nil, fmt.Errorf("failed to decode employee assignments for %s: %w", m.OrderID, err)
		}
	}
	return &entities.ScheduleEntry{
		ID:                  m.ID,
		CommitID:            m.CommitID,
		OrderID:             entities.OrderID(m.OrderID),
		ScheduledDate:       entities.NormalizeDate(m.ScheduledDate),
		MoldID:              m.MoldID,
		EmployeeAssignments: assignments,
		CreatedAt:           m.CreatedAt,
		SupersededAt:        m.SupersededAt,
	}, nil
}
