package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EmployeeCapacitySetting describes one employee's production rate for a department
type EmployeeCapacitySetting struct {
	EmployeeID string          `json:"employee_id"`
	Department Department      `json:"department"`
	Rate       decimal.Decimal `json:"rate"`  // units per hour
	Hours      decimal.Decimal `json:"hours"` // scheduled hours per day
	IsActive   bool            `json:"is_active"`
}

// NewEmployeeCapacitySetting creates a validated EmployeeCapacitySetting
func NewEmployeeCapacitySetting(
	employeeID string,
	department Department,
	rate, hours decimal.Decimal,
	isActive bool,
) (*EmployeeCapacitySetting, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("employee id cannot be empty")
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("rate cannot be negative, got %s", rate)
	}
	if hours.IsNegative() {
		return nil, fmt.Errorf("hours cannot be negative, got %s", hours)
	}
	if hours.GreaterThan(decimal.NewFromInt(24)) {
		return nil, fmt.Errorf("hours cannot exceed 24, got %s", hours)
	}

	return &EmployeeCapacitySetting{
		EmployeeID: employeeID,
		Department: department,
		Rate:       rate,
		Hours:      hours,
		IsActive:   isActive,
	}, nil
}

// DailyOutput returns rate × hours for this employee
func (s EmployeeCapacitySetting) DailyOutput() decimal.Decimal {
	return s.Rate.Mul(s.Hours)
}
