package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/infrastructure/repositories/memory"
)

// Monday is the fixed scheduling week used across package tests
var Monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

// Week returns a validated week starting at Monday with the given work days and a 5-day window
func Week(workDays ...int) entities.WorkWeekConfig {
	week, err := entities.NewWorkWeekConfig(Monday, workDays, entities.DefaultScheduleDays)
	if err != nil {
		panic(err)
	}
	return *week
}

// MakeOrders builds n Cutting orders AG001..AGnnn sharing one due date
func MakeOrders(n int, due time.Time) []entities.ProductionOrder {
	orders := make([]entities.ProductionOrder, n)
	for i := range orders {
		orders[i] = entities.ProductionOrder{
			OrderID:           entities.OrderID(fmt.Sprintf("AG%03d", i+1)),
			CustomerName:      "Stock",
			ModelID:           "CF-ALPINE",
			StockModelID:      "CF-ALPINE",
			OrderDate:         due.AddDate(0, 0, -30),
			DueDate:           due,
			CurrentDepartment: entities.Cutting,
		}
	}
	return orders
}

// Staffing returns active Cutting settings whose total daily output is perDay
func Staffing(perDay int) []entities.EmployeeCapacitySetting {
	if perDay <= 0 {
		return nil
	}
	return []entities.EmployeeCapacitySetting{
		{
			EmployeeID: "EMP-CUT-1",
			Department: entities.Cutting,
			Rate:       decimal.NewFromInt(int64(perDay)),
			Hours:      decimal.NewFromInt(1),
			IsActive:   true,
		},
		{
			EmployeeID: "EMP-CUT-2",
			Department: entities.Cutting,
			Rate:       decimal.NewFromInt(3),
			Hours:      decimal.NewFromInt(8),
			IsActive:   false,
		},
	}
}

// BuildStockShopTestData seeds a store with a mixed Cutting queue, downstream orders and staffing
// of 10 parts per day (2.5 parts/hour × 4 hours, plus an inactive employee)
func BuildStockShopTestData(ctx context.Context) *memory.Store {
	store := memory.NewStore()

	dated := []struct {
		id       string
		customer string
		model    string
		offset   int
		dept     entities.Department
	}{
		{"AG101", "Hollis Outfitters", "CF-ALPINE", -2, entities.Cutting},
		{"AG102", "Ridgeline Guns", "CF-HUNTER", 1, entities.Cutting},
		{"AG103", "Stock", "CF-ALPINE", 3, entities.Cutting},
		{"AG104", "Marsh & Pine", "CF-CHALLENGER", 6, entities.Cutting},
		{"AG105", "Stock", "CF-HUNTER", 14, entities.Cutting},
		{"AG106", "Ridgeline Guns", "universal", 5, entities.Cutting},
		{"AG107", "Hollis Outfitters", "", 9, entities.Cutting},
		{"AG201", "Marsh & Pine", "CF-ALPINE", 4, entities.Barcode},
		{"AG202", "Stock", "CF-HUNTER", 8, entities.QC},
		{"AG203", "Ridgeline Guns", "CF-ALPINE", 2, entities.Shipping},
	}

	var orders []*entities.ProductionOrder
	for _, d := range dated {
		orders = append(orders, &entities.ProductionOrder{
			OrderID:           entities.OrderID(d.id),
			CustomerName:      d.customer,
			ModelID:           d.model,
			StockModelID:      d.model,
			OrderDate:         Monday.AddDate(0, 0, -45),
			DueDate:           Monday.AddDate(0, 0, d.offset),
			Source:            "main_orders",
			CurrentDepartment: d.dept,
		})
	}
	for i := 1; i <= 12; i++ {
		orders = append(orders, &entities.ProductionOrder{
			OrderID:           entities.OrderID(fmt.Sprintf("AG3%02d", i)),
			CustomerName:      "Stock",
			ModelID:           "CF-ALPINE",
			StockModelID:      "CF-ALPINE",
			OrderDate:         Monday.AddDate(0, 0, -20),
			DueDate:           Monday.AddDate(0, 0, 20+i),
			Source:            "production_orders",
			CurrentDepartment: entities.Cutting,
		})
	}
	if err := store.LoadOrders(ctx, orders); err != nil {
		panic(err)
	}

	settings := []entities.EmployeeCapacitySetting{
		{
			EmployeeID: "EMP-CUT-1",
			Department: entities.Cutting,
			Rate:       decimal.RequireFromString("2.5"),
			Hours:      decimal.NewFromInt(4),
			IsActive:   true,
		},
		{
			EmployeeID: "EMP-CUT-2",
			Department: entities.Cutting,
			Rate:       decimal.NewFromInt(4),
			Hours:      decimal.NewFromInt(8),
			IsActive:   false,
		},
		{
			EmployeeID: "EMP-QC-1",
			Department: entities.QC,
			Rate:       decimal.NewFromInt(3),
			Hours:      decimal.NewFromInt(8),
			IsActive:   true,
		},
	}
	if err := store.LoadCapacitySettings(ctx, settings); err != nil {
		panic(err)
	}

	return store
}
