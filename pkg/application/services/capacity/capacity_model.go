package capacity

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// ComputeDailyCapacity returns the whole number of parts a department can process per work day.
// Inactive settings are skipped. Empty input yields zero.
func ComputeDailyCapacity(settings []entities.EmployeeCapacitySetting) int {
	total := TotalOutput(settings)
	if !total.IsPositive() {
		return 0
	}
	return int(total.Floor().IntPart())
}

// TotalOutput returns the unrounded Σ rate × hours over active settings
func TotalOutput(settings []entities.EmployeeCapacitySetting) decimal.Decimal {
	total := decimal.Zero
	for _, s := range settings {
		if !s.IsActive {
			continue
		}
		total = total.Add(s.DailyOutput())
	}
	return total
}

// Breakdown lists per-employee output for active settings, ordered by employee id
func Breakdown(settings []entities.EmployeeCapacitySetting) []dto.EmployeeOutput {
	var out []dto.EmployeeOutput
	for _, s := range settings {
		if !s.IsActive {
			continue
		}
		out = append(out, dto.EmployeeOutput{EmployeeID: s.EmployeeID, Output: s.DailyOutput()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

// Effective applies a positive week override, otherwise returns the computed capacity
func Effective(week entities.WorkWeekConfig, settings []entities.EmployeeCapacitySetting) int {
	if week.CapacityOverride > 0 {
		return week.CapacityOverride
	}
	return ComputeDailyCapacity(settings)
}
