package scheduling

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// Generator greedily places queued orders onto the earliest work day with remaining capacity
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a Generator; a nil logger is replaced with a no-op logger
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger.Named("generator")}
}

// Generate builds a proposal from a priority-ordered queue. Orders that fit on no work day
// are returned as overflow in queue order, so len(queue) == scheduled + overflow.
func (g *Generator) Generate(
	queue []entities.ProductionOrder,
	capacityPerDay int,
	week entities.WorkWeekConfig,
) *dto.GenerationResult {
	workDates := week.WorkDates()
	result := &dto.GenerationResult{
		Proposal:  entities.NewScheduleProposal(week),
		Overflow:  make([]entities.ProductionOrder, 0),
		Capacity:  capacityPerDay,
		WorkDates: make([]string, len(workDates)),
	}
	for i, d := range workDates {
		result.WorkDates[i] = d.Format(entities.DateLayout)
	}

	if capacityPerDay <= 0 {
		result.Warnings = append(result.Warnings,
			"no staffing capacity: configure active employees or a capacity override")
	}
	if len(workDates) == 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no work days selected in the %d-day window", week.ScheduleDays))
	}

	counts := make([]int, len(workDates))
	cursor := 0
	for _, order := range queue {
		// earlier dates only fill up, so the first open date never moves backwards
		for cursor < len(workDates) && counts[cursor] >= capacityPerDay {
			cursor++
		}
		if cursor == len(workDates) {
			result.Overflow = append(result.Overflow, order)
			continue
		}
		date := result.WorkDates[cursor]
		result.Proposal.Days[date] = append(result.Proposal.Days[date], order)
		counts[cursor]++
	}

	g.logger.Debug("schedule generated",
		zap.String("week", week.WeekKey()),
		zap.Int("capacity_per_day", capacityPerDay),
		zap.Int("work_dates", len(workDates)),
		zap.Int("queued", len(queue)),
		zap.Int("scheduled", result.Proposal.OrderCount()),
		zap.Int("overflow", len(result.Overflow)))

	return result
}

// OverbookedDates lists dates whose bucket exceeds capacityPerDay, in date order
func OverbookedDates(p *entities.ScheduleProposal, capacityPerDay int) []string {
	var dates []string
	for _, date := range p.Dates() {
		if len(p.Days[date]) > capacityPerDay {
			dates = append(dates, date)
		}
	}
	return dates
}
