package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// GenerationResult contains the output of one schedule generation run
type GenerationResult struct {
	Proposal  *entities.ScheduleProposal `json:"proposal"`
	Overflow  []entities.ProductionOrder `json:"overflow"`
	Capacity  int                        `json:"capacity_per_day"`
	WorkDates []string                   `json:"work_dates"`

	// NeedsInformation holds pending orders that were not queued because they lack a stock model
	NeedsInformation []entities.ProductionOrder `json:"needs_information,omitempty"`

	// Staffing lists the active employees behind Capacity; empty when an override applies
	Staffing []EmployeeOutput `json:"staffing,omitempty"`

	// Warnings carries configuration-level guidance (zero capacity, no work days, overbooked days)
	Warnings []string `json:"warnings,omitempty"`
}

// EmployeeOutput is one active employee's contribution to daily capacity
type EmployeeOutput struct {
	EmployeeID string          `json:"employee_id"`
	Output     decimal.Decimal `json:"output"`
}

// ScheduledCount returns the number of orders placed on a day
func (r *GenerationResult) ScheduledCount() int {
	if r.Proposal == nil {
		return 0
	}
	return r.Proposal.OrderCount()
}

// CommitResult reports the outcome of a schedule commit
type CommitResult struct {
	CommitID       uuid.UUID          `json:"commit_id"`
	WeekStart      time.Time          `json:"week_start"`
	ScheduledCount int                `json:"scheduled_count"`
	OverflowCount  int                `json:"overflow_count"`
	StaleOrderIDs  []entities.OrderID `json:"stale_order_ids"`
}

// HasStaleOrders reports whether any order was skipped because its department changed
func (r *CommitResult) HasStaleOrders() bool {
	return len(r.StaleOrderIDs) > 0
}

// EditOp names a manual schedule edit
type EditOp string

const (
	EditMove   EditOp = "move"
	EditRemove EditOp = "remove"
	EditPlace  EditOp = "place"
)

// EditOperation is one manual edit against a proposal
type EditOperation struct {
	Op         EditOp                    `json:"op"`
	OrderID    entities.OrderID          `json:"order_id"`
	TargetDate string                    `json:"target_date,omitempty"`
	Order      *entities.ProductionOrder `json:"order,omitempty"` // required for place
}

// EditResult is the proposal after a manual edit. Edits never enforce capacity;
// Overbooked lists the days now holding more than Capacity orders.
type EditResult struct {
	Proposal   *entities.ScheduleProposal `json:"proposal"`
	Capacity   int                        `json:"capacity_per_day"`
	Overbooked []string                   `json:"overbooked_dates,omitempty"`
}

// ProgressResult reports a single department progression
type ProgressResult struct {
	OrderID entities.OrderID    `json:"order_id"`
	From    entities.Department `json:"from"`
	To      entities.Department `json:"to"`
}

// QueueView is the prioritised pending queue of the scheduling department
type QueueView struct {
	Department       entities.Department       `json:"department"`
	Queue            []entities.ProductionOrder `json:"queue"`
	NeedsInformation []entities.ProductionOrder `json:"needs_information"`
	ByUrgency        map[string]int             `json:"by_urgency"`
}

// ScheduleView lists committed entries for a date range
type ScheduleView struct {
	From    time.Time                 `json:"from"`
	To      time.Time                 `json:"to"`
	Entries []*entities.ScheduleEntry `json:"entries"`
}
