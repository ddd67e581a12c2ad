package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// AutoMold defers mold resolution to the mold assignment collaborator
const AutoMold = "auto"

// ScheduleEntry is the durable record of one order committed to one calendar date
type ScheduleEntry struct {
	ID                  uuid.UUID                 `json:"id"`
	CommitID            uuid.UUID                 `json:"commit_id"`
	OrderID             OrderID                   `json:"order_id"`
	ScheduledDate       time.Time                 `json:"scheduled_date"`
	MoldID              string                    `json:"mold_id"`
	EmployeeAssignments []EmployeeCapacitySetting `json:"employee_assignments"`
	CreatedAt           time.Time                 `json:"created_at"`
	SupersededAt        *time.Time                `json:"superseded_at,omitempty"`
}

// NewScheduleEntry creates a validated ScheduleEntry. An empty moldID becomes AutoMold.
func NewScheduleEntry(
	commitID uuid.UUID,
	orderID OrderID,
	scheduledDate time.Time,
	moldID string,
	assignments []EmployeeCapacitySetting,
) (*ScheduleEntry, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if scheduledDate.IsZero() {
		return nil, fmt.Errorf("scheduled date cannot be empty")
	}
	if moldID == "" {
		moldID = AutoMold
	}

	snapshot := make([]EmployeeCapacitySetting, len(assignments))
	copy(snapshot, assignments)

	return &ScheduleEntry{
		ID:                  uuid.New(),
		CommitID:            commitID,
		OrderID:             orderID,
		ScheduledDate:       NormalizeDate(scheduledDate),
		MoldID:              moldID,
		EmployeeAssignments: snapshot,
	}, nil
}

// IsActive reports whether the entry has not been superseded
func (e *ScheduleEntry) IsActive() bool {
	return e.SupersededAt == nil
}

// ScheduleProposal is the disposable, pre-commit schedule: ISO date -> ordered orders.
// An order appears in at most one bucket.
type ScheduleProposal struct {
	Week WorkWeekConfig               `json:"week"`
	Days map[string][]ProductionOrder `json:"days"`

	// MoldAssignments passes mold ids through to committed entries; missing orders get AutoMold
	MoldAssignments map[OrderID]string `json:"mold_assignments,omitempty"`
}

// NewScheduleProposal creates an empty proposal for the given week
func NewScheduleProposal(week WorkWeekConfig) *ScheduleProposal {
	return &ScheduleProposal{
		Week: week,
		Days: make(map[string][]ProductionOrder),
	}
}

// Clone returns a deep copy of the bucket structure
func (p *ScheduleProposal) Clone() *ScheduleProposal {
	out := &ScheduleProposal{
		Week: p.Week,
		Days: make(map[string][]ProductionOrder, len(p.Days)),
	}
	out.Week.SelectedWorkDays = append([]int(nil), p.Week.SelectedWorkDays...)
	if p.MoldAssignments != nil {
		out.MoldAssignments = make(map[OrderID]string, len(p.MoldAssignments))
		for id, mold := range p.MoldAssignments {
			out.MoldAssignments[id] = mold
		}
	}
	for date, orders := range p.Days {
		out.Days[date] = append([]ProductionOrder(nil), orders...)
	}
	return out
}

// MoldFor returns the mold assigned to orderID, or AutoMold
func (p *ScheduleProposal) MoldFor(orderID OrderID) string {
	if mold, ok := p.MoldAssignments[orderID]; ok && mold != "" {
		return mold
	}
	return AutoMold
}

// Dates returns bucket keys in date order
func (p *ScheduleProposal) Dates() []string {
	dates := make([]string, 0, len(p.Days))
	for date := range p.Days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Locate returns the date holding orderID
func (p *ScheduleProposal) Locate(orderID OrderID) (string, bool) {
	for _, date := range p.Dates() {
		for _, o := range p.Days[date] {
			if o.OrderID == orderID {
				return date, true
			}
		}
	}
	return "", false
}

// OrderCount returns the number of orders across all buckets
func (p *ScheduleProposal) OrderCount() int {
	total := 0
	for _, orders := range p.Days {
		total += len(orders)
	}
	return total
}

// Orders returns every order in date order, preserving bucket order
func (p *ScheduleProposal) Orders() []ProductionOrder {
	var out []ProductionOrder
	for _, date := range p.Dates() {
		out = append(out, p.Days[date]...)
	}
	return out
}

// CheckUnique verifies that no order appears twice
func (p *ScheduleProposal) CheckUnique() error {
	seen := make(map[OrderID]string)
	for _, date := range p.Dates() {
		for _, o := range p.Days[date] {
			if prev, dup := seen[o.OrderID]; dup {
				return &InvariantViolation{
					Rule:   "order appears in more than one bucket",
					Detail: fmt.Sprintf("order %s on %s and %s", o.OrderID, prev, date),
				}
			}
			seen[o.OrderID] = date
		}
	}
	return nil
}

// Validate checks uniqueness, that every bucket key is a date, and that every populated bucket is a
// work day inside the week
func (p *ScheduleProposal) Validate() error {
	if err := p.CheckUnique(); err != nil {
		return err
	}
	for _, date := range p.Dates() {
		d, err := ParseDate(date)
		if err != nil {
			return &ValidationError{Field: "days", Reason: err.Error()}
		}
		if len(p.Days[date]) == 0 {
			continue
		}
		if !p.Week.Contains(d) {
			return &ValidationError{
				Field:  "days",
				Reason: fmt.Sprintf("date %s is outside the scheduling window", date),
			}
		}
		if !p.Week.IsWorkDay(d) {
			return &ValidationError{
				Field:  "days",
				Reason: fmt.Sprintf("date %s is not a selected work day", date),
			}
		}
	}
	return nil
}
