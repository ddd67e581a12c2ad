package entities

import (
	"fmt"
	"time"
)

// Department names one stage of the production pipeline
type Department string

const (
	Cutting       Department = "Cutting"
	LayupPlugging Department = "Layup/Plugging"
	Barcode       Department = "Barcode"
	CNC           Department = "CNC"
	Finish        Department = "Finish"
	Gunsmith      Department = "Gunsmith"
	Paint         Department = "Paint"
	QC            Department = "QC"
	Shipping      Department = "Shipping"
	Delivered     Department = "Delivered"
)

// DefaultPipeline is the department sequence every order follows from creation to delivery
var DefaultPipeline = []Department{
	Cutting,
	LayupPlugging,
	Barcode,
	CNC,
	Finish,
	Gunsmith,
	Paint,
	QC,
	Shipping,
	Delivered,
}

// Pipeline is an ordered, fixed list of departments. The last entry is terminal.
type Pipeline struct {
	departments []Department
	index       map[Department]int
}

// NewPipeline creates a validated Pipeline
func NewPipeline(departments []Department) (*Pipeline, error) {
	if len(departments) < 2 {
		return nil, fmt.Errorf("pipeline needs at least 2 departments, got %d", len(departments))
	}

	index := make(map[Department]int, len(departments))
	for i, dept := range departments {
		if dept == "" {
			return nil, fmt.Errorf("pipeline department %d cannot be empty", i)
		}
		if _, exists := index[dept]; exists {
			return nil, fmt.Errorf("duplicate department in pipeline: %s", dept)
		}
		index[dept] = i
	}

	copied := make([]Department, len(departments))
	copy(copied, departments)

	return &Pipeline{departments: copied, index: index}, nil
}

// Departments returns a copy of the ordered department list
func (p *Pipeline) Departments() []Department {
	out := make([]Department, len(p.departments))
	copy(out, p.departments)
	return out
}

// Contains reports whether dept is a stage of this pipeline
func (p *Pipeline) Contains(dept Department) bool {
	_, ok := p.index[dept]
	return ok
}

// Terminal returns the final department
func (p *Pipeline) Terminal() Department {
	return p.departments[len(p.departments)-1]
}

// Next returns the immediate successor of dept
func (p *Pipeline) Next(dept Department) (Department, bool) {
	i, ok := p.index[dept]
	if !ok || i == len(p.departments)-1 {
		return "", false
	}
	return p.departments[i+1], true
}

// DepartmentTransition records an order leaving one department for the next
type DepartmentTransition struct {
	OrderID     OrderID    `json:"order_id"`
	From        Department `json:"from"`
	To          Department `json:"to"`
	CompletedAt time.Time  `json:"completed_at"`
}

// CheckDepartment returns a StaleStateError unless actual is the expected source department
func CheckDepartment(orderID OrderID, expected, actual Department) error {
	if expected != actual {
		return &StaleStateError{OrderID: orderID, Expected: expected, Actual: actual}
	}
	return nil
}
