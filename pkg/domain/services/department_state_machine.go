package services

import (
	"fmt"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// DepartmentStateMachine holds the legal-transition rules over a department pipeline.
// Only the immediate next department is a legal target; the final department is terminal.
type DepartmentStateMachine struct {
	pipeline *entities.Pipeline
}

// NewDepartmentStateMachine creates a state machine over the given pipeline
func NewDepartmentStateMachine(pipeline *entities.Pipeline) *DepartmentStateMachine {
	return &DepartmentStateMachine{pipeline: pipeline}
}

// NewDefaultDepartmentStateMachine creates a state machine over entities.DefaultPipeline
func NewDefaultDepartmentStateMachine() *DepartmentStateMachine {
	pipeline, err := entities.NewPipeline(entities.DefaultPipeline)
	if err != nil {
		panic(fmt.Sprintf("default pipeline is invalid: %v", err))
	}
	return NewDepartmentStateMachine(pipeline)
}

// Pipeline returns the underlying pipeline
func (m *DepartmentStateMachine) Pipeline() *entities.Pipeline {
	return m.pipeline
}

// NextDepartment returns the only legal successor of from
func (m *DepartmentStateMachine) NextDepartment(from entities.Department) (entities.Department, error) {
	if !m.pipeline.Contains(from) {
		return "", fmt.Errorf("unknown department: %s", from)
	}
	next, ok := m.pipeline.Next(from)
	if !ok {
		return "", fmt.Errorf("department %s is terminal", from)
	}
	return next, nil
}

// ValidateTransition checks that to is the immediate successor of from
func (m *DepartmentStateMachine) ValidateTransition(from, to entities.Department) error {
	if !m.pipeline.Contains(from) {
		return fmt.Errorf("unknown department: %s", from)
	}
	if !m.pipeline.Contains(to) {
		return fmt.Errorf("unknown department: %s", to)
	}
	next, ok := m.pipeline.Next(from)
	if !ok || next != to {
		return &entities.IllegalTransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether dept is the last pipeline stage
func (m *DepartmentStateMachine) IsTerminal(dept entities.Department) bool {
	return dept == m.pipeline.Terminal()
}

// EmptyCounts returns a zeroed count for every non-terminal department
func (m *DepartmentStateMachine) EmptyCounts() map[entities.Department]int {
	counts := make(map[entities.Department]int)
	for _, dept := range m.pipeline.Departments() {
		if m.IsTerminal(dept) {
			continue
		}
		counts[dept] = 0
	}
	return counts
}
