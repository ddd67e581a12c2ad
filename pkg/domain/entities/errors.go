package entities

import "fmt"

// StaleStateError reports an order that is no longer in the department a transition expected
type StaleStateError struct {
	OrderID  OrderID
	Expected Department
	Actual   Department
}

func (e *StaleStateError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("order %s is no longer in %s", e.OrderID, e.Expected)
	}
	return fmt.Sprintf("order %s expected in %s but found in %s", e.OrderID, e.Expected, e.Actual)
}

// IllegalTransitionError reports a transition that skips or reverses pipeline stages
type IllegalTransitionError struct {
	From Department
	To   Department
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal department transition %s -> %s", e.From, e.To)
}

// PersistenceError wraps a storage failure that aborted a commit
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InvariantViolation signals a broken editor or committer invariant. It is a programming error.
type InvariantViolation struct {
	Rule   string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated: %s (%s)", e.Rule, e.Detail)
}

// ValidationError reports malformed caller input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
