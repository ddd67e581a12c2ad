package scheduling

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// Editor applies manual edits to a proposal. Every operation returns a new proposal and
// leaves its input untouched.
type Editor struct {
	logger *zap.Logger
}

// NewEditor creates an Editor; a nil logger is replaced with a no-op logger
func NewEditor(logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{logger: logger.Named("editor")}
}

// MoveOrder takes orderID out of whichever date holds it and appends it to targetDate.
// Capacity is not enforced. Moving an order that is not in the proposal is a no-op.
func (e *Editor) MoveOrder(
	p *entities.ScheduleProposal,
	orderID entities.OrderID,
	targetDate string,
) (*entities.ScheduleProposal, error) {
	if _, err := entities.ParseDate(targetDate); err != nil {
		return nil, &entities.ValidationError{Field: "target_date", Reason: err.Error()}
	}

	out := p.Clone()
	order, found := take(out, orderID)
	if !found {
		return out, nil
	}
	out.Days[targetDate] = append(out.Days[targetDate], order)

	return out, e.checkUnique(out, "move")
}

// RemoveOrder deletes orderID from every bucket. Removing an absent order is a no-op.
func (e *Editor) RemoveOrder(p *entities.ScheduleProposal, orderID entities.OrderID) *entities.ScheduleProposal {
	out := p.Clone()
	take(out, orderID)
	delete(out.MoldAssignments, orderID)
	return out
}

// PlaceOrder puts an order that is not yet scheduled (typically from overflow) on targetDate.
// An order already in the proposal is moved instead.
func (e *Editor) PlaceOrder(
	p *entities.ScheduleProposal,
	order entities.ProductionOrder,
	targetDate string,
) (*entities.ScheduleProposal, error) {
	if order.OrderID == "" {
		return nil, &entities.ValidationError{Field: "order", Reason: "order id cannot be empty"}
	}
	if _, found := p.Locate(order.OrderID); found {
		return e.MoveOrder(p, order.OrderID, targetDate)
	}
	if _, err := entities.ParseDate(targetDate); err != nil {
		return nil, &entities.ValidationError{Field: "target_date", Reason: err.Error()}
	}

	out := p.Clone()
	out.Days[targetDate] = append(out.Days[targetDate], order)

	return out, e.checkUnique(out, "place")
}

// Apply dispatches a single edit operation
func (e *Editor) Apply(p *entities.ScheduleProposal, op dto.EditOperation) (*entities.ScheduleProposal, error) {
	if p == nil {
		return nil, &entities.ValidationError{Field: "proposal", Reason: "cannot be empty"}
	}
	switch op.Op {
	case dto.EditMove:
		return e.MoveOrder(p, op.OrderID, op.TargetDate)
	case dto.EditRemove:
		return e.RemoveOrder(p, op.OrderID), nil
	case dto.EditPlace:
		if op.Order == nil {
			return nil, &entities.ValidationError{Field: "order", Reason: "place requires an order"}
		}
		return e.PlaceOrder(p, *op.Order, op.TargetDate)
	default:
		return nil, &entities.ValidationError{Field: "op", Reason: fmt.Sprintf("unknown edit operation %q", op.Op)}
	}
}

func (e *Editor) checkUnique(p *entities.ScheduleProposal, op string) error {
	if err := p.CheckUnique(); err != nil {
		e.logger.DPanic("proposal invariant broken", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

// take removes orderID from every bucket of p, dropping buckets it empties
func take(p *entities.ScheduleProposal, orderID entities.OrderID) (entities.ProductionOrder, bool) {
	var taken entities.ProductionOrder
	found := false
	for date, orders := range p.Days {
		kept := orders[:0]
		for _, o := range orders {
			if o.OrderID == orderID {
				taken = o
				found = true
				continue
			}
			kept = append(kept, o)
		}
		if len(kept) == 0 {
			delete(p.Days, date)
			continue
		}
		p.Days[date] = kept
	}
	return taken, found
}
