package entities

import (
	"fmt"
	"strings"
	"time"
)

// OrderID represents a unique, stable production order identifier
type OrderID string

// UrgencyLevel classifies how close an order is to its due date
type UrgencyLevel int

const (
	Critical UrgencyLevel = iota
	High
	Medium
	Low
)

// String method for UrgencyLevel enum
func (u UrgencyLevel) String() string {
	switch u {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText renders the urgency level by name
func (u UrgencyLevel) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses an urgency level name
func (u *UrgencyLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "critical":
		*u = Critical
	case "high":
		*u = High
	case "medium":
		*u = Medium
	case "low", "":
		*u = Low
	default:
		return fmt.Errorf("unknown urgency level %q", string(text))
	}
	return nil
}

// OrderType separates orders ready for production from those missing data
type OrderType int

const (
	ProductionOrderType OrderType = iota
	NeedsInformation
)

// String method for OrderType enum
func (o OrderType) String() string {
	switch o {
	case ProductionOrderType:
		return "production_order"
	case NeedsInformation:
		return "needs_information"
	default:
		return "unknown"
	}
}

// MarshalText renders the order type by name
func (o OrderType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an order type name
func (o *OrderType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "production_order", "":
		*o = ProductionOrderType
	case "needs_information":
		*o = NeedsInformation
	default:
		return fmt.Errorf("unknown order type %q", string(text))
	}
	return nil
}

// ProductionOrder represents one manufacturing job moving through the department pipeline.
// PriorityScore, DaysToDue, UrgencyLevel and OrderType are derived by the priority queue builder.
type ProductionOrder struct {
	OrderID           OrderID      `json:"order_id"`
	CustomerName      string       `json:"customer_name"`
	ModelID           string       `json:"model_id"`
	StockModelID      string       `json:"stock_model_id"`
	OrderDate         time.Time    `json:"order_date"`
	DueDate           time.Time    `json:"due_date"`
	Source            string       `json:"source,omitempty"`
	CurrentDepartment Department   `json:"current_department"`
	PriorityScore     float64      `json:"priority_score"`
	DaysToDue         int          `json:"days_to_due"`
	UrgencyLevel      UrgencyLevel `json:"urgency_level"`
	OrderType         OrderType    `json:"order_type"`
}

// NewProductionOrder creates a validated ProductionOrder
func NewProductionOrder(
	orderID OrderID,
	customerName, stockModelID string,
	dueDate time.Time,
	department Department,
) (*ProductionOrder, error) {
	if strings.TrimSpace(string(orderID)) == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if department == "" {
		return nil, fmt.Errorf("current department cannot be empty")
	}

	return &ProductionOrder{
		OrderID:           orderID,
		CustomerName:      customerName,
		ModelID:           stockModelID,
		StockModelID:      stockModelID,
		DueDate:           dueDate,
		CurrentDepartment: department,
		UrgencyLevel:      Low,
	}, nil
}

// HasDueDate reports whether the order carries a due date
func (o *ProductionOrder) HasDueDate() bool {
	return !o.DueDate.IsZero()
}

// EffectiveStockModel returns the stock model, falling back to the model id
func (o *ProductionOrder) EffectiveStockModel() string {
	if o.StockModelID != "" {
		return o.StockModelID
	}
	return o.ModelID
}
