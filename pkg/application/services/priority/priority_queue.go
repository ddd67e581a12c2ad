package priority

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// NoDueDateDays is the DaysToDue assigned to orders without a due date, so they rank after every dated order
const NoDueDateDays = math.MaxInt32

// Rules configures urgency bands and the informational priority score
type Rules struct {
	HighWithinDays   int
	MediumWithinDays int

	ProductionBase       float64
	NeedsInformationBase float64
	UrgencyBonus         map[entities.UrgencyLevel]float64
	DueDateWeight        float64
}

// DefaultRules returns the production floor's standing rules
func DefaultRules() Rules {
	return Rules{
		HighWithinDays:       3,
		MediumWithinDays:     10,
		ProductionBase:       50,
		NeedsInformationBase: 99,
		UrgencyBonus: map[entities.UrgencyLevel]float64{
			entities.Critical: -10,
			entities.High:     -5,
			entities.Medium:   0,
			entities.Low:      5,
		},
		DueDateWeight: 0.1,
	}
}

// Validate checks that the urgency bands are monotonic
func (r Rules) Validate() error {
	if r.HighWithinDays < 0 {
		return fmt.Errorf("high urgency band cannot be negative, got %d", r.HighWithinDays)
	}
	if r.MediumWithinDays < r.HighWithinDays {
		return fmt.Errorf("medium urgency band (%d) must not be below high band (%d)",
			r.MediumWithinDays, r.HighWithinDays)
	}
	if r.DueDateWeight < 0 {
		return fmt.Errorf("due date weight cannot be negative, got %v", r.DueDateWeight)
	}
	return nil
}

// QueueBuilder derives urgency and ordering for pending orders
type QueueBuilder struct {
	rules Rules
}

// NewQueueBuilder creates a QueueBuilder with validated rules
func NewQueueBuilder(rules Rules) (*QueueBuilder, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rules.UrgencyBonus == nil {
		rules.UrgencyBonus = DefaultRules().UrgencyBonus
	}
	return &QueueBuilder{rules: rules}, nil
}

// BuildQueue orders pending orders with the default rules
func BuildQueue(orders []entities.ProductionOrder, today time.Time) []entities.ProductionOrder {
	b, _ := NewQueueBuilder(DefaultRules())
	return b.BuildQueue(orders, today)
}

// BuildQueue annotates each order with DaysToDue, UrgencyLevel, OrderType and PriorityScore, and
// returns them sorted by due date (missing due dates last), ties broken by order id.
// The input slice is not modified.
func (b *QueueBuilder) BuildQueue(orders []entities.ProductionOrder, today time.Time) []entities.ProductionOrder {
	day := entities.NormalizeDate(today)

	queue := make([]entities.ProductionOrder, len(orders))
	for i, o := range orders {
		o.DaysToDue = DaysToDue(o, day)
		o.UrgencyLevel = b.Classify(o)
		o.OrderType = ClassifyType(o)
		o.PriorityScore = b.Score(o)
		queue[i] = o
	}

	sort.SliceStable(queue, func(i, j int) bool {
		a, c := queue[i], queue[j]
		if a.HasDueDate() != c.HasDueDate() {
			return a.HasDueDate()
		}
		if !a.DueDate.Equal(c.DueDate) {
			return a.DueDate.Before(c.DueDate)
		}
		return a.OrderID < c.OrderID
	})

	return queue
}

// DaysToDue returns ceil((dueDate - today) / 24h), or NoDueDateDays without a due date
func DaysToDue(order entities.ProductionOrder, today time.Time) int {
	if !order.HasDueDate() {
		return NoDueDateDays
	}
	hours := order.DueDate.Sub(today).Hours()
	return int(math.Ceil(hours / 24))
}

// Classify maps DaysToDue onto an urgency band
func (b *QueueBuilder) Classify(order entities.ProductionOrder) entities.UrgencyLevel {
	if !order.HasDueDate() {
		return entities.Low
	}
	switch days := order.DaysToDue; {
	case days < 0:
		return entities.Critical
	case days <= b.rules.HighWithinDays:
		return entities.High
	case days <= b.rules.MediumWithinDays:
		return entities.Medium
	default:
		return entities.Low
	}
}

// Score computes the informational priority score; lower is more urgent
func (b *QueueBuilder) Score(order entities.ProductionOrder) float64 {
	base := b.rules.ProductionBase
	if order.OrderType == entities.NeedsInformation {
		base = b.rules.NeedsInformationBase
	}
	score := base + b.rules.UrgencyBonus[order.UrgencyLevel]
	if order.HasDueDate() {
		score += float64(order.DaysToDue) * b.rules.DueDateWeight
	}
	return math.Round(score*100) / 100
}

// ClassifyType marks orders without a usable stock model as needing information
func ClassifyType(order entities.ProductionOrder) entities.OrderType {
	model := strings.TrimSpace(order.EffectiveStockModel())
	switch strings.ToLower(model) {
	case "", "none", "unprocessed", "universal":
		return entities.NeedsInformation
	default:
		return entities.ProductionOrderType
	}
}

// Partition splits orders into schedulable production orders and those needing information
func Partition(orders []entities.ProductionOrder) (ready, needsInfo []entities.ProductionOrder) {
	for _, o := range orders {
		if ClassifyType(o) == entities.NeedsInformation {
			o.OrderType = entities.NeedsInformation
			needsInfo = append(needsInfo, o)
			continue
		}
		ready = append(ready, o)
	}
	return ready, needsInfo
}

// GroupByUrgency counts queued orders per urgency level
func GroupByUrgency(queue []entities.ProductionOrder) map[entities.UrgencyLevel]int {
	counts := map[entities.UrgencyLevel]int{
		entities.Critical: 0,
		entities.High:     0,
		entities.Medium:   0,
		entities.Low:      0,
	}
	for _, o := range queue {
		counts[o.UrgencyLevel]++
	}
	return counts
}
