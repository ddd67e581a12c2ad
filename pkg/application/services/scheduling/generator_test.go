package scheduling

import (
	"reflect"
	"testing"
	"time"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	testhelpers "github.com/vsinha/prodsched/pkg/infrastructure/testing"
)

func TestGenerate_FillsDaysInOrder(t *testing.T) {
	g := NewGenerator(nil)
	week := testhelpers.Week(1, 2, 3)
	queue := testhelpers.MakeOrders(25, testhelpers.Monday.AddDate(0, 0, 10))

	result := g.Generate(queue, 10, week)

	expected := map[string]int{
		"2025-03-03": 10,
		"2025-03-04": 10,
		"2025-03-05": 5,
	}
	for date, count := range expected {
		if got := len(result.Proposal.Days[date]); got != count {
			t.Errorf("Expected %d orders on %s, got %d", count, date, got)
		}
	}
	if len(result.Overflow) != 0 {
		t.Errorf("Expected no overflow, got %d", len(result.Overflow))
	}
	if result.Proposal.Days["2025-03-03"][0].OrderID != "AG001" {
		t.Errorf("Expected AG001 first on Monday, got %s", result.Proposal.Days["2025-03-03"][0].OrderID)
	}
	if result.Proposal.Days["2025-03-05"][4].OrderID != "AG025" {
		t.Errorf("Expected AG025 last on Wednesday, got %s", result.Proposal.Days["2025-03-05"][4].OrderID)
	}
	if !reflect.DeepEqual(result.WorkDates, []string{"2025-03-03", "2025-03-04", "2025-03-05"}) {
		t.Errorf("Unexpected work dates %v", result.WorkDates)
	}
}

func TestGenerate_ZeroCapacity(t *testing.T) {
	g := NewGenerator(nil)
	queue := testhelpers.MakeOrders(6, testhelpers.Monday)

	result := g.Generate(queue, 0, testhelpers.Week(1, 2, 3, 4))

	if result.Proposal.OrderCount() != 0 || len(result.Proposal.Days) != 0 {
		t.Errorf("Expected empty proposal, got %d orders", result.Proposal.OrderCount())
	}
	if len(result.Overflow) != len(queue) {
		t.Errorf("Expected %d overflow orders, got %d", len(queue), len(result.Overflow))
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected a capacity warning")
	}
}

func TestGenerate_NoWorkDays(t *testing.T) {
	g := NewGenerator(nil)
	queue := testhelpers.MakeOrders(3, testhelpers.Monday)

	tests := []struct {
		name string
		week entities.WorkWeekConfig
	}{
		{"no selected days", testhelpers.Week()},
		{"zero schedule days", entities.WorkWeekConfig{
			WeekStart:        testhelpers.Monday,
			SelectedWorkDays: []int{1, 2, 3, 4},
			ScheduleDays:     0,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := g.Generate(queue, 10, tt.week)
			if result.Proposal.OrderCount() != 0 {
				t.Errorf("Expected empty proposal, got %d orders", result.Proposal.OrderCount())
			}
			if len(result.Overflow) != 3 {
				t.Errorf("Expected 3 overflow orders, got %d", len(result.Overflow))
			}
		})
	}
}

func TestGenerate_OverflowKeepsQueueOrder(t *testing.T) {
	g := NewGenerator(nil)
	queue := testhelpers.MakeOrders(11, testhelpers.Monday)

	result := g.Generate(queue, 2, testhelpers.Week(1, 2, 3, 4))

	if result.Proposal.OrderCount() != 8 {
		t.Fatalf("Expected 8 scheduled, got %d", result.Proposal.OrderCount())
	}
	ids := []entities.OrderID{}
	for _, o := range result.Overflow {
		ids = append(ids, o.OrderID)
	}
	if !reflect.DeepEqual(ids, []entities.OrderID{"AG009", "AG010", "AG011"}) {
		t.Errorf("Unexpected overflow %v", ids)
	}
	if _, ok := result.Proposal.Days["2025-03-07"]; ok {
		t.Error("Expected Friday to stay empty when not selected")
	}
}

func TestGenerate_Properties(t *testing.T) {
	g := NewGenerator(nil)
	capacities := []int{0, 1, 3, 7, 50}
	weeks := []entities.WorkWeekConfig{
		testhelpers.Week(1, 2, 3, 4),
		testhelpers.Week(2, 5),
		testhelpers.Week(1, 2, 3, 4, 5),
	}
	queue := testhelpers.MakeOrders(30, testhelpers.Monday.AddDate(0, 0, 2))

	for _, capacity := range capacities {
		for _, week := range weeks {
			first := g.Generate(queue, capacity, week)
			second := g.Generate(queue, capacity, week)

			if !reflect.DeepEqual(first.Proposal.Days, second.Proposal.Days) {
				t.Errorf("Expected identical proposals for capacity %d", capacity)
			}
			if first.Proposal.OrderCount()+len(first.Overflow) != len(queue) {
				t.Errorf("Conservation broken: %d scheduled + %d overflow != %d",
					first.Proposal.OrderCount(), len(first.Overflow), len(queue))
			}
			if err := first.Proposal.CheckUnique(); err != nil {
				t.Errorf("Expected unique orders, got %v", err)
			}
			for date, orders := range first.Proposal.Days {
				if len(orders) > capacity {
					t.Errorf("Capacity %d exceeded on %s with %d orders", capacity, date, len(orders))
				}
				d, _ := time.Parse(entities.DateLayout, date)
				if !week.IsWorkDay(d) {
					t.Errorf("Order placed on non-work day %s", date)
				}
			}
		}
	}
}

func TestOverbookedDates(t *testing.T) {
	p := entities.NewScheduleProposal(testhelpers.Week(1, 2))
	orders := testhelpers.MakeOrders(5, testhelpers.Monday)
	p.Days["2025-03-03"] = orders[:3]
	p.Days["2025-03-04"] = orders[3:]

	dates := OverbookedDates(p, 2)
	if !reflect.DeepEqual(dates, []string{"2025-03-03"}) {
		t.Errorf("Expected [2025-03-03], got %v", dates)
	}
}
