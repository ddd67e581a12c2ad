package entities

import (
	"encoding/json"
	"testing"
	"time"
)

func TestProductionOrder_Validation(t *testing.T) {
	dueDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	validOrder, err := NewProductionOrder("AG001", "Acme Outfitters", "cf_k2", dueDate, Cutting)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if validOrder.UrgencyLevel != Low {
		t.Errorf("Expected default urgency low, got %s", validOrder.UrgencyLevel)
	}
	if validOrder.EffectiveStockModel() != "cf_k2" {
		t.Errorf("Expected stock model cf_k2, got %s", validOrder.EffectiveStockModel())
	}

	testCases := []struct {
		name        string
		orderID     OrderID
		department  Department
		expectError string
	}{
		{"empty order id", "", Cutting, "order id cannot be empty"},
		{"blank order id", "   ", Cutting, "order id cannot be empty"},
		{"empty department", "AG002", "", "current department cannot be empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProductionOrder(tc.orderID, "", "cf_k2", dueDate, tc.department)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestUrgencyLevel_TextRoundTrip(t *testing.T) {
	order := ProductionOrder{OrderID: "AG003", UrgencyLevel: Critical, OrderType: NeedsInformation}

	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ProductionOrder
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.UrgencyLevel != Critical {
		t.Errorf("Expected urgency critical, got %s", decoded.UrgencyLevel)
	}
	if decoded.OrderType != NeedsInformation {
		t.Errorf("Expected order type needs_information, got %s", decoded.OrderType)
	}

	var level UrgencyLevel
	if err := level.UnmarshalText([]byte("urgent")); err == nil {
		t.Error("Expected error for unknown urgency level")
	}
}

func TestEffectiveStockModel_FallsBackToModelID(t *testing.T) {
	order := ProductionOrder{OrderID: "AG004", ModelID: "fg_alpine"}
	if order.EffectiveStockModel() != "fg_alpine" {
		t.Errorf("Expected fg_alpine, got %s", order.EffectiveStockModel())
	}
	if order.HasDueDate() {
		t.Error("Expected order without due date")
	}
}
