package csv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_LoadOrders(t *testing.T) {
	path := writeFile(t, "orders.csv", `order_id,customer_name,model_id,stock_model_id,order_date,due_date,department
AG101,Stock,CF-ALPINE,CF-ALPINE,2025-02-01,2025-03-05,
AG102,Jones,CF-HUNTER,universal,2025-02-02,,QC
`)

	orders, err := NewLoader(entities.Cutting).LoadOrders(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(orders))
	}

	first := orders[0]
	if first.CurrentDepartment != entities.Cutting {
		t.Errorf("Expected default department Cutting, got %s", first.CurrentDepartment)
	}
	if first.DueDate.Format(entities.DateLayout) != "2025-03-05" {
		t.Errorf("Expected due date 2025-03-05, got %s", first.DueDate.Format(entities.DateLayout))
	}

	second := orders[1]
	if second.HasDueDate() {
		t.Error("Expected AG102 to have no due date")
	}
	if second.CurrentDepartment != entities.QC {
		t.Errorf("Expected QC, got %s", second.CurrentDepartment)
	}
	if second.ModelID != "CF-HUNTER" || second.StockModelID != "universal" {
		t.Errorf("Unexpected models %q / %q", second.ModelID, second.StockModelID)
	}
}

func TestLoader_LoadOrdersErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad header",
			content: "id,customer\nAG1,x\n",
			want:    "header mismatch",
		},
		{
			name: "bad date",
			content: "order_id,customer_name,model_id,stock_model_id,order_date,due_date,department\n" +
				"AG1,x,m,m,2025-02-01,05/03/2025,\n",
			want: "due_date",
		},
		{
			name: "duplicate order",
			content: "order_id,customer_name,model_id,stock_model_id,order_date,due_date,department\n" +
				"AG1,x,m,m,,,\nAG1,y,m,m,,,\n",
			want: "already defined",
		},
		{
			name: "short row",
			content: "order_id,customer_name,model_id,stock_model_id,order_date,due_date,department\n" +
				"AG1,x\n",
			want: "expected 7 columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "orders.csv", tt.content)
			_, err := NewLoader(entities.Cutting).LoadOrders(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoader_LoadStaffing(t *testing.T) {
	path := writeFile(t, "staffing.csv", `employee_id,department,rate,hours,is_active
EMP-1,Cutting,1.3,7.5,true
EMP-2,Cutting,2,8,false
`)

	settings, err := NewLoader(entities.Cutting).LoadStaffing(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("Expected 2 settings, got %d", len(settings))
	}
	if settings[0].DailyOutput().String() != "9.75" {
		t.Errorf("Expected daily output 9.75, got %s", settings[0].DailyOutput())
	}
	if settings[1].IsActive {
		t.Error("Expected EMP-2 inactive")
	}

	bad := writeFile(t, "staffing.csv", "employee_id,department,rate,hours,is_active\nEMP-1,Cutting,1,30,true\n")
	if _, err := NewLoader(entities.Cutting).LoadStaffing(bad); err == nil {
		t.Error("Expected error for hours over 24")
	}
}
