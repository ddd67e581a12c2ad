package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/domain/entities"
)

// OrdersHeader and StaffingHeader are the expected first rows of the import files
var (
	OrdersHeader   = []string{"order_id", "customer_name", "model_id", "stock_model_id", "order_date", "due_date", "department"}
	StaffingHeader = []string{"employee_id", "department", "rate", "hours", "is_active"}
)

// Loader handles loading scheduling data from CSV files
type Loader struct {
	defaultDepartment entities.Department
}

// NewLoader creates a loader that places orders without a department in defaultDepartment
func NewLoader(defaultDepartment entities.Department) *Loader {
	return &Loader{defaultDepartment: defaultDepartment}
}

// LoadOrders loads production orders from a CSV file
func (l *Loader) LoadOrders(filename string) ([]*entities.ProductionOrder, error) {
	records, err := readRecords(filename, "orders", OrdersHeader)
	if err != nil {
		return nil, err
	}

	orders := make([]*entities.ProductionOrder, 0, len(records))
	seen := make(map[entities.OrderID]int, len(records))
	for i, record := range records {
		order, err := l.parseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}
		if prev, dup := seen[order.OrderID]; dup {
			return nil, fmt.Errorf("orders CSV row %d: order %s already defined on row %d", i+2, order.OrderID, prev)
		}
		seen[order.OrderID] = i + 2
		orders = append(orders, order)
	}

	return orders, nil
}

// LoadStaffing loads employee capacity settings from a CSV file
func (l *Loader) LoadStaffing(filename string) ([]entities.EmployeeCapacitySetting, error) {
	records, err := readRecords(filename, "staffing", StaffingHeader)
	if err != nil {
		return nil, err
	}

	settings := make([]entities.EmployeeCapacitySetting, 0, len(records))
	for i, record := range records {
		setting, err := parseStaffing(record)
		if err != nil {
			return nil, fmt.Errorf("staffing CSV row %d: %w", i+2, err)
		}
		settings = append(settings, *setting)
	}

	return settings, nil
}

// readRecords returns the data rows after checking the header and column counts
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, records[0])
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func (l *Loader) parseOrder(record []string) (*entities.ProductionOrder, error) {
	orderDate, err := parseOptionalDate(record[4], "order_date")
	if err != nil {
		return nil, err
	}
	dueDate, err := parseOptionalDate(record[5], "due_date")
	if err != nil {
		return nil, err
	}

	dept := entities.Department(strings.TrimSpace(record[6]))
	if dept == "" {
		dept = l.defaultDepartment
	}

	order, err := entities.NewProductionOrder(
		entities.OrderID(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		strings.TrimSpace(record[3]),
		dueDate,
		dept,
	)
	if err != nil {
		return nil, err
	}
	if model := strings.TrimSpace(record[2]); model != "" {
		order.ModelID = model
	}
	order.OrderDate = orderDate
	order.Source = "csv"
	return order, nil
}

func parseStaffing(record []string) (*entities.EmployeeCapacitySetting, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", record[2], err)
	}
	hours, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid hours %q: %w", record[3], err)
	}
	active, err := strconv.ParseBool(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, fmt.Errorf("invalid is_active %q: %w", record[4], err)
	}

	return entities.NewEmployeeCapacitySetting(
		strings.TrimSpace(record[0]),
		entities.Department(strings.TrimSpace(record[1])),
		rate,
		hours,
		active,
	)
}

func parseOptionalDate(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(entities.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %s (expected YYYY-MM-DD)", field, s)
	}
	return t, nil
}
