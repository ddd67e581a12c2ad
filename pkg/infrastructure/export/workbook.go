package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
)

var (
	proposalHeaders = []string{"Date", "Slot", "Order ID", "Customer", "Model", "Stock Model", "Due Date", "Days To Due", "Urgency", "Score", "Mold"}
	queueHeaders    = []string{"Order ID", "Customer", "Model", "Stock Model", "Due Date", "Days To Due", "Urgency", "Score"}
	entryHeaders    = []string{"Date", "Order ID", "Mold", "Commit ID", "Committed At", "Staffing"}
)

// ProposalWorkbook renders a generated proposal with its overflow and needs-information lists
func ProposalWorkbook(result *dto.GenerationResult) (*excelize.File, error) {
	if result == nil || result.Proposal == nil {
		return nil, fmt.Errorf("generation result cannot be empty")
	}

	f := excelize.NewFile()
	const sheet = "Schedule"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, err
	}
	writeHeader(f, sheet, proposalHeaders, header)

	row := 2
	proposal := result.Proposal
	for _, date := range proposal.Dates() {
		for slot, order := range proposal.Days[date] {
			values := append([]interface{}{date, slot + 1}, orderCells(order)...)
			values = append(values, proposal.MoldFor(order.OrderID))
			if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	summary, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	row++
	f.SetCellValue(sheet, cell(1, row), "Capacity / day")
	f.SetCellValue(sheet, cell(3, row), result.Capacity)
	f.SetCellValue(sheet, cell(1, row+1), "Scheduled")
	f.SetCellValue(sheet, cell(3, row+1), result.ScheduledCount())
	f.SetCellStyle(sheet, cell(1, row), cell(1, row+1), summary)
	setWidths(f, sheet, []float64{12, 6, 12, 20, 16, 16, 12, 11, 10, 8, 10})

	if err := queueSheet(f, "Overflow", result.Overflow, header); err != nil {
		return nil, err
	}
	if err := queueSheet(f, "Needs Information", result.NeedsInformation, header); err != nil {
		return nil, err
	}
	return f, nil
}

// EntriesWorkbook renders committed schedule entries
func EntriesWorkbook(view *dto.ScheduleView) (*excelize.File, error) {
	if view == nil {
		return nil, fmt.Errorf("schedule view cannot be empty")
	}

	f := excelize.NewFile()
	const sheet = "Committed"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, err
	}
	writeHeader(f, sheet, entryHeaders, header)

	for i, e := range view.Entries {
		values := []interface{}{
			e.ScheduledDate.Format(entities.DateLayout),
			string(e.OrderID),
			e.MoldID,
			e.CommitID.String(),
			e.CreatedAt.UTC().Format("2006-01-02 15:04"),
			staffingSummary(e.EmployeeAssignments),
		}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &values); err != nil {
			return nil, err
		}
	}
	setWidths(f, sheet, []float64{12, 12, 10, 38, 18, 40})
	return f, nil
}

// Filename returns the conventional workbook name for a week
func Filename(kind string, weekKey string) string {
	return fmt.Sprintf("%s_%s.xlsx", kind, weekKey)
}

func queueSheet(f *excelize.File, sheet string, orders []entities.ProductionOrder, header int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeader(f, sheet, queueHeaders, header)
	for i, order := range orders {
		values := orderCells(order)
		if err := f.SetSheetRow(sheet, cell(1, i+2), &values); err != nil {
			return err
		}
	}
	setWidths(f, sheet, []float64{12, 20, 16, 16, 12, 11, 10, 8})
	return nil
}

func orderCells(o entities.ProductionOrder) []interface{} {
	due, days := "", ""
	if o.HasDueDate() {
		due = o.DueDate.Format(entities.DateLayout)
		days = strconv.Itoa(o.DaysToDue)
	}
	return []interface{}{
		string(o.OrderID),
		o.CustomerName,
		o.ModelID,
		o.StockModelID,
		due,
		days,
		o.UrgencyLevel.String(),
		o.PriorityScore,
	}
}

func staffingSummary(settings []entities.EmployeeCapacitySetting) string {
	out := ""
	for i, s := range settings {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %s×%s", s.EmployeeID, s.Rate.String(), s.Hours.String())
	}
	return out
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		c := cell(i+1, 1)
		f.SetCellValue(sheet, c, h)
		f.SetCellStyle(sheet, c, c, style)
	}
}

func setWidths(f *excelize.File, sheet string, widths []float64) {
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
