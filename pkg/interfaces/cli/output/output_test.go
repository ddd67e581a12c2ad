package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/application/services/scheduling"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	testhelpers "github.com/vsinha/prodsched/pkg/infrastructure/testing"
)

func sampleResult() *dto.GenerationResult {
	orders := testhelpers.MakeOrders(3, testhelpers.Monday.AddDate(0, 0, 2))
	return scheduling.NewGenerator(nil).Generate(orders, 2, testhelpers.Week(1))
}

func TestProposal_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Proposal(sampleResult(), Config{Format: "text", Writer: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"week of 2025-03-03", "Capacity per day: 2", "2025-03-03 (2/2)", "Overflow:", "AG003"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestProposal_TextVerboseStaffing(t *testing.T) {
	result := sampleResult()
	result.Staffing = []dto.EmployeeOutput{{EmployeeID: "EMP-CUT-1", Output: decimal.RequireFromString("9.75")}}

	var buf bytes.Buffer
	if err := Proposal(result, Config{Format: "text", Verbose: true, Writer: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "EMP-CUT-1") || !strings.Contains(buf.String(), "9.75") {
		t.Errorf("Expected staffing breakdown in verbose output, got:\n%s", buf.String())
	}
}

func TestProposal_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Proposal(sampleResult(), Config{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded dto.GenerationResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded.ScheduledCount() != 2 || len(decoded.Overflow) != 1 {
		t.Errorf("Expected 2 scheduled and 1 overflow, got %d and %d", decoded.ScheduledCount(), len(decoded.Overflow))
	}
}

func TestProposal_XLSX(t *testing.T) {
	if err := Proposal(sampleResult(), Config{Format: "xlsx"}); err == nil {
		t.Error("Expected error without an output directory")
	}

	dir := t.TempDir()
	if err := Proposal(sampleResult(), Config{Format: "xlsx", OutputDir: dir}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "schedule_proposal_2025-03-03.xlsx")); err != nil {
		t.Errorf("Expected workbook to be written: %v", err)
	}
}

func TestProposal_UnknownFormat(t *testing.T) {
	if err := Proposal(sampleResult(), Config{Format: "pdf"}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestCommit_Text(t *testing.T) {
	var buf bytes.Buffer
	result := &dto.CommitResult{
		CommitID:       uuid.New(),
		WeekStart:      testhelpers.Monday,
		ScheduledCount: 3,
		OverflowCount:  1,
		StaleOrderIDs:  []entities.OrderID{"AG009"},
	}
	if err := Commit(result, Config{Writer: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Scheduled: 3") || !strings.Contains(buf.String(), "AG009") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestCounts_PipelineOrder(t *testing.T) {
	var buf bytes.Buffer
	counts := map[entities.Department]int{entities.QC: 2, entities.Cutting: 5}
	if err := Counts(counts, entities.DefaultPipeline, Config{Writer: &buf}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "Cutting") > strings.Index(out, "QC") {
		t.Errorf("Expected Cutting before QC, got:\n%s", out)
	}
}
