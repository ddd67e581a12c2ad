package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/infrastructure/export"
)

// Config holds configuration for output generation
type Config struct {
	Format    string // text | json | xlsx
	OutputDir string
	Verbose   bool
	Writer    io.Writer // defaults to stdout
}

func (c Config) out() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Proposal renders a generated proposal in the configured format
func Proposal(result *dto.GenerationResult, config Config) error {
	switch config.Format {
	case "", "text":
		return proposalText(result, config)
	case "json":
		return writeJSON(result, "schedule_proposal.json", config)
	case "xlsx":
		return proposalXLSX(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Commit renders a commit result. xlsx falls back to text since a commit has no tabular body.
func Commit(result *dto.CommitResult, config Config) error {
	if config.Format == "json" {
		return writeJSON(result, "schedule_commit.json", config)
	}

	w := config.out()
	fmt.Fprintf(w, "✅ Committed week of %s (commit %s)\n", result.WeekStart.Format(entities.DateLayout), result.CommitID)
	fmt.Fprintf(w, "Scheduled: %d\n", result.ScheduledCount)
	fmt.Fprintf(w, "Left in department: %d\n", result.OverflowCount)
	if result.HasStaleOrders() {
		ids := make([]string, len(result.StaleOrderIDs))
		for i, id := range result.StaleOrderIDs {
			ids[i] = string(id)
		}
		fmt.Fprintf(w, "⚠️  Skipped (moved since generation): %s\n", strings.Join(ids, ", "))
	}
	return nil
}

// Counts renders department counts in pipeline order
func Counts(counts map[entities.Department]int, pipeline []entities.Department, config Config) error {
	if config.Format == "json" {
		return writeJSON(counts, "department_counts.json", config)
	}

	w := config.out()
	fmt.Fprintf(w, "🏭 Department counts\n")
	for _, dept := range pipeline {
		n, tracked := counts[dept]
		if !tracked {
			continue
		}
		fmt.Fprintf(w, "  %-16s %d\n", dept, n)
	}
	return nil
}

func proposalText(result *dto.GenerationResult, config Config) error {
	w := config.out()
	p := result.Proposal

	fmt.Fprintf(w, "📅 Schedule proposal for week of %s\n", p.Week.WeekKey())
	fmt.Fprintf(w, "==================================\n\n")
	fmt.Fprintf(w, "Capacity per day: %d\n", result.Capacity)
	if config.Verbose {
		for _, e := range result.Staffing {
			fmt.Fprintf(w, "  %-12s %s\n", e.EmployeeID, e.Output.StringFixed(2))
		}
	}
	fmt.Fprintf(w, "Scheduled: %d\n", result.ScheduledCount())
	fmt.Fprintf(w, "Overflow: %d\n", len(result.Overflow))
	fmt.Fprintf(w, "Needs information: %d\n\n", len(result.NeedsInformation))

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warning)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	for _, date := range result.WorkDates {
		orders := p.Days[date]
		fmt.Fprintf(w, "%s (%d/%d)\n", date, len(orders), result.Capacity)
		for _, o := range orders {
			printOrder(w, o, p.MoldFor(o.OrderID))
		}
		fmt.Fprintln(w)
	}

	if len(result.Overflow) > 0 {
		fmt.Fprintf(w, "📦 Overflow:\n")
		for _, o := range result.Overflow {
			printOrder(w, o, "")
		}
		fmt.Fprintln(w)
	}

	if config.Verbose && len(result.NeedsInformation) > 0 {
		fmt.Fprintf(w, "❓ Needs information:\n")
		for _, o := range result.NeedsInformation {
			printOrder(w, o, "")
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printOrder(w io.Writer, o entities.ProductionOrder, mold string) {
	due := "no due date"
	if o.HasDueDate() {
		due = fmt.Sprintf("due %s (%dd)", o.DueDate.Format(entities.DateLayout), o.DaysToDue)
	}
	line := fmt.Sprintf("  %-10s %-9s %-16s %s", o.OrderID, o.UrgencyLevel, o.StockModelID, due)
	if mold != "" && mold != entities.AutoMold {
		line += " mold " + mold
	}
	fmt.Fprintln(w, line)
}

func writeJSON(v interface{}, filename string, config Config) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(config.OutputDir, filename)
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", path)
	}
	return nil
}

func proposalXLSX(result *dto.GenerationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := export.ProposalWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()

	path := filepath.Join(config.OutputDir, export.Filename("schedule_proposal", result.Proposal.Week.WeekKey()))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Workbook saved to: %s\n", path)
	}
	return nil
}
