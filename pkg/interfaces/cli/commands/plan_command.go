package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/interfaces/cli/output"
)

// PlanConfig holds configuration for the plan command
type PlanConfig struct {
	Week         string   // Monday of the week to plan, YYYY-MM-DD; empty = current week
	OrdersFile   string   // optional orders CSV to import first
	StaffingFile string   // optional staffing CSV to import first
	Moves        []string // manual edits, ORDER=YYYY-MM-DD
	Format       string
	OutputDir    string
	Commit       bool
	Verbose      bool
	Help         bool
}

// PlanCommand generates, optionally edits, and optionally commits one week's schedule
type PlanCommand struct {
	config  PlanConfig
	runtime *Runtime
	now     func() time.Time
}

// NewPlanCommand creates a new plan command
func NewPlanCommand(rt *Runtime, config PlanConfig) *PlanCommand {
	return &PlanCommand{config: config, runtime: rt, now: time.Now}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.runtime.Import(ctx, c.config.OrdersFile, c.config.StaffingFile); err != nil {
		return err
	}

	week, err := resolveWeek(c.runtime, c.config.Week, c.now())
	if err != nil {
		return err
	}

	result, err := c.runtime.Orchestrator.GenerateSchedule(ctx, *week)
	if err != nil {
		return fmt.Errorf("error generating schedule: %w", err)
	}

	proposal := result.Proposal
	var overbooked []string
	for _, move := range c.config.Moves {
		op, err := parseMove(move)
		if err != nil {
			return err
		}
		edited, err := c.runtime.Orchestrator.EditSchedule(ctx, proposal, op)
		if err != nil {
			return fmt.Errorf("error applying %s: %w", move, err)
		}
		proposal, overbooked = edited.Proposal, edited.Overbooked
	}
	result.Proposal = proposal
	result.Overflow = withoutScheduled(result.Overflow, proposal)
	for _, date := range overbooked {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s holds %d orders, over capacity %d", date, len(proposal.Days[date]), result.Capacity))
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Proposal(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if !c.config.Commit {
		return nil
	}

	committed, err := c.runtime.Orchestrator.CommitSchedule(ctx, proposal, *week)
	if err != nil {
		return fmt.Errorf("error committing schedule: %w", err)
	}
	if err := output.Commit(committed, outputConfig); err != nil {
		return err
	}

	if c.config.Verbose {
		counts, err := c.runtime.Orchestrator.GetDepartmentCounts(ctx)
		if err != nil {
			return err
		}
		return output.Counts(counts, c.runtime.StateMachine.Pipeline().Departments(), outputConfig)
	}
	return nil
}

// resolveWeek parses a Monday or falls back to the week containing now
func resolveWeek(rt *Runtime, week string, now time.Time) (*entities.WorkWeekConfig, error) {
	start := entities.MondayOf(now)
	if week != "" {
		parsed, err := entities.ParseDate(week)
		if err != nil {
			return nil, fmt.Errorf("invalid week: %w", err)
		}
		start = parsed
	}
	return rt.Config.Week(start)
}

// parseMove turns ORDER=YYYY-MM-DD into a move operation
func parseMove(s string) (dto.EditOperation, error) {
	orderID, date, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(orderID) == "" {
		return dto.EditOperation{}, fmt.Errorf("invalid move %q, expected ORDER=YYYY-MM-DD", s)
	}
	return dto.EditOperation{
		Op:         dto.EditMove,
		OrderID:    entities.OrderID(strings.TrimSpace(orderID)),
		TargetDate: strings.TrimSpace(date),
	}, nil
}

func (c *PlanCommand) showHelp() {
	fmt.Printf(`prodsched plan - generate a weekly schedule for the scheduling department

USAGE:
    prodsched plan [OPTIONS]

OPTIONS:
    -week <date>        Monday of the week to plan (default: current week)
    -orders <file>      Import orders CSV before planning
    -staffing <file>    Import staffing CSV before planning
    -move <ORDER=DATE>  Move an order to another work day (repeatable)
    -format <fmt>       Output format: text, json, xlsx (default: text)
    -output <dir>       Output directory (required for xlsx)
    -commit             Commit the schedule after printing it
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    prodsched plan -orders scenario/orders.csv -staffing scenario/staffing.csv -week 2025-03-03
    prodsched plan -week 2025-03-03 -move AG105=2025-03-06 -commit
    prodsched plan -format xlsx -output results/
`)
}
