package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vsinha/prodsched/pkg/application/dto"
	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/interfaces/cli/output"
)

// SessionConfig holds configuration for the interactive editing session
type SessionConfig struct {
	Week         string
	OrdersFile   string
	StaffingFile string
	Verbose      bool
	Help         bool
	In           io.Reader // defaults to stdin
	Out          io.Writer // defaults to stdout
}

// SessionCommand runs an interactive generate / edit / commit session
type SessionCommand struct {
	config  SessionConfig
	runtime *Runtime
	scanner *bufio.Scanner
	out     io.Writer
	now     func() time.Time

	week   *entities.WorkWeekConfig
	result *dto.GenerationResult
}

// NewSessionCommand creates a new session command with the given configuration
func NewSessionCommand(rt *Runtime, config SessionConfig) *SessionCommand {
	in, out := config.In, config.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &SessionCommand{
		config:  config,
		runtime: rt,
		scanner: bufio.NewScanner(in),
		out:     out,
		now:     time.Now,
	}
}

// Execute runs the session until quit or end of input
func (c *SessionCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printUsage()
		return nil
	}

	if err := c.runtime.Import(ctx, c.config.OrdersFile, c.config.StaffingFile); err != nil {
		return err
	}

	week, err := resolveWeek(c.runtime, c.config.Week, c.now())
	if err != nil {
		return err
	}
	c.week = week
	if err := c.generate(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "=== Schedule Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for {
		fmt.Fprint(c.out, "sched> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		done, err := c.processCommand(ctx, line)
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		if done {
			break
		}
		fmt.Fprintln(c.out)
	}

	return c.scanner.Err()
}

func (c *SessionCommand) processCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help":
		c.printHelp()
	case "show":
		return false, output.Proposal(c.result, c.outputConfig())
	case "generate":
		if len(args) == 1 {
			week, err := resolveWeek(c.runtime, args[0], c.now())
			if err != nil {
				return false, err
			}
			c.week = week
		}
		if err := c.generate(ctx); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "Generated %d scheduled, %d overflow for week of %s\n",
			c.result.ScheduledCount(), len(c.result.Overflow), c.week.WeekKey())
	case "move":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: move <order> <date>")
		}
		return false, c.edit(ctx, dto.EditOperation{Op: dto.EditMove, OrderID: entities.OrderID(args[0]), TargetDate: args[1]})
	case "remove":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: remove <order>")
		}
		return false, c.edit(ctx, dto.EditOperation{Op: dto.EditRemove, OrderID: entities.OrderID(args[0])})
	case "place":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: place <order> <date>")
		}
		order, err := c.findOrder(ctx, entities.OrderID(args[0]))
		if err != nil {
			return false, err
		}
		return false, c.edit(ctx, dto.EditOperation{Op: dto.EditPlace, OrderID: order.OrderID, TargetDate: args[1], Order: order})
	case "commit":
		committed, err := c.runtime.Orchestrator.CommitSchedule(ctx, c.result.Proposal, *c.week)
		if err != nil {
			return false, err
		}
		return false, output.Commit(committed, c.outputConfig())
	case "counts":
		counts, err := c.runtime.Orchestrator.GetDepartmentCounts(ctx)
		if err != nil {
			return false, err
		}
		return false, output.Counts(counts, c.runtime.StateMachine.Pipeline().Departments(), c.outputConfig())
	case "progress":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: progress <order>")
		}
		result, err := c.runtime.Orchestrator.ProgressOrder(ctx, entities.OrderID(args[0]))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "%s: %s -> %s\n", result.OrderID, result.From, result.To)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
	return false, nil
}

func (c *SessionCommand) generate(ctx context.Context) error {
	result, err := c.runtime.Orchestrator.GenerateSchedule(ctx, *c.week)
	if err != nil {
		return fmt.Errorf("error generating schedule: %w", err)
	}
	c.result = result
	return nil
}

func (c *SessionCommand) edit(ctx context.Context, op dto.EditOperation) error {
	before := scheduledOrder(c.result.Proposal, op.OrderID)

	edited, err := c.runtime.Orchestrator.EditSchedule(ctx, c.result.Proposal, op)
	if err != nil {
		return err
	}
	proposal := edited.Proposal
	c.result.Proposal = proposal
	c.result.Overflow = withoutScheduled(c.result.Overflow, proposal)

	if date, ok := proposal.Locate(op.OrderID); ok {
		fmt.Fprintf(c.out, "%s scheduled on %s\n", op.OrderID, date)
		for _, d := range edited.Overbooked {
			fmt.Fprintf(c.out, "⚠️  %s is over capacity (%d/%d)\n", d, len(proposal.Days[d]), edited.Capacity)
		}
		return nil
	}
	if before != nil {
		c.result.Overflow = append(c.result.Overflow, *before)
	}
	fmt.Fprintf(c.out, "%s unscheduled\n", op.OrderID)
	return nil
}

func scheduledOrder(p *entities.ScheduleProposal, orderID entities.OrderID) *entities.ProductionOrder {
	date, ok := p.Locate(orderID)
	if !ok {
		return nil
	}
	for _, o := range p.Days[date] {
		if o.OrderID == orderID {
			return &o
		}
	}
	return nil
}

// findOrder looks an unscheduled order up in the current overflow or the pending queue
func (c *SessionCommand) findOrder(ctx context.Context, orderID entities.OrderID) (*entities.ProductionOrder, error) {
	for i := range c.result.Overflow {
		if c.result.Overflow[i].OrderID == orderID {
			o := c.result.Overflow[i]
			return &o, nil
		}
	}
	view, err := c.runtime.Orchestrator.PriorityQueue(ctx)
	if err != nil {
		return nil, err
	}
	for _, list := range [][]entities.ProductionOrder{view.Queue, view.NeedsInformation} {
		for i := range list {
			if list[i].OrderID == orderID {
				o := list[i]
				return &o, nil
			}
		}
	}
	return nil, fmt.Errorf("order %s is not pending in %s", orderID, c.runtime.Orchestrator.Department())
}

func (c *SessionCommand) outputConfig() output.Config {
	return output.Config{Format: "text", Verbose: c.config.Verbose, Writer: c.out}
}

func withoutScheduled(orders []entities.ProductionOrder, p *entities.ScheduleProposal) []entities.ProductionOrder {
	out := orders[:0:0]
	for _, o := range orders {
		if _, ok := p.Locate(o.OrderID); !ok {
			out = append(out, o)
		}
	}
	return out
}

func (c *SessionCommand) printHelp() {
	fmt.Fprintln(c.out, `Commands:
    show                    Print the current proposal
    generate [week]         Regenerate, optionally for another Monday
    move <order> <date>     Move a scheduled order to another work day
    remove <order>          Unschedule an order
    place <order> <date>    Schedule an overflow or pending order
    commit                  Commit the current proposal
    counts                  Show orders per department
    progress <order>        Advance a downstream order to its next department
    quit                    Leave the session`)
}

func (c *SessionCommand) printUsage() {
	fmt.Fprintln(c.out, `prodsched session - interactive schedule editing

USAGE:
    prodsched session [OPTIONS]

OPTIONS:
    -week <date>        Monday of the week to plan (default: current week)
    -orders <file>      Import orders CSV first
    -staffing <file>    Import staffing CSV first
    -verbose            Enable verbose output
    -help               Show this help message`)
}
