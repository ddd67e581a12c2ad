package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/infrastructure/config"
	"github.com/vsinha/prodsched/pkg/infrastructure/logging"
	"github.com/vsinha/prodsched/pkg/interfaces/cli/commands"
)

// stringList collects a repeatable flag
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	args := os.Args[1:]
	mode := "plan"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		mode, args = args[0], args[1:]
	}

	var err error
	switch mode {
	case "plan":
		err = runPlan(args)
	case "session":
		err = runSession(args)
	case "serve":
		err = runServe(args)
	case "scenario":
		err = runScenario(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected plan, session, serve or scenario)\n", mode)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	var moves stringList
	var (
		configFile   = fs.String("config", "", "Path to config file (default: ./configs/config.yaml)")
		week         = fs.String("week", "", "Monday of the week to plan, YYYY-MM-DD")
		ordersFile   = fs.String("orders", "", "Path to orders CSV file")
		staffingFile = fs.String("staffing", "", "Path to staffing CSV file")
		format       = fs.String("format", "text", "Output format: text, json, xlsx")
		outputDir    = fs.String("output", "", "Output directory for results (optional)")
		commit       = fs.Bool("commit", false, "Commit the generated schedule")
		verbose      = fs.Bool("verbose", false, "Enable verbose output")
		help         = fs.Bool("help", false, "Show help message")
	)
	fs.Var(&moves, "move", "Move an order, ORDER=YYYY-MM-DD (repeatable)")
	_ = fs.Parse(args)

	planConfig := commands.PlanConfig{
		Week:         *week,
		OrdersFile:   *ordersFile,
		StaffingFile: *staffingFile,
		Moves:        moves,
		Format:       *format,
		OutputDir:    *outputDir,
		Commit:       *commit,
		Verbose:      *verbose,
		Help:         *help,
	}

	return withRuntime(*configFile, func(ctx context.Context, rt *commands.Runtime) error {
		return commands.NewPlanCommand(rt, planConfig).Execute(ctx)
	})
}

func runSession(args []string) error {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	var (
		configFile   = fs.String("config", "", "Path to config file (default: ./configs/config.yaml)")
		week         = fs.String("week", "", "Monday of the week to plan, YYYY-MM-DD")
		ordersFile   = fs.String("orders", "", "Path to orders CSV file")
		staffingFile = fs.String("staffing", "", "Path to staffing CSV file")
		verbose      = fs.Bool("verbose", false, "Enable verbose output")
		help         = fs.Bool("help", false, "Show help message")
	)
	_ = fs.Parse(args)

	sessionConfig := commands.SessionConfig{
		Week:         *week,
		OrdersFile:   *ordersFile,
		StaffingFile: *staffingFile,
		Verbose:      *verbose,
		Help:         *help,
	}

	return withRuntime(*configFile, func(ctx context.Context, rt *commands.Runtime) error {
		return commands.NewSessionCommand(rt, sessionConfig).Execute(ctx)
	})
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (default: ./configs/config.yaml)")
	_ = fs.Parse(args)

	return withRuntime(*configFile, func(ctx context.Context, rt *commands.Runtime) error {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return commands.NewServeCommand(rt).Execute(ctx)
	})
}

func runScenario(args []string) error {
	fs := flag.NewFlagSet("scenario", flag.ExitOnError)
	var (
		outputDir  = fs.String("output", "", "Output directory for orders.csv and staffing.csv")
		orders     = fs.Int("orders", 60, "Number of orders to generate")
		employees  = fs.Int("employees", 4, "Number of employees in the scheduling department")
		department = fs.String("department", string(entities.Cutting), "Scheduling department")
		baseDate   = fs.String("base-date", "", "Date due dates are spread around, YYYY-MM-DD (default: today)")
		seed       = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	_ = fs.Parse(args)

	var base time.Time
	if *baseDate != "" {
		parsed, err := entities.ParseDate(*baseDate)
		if err != nil {
			return fmt.Errorf("invalid base date: %w", err)
		}
		base = parsed
	}

	cmd := commands.NewScenarioCommand(commands.ScenarioConfig{
		Orders:     *orders,
		Employees:  *employees,
		Department: *department,
		BaseDate:   base,
		OutputDir:  *outputDir,
		Seed:       *seed,
		Help:       *help,
		Verbose:    *verbose,
	})
	return cmd.Execute(context.Background())
}

// withRuntime loads configuration, builds the logger and runtime, and runs fn against them
func withRuntime(configFile string, fn func(context.Context, *commands.Runtime) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	rt, err := commands.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return err
	}
	defer rt.Close()

	return fn(ctx, rt)
}
