package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	csvrepo "github.com/vsinha/prodsched/pkg/infrastructure/repositories/csv"
)

// ScenarioConfig holds configuration for scenario generation
type ScenarioConfig struct {
	Orders     int       // Number of orders to generate
	Employees  int       // Number of employees staffed in the scheduling department
	Department string    // Scheduling department
	Pipeline   []entities.Department
	BaseDate   time.Time // Due dates are spread around this date; zero = today
	OutputDir  string
	Seed       int64 // Random seed for reproducible generation
	Help       bool
	Verbose    bool
}

// ScenarioCommand writes a random but reproducible orders.csv and staffing.csv
type ScenarioCommand struct {
	config ScenarioConfig
	rand   *rand.Rand
}

var (
	stockModels     = []string{"CF-ALPINE", "CF-HUNTER", "CF-TACTICAL", "FG-SPORTER", "FG-VARMINT", "CF-MOUNTAIN"}
	unresolvedModel = []string{"", "none", "universal", "unprocessed"}
	customers       = []string{"Stock", "Anderson", "Brooks", "Castillo", "Dietrich", "Evans", "Fischer", "Garcia"}
)

// NewScenarioCommand creates a new scenario command
func NewScenarioCommand(config ScenarioConfig) *ScenarioCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.BaseDate.IsZero() {
		config.BaseDate = entities.NormalizeDate(time.Now())
	}
	if len(config.Pipeline) == 0 {
		config.Pipeline = entities.DefaultPipeline
	}

	return &ScenarioCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the scenario command
func (cmd *ScenarioCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if cmd.config.Orders <= 0 || cmd.config.Employees <= 0 {
		return fmt.Errorf("orders and employees must be positive")
	}

	if cmd.config.Verbose {
		fmt.Printf("🔧 Generating %d orders and %d employees for %s\n",
			cmd.config.Orders, cmd.config.Employees, cmd.config.Department)
		fmt.Printf("📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := cmd.writeCSV("orders.csv", csvrepo.OrdersHeader, cmd.generateOrders()); err != nil {
		return fmt.Errorf("failed to generate orders: %w", err)
	}
	if err := cmd.writeCSV("staffing.csv", csvrepo.StaffingHeader, cmd.generateStaffing()); err != nil {
		return fmt.Errorf("failed to generate staffing: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Printf("✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *ScenarioCommand) generateOrders() [][]string {
	downstream := cmd.downstreamDepartments()
	rows := make([][]string, 0, cmd.config.Orders)

	for i := 0; i < cmd.config.Orders; i++ {
		model := stockModels[cmd.rand.Intn(len(stockModels))]
		stock := model
		// roughly one in twelve orders is missing its stock model
		if cmd.rand.Intn(12) == 0 {
			stock = unresolvedModel[cmd.rand.Intn(len(unresolvedModel))]
		}

		orderDate := cmd.config.BaseDate.AddDate(0, 0, -(10 + cmd.rand.Intn(60)))
		due := ""
		if cmd.rand.Intn(10) != 0 {
			due = cmd.config.BaseDate.AddDate(0, 0, cmd.rand.Intn(46)-5).Format(entities.DateLayout)
		}

		dept := ""
		if len(downstream) > 0 && cmd.rand.Intn(7) == 0 {
			dept = string(downstream[cmd.rand.Intn(len(downstream))])
		}

		rows = append(rows, []string{
			fmt.Sprintf("AG%04d", i+1),
			customers[cmd.rand.Intn(len(customers))],
			model,
			stock,
			orderDate.Format(entities.DateLayout),
			due,
			dept,
		})
	}
	return rows
}

func (cmd *ScenarioCommand) generateStaffing() [][]string {
	rows := make([][]string, 0, cmd.config.Employees)
	for i := 0; i < cmd.config.Employees; i++ {
		// 1.0 - 3.0 units/hour in tenths, 6 - 10 hours in halves
		rate := decimal.New(int64(10+cmd.rand.Intn(21)), -1)
		hours := decimal.New(int64(12+cmd.rand.Intn(9)), 0).Div(decimal.NewFromInt(2))
		active := cmd.rand.Intn(10) != 0

		rows = append(rows, []string{
			fmt.Sprintf("EMP-%03d", i+1),
			cmd.config.Department,
			rate.String(),
			hours.String(),
			strconv.FormatBool(active),
		})
	}
	return rows
}

// downstreamDepartments lists the non-terminal departments after the scheduling department
func (cmd *ScenarioCommand) downstreamDepartments() []entities.Department {
	pipeline := cmd.config.Pipeline
	var out []entities.Department
	found := false
	for i, d := range pipeline {
		if found && i < len(pipeline)-1 {
			out = append(out, d)
		}
		if string(d) == cmd.config.Department {
			found = true
		}
	}
	return out
}

func (cmd *ScenarioCommand) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(cmd.config.OutputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Printf("📦 Wrote %d rows to %s\n", len(rows), path)
	}
	return nil
}

func (cmd *ScenarioCommand) printHelp() {
	fmt.Println(`prodsched scenario - generate a reproducible demo scenario

USAGE:
    prodsched scenario [OPTIONS]

OPTIONS:
    -output <DIR>       Output directory for orders.csv and staffing.csv (required)
    -orders <N>         Number of orders to generate (default: 60)
    -employees <N>      Number of employees in the scheduling department (default: 4)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    prodsched scenario -output ./demo -orders 120 -employees 6 -seed 42
    prodsched plan -orders ./demo/orders.csv -staffing ./demo/staffing.csv`)
}
