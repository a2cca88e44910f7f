package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/quantfolio/walkforward/internal/datasource"
	"github.com/quantfolio/walkforward/internal/engine"
	"github.com/quantfolio/walkforward/internal/logger"
	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/internal/version"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(28)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
)

// runAction loads the config, strategy, and price data, runs the
// walk-forward analysis, and prints a summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	config := engine.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(content, &config); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	strategyContent, err := os.ReadFile(cmd.String("strategy"))
	if err != nil {
		return fmt.Errorf("failed to read strategy: %w", err)
	}

	var strategy types.StrategyDefinition
	if err := yaml.Unmarshal(strategyContent, &strategy); err != nil {
		return fmt.Errorf("failed to parse strategy: %w", err)
	}

	data, err := datasource.LoadCSV(cmd.String("data"))
	if err != nil {
		return fmt.Errorf("failed to load price data: %w", err)
	}

	var lg *logger.Logger

	if cmd.Bool("verbose") {
		lg, err = logger.NewDevelopmentLogger()
	} else {
		lg, err = logger.NewLogger()
	}

	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer lg.Sync()

	var bar *progressbar.ProgressBar

	onWindow := optional.Some[engine.OnWindowCallback](func(completed, total int) {
		if bar == nil {
			bar = progressbar.New(total)
		}

		bar.Set(completed)
	})

	wf := engine.NewWalkForward(config, lg)

	result, err := wf.Run(ctx, strategy, data, onWindow)
	if err != nil {
		return fmt.Errorf("walk-forward run failed: %w", err)
	}

	fmt.Println()
	printSummary(result)

	if output := cmd.String("output"); output != "" {
		if err := types.WriteResult(output, result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}

		fmt.Printf("\nResult written to %s\n", output)
	}

	return nil
}

// schemaAction prints the JSON schema of the engine configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := engine.DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func printSummary(result *types.BacktestResult) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Walk-forward result: %s", result.StrategyName)))

	row := func(label string, format string, args ...any) {
		fmt.Printf("%s %s\n", labelStyle.Render(label), fmt.Sprintf(format, args...))
	}

	row("Run ID", "%s", result.ID)
	row("Windows", "%d (%d overfit)", result.WindowCount, result.Degradation.OverfitWindowCount)
	row("Trades", "%d", len(result.Trades))
	row("Total return", "%.2f%%", result.Performance.TotalReturn*100)
	row("Annualized return", "%.2f%%", result.Performance.AnnualizedReturn*100)
	row("Sharpe / Sortino / Calmar", "%.2f / %.2f / %.2f",
		result.Performance.SharpeRatio, result.Performance.SortinoRatio, result.Performance.CalmarRatio)
	row("Max drawdown", "%.2f%%", result.Performance.MaxDrawdown*100)
	row("VaR95 / ES95", "%.4f / %.4f", result.Risk.VaR95, result.Risk.ExpectedShortfall95)
	row("Skew / Kurtosis", "%.2f / %.2f", result.Risk.Skewness, result.Risk.Kurtosis)
	row("Parameter stability", "%.2f", result.Stability.OverallStability)
	row("Mean return degradation", "%.2f%%", result.Degradation.MeanReturnDegradation*100)

	if result.Degradation.ConsistentOverperformance {
		fmt.Println(warnStyle.Render("Warning: out-of-sample consistently beats in-sample; inspect the data pipeline"))
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Walk-forward backtesting engine",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a walk-forward backtest over a price CSV",
				Action: runAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Path to the strategy definition YAML",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the price CSV (date,symbol,close,volume)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the backtest config YAML; defaults apply when omitted",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write the full result YAML",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the engine configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
