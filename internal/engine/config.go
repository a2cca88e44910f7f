package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/quantfolio/walkforward/internal/engine/cost"
	"github.com/quantfolio/walkforward/pkg/errors"
)

// WalkForwardConfig controls the rolling window pair of the orchestrator.
type WalkForwardConfig struct {
	// OptimizationWindow is the in-sample window length in bars.
	OptimizationWindow int `yaml:"optimization_window" json:"optimization_window" validate:"gt=0" jsonschema:"title=Optimization Window,description=In-sample window length in bars,minimum=1"`
	// ValidationWindow is the out-of-sample window length in bars.
	ValidationWindow int `yaml:"validation_window" json:"validation_window" validate:"gt=0" jsonschema:"title=Validation Window,description=Out-of-sample window length in bars,minimum=1"`
	// StepSize is the number of bars the window pair advances per iteration.
	StepSize int `yaml:"step_size" json:"step_size" validate:"gt=0" jsonschema:"title=Step Size,description=Window advance per iteration in bars,minimum=1"`
	// ReoptimizationFrequency tags how often parameters are re-fit, in bars.
	ReoptimizationFrequency int `yaml:"reoptimization_frequency" json:"reoptimization_frequency" jsonschema:"title=Reoptimization Frequency,description=How often parameters are re-fit in bars"`
}

// BacktestConfig is the engine configuration. Defaults are filled in by an
// external validation layer; Validate runs the engine-side checks.
type BacktestConfig struct {
	// StartDate optionally restricts the price history start.
	StartDate optional.Option[time.Time] `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=Optional start date for the backtest period"`
	// EndDate optionally restricts the price history end.
	EndDate optional.Option[time.Time] `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Optional end date for the backtest period"`
	// InitialCapital is the starting capital in USD.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	// CommissionRate is the commission charged per execution as a fraction of notional.
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate" validate:"gte=0,lte=0.05" jsonschema:"title=Commission Rate,description=Commission as a fraction of executed notional"`
	// SlippageRate is the slippage cost per execution as a fraction of notional.
	SlippageRate float64 `yaml:"slippage_rate" json:"slippage_rate" validate:"gte=0,lte=0.05" jsonschema:"title=Slippage Rate,description=Slippage as a fraction of executed notional"`
	// MaxPositionSize is the maximum position as a fraction of capital.
	MaxPositionSize float64 `yaml:"max_position_size" json:"max_position_size" validate:"gt=0,lte=1" jsonschema:"title=Max Position Size,description=Maximum position as a fraction of capital"`
	// RiskFreeRate is the annual risk-free rate used for excess returns.
	RiskFreeRate float64 `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0" jsonschema:"title=Risk Free Rate,description=Annual risk-free rate"`
	// CostModel selects the transaction cost model.
	CostModel cost.ModelName `yaml:"cost_model" json:"cost_model" jsonschema:"title=Cost Model,description=The transaction cost model to use"`
	// SortinoCompat restores the legacy Sortino approximation (Sharpe * 1.2)
	// for regression comparison against historical results.
	SortinoCompat bool `yaml:"sortino_compat" json:"sortino_compat" jsonschema:"title=Sortino Compatibility,description=Use the legacy Sharpe-based Sortino approximation"`
	// MaxTrialParallelism bounds concurrent grid-search trials. Zero means GOMAXPROCS.
	MaxTrialParallelism int `yaml:"max_trial_parallelism" json:"max_trial_parallelism" validate:"gte=0" jsonschema:"title=Max Trial Parallelism,description=Upper bound on concurrent grid-search trials"`
	// WalkForward is the rolling window configuration.
	WalkForward WalkForwardConfig `yaml:"walk_forward" json:"walk_forward"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestConfig
func (c *BacktestConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type Config struct {
		StartDate           *time.Time        `yaml:"start_date"`
		EndDate             *time.Time        `yaml:"end_date"`
		InitialCapital      float64           `yaml:"initial_capital"`
		CommissionRate      float64           `yaml:"commission_rate"`
		SlippageRate        float64           `yaml:"slippage_rate"`
		MaxPositionSize     float64           `yaml:"max_position_size"`
		RiskFreeRate        float64           `yaml:"risk_free_rate"`
		CostModel           cost.ModelName    `yaml:"cost_model"`
		SortinoCompat       bool              `yaml:"sortino_compat"`
		MaxTrialParallelism int               `yaml:"max_trial_parallelism"`
		WalkForward         WalkForwardConfig `yaml:"walk_forward"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCapital = config.InitialCapital
	c.CommissionRate = config.CommissionRate
	c.SlippageRate = config.SlippageRate
	c.MaxPositionSize = config.MaxPositionSize
	c.RiskFreeRate = config.RiskFreeRate
	c.CostModel = config.CostModel
	c.SortinoCompat = config.SortinoCompat
	c.MaxTrialParallelism = config.MaxTrialParallelism
	c.WalkForward = config.WalkForward

	if config.StartDate != nil {
		c.StartDate = optional.Some(*config.StartDate)
	}

	if config.EndDate != nil {
		c.EndDate = optional.Some(*config.EndDate)
	}

	return nil
}

// Validate checks field-level constraints via validator tags.
func (c *BacktestConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	return nil
}

// ValidateWindows enforces the run-level invariant that at least one full
// window pair fits into the available bars. Violations are fatal: the engine
// refuses to run rather than silently truncate.
func (c *BacktestConfig) ValidateWindows(totalBars int) error {
	wf := c.WalkForward
	if required := wf.OptimizationWindow + wf.ValidationWindow; required > totalBars {
		return errors.Wrapf(errors.ErrCodeWindowTooLarge,
			errors.NewInsufficientDataErrorf(required, totalBars, "",
				"optimization window (%d) + validation window (%d) exceeds available bars (%d)",
				wf.OptimizationWindow, wf.ValidationWindow, totalBars),
			"insufficient data for a single walk-forward window")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestConfig
func (c *BacktestConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "cost.ModelName") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: cost.AllModels,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "walk-forward-backtest-config"
	schema.Description = "Configuration schema for the walk-forward backtest engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestConfig
func (c *BacktestConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns a BacktestConfig with the engine defaults.
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		StartDate:       optional.None[time.Time](),
		EndDate:         optional.None[time.Time](),
		InitialCapital:  100000,
		CommissionRate:  0.001,
		SlippageRate:    0.0005,
		MaxPositionSize: 0.95,
		RiskFreeRate:    0.02,
		CostModel:       cost.ModelNameRate,
		SortinoCompat:   false,
		WalkForward: WalkForwardConfig{
			OptimizationWindow:      252,
			ValidationWindow:        63,
			StepSize:                21,
			ReoptimizationFrequency: 21,
		},
	}
}

// TestConfig returns a small config suitable for unit tests.
func TestConfig() BacktestConfig {
	config := DefaultConfig()
	config.InitialCapital = 10000
	config.CostModel = cost.ModelNameZero
	config.WalkForward = WalkForwardConfig{
		OptimizationWindow:      60,
		ValidationWindow:        20,
		StepSize:                20,
		ReoptimizationFrequency: 20,
	}

	return config
}
