// Package config provides generation parameters for the dataset simulator.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Failure policies for transactions whose debits fail.
const (
	PolicyRecord    = "record"
	PolicySkip      = "skip"
	PolicyBackorder = "backorder"
)

// SQL export drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the generation sizes and knobs. Env names follow the
// historical NUM_* constants.
type Config struct {
	Seed          uint64 `yaml:"seed" envconfig:"SEED"`
	NumUsers      int    `yaml:"num_users" envconfig:"NUM_USERS"`
	NumProducts   int    `yaml:"num_products" envconfig:"NUM_PRODUCTS"`
	NumCategories int    `yaml:"num_categories" envconfig:"NUM_CATEGORIES"`
	NumSessions   int    `yaml:"num_sessions" envconfig:"NUM_SESSIONS"`
	NumTxns       int    `yaml:"num_transactions" envconfig:"NUM_TRANSACTIONS"`
	TimespanDays  int    `yaml:"timespan_days" envconfig:"TIMESPAN_DAYS"`
	// ReferenceTime anchors "now" (RFC3339). Empty means today 00:00 UTC.
	ReferenceTime string `yaml:"reference_time" envconfig:"REFERENCE_TIME"`
	Workers       int    `yaml:"workers" envconfig:"WORKERS"`
	ProgressEvery int    `yaml:"progress_every" envconfig:"PROGRESS_EVERY"`

	Session     SessionConfig     `yaml:"session"`
	Transaction TransactionConfig `yaml:"transaction"`
	Stock       StockConfig       `yaml:"stock"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
}

// SessionConfig bounds the session synthesizer. Durations are in seconds.
type SessionConfig struct {
	MinSteps    int `yaml:"min_steps" envconfig:"SESSION_MIN_STEPS"`
	MaxSteps    int `yaml:"max_steps" envconfig:"SESSION_MAX_STEPS"`
	MinDuration int `yaml:"min_duration" envconfig:"SESSION_MIN_DURATION"`
	MaxDuration int `yaml:"max_duration" envconfig:"SESSION_MAX_DURATION"`
	PageGapMin  int `yaml:"page_gap_min" envconfig:"PAGE_GAP_MIN"`
	PageGapMax  int `yaml:"page_gap_max" envconfig:"PAGE_GAP_MAX"`
}

// TransactionConfig bounds the transaction synthesizer.
type TransactionConfig struct {
	MaxItems      int    `yaml:"max_items" envconfig:"TXN_MAX_ITEMS"`
	MinQuantity   int64  `yaml:"min_quantity" envconfig:"TXN_MIN_QUANTITY"`
	MaxQuantity   int64  `yaml:"max_quantity" envconfig:"TXN_MAX_QUANTITY"`
	FailurePolicy string `yaml:"failure_policy" envconfig:"FAILURE_POLICY"`
}

// StockConfig bounds the initial per-product stock.
type StockConfig struct {
	Min int64 `yaml:"min" envconfig:"STOCK_MIN"`
	Max int64 `yaml:"max" envconfig:"STOCK_MAX"`
}

// OutputConfig controls where the dataset goes.
type OutputConfig struct {
	Dir             string `yaml:"dir" envconfig:"OUTPUT_DIR"`
	SessionsPerFile int    `yaml:"sessions_per_file" envconfig:"SESSIONS_PER_FILE"`
	SQLDriver       string `yaml:"sql_driver" envconfig:"SQL_DRIVER"`
	SQLDSN          string `yaml:"sql_dsn" envconfig:"SQL_DSN"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Default returns the configuration of the reference dataset.
func Default() Config {
	return Config{
		Seed:          42,
		NumUsers:      2000,
		NumProducts:   1000,
		NumCategories: 15,
		NumSessions:   15000,
		NumTxns:       20000,
		TimespanDays:  90,
		Workers:       1,
		ProgressEvery: 5000,
		Session: SessionConfig{
			MinSteps:    3,
			MaxSteps:    15,
			MinDuration: 30,
			MaxDuration: 3600,
			PageGapMin:  10,
			PageGapMax:  10,
		},
		Transaction: TransactionConfig{
			MaxItems:      3,
			MinQuantity:   1,
			MaxQuantity:   5,
			FailurePolicy: PolicyRecord,
		},
		Stock:  StockConfig{Min: 20, Max: 1000},
		Output: OutputConfig{Dir: "."},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load collects configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "process env config"), ErrInvalid)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Mark(errors.Wrapf(err, "parse config file %s", path), ErrInvalid)
	}
	return nil
}

// Now returns the anchor of the generation window.
func (c Config) Now() (time.Time, error) {
	if c.ReferenceTime == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, c.ReferenceTime)
	if err != nil {
		return time.Time{}, errors.Mark(errors.Wrapf(err, "reference_time %q", c.ReferenceTime), ErrInvalid)
	}
	return t.UTC(), nil
}

// Timespan is the width of the session and transaction window.
func (c Config) Timespan() time.Duration {
	return time.Duration(c.TimespanDays) * 24 * time.Hour
}

// IterationCap bounds the driver loop.
func (c Config) IterationCap() int {
	return 2 * (c.NumSessions + c.NumTxns)
}

// Validate fails fast on nonsensical sizes. Every returned error is marked
// with ErrInvalid.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = errors.CombineErrors(err, errors.Newf(format, args...))
		}
	}
	check(c.NumUsers > 0, "num_users must be > 0, got %d", c.NumUsers)
	check(c.NumProducts > 0, "num_products must be > 0, got %d", c.NumProducts)
	check(c.NumCategories > 0, "num_categories must be > 0, got %d", c.NumCategories)
	check(c.NumSessions >= 0, "num_sessions must be >= 0, got %d", c.NumSessions)
	check(c.NumTxns >= 0, "num_transactions must be >= 0, got %d", c.NumTxns)
	check(c.NumSessions+c.NumTxns > 0, "nothing to generate: num_sessions and num_transactions are both 0")
	check(c.TimespanDays > 0, "timespan_days must be > 0, got %d", c.TimespanDays)
	check(c.Workers >= 1, "workers must be >= 1, got %d", c.Workers)
	check(c.ProgressEvery >= 0, "progress_every must be >= 0, got %d", c.ProgressEvery)

	s := c.Session
	check(s.MinSteps >= 1 && s.MinSteps <= s.MaxSteps, "session steps must satisfy 1 <= min <= max, got %d..%d", s.MinSteps, s.MaxSteps)
	check(s.MinDuration >= 0 && s.MinDuration <= s.MaxDuration, "session duration must satisfy 0 <= min <= max, got %d..%d", s.MinDuration, s.MaxDuration)
	check(s.PageGapMin >= 0 && s.PageGapMin <= s.PageGapMax, "page gap must satisfy 0 <= min <= max, got %d..%d", s.PageGapMin, s.PageGapMax)

	tx := c.Transaction
	check(tx.MaxItems >= 1, "transaction max_items must be >= 1, got %d", tx.MaxItems)
	check(tx.MinQuantity >= 1 && tx.MinQuantity <= tx.MaxQuantity, "transaction quantity must satisfy 1 <= min <= max, got %d..%d", tx.MinQuantity, tx.MaxQuantity)
	switch tx.FailurePolicy {
	case PolicyRecord, PolicySkip, PolicyBackorder:
	default:
		check(false, "unknown failure_policy %q", tx.FailurePolicy)
	}

	check(c.Stock.Min >= 0 && c.Stock.Min <= c.Stock.Max, "stock must satisfy 0 <= min <= max, got %d..%d", c.Stock.Min, c.Stock.Max)
	check(c.Output.Dir != "", "output dir must not be empty")
	check(c.Output.SessionsPerFile >= 0, "sessions_per_file must be >= 0, got %d", c.Output.SessionsPerFile)
	switch c.Output.SQLDriver {
	case "":
	case DriverSQLite, DriverPostgres:
		check(c.Output.SQLDSN != "", "sql_dsn is required with sql_driver %q", c.Output.SQLDriver)
	default:
		check(false, "unknown sql_driver %q", c.Output.SQLDriver)
	}
	if _, terr := c.Now(); terr != nil {
		err = errors.CombineErrors(err, terr)
	}

	if err != nil {
		return errors.Mark(err, ErrInvalid)
	}
	return nil
}
