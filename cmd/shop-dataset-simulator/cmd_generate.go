package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/export"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/obs"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/simulate"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the dataset and write it to the output directory",
		Long: `Generate categories, products, users, sessions and transactions.

Writes users.json, products.json, categories.json, transactions.json and
sessions_N.json to the output directory, and optionally loads the same
records into SQLite or PostgreSQL.

Exits non-zero when the iteration cap is reached before the targets are
met; the partial dataset is still written.

Examples:
  shop-dataset-simulator generate --out ./data
  shop-dataset-simulator generate --seed 7 --workers 4 --sessions-per-file 5000
  shop-dataset-simulator generate --sql-driver sqlite --sql-dsn ./data/shop.db`,
		RunE: runGenerate,
	}
	addOverrideFlags(cmd.Flags())
	return cmd
}

func addOverrideFlags(fs *pflag.FlagSet) {
	fs.String("out", "", "output directory")
	fs.Uint64("seed", 0, "random seed")
	fs.Int("workers", 0, "number of generation workers")
	fs.Int("sessions-per-file", 0, "sessions per sessions_N.json file (0 = single file)")
	fs.String("sql-driver", "", "also export to SQL: sqlite or postgres")
	fs.String("sql-dsn", "", "SQL data source name")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or text")
}

// loadConfig layers changed flags over config.Load.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	fs := cmd.Flags()
	if fs.Changed("out") {
		cfg.Output.Dir, _ = fs.GetString("out")
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetUint64("seed")
	}
	if fs.Changed("workers") {
		cfg.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("sessions-per-file") {
		cfg.Output.SessionsPerFile, _ = fs.GetInt("sessions-per-file")
	}
	if fs.Changed("sql-driver") {
		cfg.Output.SQLDriver, _ = fs.GetString("sql-driver")
	}
	if fs.Changed("sql-dsn") {
		cfg.Output.SQLDSN, _ = fs.GetString("sql-dsn")
	}
	if fs.Changed("log-level") {
		cfg.Log.Level, _ = fs.GetString("log-level")
	}
	if fs.Changed("log-format") {
		cfg.Log.Format, _ = fs.GetString("log-format")
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	obs.InitLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return err
	}
	obs.Logger.Info("generation_started",
		"seed", cfg.Seed,
		"users", cfg.NumUsers,
		"products", cfg.NumProducts,
		"categories", cfg.NumCategories,
		"sessions_target", cfg.NumSessions,
		"transactions_target", cfg.NumTxns,
		"timespan_days", cfg.TimespanDays,
		"workers", cfg.Workers,
		"iteration_cap", cfg.IterationCap(),
	)

	ctx := cmd.Context()
	ds, res, err := simulate.Generate(ctx, cfg)
	if err != nil {
		return err
	}

	paths, err := export.NewJSONWriter(cfg.Output.Dir, cfg.Output.SessionsPerFile).Write(ds)
	if err != nil {
		return err
	}
	obs.Logger.Info("json_written", "dir", cfg.Output.Dir, "files", len(paths))

	if cfg.Output.SQLDriver != "" {
		exp, err := export.NewSQLExporter(cfg.Output.SQLDriver, cfg.Output.SQLDSN)
		if err != nil {
			return err
		}
		defer exp.Close()
		if err := exp.Export(ctx, ds); err != nil {
			return errors.Wrapf(err, "export to %s", cfg.Output.SQLDriver)
		}
		obs.Logger.Info("sql_exported", "driver", cfg.Output.SQLDriver)
	}

	sum := simulate.Summarize(ds)
	obs.Logger.Info("dataset_summary",
		"state", string(res.State),
		"completed", sum.ByStatus[model.StatusCompleted],
		"partial", sum.ByStatus[model.StatusPartial],
		"failed", sum.ByStatus[model.StatusFailed],
		"backordered", sum.ByStatus[model.StatusBackordered],
		"units_sold", sum.UnitsSold,
		"revenue", sum.Revenue.StringFixed(2),
		"out_of_stock_products", sum.OutOfStock,
		"page_views", sum.PageViews,
		"converted_sessions", sum.Conversions,
	)
	return res.Err()
}
