package simulate

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/catalog"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/navigation"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/obs"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/store"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/synth"
)

// Generate runs one full generation pass: catalog, ledger, sessions and
// transactions. Products in the returned dataset carry the final ledger
// stock. A DONE_EARLY run returns the partial dataset and a nil error; the
// caller decides how to surface Result.Err.
func Generate(ctx context.Context, cfg config.Config) (model.Dataset, Result, error) {
	if err := cfg.Validate(); err != nil {
		return model.Dataset{}, Result{}, err
	}
	now, err := cfg.Now()
	if err != nil {
		return model.Dataset{}, Result{}, err
	}

	started := time.Now()
	cat := catalog.Generate(cfg, now)
	obs.Logger.Info("catalog_generated",
		"categories", len(cat.Categories),
		"products", len(cat.Products),
		"users", len(cat.Users),
	)

	ledger := store.NewLedger(cat.Products)
	window := synth.NewWindow(now, cfg.Timespan())
	users := cat.UserIDs()
	sessions := synth.NewSessionSynthesizer(navigation.Default(), users, window, cfg.Session)
	txns := synth.NewTransactionSynthesizer(ledger, users, window, cfg.Transaction)

	pool := NewPool(cfg.Workers, cfg.Seed, sessions, txns, cfg.ProgressEvery)
	res, err := pool.Run(ctx, Targets{Sessions: cfg.NumSessions, Transactions: cfg.NumTxns})
	if err != nil {
		return model.Dataset{}, res, errors.Wrap(err, "generation interrupted")
	}

	ds := model.Dataset{
		Categories:   cat.Categories,
		Products:     ledger.Snapshot(),
		Users:        cat.Users,
		Sessions:     res.Sessions,
		Transactions: res.Transactions,
	}
	obs.Logger.Info("generation_finished",
		"state", string(res.State),
		"iterations", res.Iterations,
		"sessions", len(ds.Sessions),
		"transactions", len(ds.Transactions),
		"elapsed", time.Since(started).String(),
	)
	return ds, res, nil
}
