package simulate

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/catalog"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/navigation"
)

func testConfig() config.Config {
	c := config.Default()
	c.NumUsers = 50
	c.NumProducts = 40
	c.NumCategories = 5
	c.NumSessions = 300
	c.NumTxns = 400
	c.TimespanDays = 30
	c.ReferenceTime = "2026-06-01T00:00:00Z"
	c.ProgressEvery = 0
	return c
}

func TestGenerateSingleProductScenario(t *testing.T) {
	cfg := testConfig()
	cfg.NumProducts = 1
	cfg.NumSessions = 0
	cfg.NumTxns = 10
	cfg.Stock.Min, cfg.Stock.Max = 5, 5
	cfg.Transaction.MaxItems = 1
	cfg.Transaction.MinQuantity, cfg.Transaction.MaxQuantity = 1, 1

	ds, res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, ds.Transactions, 10)

	sum := Summarize(ds)
	assert.Equal(t, 5, sum.ByStatus[model.StatusCompleted])
	assert.Equal(t, 5, sum.ByStatus[model.StatusFailed])
	assert.Equal(t, int64(5), sum.UnitsSold)
	require.Len(t, ds.Products, 1)
	assert.Equal(t, int64(0), ds.Products[0].CurrentStock)
	assert.Equal(t, 1, sum.OutOfStock)
}

func TestGenerateSkipPolicyEndsEarly(t *testing.T) {
	cfg := testConfig()
	cfg.NumProducts = 1
	cfg.NumSessions = 0
	cfg.NumTxns = 10
	cfg.Stock.Min, cfg.Stock.Max = 5, 5
	cfg.Transaction.MaxItems = 1
	cfg.Transaction.MinQuantity, cfg.Transaction.MaxQuantity = 1, 1
	cfg.Transaction.FailurePolicy = config.PolicySkip

	ds, res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, StateDoneEarly, res.State)
	assert.Equal(t, 20, res.Iterations)
	assert.Len(t, ds.Transactions, 5)
	assert.ErrorIs(t, res.Err(), ErrIterationCapReached)
}

func TestGenerateDeterministic(t *testing.T) {
	a, _, err := Generate(context.Background(), testConfig())
	require.NoError(t, err)
	b, _, err := Generate(context.Background(), testConfig())
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("datasets differ between runs (-a +b):\n%s", diff)
	}
}

func TestGenerateSessionsAreValidWalks(t *testing.T) {
	ds, _, err := Generate(context.Background(), testConfig())
	require.NoError(t, err)
	nav := navigation.Default()
	for _, s := range ds.Sessions {
		pages := make([]model.PageType, len(s.PageViews))
		for i, pv := range s.PageViews {
			pages[i] = pv.PageType
		}
		require.True(t, nav.ValidWalk(pages), "session %s: %v", s.SessionID, pages)
	}
}

// With several workers debiting one ledger, every unit sold is accounted
// for by the final stock.
func TestGenerateParallelConservesStock(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 6
	cfg.NumTxns = 3000
	cfg.Stock.Min, cfg.Stock.Max = 0, 40

	ds, res, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, ds.Sessions, cfg.NumSessions)
	require.Len(t, ds.Transactions, cfg.NumTxns)

	now, _ := cfg.Now()
	initial := map[string]int64{}
	for _, p := range catalog.Generate(cfg, now).Products {
		initial[p.ProductID] = p.CurrentStock
	}
	sold := map[string]int64{}
	for _, tx := range ds.Transactions {
		for _, it := range tx.Items {
			if it.Fulfilled {
				sold[it.ProductID] += it.Quantity
			}
		}
	}
	for _, p := range ds.Products {
		require.GreaterOrEqual(t, p.CurrentStock, int64(0))
		assert.Equal(t, initial[p.ProductID], p.CurrentStock+sold[p.ProductID], "product %s", p.ProductID)
	}

	// Catalog records do not depend on the worker count.
	cfg.Workers = 1
	single, _, err := Generate(context.Background(), cfg)
	require.NoError(t, err)
	if diff := cmp.Diff(single.Users, ds.Users); diff != "" {
		t.Fatalf("users depend on worker count:\n%s", diff)
	}
	if diff := cmp.Diff(single.Categories, ds.Categories); diff != "" {
		t.Fatalf("categories depend on worker count:\n%s", diff)
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.NumProducts = 0
	_, _, err := Generate(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalid))
}
