package catalog

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func smallConfig() config.Config {
	c := config.Default()
	c.NumUsers = 40
	c.NumProducts = 60
	c.NumCategories = 4
	c.TimespanDays = 30
	return c
}

func TestGenerateShape(t *testing.T) {
	cfg := smallConfig()
	c := Generate(cfg, now)

	require.Len(t, c.Categories, 4)
	require.Len(t, c.Products, 60)
	require.Len(t, c.Users, 40)

	catIDs := map[string]bool{}
	for i, cat := range c.Categories {
		assert.Regexp(t, regexp.MustCompile(`^cat_\d{3}$`), cat.CategoryID)
		assert.NotEmpty(t, cat.Name, "category %d", i)
		assert.GreaterOrEqual(t, len(cat.Subcategories), 3)
		assert.LessOrEqual(t, len(cat.Subcategories), 5)
		for _, sub := range cat.Subcategories {
			assert.True(t, sub.ProfitMargin.GreaterThanOrEqual(decimal.RequireFromString("0.1")))
			assert.True(t, sub.ProfitMargin.LessThanOrEqual(decimal.RequireFromString("0.4")))
		}
		catIDs[cat.CategoryID] = true
	}

	created := now.Add(-2 * cfg.Timespan())
	for _, p := range c.Products {
		assert.Regexp(t, regexp.MustCompile(`^prod_\d{5}$`), p.ProductID)
		assert.True(t, catIDs[p.CategoryID], "dangling category %s", p.CategoryID)
		assert.True(t, p.BasePrice.GreaterThanOrEqual(decimal.NewFromInt(10)))
		assert.True(t, p.BasePrice.LessThanOrEqual(decimal.NewFromInt(500)))
		assert.GreaterOrEqual(t, p.CurrentStock, cfg.Stock.Min)
		assert.LessOrEqual(t, p.CurrentStock, cfg.Stock.Max)
		assert.Equal(t, created, p.CreationDate)
		require.NotEmpty(t, p.PriceHistory)
		assert.True(t, p.PriceHistory[0].Price.Equal(p.BasePrice))
		for i := 1; i < len(p.PriceHistory); i++ {
			assert.False(t, p.PriceHistory[i].Date.Before(p.PriceHistory[i-1].Date))
			assert.False(t, p.PriceHistory[i].Date.After(now))
		}
	}

	for _, u := range c.Users {
		assert.Regexp(t, regexp.MustCompile(`^user_\d{6}$`), u.UserID)
		assert.False(t, u.RegistrationDate.Before(now.Add(-270*24*time.Hour)))
		assert.False(t, u.RegistrationDate.After(now.Add(-90*24*time.Hour)))
		assert.False(t, u.LastActive.Before(u.RegistrationDate))
		assert.False(t, u.LastActive.After(now))
		assert.NotEmpty(t, u.GeoData.City)
	}
	assert.Len(t, c.UserIDs(), 40)
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(smallConfig(), now)
	b := Generate(smallConfig(), now)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("catalog differs between runs (-a +b):\n%s", diff)
	}

	other := smallConfig()
	other.Seed = 43
	c := Generate(other, now)
	assert.NotEqual(t, a.Users[0].GeoData, c.Users[0].GeoData)
}

func TestGenerateFixedStock(t *testing.T) {
	cfg := smallConfig()
	cfg.Stock.Min, cfg.Stock.Max = 5, 5
	for _, p := range Generate(cfg, now).Products {
		assert.Equal(t, int64(5), p.CurrentStock)
	}
}
