package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductPriceAt(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Product{
		BasePrice: decimal.RequireFromString("10.00"),
		PriceHistory: []PricePoint{
			{Price: decimal.RequireFromString("10.00"), Date: t0},
			{Price: decimal.RequireFromString("12.50"), Date: t0.Add(48 * time.Hour)},
			{Price: decimal.RequireFromString("9.99"), Date: t0.Add(96 * time.Hour)},
		},
	}

	assert.Equal(t, "10", p.PriceAt(t0.Add(-time.Hour)).String())
	assert.Equal(t, "10", p.PriceAt(t0.Add(time.Hour)).String())
	assert.Equal(t, "12.5", p.PriceAt(t0.Add(48*time.Hour)).String())
	assert.Equal(t, "12.5", p.PriceAt(t0.Add(95*time.Hour)).String())
	assert.Equal(t, "9.99", p.PriceAt(t0.Add(1000*time.Hour)).String())
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(TransactionItem{ProductID: "prod_00001", Quantity: 2, UnitPrice: decimal.RequireFromString("4.25"), Subtotal: decimal.RequireFromString("8.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"product_id":"prod_00001","quantity":2,"unit_price":4.25,"subtotal":8.5,"fulfilled":false}`, string(b))
}
