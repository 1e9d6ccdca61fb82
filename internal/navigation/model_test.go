package navigation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

func TestDefaultTableCoversStates(t *testing.T) {
	table := DefaultTable()
	for _, s := range States {
		require.NotEmpty(t, table[s], "state %s", s)
		for _, tr := range table[s] {
			assert.Contains(t, States, tr.To)
		}
	}
}

func TestCheckoutSuccessors(t *testing.T) {
	m := Default()
	assert.True(t, m.Allowed(model.PageCheckout, model.PageConfirmation))
	assert.True(t, m.Allowed(model.PageCheckout, model.PageCart))
	assert.False(t, m.Allowed(model.PageCheckout, model.PageHome))
	assert.False(t, m.Allowed(model.PageHome, model.PageCheckout))
}

func TestUnknownStateFallsBackToHome(t *testing.T) {
	m := Default()
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		assert.Equal(t, model.PageHome, m.Next(r, "wishlist"))
	}
	assert.True(t, m.Allowed("wishlist", model.PageHome))
}

func TestEntryStates(t *testing.T) {
	m := Default()
	r := rand.New(rand.NewPCG(3, 4))
	seen := map[model.PageType]int{}
	for i := 0; i < 3000; i++ {
		p := m.Next(r, "")
		require.True(t, m.IsEntry(p), "entry %s", p)
		seen[p]++
	}
	assert.Len(t, seen, 3)
	for p, n := range seen {
		assert.InDelta(t, 1000, n, 150, "entry %s", p)
	}
}

func TestWalksAreValid(t *testing.T) {
	m := Default()
	r := rand.New(rand.NewPCG(5, 6))
	for w := 0; w < 500; w++ {
		walk := []model.PageType{m.Next(r, "")}
		for i := 1; i < 15; i++ {
			walk = append(walk, m.Next(r, walk[i-1]))
		}
		require.True(t, m.ValidWalk(walk), "walk %v", walk)
	}
	assert.False(t, m.ValidWalk([]model.PageType{model.PageCheckout}))
	assert.False(t, m.ValidWalk([]model.PageType{model.PageHome, model.PageCheckout}))
}

func TestWeightedSampling(t *testing.T) {
	table := Table{
		model.PageHome: {{To: model.PageSearch, Weight: 9}, {To: model.PageCart, Weight: 1}},
	}
	m, err := New(table, []model.PageType{model.PageHome})
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(7, 8))
	search := 0
	for i := 0; i < 10000; i++ {
		if m.Next(r, model.PageHome) == model.PageSearch {
			search++
		}
	}
	assert.InDelta(t, 9000, search, 300)
}

func TestNewRejectsBadTables(t *testing.T) {
	_, err := New(DefaultTable(), nil)
	assert.Error(t, err)

	_, err = New(Table{model.PageHome: nil}, DefaultEntry)
	assert.Error(t, err)

	_, err = New(Table{model.PageHome: {{To: model.PageCart, Weight: 0}}}, DefaultEntry)
	assert.Error(t, err)

	_, err = New(Table{model.PageHome: {{To: "", Weight: 1}}}, DefaultEntry)
	assert.Error(t, err)
}
