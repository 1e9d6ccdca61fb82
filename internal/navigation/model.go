// Package navigation implements the first-order Markov chain over page
// types that drives browsing walks.
package navigation

import (
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

// Transition is a weighted edge of the table.
type Transition struct {
	To     model.PageType
	Weight float64
}

// Table maps a page type to its successor candidates.
type Table map[model.PageType][]Transition

// States lists every page type in a fixed order.
var States = []model.PageType{
	model.PageHome,
	model.PageSearch,
	model.PageCategoryListing,
	model.PageProductDetail,
	model.PageCart,
	model.PageCheckout,
	model.PageConfirmation,
}

// DefaultEntry holds the page types a session may start on.
var DefaultEntry = []model.PageType{model.PageHome, model.PageSearch, model.PageCategoryListing}

// fallback is the successor of any state missing from the table.
var fallback = []Transition{{To: model.PageHome, Weight: 1}}

func uniform(to ...model.PageType) []Transition {
	ts := make([]Transition, len(to))
	for i, p := range to {
		ts[i] = Transition{To: p, Weight: 1}
	}
	return ts
}

// DefaultTable returns the reference transition table with uniform weights.
func DefaultTable() Table {
	return Table{
		model.PageHome:            uniform(model.PageCategoryListing, model.PageSearch, model.PageProductDetail),
		model.PageCategoryListing: uniform(model.PageProductDetail, model.PageSearch, model.PageHome),
		model.PageSearch:          uniform(model.PageProductDetail, model.PageCategoryListing, model.PageHome),
		model.PageProductDetail:   uniform(model.PageProductDetail, model.PageCart, model.PageHome),
		model.PageCart:            uniform(model.PageCheckout, model.PageProductDetail, model.PageHome),
		model.PageCheckout:        uniform(model.PageConfirmation, model.PageCart),
		model.PageConfirmation:    uniform(model.PageHome, model.PageProductDetail),
	}
}

// Model samples walks over a Table. It holds no mutable state and is safe
// for concurrent use; randomness comes from the caller.
type Model struct {
	table Table
	entry []model.PageType
}

// New validates table and entry and returns a Model.
func New(table Table, entry []model.PageType) (*Model, error) {
	if len(entry) == 0 {
		return nil, errors.New("navigation: no entry states")
	}
	for from, ts := range table {
		if len(ts) == 0 {
			return nil, errors.Newf("navigation: state %q has no successors", from)
		}
		for _, tr := range ts {
			if tr.To == "" {
				return nil, errors.Newf("navigation: state %q has an empty successor", from)
			}
			if !(tr.Weight > 0) {
				return nil, errors.Newf("navigation: %q -> %q has non-positive weight %v", from, tr.To, tr.Weight)
			}
		}
	}
	return &Model{table: table, entry: slices.Clone(entry)}, nil
}

// Default returns the Model over DefaultTable and DefaultEntry.
func Default() *Model {
	m, err := New(DefaultTable(), DefaultEntry)
	if err != nil {
		panic(err)
	}
	return m
}

// Next samples the page following prev. An empty prev samples an entry state
// uniformly.
func (m *Model) Next(r *rand.Rand, prev model.PageType) model.PageType {
	if prev == "" {
		return m.entry[r.IntN(len(m.entry))]
	}
	return pick(r, m.Successors(prev))
}

// Successors returns the candidates of from, falling back to home.
func (m *Model) Successors(from model.PageType) []Transition {
	if ts, ok := m.table[from]; ok {
		return ts
	}
	return fallback
}

// Allowed reports whether to may follow from.
func (m *Model) Allowed(from, to model.PageType) bool {
	for _, tr := range m.Successors(from) {
		if tr.To == to {
			return true
		}
	}
	return false
}

// IsEntry reports whether p may start a walk.
func (m *Model) IsEntry(p model.PageType) bool {
	return slices.Contains(m.entry, p)
}

// ValidWalk reports whether pages is a walk of the model from an entry state.
func (m *Model) ValidWalk(pages []model.PageType) bool {
	if len(pages) == 0 {
		return true
	}
	if !m.IsEntry(pages[0]) {
		return false
	}
	for i := 1; i < len(pages); i++ {
		if !m.Allowed(pages[i-1], pages[i]) {
			return false
		}
	}
	return true
}

func pick(r *rand.Rand, ts []Transition) model.PageType {
	if len(ts) == 1 {
		return ts[0].To
	}
	var total float64
	for _, tr := range ts {
		total += tr.Weight
	}
	x := r.Float64() * total
	for _, tr := range ts {
		if x < tr.Weight {
			return tr.To
		}
		x -= tr.Weight
	}
	return ts[len(ts)-1].To
}
