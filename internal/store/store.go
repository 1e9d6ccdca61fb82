// Package store holds the inventory ledger: the single source of truth for
// product stock during a generation run.
package store

import (
	"slices"
	"sync"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

type productState struct {
	mu sync.Mutex
	p  model.Product
}

// Ledger serializes stock reads and debits per product. The product set is
// fixed at construction, so the map itself is read-only and only the
// per-product state is locked.
type Ledger struct {
	m      map[string]*productState
	ids    []string
	active []string
}

// NewLedger copies products into a new ledger. Negative stock is clamped to 0.
func NewLedger(products []model.Product) *Ledger {
	l := &Ledger{m: make(map[string]*productState, len(products))}
	for _, p := range products {
		if p.ProductID == "" {
			continue
		}
		if _, dup := l.m[p.ProductID]; dup {
			continue
		}
		p.PriceHistory = slices.Clone(p.PriceHistory)
		if p.CurrentStock < 0 {
			p.CurrentStock = 0
		}
		l.m[p.ProductID] = &productState{p: p}
		l.ids = append(l.ids, p.ProductID)
		if p.IsActive {
			l.active = append(l.active, p.ProductID)
		}
	}
	slices.Sort(l.ids)
	slices.Sort(l.active)
	return l
}

// Get returns a snapshot of the product at call time.
func (l *Ledger) Get(id string) (model.Product, bool) {
	st, ok := l.m[id]
	if !ok {
		return model.Product{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	p := st.p
	p.PriceHistory = slices.Clone(st.p.PriceHistory)
	return p, true
}

// Stock returns the current stock of a product.
func (l *Ledger) Stock(id string) (int64, bool) {
	st, ok := l.m[id]
	if !ok {
		return 0, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.p.CurrentStock, true
}

// TryDebit decrements the stock of id by quantity if enough is available.
// Unknown products, non-positive quantities and insufficient stock return
// false without mutating anything.
func (l *Ledger) TryDebit(id string, quantity int64) bool {
	if quantity <= 0 {
		return false
	}
	st, ok := l.m[id]
	if !ok {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.p.CurrentStock < quantity {
		return false
	}
	st.p.CurrentStock -= quantity
	return true
}

// IDs returns all product ids in ascending order.
func (l *Ledger) IDs() []string { return slices.Clone(l.ids) }

// ActiveIDs returns the ids of active products in ascending order.
func (l *Ledger) ActiveIDs() []string { return slices.Clone(l.active) }

// Len returns the number of products.
func (l *Ledger) Len() int { return len(l.ids) }

// Snapshot returns every product, ordered by id.
func (l *Ledger) Snapshot() []model.Product {
	out := make([]model.Product, 0, len(l.ids))
	for _, id := range l.ids {
		p, _ := l.Get(id)
		out = append(out, p)
	}
	return out
}
