package synth

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/store"
)

// PaymentMethods are sampled uniformly.
var PaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer", "gift_card"}

// TransactionSynthesizer builds purchases and debits them against the ledger.
type TransactionSynthesizer struct {
	ledger   *store.Ledger
	users    []string
	products []string
	window   Window
	cfg      config.TransactionConfig
}

// NewTransactionSynthesizer samples from the active products of ledger, or
// from all of them when none is active.
func NewTransactionSynthesizer(ledger *store.Ledger, users []string, window Window, cfg config.TransactionConfig) *TransactionSynthesizer {
	products := ledger.ActiveIDs()
	if len(products) == 0 {
		products = ledger.IDs()
	}
	return &TransactionSynthesizer{ledger: ledger, users: users, products: products, window: window, cfg: cfg}
}

// Synthesize builds one transaction. The boolean is false when there is
// nothing to sell or the failure policy drops the attempt; the driver
// counts either as no progress.
func (t *TransactionSynthesizer) Synthesize(st *Stream) (model.Transaction, bool) {
	if len(t.products) == 0 || len(t.users) == 0 {
		return model.Transaction{}, false
	}
	r := st.Rand
	user := t.users[r.IntN(len(t.users))]
	at := t.window.sample(r)
	n := between(r, 1, min(t.cfg.MaxItems, len(t.products)))

	items := make([]model.TransactionItem, 0, n)
	fulfilled := 0
	for _, idx := range distinct(st, len(t.products), n) {
		id := t.products[idx]
		p, _ := t.ledger.Get(id)
		qty := between64(r, t.cfg.MinQuantity, t.cfg.MaxQuantity)
		price := p.PriceAt(at)
		ok := t.ledger.TryDebit(id, qty)
		if ok {
			fulfilled++
		}
		items = append(items, model.TransactionItem{
			ProductID: id,
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt(qty)),
			Fulfilled: ok,
		})
	}
	payment := PaymentMethods[r.IntN(len(PaymentMethods))]

	status := statusOf(fulfilled, len(items))
	total := decimal.Zero
	for _, it := range items {
		if it.Fulfilled {
			total = total.Add(it.Subtotal)
		}
	}
	switch t.cfg.FailurePolicy {
	case config.PolicySkip:
		if fulfilled == 0 {
			return model.Transaction{}, false
		}
	case config.PolicyBackorder:
		if fulfilled < len(items) {
			status = model.StatusBackordered
			total = decimal.Zero
			for _, it := range items {
				total = total.Add(it.Subtotal)
			}
		}
	}

	return model.Transaction{
		TransactionID: st.IDs.NewTransactionID(),
		UserID:        user,
		Timestamp:     at,
		Items:         items,
		Total:         total,
		PaymentMethod: payment,
		Status:        status,
	}, true
}

func statusOf(fulfilled, total int) model.TransactionStatus {
	switch {
	case fulfilled == total:
		return model.StatusCompleted
	case fulfilled == 0:
		return model.StatusFailed
	default:
		return model.StatusPartial
	}
}

// distinct draws k distinct indexes from [0, n) with Floyd's algorithm.
func distinct(st *Stream, n, k int) []int {
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for j := n - k; j < n; j++ {
		x := st.Rand.IntN(j + 1)
		if _, dup := chosen[x]; dup {
			x = j
		}
		chosen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
