package simulate

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

// Summary describes the transaction log of a dataset.
type Summary struct {
	ByStatus    map[model.TransactionStatus]int
	UnitsSold   int64
	Revenue     decimal.Decimal
	ItemsFailed int
	OutOfStock  int
	PageViews   int
	Conversions int
}

// Summarize counts transaction outcomes and session conversions (sessions
// that reached the confirmation page).
func Summarize(ds model.Dataset) Summary {
	s := Summary{ByStatus: map[model.TransactionStatus]int{}, Revenue: decimal.Zero}
	for _, tx := range ds.Transactions {
		s.ByStatus[tx.Status]++
		for _, it := range tx.Items {
			if it.Fulfilled {
				s.UnitsSold += it.Quantity
				s.Revenue = s.Revenue.Add(it.Subtotal)
			} else {
				s.ItemsFailed++
			}
		}
	}
	for _, p := range ds.Products {
		if p.CurrentStock == 0 {
			s.OutOfStock++
		}
	}
	for _, sess := range ds.Sessions {
		s.PageViews += len(sess.PageViews)
		for _, pv := range sess.PageViews {
			if pv.PageType == model.PageConfirmation {
				s.Conversions++
				break
			}
		}
	}
	return s
}
