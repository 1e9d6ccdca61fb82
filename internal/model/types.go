// Package model defines the records emitted by the dataset simulator.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are analytics inputs; emit them as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PageType is a node of the navigation model.
type PageType string

const (
	PageHome            PageType = "home"
	PageSearch          PageType = "search"
	PageCategoryListing PageType = "category_listing"
	PageProductDetail   PageType = "product_detail"
	PageCart            PageType = "cart"
	PageCheckout        PageType = "checkout"
	PageConfirmation    PageType = "confirmation"
)

// Subcategory is a leaf of a Category.
type Subcategory struct {
	SubcategoryID string          `json:"subcategory_id"`
	Name          string          `json:"name"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
}

// Category groups products.
type Category struct {
	CategoryID    string        `json:"category_id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// PricePoint is one entry of a product's price history.
type PricePoint struct {
	Price decimal.Decimal `json:"price"`
	Date  time.Time       `json:"date"`
}

// Product is a catalog item. CurrentStock is owned by the inventory ledger.
type Product struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id"`
	BasePrice    decimal.Decimal `json:"base_price"`
	CurrentStock int64           `json:"current_stock"`
	IsActive     bool            `json:"is_active"`
	PriceHistory []PricePoint    `json:"price_history"`
	CreationDate time.Time       `json:"creation_date"`
}

// PriceAt returns the latest price in effect at t. Price history is ordered
// by date; before the first entry the base price applies.
func (p Product) PriceAt(t time.Time) decimal.Decimal {
	price := p.BasePrice
	for _, pp := range p.PriceHistory {
		if pp.Date.After(t) {
			break
		}
		price = pp.Price
	}
	return price
}

// GeoData locates a user.
type GeoData struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// User is a shopper.
type User struct {
	UserID           string    `json:"user_id"`
	GeoData          GeoData   `json:"geo_data"`
	RegistrationDate time.Time `json:"registration_date"`
	LastActive       time.Time `json:"last_active"`
}

// PageView is one step of a browsing session.
type PageView struct {
	Timestamp time.Time `json:"timestamp"`
	PageType  PageType  `json:"page_type"`
}

// Session is one simulated browsing visit.
type Session struct {
	SessionID       string     `json:"session_id"`
	UserID          string     `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	PageViews       []PageView `json:"page_views"`
}

// TransactionStatus reflects the outcome of the inventory debits.
type TransactionStatus string

const (
	StatusCompleted   TransactionStatus = "completed"
	StatusPartial     TransactionStatus = "partial"
	StatusFailed      TransactionStatus = "failed"
	StatusBackordered TransactionStatus = "backordered"
)

// TransactionItem is one product line of a transaction.
type TransactionItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Fulfilled bool            `json:"fulfilled"`
}

// Transaction is a purchase attempt recorded against the inventory ledger.
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	UserID        string            `json:"user_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Items         []TransactionItem `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod string            `json:"payment_method"`
	Status        TransactionStatus `json:"status"`
}

// Dataset is the full output of one generation run.
type Dataset struct {
	Categories   []Category
	Products     []Product
	Users        []User
	Sessions     []Session
	Transactions []Transaction
}
