// Package catalog populates the categories, products and users that feed
// the session and transaction synthesizers.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

const (
	minSubcategories = 3
	maxSubcategories = 5
	activeShare      = 0.95
	maxPriceChanges  = 3
	priceSwing       = 0.15

	userRegisteredFrom = 270 * 24 * time.Hour
	userRegisteredTo   = 90 * 24 * time.Hour
)

var (
	minPrice   = decimal.NewFromInt(10)
	priceRange = 490.0
	floorPrice = decimal.NewFromInt(1)
)

// Catalog is the static part of the dataset.
type Catalog struct {
	Categories []model.Category
	Products   []model.Product
	Users      []model.User
}

// UserIDs returns the ids of all users in generation order.
func (c Catalog) UserIDs() []string {
	ids := make([]string, len(c.Users))
	for i, u := range c.Users {
		ids[i] = u.UserID
	}
	return ids
}

// Generate builds a catalog from cfg, anchored at now. Equal seeds produce
// equal catalogs.
func Generate(cfg config.Config, now time.Time) Catalog {
	fakeSeed := cfg.Seed
	if fakeSeed == 0 {
		// gofakeit treats 0 as "seed from the clock".
		fakeSeed = 0x5eed
	}
	g := &generator{
		cfg:   cfg,
		now:   now,
		fake:  gofakeit.New(fakeSeed),
		r:     rand.New(rand.NewPCG(cfg.Seed, 0xca7a)),
		title: cases.Title(language.English),
	}
	var c Catalog
	c.Categories = g.categories()
	c.Products = g.products(c.Categories)
	c.Users = g.users()
	return c
}

type generator struct {
	cfg   config.Config
	now   time.Time
	fake  *gofakeit.Faker
	r     *rand.Rand
	title cases.Caser
}

func (g *generator) categories() []model.Category {
	out := make([]model.Category, 0, g.cfg.NumCategories)
	for i := 0; i < g.cfg.NumCategories; i++ {
		c := model.Category{
			CategoryID: fmt.Sprintf("cat_%03d", i),
			Name:       g.fake.Company(),
		}
		n := minSubcategories + g.r.IntN(maxSubcategories-minSubcategories+1)
		for j := 0; j < n; j++ {
			margin := decimal.NewFromFloat(0.1 + g.r.Float64()*0.3).Round(2)
			c.Subcategories = append(c.Subcategories, model.Subcategory{
				SubcategoryID: fmt.Sprintf("sub_%03d_%02d", i, j),
				Name:          g.fake.BS(),
				ProfitMargin:  margin,
			})
		}
		out = append(out, c)
	}
	return out
}

func (g *generator) products(categories []model.Category) []model.Product {
	created := g.now.Add(-2 * g.cfg.Timespan())
	windowStart := g.now.Add(-g.cfg.Timespan())
	stockSpan := g.cfg.Stock.Max - g.cfg.Stock.Min + 1

	out := make([]model.Product, 0, g.cfg.NumProducts)
	for i := 0; i < g.cfg.NumProducts; i++ {
		cat := categories[g.r.IntN(len(categories))]
		price := minPrice.Add(decimal.NewFromFloat(g.r.Float64() * priceRange)).Round(2)
		out = append(out, model.Product{
			ProductID:    fmt.Sprintf("prod_%05d", i),
			Name:         g.title.String(g.fake.ProductName()),
			CategoryID:   cat.CategoryID,
			BasePrice:    price,
			CurrentStock: g.cfg.Stock.Min + g.r.Int64N(stockSpan),
			IsActive:     g.r.Float64() < activeShare,
			PriceHistory: g.priceHistory(price, created, windowStart),
			CreationDate: created,
		})
	}
	return out
}

// priceHistory starts at base on the creation date and adds up to
// maxPriceChanges swings at increasing dates inside the window.
func (g *generator) priceHistory(base decimal.Decimal, created, windowStart time.Time) []model.PricePoint {
	history := []model.PricePoint{{Price: base, Date: created}}
	n := g.r.IntN(maxPriceChanges + 1)
	if n == 0 {
		return history
	}
	span := g.now.Sub(windowStart)
	offsets := make([]time.Duration, n)
	for i := range offsets {
		offsets[i] = time.Duration(g.r.Int64N(int64(span/time.Second))) * time.Second
	}
	slices.Sort(offsets)

	price := base
	for _, off := range offsets {
		swing := decimal.NewFromFloat(1 + (g.r.Float64()*2-1)*priceSwing)
		price = price.Mul(swing).Round(2)
		if price.LessThan(floorPrice) {
			price = floorPrice
		}
		history = append(history, model.PricePoint{Price: price, Date: windowStart.Add(off)})
	}
	return history
}

func (g *generator) users() []model.User {
	out := make([]model.User, 0, g.cfg.NumUsers)
	for i := 0; i < g.cfg.NumUsers; i++ {
		reg := g.fake.DateRange(g.now.Add(-userRegisteredFrom), g.now.Add(-userRegisteredTo)).UTC().Truncate(time.Second)
		last := g.fake.DateRange(reg, g.now).UTC().Truncate(time.Second)
		out = append(out, model.User{
			UserID: fmt.Sprintf("user_%06d", i),
			GeoData: model.GeoData{
				City:    g.fake.City(),
				State:   g.fake.StateAbr(),
				Country: g.fake.CountryAbr(),
			},
			RegistrationDate: reg,
			LastActive:       last,
		})
	}
	return out
}
