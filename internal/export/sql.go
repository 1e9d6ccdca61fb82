package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/config"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

type dialect struct {
	timestamp string
	numeric   string
	document  string
	boolean   string
	dollar    bool
}

var dialects = map[string]dialect{
	config.DriverSQLite:   {timestamp: "TEXT", numeric: "NUMERIC", document: "TEXT", boolean: "INTEGER"},
	config.DriverPostgres: {timestamp: "TIMESTAMPTZ", numeric: "NUMERIC(14,2)", document: "JSONB", boolean: "BOOLEAN", dollar: true},
}

// bind rewrites ? placeholders to $n for dialects that need it.
func (d dialect) bind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE categories (
			category_id   TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			subcategories ` + d.document + ` NOT NULL
		)`,
		`CREATE TABLE products (
			product_id    TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			category_id   TEXT NOT NULL,
			base_price    ` + d.numeric + ` NOT NULL,
			current_stock INTEGER NOT NULL,
			is_active     ` + d.boolean + ` NOT NULL,
			price_history ` + d.document + ` NOT NULL,
			creation_date ` + d.timestamp + ` NOT NULL
		)`,
		`CREATE INDEX idx_products_category ON products(category_id)`,
		`CREATE TABLE users (
			user_id           TEXT PRIMARY KEY,
			city              TEXT NOT NULL,
			state             TEXT NOT NULL,
			country           TEXT NOT NULL,
			registration_date ` + d.timestamp + ` NOT NULL,
			last_active       ` + d.timestamp + ` NOT NULL
		)`,
		`CREATE TABLE sessions (
			session_id       TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			start_time       ` + d.timestamp + ` NOT NULL,
			end_time         ` + d.timestamp + ` NOT NULL,
			duration_seconds INTEGER NOT NULL,
			page_views       ` + d.document + ` NOT NULL
		)`,
		`CREATE INDEX idx_sessions_user ON sessions(user_id)`,
		`CREATE TABLE transactions (
			transaction_id TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			created_at     ` + d.timestamp + ` NOT NULL,
			total          ` + d.numeric + ` NOT NULL,
			payment_method TEXT NOT NULL,
			status         TEXT NOT NULL
		)`,
		`CREATE INDEX idx_transactions_user ON transactions(user_id)`,
		`CREATE INDEX idx_transactions_created ON transactions(created_at)`,
		`CREATE TABLE transaction_items (
			transaction_id TEXT NOT NULL,
			line           INTEGER NOT NULL,
			product_id     TEXT NOT NULL,
			quantity       INTEGER NOT NULL,
			unit_price     ` + d.numeric + ` NOT NULL,
			subtotal       ` + d.numeric + ` NOT NULL,
			fulfilled      ` + d.boolean + ` NOT NULL,
			PRIMARY KEY (transaction_id, line)
		)`,
	}
}

var tables = []string{"transaction_items", "transactions", "sessions", "users", "products", "categories"}

// SQLExporter loads a dataset into SQLite or PostgreSQL, replacing any
// tables from a previous run.
type SQLExporter struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLExporter opens the database behind dsn with driver (config.DriverSQLite
// or config.DriverPostgres).
func NewSQLExporter(driver, dsn string) (*SQLExporter, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, errors.Newf("unsupported sql driver %q", driver)
	}
	if driver == config.DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_time_format=sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &SQLExporter{db: db, dialect: d}, nil
}

// Close closes the database connection.
func (e *SQLExporter) Close() error { return e.db.Close() }

// Export recreates the tables and inserts ds in one transaction.
func (e *SQLExporter) Export(ctx context.Context, ds model.Dataset) (err error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin export")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return errors.Wrapf(err, "drop %s", t)
		}
	}
	for _, stmt := range e.dialect.schema() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}

	steps := []func(context.Context, *sql.Tx, model.Dataset) error{
		e.insertCategories,
		e.insertProducts,
		e.insertUsers,
		e.insertSessions,
		e.insertTransactions,
	}
	for _, step := range steps {
		if err := step(ctx, tx, ds); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit export")
	}
	return nil
}

// insert prepares query once and runs it with the arguments of row(i) for
// every i below n.
func (e *SQLExporter) insert(ctx context.Context, tx *sql.Tx, table, query string, n int, row func(i int) ([]any, error)) error {
	stmt, err := tx.PrepareContext(ctx, e.dialect.bind(query))
	if err != nil {
		return errors.Wrapf(err, "prepare insert into %s", table)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		args, err := row(i)
		if err != nil {
			return errors.Wrapf(err, "encode %s row %d", table, i)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "insert into %s row %d", table, i)
		}
	}
	return nil
}

func document(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

func (e *SQLExporter) insertCategories(ctx context.Context, tx *sql.Tx, ds model.Dataset) error {
	return e.insert(ctx, tx, "categories",
		`INSERT INTO categories (category_id, name, subcategories) VALUES (?, ?, ?)`,
		len(ds.Categories), func(i int) ([]any, error) {
			c := ds.Categories[i]
			subs, err := document(nonNil(c.Subcategories))
			return []any{c.CategoryID, c.Name, subs}, err
		})
}

func (e *SQLExporter) insertProducts(ctx context.Context, tx *sql.Tx, ds model.Dataset) error {
	return e.insert(ctx, tx, "products",
		`INSERT INTO products (product_id, name, category_id, base_price, current_stock, is_active, price_history, creation_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		len(ds.Products), func(i int) ([]any, error) {
			p := ds.Products[i]
			history, err := document(nonNil(p.PriceHistory))
			return []any{p.ProductID, p.Name, p.CategoryID, p.BasePrice, p.CurrentStock, p.IsActive, history, p.CreationDate}, err
		})
}

func (e *SQLExporter) insertUsers(ctx context.Context, tx *sql.Tx, ds model.Dataset) error {
	return e.insert(ctx, tx, "users",
		`INSERT INTO users (user_id, city, state, country, registration_date, last_active) VALUES (?, ?, ?, ?, ?, ?)`,
		len(ds.Users), func(i int) ([]any, error) {
			u := ds.Users[i]
			return []any{u.UserID, u.GeoData.City, u.GeoData.State, u.GeoData.Country, u.RegistrationDate, u.LastActive}, nil
		})
}

func (e *SQLExporter) insertSessions(ctx context.Context, tx *sql.Tx, ds model.Dataset) error {
	return e.insert(ctx, tx, "sessions",
		`INSERT INTO sessions (session_id, user_id, start_time, end_time, duration_seconds, page_views) VALUES (?, ?, ?, ?, ?, ?)`,
		len(ds.Sessions), func(i int) ([]any, error) {
			s := ds.Sessions[i]
			views, err := document(nonNil(s.PageViews))
			return []any{s.SessionID, s.UserID, s.StartTime, s.EndTime, s.DurationSeconds, views}, err
		})
}

func (e *SQLExporter) insertTransactions(ctx context.Context, tx *sql.Tx, ds model.Dataset) error {
	err := e.insert(ctx, tx, "transactions",
		`INSERT INTO transactions (transaction_id, user_id, created_at, total, payment_method, status) VALUES (?, ?, ?, ?, ?, ?)`,
		len(ds.Transactions), func(i int) ([]any, error) {
			t := ds.Transactions[i]
			return []any{t.TransactionID, t.UserID, t.Timestamp, t.Total, t.PaymentMethod, string(t.Status)}, nil
		})
	if err != nil {
		return err
	}

	type line struct {
		txID string
		n    int
		item model.TransactionItem
	}
	var lines []line
	for _, t := range ds.Transactions {
		for n, it := range t.Items {
			lines = append(lines, line{txID: t.TransactionID, n: n, item: it})
		}
	}
	return e.insert(ctx, tx, "transaction_items",
		`INSERT INTO transaction_items (transaction_id, line, product_id, quantity, unit_price, subtotal, fulfilled)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(lines), func(i int) ([]any, error) {
			l := lines[i]
			return []any{l.txID, l.n, l.item.ProductID, l.item.Quantity, l.item.UnitPrice, l.item.Subtotal, l.item.Fulfilled}, nil
		})
}
