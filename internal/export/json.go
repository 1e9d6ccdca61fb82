// Package export writes a generated dataset to JSON files and, optionally,
// to a SQL database.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
)

// File names of the JSON artifacts.
const (
	UsersFile        = "users.json"
	ProductsFile     = "products.json"
	CategoriesFile   = "categories.json"
	TransactionsFile = "transactions.json"
	sessionsPattern  = "sessions_%d.json"
)

// SessionsFile returns the name of the n-th sessions chunk.
func SessionsFile(n int) string { return fmt.Sprintf(sessionsPattern, n) }

// JSONWriter writes one pretty-printed JSON array per record kind.
type JSONWriter struct {
	dir             string
	sessionsPerFile int
}

// NewJSONWriter writes into dir. sessionsPerFile <= 0 puts every session in
// sessions_0.json.
func NewJSONWriter(dir string, sessionsPerFile int) *JSONWriter {
	return &JSONWriter{dir: dir, sessionsPerFile: sessionsPerFile}
}

// Write sorts the slices of ds in place and writes every file, returning
// the paths written.
func (w *JSONWriter) Write(ds model.Dataset) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", w.dir)
	}
	Sort(&ds)

	var written []string
	put := func(name string, v any) error {
		path := filepath.Join(w.dir, name)
		if err := writeJSON(path, v); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := put(UsersFile, nonNil(ds.Users)); err != nil {
		return written, err
	}
	if err := put(ProductsFile, nonNil(ds.Products)); err != nil {
		return written, err
	}
	if err := put(CategoriesFile, nonNil(ds.Categories)); err != nil {
		return written, err
	}
	if err := put(TransactionsFile, nonNil(ds.Transactions)); err != nil {
		return written, err
	}
	for i, chunk := range chunk(ds.Sessions, w.sessionsPerFile) {
		if err := put(SessionsFile(i), nonNil(chunk)); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Sort orders catalog records by id and sessions and transactions by time,
// then id.
func Sort(ds *model.Dataset) {
	slices.SortFunc(ds.Categories, func(a, b model.Category) int { return strings.Compare(a.CategoryID, b.CategoryID) })
	slices.SortFunc(ds.Products, func(a, b model.Product) int { return strings.Compare(a.ProductID, b.ProductID) })
	slices.SortFunc(ds.Users, func(a, b model.User) int { return strings.Compare(a.UserID, b.UserID) })
	slices.SortFunc(ds.Sessions, func(a, b model.Session) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return strings.Compare(a.SessionID, b.SessionID)
	})
	slices.SortFunc(ds.Transactions, func(a, b model.Transaction) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.TransactionID, b.TransactionID)
	})
}

// chunk splits sessions into groups of size n. It always returns at least
// one (possibly empty) group.
func chunk(sessions []model.Session, n int) [][]model.Session {
	if n <= 0 || len(sessions) <= n {
		return [][]model.Session{sessions}
	}
	var out [][]model.Session
	for start := 0; start < len(sessions); start += n {
		out = append(out, sessions[start:min(start+n, len(sessions))])
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
