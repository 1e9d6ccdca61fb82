package idgen

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sessionRe     = regexp.MustCompile(`^sess_[0-9a-f]{10}$`)
	transactionRe = regexp.MustCompile(`^txn_[0-9a-f]{12}$`)
)

func TestFormat(t *testing.T) {
	g := New(42, 0)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, sessionRe, g.NewSessionID())
		assert.Regexp(t, transactionRe, g.NewTransactionID())
	}
}

func TestDeterministicPerStream(t *testing.T) {
	a, b, other := New(42, 3), New(42, 3), New(42, 4)
	for i := 0; i < 50; i++ {
		ida := a.NewSessionID()
		require.Equal(t, ida, b.NewSessionID())
		assert.NotEqual(t, ida, other.NewSessionID())
	}
}

func TestNoCollisionsAcrossWorkers(t *testing.T) {
	const workers, perWorker = 8, 10000
	ids := make([][]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			g := New(42, uint64(w))
			for i := 0; i < perWorker; i++ {
				ids[w] = append(ids[w], g.NewTransactionID())
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers*perWorker)
	for _, batch := range ids {
		for _, id := range batch {
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = struct{}{}
		}
	}
}
