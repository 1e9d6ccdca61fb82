package simulate

import (
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/obs"
)

// Progress aggregates counters across shards and logs them periodically.
// Reporting is a side effect only; it never influences termination.
type Progress struct {
	targets Targets

	iterations   atomic.Uint64
	sessions     atomic.Uint64
	transactions atomic.Uint64

	every *rate.Sometimes
}

// NewProgress logs every n iterations summed over all shards. n <= 0
// disables reporting.
func NewProgress(targets Targets, n int) *Progress {
	p := &Progress{targets: targets}
	if n > 0 {
		p.every = &rate.Sometimes{Every: n}
	}
	return p
}

func (p *Progress) tick(session, transaction bool) {
	p.iterations.Add(1)
	if session {
		p.sessions.Add(1)
	}
	if transaction {
		p.transactions.Add(1)
	}
	if p.every != nil {
		p.every.Do(p.report)
	}
}

func (p *Progress) report() {
	obs.Logger.Info("progress",
		"iterations", p.iterations.Load(),
		"sessions", p.sessions.Load(),
		"sessions_target", p.targets.Sessions,
		"transactions", p.transactions.Load(),
		"transactions_target", p.targets.Transactions,
	)
}

// Counts returns the totals observed so far.
func (p *Progress) Counts() (iterations, sessions, transactions uint64) {
	return p.iterations.Load(), p.sessions.Load(), p.transactions.Load()
}
