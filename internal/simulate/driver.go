// Package simulate runs the bounded generation loop over the session and
// transaction synthesizers.
package simulate

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/obs"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/synth"
)

// ErrIterationCapReached is reported when the loop stops before both
// targets are met.
var ErrIterationCapReached = errors.New("iteration cap reached before targets were met")

// State is the driver state.
type State string

const (
	StateRunning   State = "RUNNING"
	StateDone      State = "DONE"
	StateDoneEarly State = "DONE_EARLY"
	StateCancelled State = "CANCELLED"
)

// SessionSource produces sessions. It always makes progress.
type SessionSource interface {
	Synthesize(st *synth.Stream) model.Session
}

// TransactionSource produces transactions. false means no progress.
type TransactionSource interface {
	Synthesize(st *synth.Stream) (model.Transaction, bool)
}

// Targets are the record counts to produce.
type Targets struct {
	Sessions     int
	Transactions int
}

// Cap is the iteration ceiling guaranteeing termination.
func (t Targets) Cap() int { return 2 * (t.Sessions + t.Transactions) }

func (t Targets) met(sessions, transactions int) bool {
	return sessions >= t.Sessions && transactions >= t.Transactions
}

// Result is the outcome of a run.
type Result struct {
	State        State
	Iterations   int
	Targets      Targets
	Sessions     []model.Session
	Transactions []model.Transaction
}

// Err returns ErrIterationCapReached for DONE_EARLY and nil otherwise.
func (r Result) Err() error {
	if r.State != StateDoneEarly {
		return nil
	}
	return errors.Wrapf(ErrIterationCapReached, "after %d iterations: %d/%d sessions, %d/%d transactions",
		r.Iterations, len(r.Sessions), r.Targets.Sessions, len(r.Transactions), r.Targets.Transactions)
}

// Driver is the sequential control loop of one shard.
type Driver struct {
	shard    int
	sessions SessionSource
	txns     TransactionSource
	stream   *synth.Stream
	targets  Targets
	progress *Progress
}

// NewDriver returns a driver for one shard. progress may be nil.
func NewDriver(shard int, sessions SessionSource, txns TransactionSource, stream *synth.Stream, targets Targets, progress *Progress) *Driver {
	if progress == nil {
		progress = NewProgress(targets, 0)
	}
	return &Driver{shard: shard, sessions: sessions, txns: txns, stream: stream, targets: targets, progress: progress}
}

// Run loops until both targets are met (DONE), the iteration cap is
// exhausted (DONE_EARLY) or ctx is cancelled (CANCELLED, with ctx's error).
func (d *Driver) Run(ctx context.Context) (Result, error) {
	res := Result{
		State:        StateRunning,
		Targets:      d.targets,
		Sessions:     make([]model.Session, 0, d.targets.Sessions),
		Transactions: make([]model.Transaction, 0, d.targets.Transactions),
	}
	limit := d.targets.Cap()

	for !d.targets.met(len(res.Sessions), len(res.Transactions)) && res.Iterations < limit {
		if err := ctx.Err(); err != nil {
			res.State = StateCancelled
			return res, err
		}
		res.Iterations++

		var gotSession, gotTxn bool
		if len(res.Sessions) < d.targets.Sessions {
			res.Sessions = append(res.Sessions, d.sessions.Synthesize(d.stream))
			gotSession = true
		}
		if len(res.Transactions) < d.targets.Transactions {
			if tx, ok := d.txns.Synthesize(d.stream); ok {
				res.Transactions = append(res.Transactions, tx)
				gotTxn = true
			}
		}
		d.progress.tick(gotSession, gotTxn)
	}

	if d.targets.met(len(res.Sessions), len(res.Transactions)) {
		res.State = StateDone
		return res, nil
	}
	res.State = StateDoneEarly
	obs.Logger.Warn("iteration_cap_reached",
		"shard", d.shard,
		"iterations", res.Iterations,
		"sessions", len(res.Sessions),
		"sessions_target", d.targets.Sessions,
		"transactions", len(res.Transactions),
		"transactions_target", d.targets.Transactions,
	)
	return res, nil
}
