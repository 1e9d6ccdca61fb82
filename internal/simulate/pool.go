package simulate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/model"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/obs"
	"github.com/fairyhunter13/shop-dataset-simulator/internal/synth"
)

// Pool shards the targets across workers by index range. Every worker runs
// its own Driver with its own Stream; the synthesizers, and through them
// the inventory ledger, are shared.
type Pool struct {
	workers  int
	seed     uint64
	sessions SessionSource
	txns     TransactionSource
	every    int
}

// NewPool returns a pool of workers (at least one) seeded from seed.
// progressEvery is the logging cadence in iterations summed over workers.
func NewPool(workers int, seed uint64, sessions SessionSource, txns TransactionSource, progressEvery int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, seed: seed, sessions: sessions, txns: txns, every: progressEvery}
}

// shard returns the part of total owned by worker i.
func shard(total, workers, i int) int {
	n := total / workers
	if i < total%workers {
		n++
	}
	return n
}

// Run executes all shards and merges their results in shard order. The
// per-shard caps add up to the cap of the overall targets.
func (p *Pool) Run(ctx context.Context, targets Targets) (Result, error) {
	progress := NewProgress(targets, p.every)
	results := make([]Result, p.workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		st := Targets{
			Sessions:     shard(targets.Sessions, p.workers, i),
			Transactions: shard(targets.Transactions, p.workers, i),
		}
		d := NewDriver(i, p.sessions, p.txns, synth.NewStream(p.seed, uint64(i)), st, progress)
		g.Go(func() error {
			res, err := d.Run(gctx)
			results[i] = res
			return err
		})
	}
	obs.Logger.Info("workers_started", "worker_count", p.workers, "iteration_cap", targets.Cap())
	err := g.Wait()

	merged := merge(targets, results)
	if err != nil {
		merged.State = StateCancelled
		return merged, err
	}
	return merged, nil
}

func merge(targets Targets, results []Result) Result {
	out := Result{State: StateDone, Targets: targets}
	var ns, nt int
	for _, r := range results {
		ns += len(r.Sessions)
		nt += len(r.Transactions)
	}
	out.Sessions = make([]model.Session, 0, ns)
	out.Transactions = make([]model.Transaction, 0, nt)
	for _, r := range results {
		out.Iterations += r.Iterations
		out.Sessions = append(out.Sessions, r.Sessions...)
		out.Transactions = append(out.Transactions, r.Transactions...)
		if r.State == StateDoneEarly {
			out.State = StateDoneEarly
		}
	}
	return out
}
