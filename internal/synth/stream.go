// Package synth builds session and transaction records.
//
// Synthesizers hold only read-only inputs. Randomness and identifiers come
// from a Stream passed on every call, so each worker owns its Stream and
// the synthesizers can be shared.
package synth

import (
	"math/rand/v2"
	"time"

	"github.com/fairyhunter13/shop-dataset-simulator/internal/idgen"
)

// Stream is one worker's source of randomness and identifiers.
type Stream struct {
	Rand *rand.Rand
	IDs  *idgen.Generator
}

// NewStream derives the stream of shard from the run seed.
func NewStream(seed, shard uint64) *Stream {
	return &Stream{
		Rand: rand.New(rand.NewPCG(seed, 0x51a7+shard)),
		IDs:  idgen.New(seed, shard),
	}
}

// Window is the closed time range records are placed in.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window of width span ending at end.
func NewWindow(end time.Time, span time.Duration) Window {
	return Window{Start: end.Add(-span), End: end}
}

// sample returns a uniformly drawn instant of w at second resolution.
func (w Window) sample(r *rand.Rand) time.Time {
	secs := int64(w.End.Sub(w.Start) / time.Second)
	if secs <= 0 {
		return w.Start
	}
	return w.Start.Add(time.Duration(r.Int64N(secs+1)) * time.Second)
}

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func between64(r *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Int64N(hi-lo+1)
}
