// Package idgen produces opaque session and transaction identifiers.
//
// Identifiers are the hex form of a version-4 UUID drawn from a seeded
// ChaCha8 stream, truncated and prefixed. Each worker owns its Generator;
// a Generator is not safe for concurrent use.
package idgen

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	SessionPrefix     = "sess_"
	TransactionPrefix = "txn_"

	sessionHexLen     = 10
	transactionHexLen = 12
)

// Generator derives identifiers from its own entropy stream.
type Generator struct {
	src *rand.ChaCha8
}

// New returns a Generator for the given run seed and stream (worker index).
// Equal (seed, stream) pairs yield equal identifier sequences.
func New(seed, stream uint64) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[0:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], stream)
	copy(key[16:], "idgen/v1")
	return &Generator{src: rand.NewChaCha8(key)}
}

// NewSessionID returns "sess_" followed by 10 hex characters.
func (g *Generator) NewSessionID() string {
	return SessionPrefix + g.hex(sessionHexLen)
}

// NewTransactionID returns "txn_" followed by 12 hex characters.
func (g *Generator) NewTransactionID() string {
	return TransactionPrefix + g.hex(transactionHexLen)
}

func (g *Generator) hex(n int) string {
	// ChaCha8.Read never fails.
	u := uuid.Must(uuid.NewRandomFromReader(g.src))
	return hex.EncodeToString(u[:])[:n]
}
