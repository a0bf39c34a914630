package correlate

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces correlation IDs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - IDs need only be unique among pending operations on one engine; the
//   engine rejects and regenerates collisions.
type IDGenerator interface {
	Generate() string
}

const (
	// DefaultIDLength is the length of IDs from Base36Generator.
	DefaultIDLength = 12

	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var base36Max = big.NewInt(int64(len(base36Alphabet)))

// Base36Generator draws fixed-length IDs over [0-9a-z] from crypto/rand.
// Twelve characters give roughly 62 bits of entropy.
type Base36Generator struct {
	// Length is the ID length. Zero means DefaultIDLength.
	Length int
}

// Generate returns a new random ID.
func (g Base36Generator) Generate() string {
	n := g.Length
	if n <= 0 {
		n = DefaultIDLength
	}
	buf := make([]byte, n)
	for i := range buf {
		v, err := rand.Int(rand.Reader, base36Max)
		if err != nil {
			panic("correlate: crypto/rand failed: " + err.Error())
		}
		buf[i] = base36Alphabet[v.Int64()]
	}
	return string(buf)
}

// UUIDGenerator produces time-ordered UUIDv7 IDs, which sort by issue time in
// logs and traces.
type UUIDGenerator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs in order. It is meant for tests
// and panics once exhausted.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
