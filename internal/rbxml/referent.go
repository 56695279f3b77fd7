package rbxml

import (
	"encoding/hex"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// referentPrefix is required by the target tool's loader.
const referentPrefix = "RBX"

// ReferentGenerator hands out referent tokens for one document.
// Each token is a random 64-bit session seed followed by a monotonic counter,
// so tokens from a single generator never repeat.
type ReferentGenerator struct {
	seed string
	next atomic.Uint64
}

// NewReferentGenerator seeds a generator from a random (v4) UUID.
func NewReferentGenerator() *ReferentGenerator {
	id := uuid.New()
	return NewSeededReferentGenerator(strings.ToUpper(hex.EncodeToString(id[:8])))
}

// NewSeededReferentGenerator returns a generator with a fixed seed.
// Useful when output must be reproducible.
func NewSeededReferentGenerator(seed string) *ReferentGenerator {
	return &ReferentGenerator{seed: seed}
}

// Next returns the next referent, e.g. "RBX1A2B3C4D5E6F70810000000000000001".
func (g *ReferentGenerator) Next() string {
	n := g.next.Add(1)
	counter := strconv.FormatUint(n, 16)
	var b strings.Builder
	b.Grow(len(referentPrefix) + len(g.seed) + 16)
	b.WriteString(referentPrefix)
	b.WriteString(g.seed)
	for i := len(counter); i < 16; i++ {
		b.WriteByte('0')
	}
	b.WriteString(strings.ToUpper(counter))
	return b.String()
}
