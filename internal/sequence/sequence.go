// Package sequence derives synthetic DNA sequences from sample metadata and
// scores pairs of sequences for positional similarity. Both operations are
// pure functions; the derivation stands in for an expensive lookup against
// real sequencing data while staying reproducible across processes.
package sequence

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
)

// Length is the number of symbols in every generated sequence.
const Length = 200

const alphabet = "ATCG"

// seedHexDigits is the width of the digest prefix folded into the PRNG seed.
const seedHexDigits = 8

// ErrEmptyOverlap is returned by Similarity when the compared sequences share
// no positions, which makes the percentage undefined.
var ErrEmptyOverlap = errors.New("sequence: no overlapping positions to compare")

// Generate deterministically derives a Length-symbol sequence over {A,T,C,G}
// from the sample identity fields. Identical inputs produce identical output
// on any machine: the fields are hashed with SHA-256 and the first eight hex
// digits of the digest seed a PRNG that draws the symbols.
func Generate(id, region string, age int, seed string) string {
	digest := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d:%s", id, region, age, seed)))
	prefix := hex.EncodeToString(digest[:])[:seedHexDigits]
	n, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		// prefix is always valid hex by construction
		panic(fmt.Errorf("sequence: parse seed prefix: %w", err))
	}
	rng := rand.New(rand.NewSource(int64(n)))
	out := make([]byte, Length)
	for i := range out {
		out[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(out)
}

// Similarity returns the percentage of positions at which a and b carry the
// same symbol, compared over the overlapping prefix. The denominator is the
// length of the shorter input, and the result is rounded to two decimals.
// Comparing with an empty overlap returns ErrEmptyOverlap.
func Similarity(a, b string) (float64, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0, ErrEmptyOverlap
	}
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	pct := float64(matches) / float64(n) * 100
	return math.Round(pct*100) / 100, nil
}
