package dice

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// Source is the randomness provider for die rolls.
//
// Intn returns a non-negative value in [0, n) and requires n > 0. The
// engine rolls a die of M sides as Intn(M)+1.
type Source interface {
	Intn(n int) int
}

// NewSeededSource returns a deterministic source for the given seed.
// The returned source is not safe for concurrent use; create one per
// evaluation.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

type seededSource struct {
	rng *rand.Rand
}

func (s *seededSource) Intn(n int) int {
	return s.rng.Intn(n)
}

// NewCryptoSource returns a source backed by crypto/rand. It holds no
// state and is safe for concurrent use.
func NewCryptoSource() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn requires n > 0")
	}
	value, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand never fails on supported platforms; treat failure
		// as unrecoverable rather than degrade to weak randomness.
		panic("dice: crypto source failed: " + err.Error())
	}
	return int(value.Int64())
}
