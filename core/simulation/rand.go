package simulation

import (
	"math/rand"
	"time"
)

// Rand supplies uniformly distributed floats in [0,1).
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded source. A zero seed uses the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// SequenceRand replays a fixed list of draws, wrapping around at the end.
// It makes tick outcomes reproducible in tests and scenario replays.
type SequenceRand struct {
	Values []float64
	pos    int
}

// Float64 returns the next value of the sequence, or 0 if it is empty.
func (s *SequenceRand) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

// Draws returns how many values have been consumed.
func (s *SequenceRand) Draws() int { return s.pos }
