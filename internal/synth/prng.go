package synth

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned for seeds, day counts or keys the
// generators cannot work with.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	lehmerModulus    = 2147483647
	lehmerMultiplier = 16807
)

// PRNG is a Park-Miller minimal standard generator. It is not safe for
// concurrent use; each generator owns its own instance.
type PRNG struct {
	state int64
}

// NewPRNG seeds a generator. Seeds are reduced modulo 2^31-1; a seed that
// reduces to zero would lock the sequence at zero and is rejected.
func NewPRNG(seed int64) (*PRNG, error) {
	s := seed % lehmerModulus
	if s < 0 {
		s += lehmerModulus
	}
	if s == 0 {
		return nil, fmt.Errorf("seed %d: %w", seed, ErrInvalidArgument)
	}
	return &PRNG{state: s}, nil
}

// Next returns the next value in [0, 1).
func (p *PRNG) Next() float64 {
	p.state = (p.state * lehmerMultiplier) % lehmerModulus
	return float64(p.state-1) / (lehmerModulus - 1)
}

// IntBetween returns an integer in [min, max].
func (p *PRNG) IntBetween(min, max int) int {
	return int(math.Floor(p.Next()*float64(max-min+1))) + min
}
