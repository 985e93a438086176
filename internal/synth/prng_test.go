package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPRNGKnownSequence(t *testing.T) {
	rng, err := NewPRNG(42)
	require.NoError(t, err)

	want := []float64{0.0003287070433876543, 0.5245871017916008, 0.7354235320681926}
	for i, w := range want {
		assert.InDelta(t, w, rng.Next(), 1e-15, "draw %d", i)
	}
}

func TestPRNGDeterministic(t *testing.T) {
	for _, seed := range []int64{1, 42, 577, 2147483646, 1 << 40} {
		a, err := NewPRNG(seed)
		require.NoError(t, err)
		b, err := NewPRNG(seed)
		require.NoError(t, err)

		for i := 0; i < 500; i++ {
			va, vb := a.Next(), b.Next()
			require.Equal(t, va, vb, "seed %d draw %d", seed, i)
			require.GreaterOrEqual(t, va, 0.0)
			require.Less(t, va, 1.0)
		}
	}
}

func TestPRNGRejectsDegenerateSeeds(t *testing.T) {
	for _, seed := range []int64{0, lehmerModulus, -lehmerModulus, 3 * lehmerModulus} {
		_, err := NewPRNG(seed)
		assert.ErrorIs(t, err, ErrInvalidArgument, "seed %d", seed)
	}
}

func TestPRNGNegativeSeedStaysInRange(t *testing.T) {
	rng, err := NewPRNG(-7)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		v := rng.Next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestIntBetweenInclusive(t *testing.T) {
	rng, err := NewPRNG(7)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := rng.IntBetween(0, 2)
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, 2)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}
