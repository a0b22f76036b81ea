package scenario

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform draws in [0, 1).
// Generators only ever consume randomness through this interface.
type Source interface {
	Float64() float64
}

// LockedSource is a math/rand source that is safe for concurrent use
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a new random source with the given seed.
// A zero seed uses the current time.
func NewSource(seed int64) *LockedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (s *LockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// sampler derives the distributions the generator needs from a Source.
type sampler struct {
	src Source
}

// intBetween returns an integer in [min, max], both inclusive.
func (s sampler) intBetween(min, max int) int {
	return int(math.Floor(s.src.Float64()*float64(max-min+1))) + min
}

// floatBetween returns a float in [min, max).
func (s sampler) floatBetween(min, max float64) float64 {
	return s.src.Float64()*(max-min) + min
}

// normal draws from N(mean, stdDev) with the Box-Muller transform.
// Exact zero draws are discarded so the logarithm stays finite.
func (s sampler) normal(mean, stdDev float64) float64 {
	u, v := 0.0, 0.0
	for u == 0 {
		u = s.src.Float64()
	}
	for v == 0 {
		v = s.src.Float64()
	}
	z := math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
	return z*stdDev + mean
}

// roundHalfUp rounds x to the given number of decimals, ties toward +Inf.
func roundHalfUp(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}

func roundInt(x float64) int {
	return int(math.Floor(x + 0.5))
}
