package engine

import (
	"math/rand"
	"sync"
	"time"
)

// Sampler is the randomness seam for every stochastic draw in the
// engine. Injecting it keeps detector and projector output
// reproducible under a fixed seed.
type Sampler interface {
	// Float64 returns a draw in [0,1).
	Float64() float64
	// Uniform returns a draw in [lo, hi).
	Uniform(lo, hi float64) float64
	// Normal returns a gaussian draw with the given mean and stddev.
	Normal(mean, stddev float64) float64
}

// Clock supplies the wall-clock time to the generator. Injectable so
// tests can pin the hour of day.
type Clock func() time.Time

type lockedSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a seeded sampler safe for concurrent use.
func NewSampler(seed int64) Sampler {
	return &lockedSampler{rng: rand.New(rand.NewSource(seed))}
}

func (s *lockedSampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *lockedSampler) Uniform(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *lockedSampler) Normal(mean, stddev float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mean + s.rng.NormFloat64()*stddev
}
