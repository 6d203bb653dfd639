// Package rng provides the injectable random source used by the resolver
// and the event selector.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the minimal random interface the game core depends on.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// Intn returns a value in [0, n). It panics if n <= 0.
	Intn(n int) int
}

// seeded wraps math/rand with a mutex so one Source can be shared by the
// session service goroutines.
type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a reproducible Source for the given seed. A zero seed is
// replaced with the current time.
func New(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seeded{r: rand.New(rand.NewSource(seed))}
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Scripted replays a fixed list of Float64 values in order, cycling when
// exhausted. Intn maps the next value onto [0, n). Used in tests to force
// outcomes.
type Scripted struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// Sequence returns a Scripted source over values. With no values it always
// yields 0.
func Sequence(values ...float64) *Scripted {
	return &Scripted{values: values}
}

func (s *Scripted) next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func (s *Scripted) Float64() float64 {
	return s.next()
}

func (s *Scripted) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	i := int(s.next() * float64(n))
	return min(max(i, 0), n-1)
}

// Draws reports how many values have been consumed.
func (s *Scripted) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
