// Package marketdata provides the price source consumed by the refresh
// endpoints. There is no real feed; prices are simulated as a bounded
// random walk around the last known price.
package marketdata

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies the next last-traded price for a symbol given its
// previous price.
type Source interface {
	NextPrice(symbol string, last float64) float64
}

// Simulated is a Source that jitters the last price by up to ±maxMovePct.
// Prices never go below the tick floor.
type Simulated struct {
	mu         sync.Mutex
	rng        *rand.Rand
	maxMovePct float64
}

const tickFloor = 0.05

// NewSimulated creates a simulator with the given maximum move per tick,
// expressed as a fraction (0.02 = ±2%).
func NewSimulated(maxMovePct float64) *Simulated {
	return &Simulated{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		maxMovePct: maxMovePct,
	}
}

// NewSimulatedWithSeed creates a deterministic simulator for tests.
func NewSimulatedWithSeed(maxMovePct float64, seed int64) *Simulated {
	return &Simulated{
		rng:        rand.New(rand.NewSource(seed)),
		maxMovePct: maxMovePct,
	}
}

// NextPrice returns the simulated next price for a symbol. The symbol is
// unused by the random walk but kept on the interface so a real feed can
// replace the simulator.
func (s *Simulated) NextPrice(_ string, last float64) float64 {
	if last <= 0 {
		return tickFloor
	}

	s.mu.Lock()
	move := (s.rng.Float64()*2 - 1) * s.maxMovePct
	s.mu.Unlock()

	next := last * (1 + move)
	if next < tickFloor {
		next = tickFloor
	}
	return next
}
