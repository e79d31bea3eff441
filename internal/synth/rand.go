package synth

import "math/rand"

// Rand is the source of randomness used by the synthesizer. Generation is
// intentionally statistical rather than seeded-reproducible in production;
// tests substitute a deterministic source to assert exact behavior.
type Rand interface {
	// Float64 returns a uniform value in [0.0, 1.0)
	Float64() float64
	// IntN returns a uniform value in [0, n)
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }
func (systemRand) IntN(n int) int   { return rand.Intn(n) }

// SystemRand returns the ambient, non-reproducible randomness source
func SystemRand() Rand {
	return systemRand{}
}
