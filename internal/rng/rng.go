package rng

import "math"

// Lehmer (Park-Miller) generator constants.
const (
	multiplier = 48271
	modulus    = 2147483647
)

// Source is a seeded Lehmer LCG. Every randomized simulation draws from
// one of these so a run can be replayed from its seed. Not safe for
// concurrent use; each Source is owned by exactly one system.
type Source struct {
	state int64
}

// New creates a Source from any integer-ish seed. Seeds outside
// [1, modulus-1] are folded into the valid domain, so 0 and negative
// seeds are fine.
func New(seed int64) *Source {
	s := int64(math.Floor(float64(seed))) % modulus
	if s <= 0 {
		s += modulus - 1
	}
	return &Source{state: s}
}

// Next advances the state and returns a float64 in [0, 1).
func (r *Source) Next() float64 {
	r.state = (r.state * multiplier) % modulus
	return float64(r.state-1) / float64(modulus-1)
}

// IntN returns a uniform integer in [0, n). n <= 0 returns 0.
func (r *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() * float64(n))
}

// Range returns a uniform integer in [min, max] inclusive.
func (r *Source) Range(min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}

// Float returns a uniform float64 in [min, max).
func (r *Source) Float(min, max float64) float64 {
	return min + r.Next()*(max-min)
}

// Chance returns true with probability p.
func (r *Source) Chance(p float64) bool {
	return r.Next() < p
}

// State returns the current internal state, usable as a seed to resume
// the sequence.
func (r *Source) State() int64 {
	return r.state
}

// Clone returns an independent Source that will produce the same
// remaining sequence.
func (r *Source) Clone() *Source {
	return &Source{state: r.state}
}
