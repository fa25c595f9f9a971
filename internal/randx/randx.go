// Package randx is the single source of randomness for the simulation.
// Resolvers take a Source so tests can pin every draw.
package randx

import "math/rand"

// Source yields uniform draws. *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n); n must be positive.
	Intn(n int) int
}

// New returns a seeded source.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Range returns an inclusive draw in [lo, hi]. Reversed bounds are swapped.
func Range(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Fixed replays scripted draws. Once a list is exhausted its last value
// repeats; an empty list yields zero.
type Fixed struct {
	Floats []float64
	Ints   []int

	fi, ii int
}

func (f *Fixed) Float64() float64 {
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[min(f.fi, len(f.Floats)-1)]
	f.fi++
	return v
}

// Intn returns the next scripted int reduced modulo n.
func (f *Fixed) Intn(n int) int {
	if len(f.Ints) == 0 || n <= 0 {
		return 0
	}
	v := f.Ints[min(f.ii, len(f.Ints)-1)]
	f.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}
