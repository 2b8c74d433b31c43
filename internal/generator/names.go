package generator

import (
	"fmt"
	"math/rand"
)

// MaxNameAttempts bounds how many candidates are drawn before falling back to
// a numeric suffix.
const MaxNameAttempts = 100

const fallbackRange = 999

// Candidate returns a full name and the base used for the numeric fallback.
type Candidate func() (name, base string)

// NameRegistry tracks every name handed out during a run so none repeats.
type NameRegistry struct {
	used        map[string]struct{}
	rng         *rand.Rand
	maxAttempts int
}

// NewNameRegistry seeds the registry with names that already exist.
func NewNameRegistry(rng *rand.Rand, existing ...string) *NameRegistry {
	r := &NameRegistry{
		used:        make(map[string]struct{}, len(existing)),
		rng:         rng,
		maxAttempts: MaxNameAttempts,
	}
	for _, name := range existing {
		r.used[name] = struct{}{}
	}
	return r
}

// Has reports whether name was already taken.
func (r *NameRegistry) Has(name string) bool {
	_, ok := r.used[name]
	return ok
}

// Add marks name as taken, returning false when it already was.
func (r *NameRegistry) Add(name string) bool {
	if r.Has(name) {
		return false
	}
	r.used[name] = struct{}{}
	return true
}

// Claim draws at most maxAttempts candidates and keeps the first unused one.
// When all collide, the last base gets a numeric suffix rendered with format
// (for example "%s %d"); the suffixed name is itself checked for uniqueness.
func (r *NameRegistry) Claim(next Candidate, format string) (name string, attempts int, fellBack bool) {
	var base string
	for attempts < r.maxAttempts {
		attempts++
		name, base = next()
		if r.Add(name) {
			return name, attempts, false
		}
	}

	for i := 0; i < r.maxAttempts; i++ {
		name = fmt.Sprintf(format, base, r.rng.Intn(fallbackRange)+1)
		if r.Add(name) {
			return name, attempts, true
		}
	}
	for n := fallbackRange + 1; ; n++ {
		name = fmt.Sprintf(format, base, n)
		if r.Add(name) {
			return name, attempts, true
		}
	}
}
