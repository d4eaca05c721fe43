package testutil

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"github.com/hupe1980/mtmstats/rows"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Words returns n random 64-bit words where each bit is set with
// probability density.
func (r *RNG) Words(n int, density float64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		for b := range 64 {
			if r.rand.Float64() < density {
				out[i] |= 1 << b
			}
		}
	}
	return out
}

// Beta draws a sample from Beta(a, b) using Jöhnk's method, which suits
// the small shape parameters used for popularity skew.
func (r *RNG) Beta(a, b float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.betaLocked(a, b)
}

// betaLocked is the internal implementation (caller must hold lock).
func (r *RNG) betaLocked(a, b float64) float64 {
	for {
		x := math.Pow(r.rand.Float64(), 1/a)
		y := math.Pow(r.rand.Float64(), 1/b)
		if s := x + y; s <= 1 && s > 0 {
			return x / s
		}
	}
}

// BetaWeights returns n weights drawn from Beta(a, b), normalized to sum 1.
func (r *RNG) BetaWeights(n int, a, b float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.betaWeightsLocked(n, a, b)
}

func (r *RNG) betaWeightsLocked(n int, a, b float64) []float64 {
	w := make([]float64, n)
	var sum float64
	for i := range w {
		w[i] = r.betaLocked(a, b)
		sum += w[i]
	}
	if sum == 0 {
		for i := range w {
			w[i] = 1 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// Choice draws k indices in [0, len(weights)) with replacement, with
// probability proportional to weights.
func (r *RNG) Choice(weights []float64, k int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.choiceLocked(weights, k)
}

func (r *RNG) choiceLocked(weights []float64, k int) []int {
	cdf := make([]float64, len(weights))
	var acc float64
	for i, w := range weights {
		acc += w
		cdf[i] = acc
	}

	out := make([]int, k)
	for i := range out {
		u := r.rand.Float64() * acc
		idx := sort.Search(len(cdf), func(j int) bool { return cdf[j] > u })
		out[i] = min(idx, len(cdf)-1)
	}
	return out
}

// RelationConfig describes a synthetic relation.
type RelationConfig struct {
	SizeA       int
	SizeB       int
	Connections int

	// Beta shape parameters for item popularity. Zero values default to
	// (0.2, 1).
	BetaA [2]float64
	BetaB [2]float64
}

func (c RelationConfig) withDefaults() RelationConfig {
	if c.BetaA == [2]float64{} {
		c.BetaA = [2]float64{0.2, 1}
	}
	if c.BetaB == [2]float64{} {
		c.BetaB = [2]float64{0.2, 1}
	}
	return c
}

// GenerateRelation draws Connections (a, b) pairs. The relation may contain
// duplicates, and not every item of the full A and B ranges appears.
func (r *RNG) GenerateRelation(cfg RelationConfig) rows.Relation[string, string] {
	cfg = cfg.withDefaults()
	if cfg.SizeA <= 0 || cfg.SizeB <= 0 || cfg.Connections <= 0 {
		return rows.Relation[string, string]{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wa := r.betaWeightsLocked(cfg.SizeA, cfg.BetaA[0], cfg.BetaA[1])
	wb := r.betaWeightsLocked(cfg.SizeB, cfg.BetaB[0], cfg.BetaB[1])
	ai := r.choiceLocked(wa, cfg.Connections)
	bi := r.choiceLocked(wb, cfg.Connections)

	rel := make(rows.Relation[string, string], cfg.Connections)
	for i := range rel {
		rel[i] = rows.Pair[string, string]{
			A: "a" + strconv.Itoa(ai[i]),
			B: "b" + strconv.Itoa(bi[i]),
		}
	}
	return rel
}

// UniformRelation draws n (a, b) pairs uniformly from [0, sizeA) x [0, sizeB).
func (r *RNG) UniformRelation(sizeA, sizeB, n int) rows.Relation[int, int] {
	r.mu.Lock()
	defer r.mu.Unlock()

	rel := make(rows.Relation[int, int], n)
	for i := range rel {
		rel[i] = rows.Pair[int, int]{A: r.rand.Intn(sizeA), B: r.rand.Intn(sizeB)}
	}
	return rel
}
