package engine

import "unsafe"

// Pair is one reported pair of rows. Pairs are only produced for
// intersections above the engine's cutoff.
type Pair struct {
	I, J         int
	Intersection uint64
}

// pairSize is charged against the memory limit per buffered pair.
const pairSize = int64(unsafe.Sizeof(Pair{}))

// Union derives the union count from the row degrees.
func (p Pair) Union(degrees []uint64) uint64 {
	return degrees[p.I] + degrees[p.J] - p.Intersection
}

// Jaccard returns intersection / union, or 0 for an empty union.
func (p Pair) Jaccard(degrees []uint64) float64 {
	u := p.Union(degrees)
	if u == 0 {
		return 0
	}
	return float64(p.Intersection) / float64(u)
}
