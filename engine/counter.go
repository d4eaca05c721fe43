package engine

import (
	"github.com/hupe1980/mtmstats/internal/simd"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/sba"
)

// Counter returns the intersection count of two rows.
type Counter interface {
	Len() int
	Intersection(i, j int) uint64
}

// NewCounter selects the counting kernel for the representation of r.
func NewCounter(r *rows.Rows) Counter {
	switch r.Kind() {
	case rows.KindDense:
		return denseCounter{r: r}
	case rows.KindRoaring:
		return roaringCounter{r: r}
	default:
		return sparseCounter{r: r, chunkLen: r.ChunkLength64()}
	}
}

type sparseCounter struct {
	r        *rows.Rows
	chunkLen int
}

func (c sparseCounter) Len() int { return c.r.Len() }

func (c sparseCounter) Intersection(i, j int) uint64 {
	return sba.IntersectionCount(c.r.Sparse(i), c.r.Sparse(j), c.chunkLen)
}

type denseCounter struct {
	r *rows.Rows
}

func (c denseCounter) Len() int { return c.r.Len() }

func (c denseCounter) Intersection(i, j int) uint64 {
	return simd.AndPopcount(c.r.Dense(i), c.r.Dense(j))
}

type roaringCounter struct {
	r *rows.Rows
}

func (c roaringCounter) Len() int { return c.r.Len() }

func (c roaringCounter) Intersection(i, j int) uint64 {
	return c.r.Roaring(i).AndCardinality(c.r.Roaring(j))
}
