package rows

import (
	"cmp"
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/mtmstats/internal/bitmap"
	"github.com/hupe1980/mtmstats/internal/conv"
	"github.com/hupe1980/mtmstats/sba"
	"golang.org/x/sync/errgroup"
)

// ctxCheckInterval is how many rows a builder goroutine processes between
// context checks.
const ctxCheckInterval = 1024

// Config controls row construction.
type Config struct {
	// ChunkLength64 is the SBA chunk size in 64-bit words. Must be positive;
	// ignored for non-sparse kinds.
	ChunkLength64 int

	// Kind selects the row representation.
	Kind Kind

	// Workers is the number of concurrent row builders, each with its own
	// scratch buffer. If 0, defaults to 1.
	Workers int
}

// DefaultConfig returns sparse rows with single-word chunks.
func DefaultConfig() Config {
	return Config{ChunkLength64: 1, Kind: KindSparse, Workers: 1}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ChunkLength64 <= 0 {
		return fmt.Errorf("%w: chunk length must be positive, got %d", ErrInvalidConfig, c.ChunkLength64)
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidConfig, c.Kind)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Table is the result of Build: both key sets and the rows indexed by SetA.
type Table[A, B cmp.Ordered] struct {
	SetA Set[A]
	SetB Set[B]
	Rows *Rows
}

// Build computes Set A and Set B and one row per Set A entry. Row i
// describes SetA[i]; bit j of a row is set iff (SetA[i], SetB[j]) is in the
// relation. The pair order and duplicates in rel do not affect the result.
func Build[A, B cmp.Ordered](ctx context.Context, rel Relation[A, B], cfg Config) (*Table[A, B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	setA := projectA(rel)
	setB := projectB(rel)
	if _, err := conv.IntToUint32(len(setB)); err != nil {
		return nil, fmt.Errorf("%w: item-B universe too large: %w", ErrInvalidConfig, err)
	}

	groups := groupByA(rel, setA, setB)
	bitLength := len(setB)

	var (
		r   *Rows
		err error
	)
	switch cfg.Kind {
	case KindDense:
		r, err = buildDense(ctx, groups, bitLength, cfg.Workers)
	case KindRoaring:
		r, err = buildRoaring(ctx, groups, bitLength, cfg.Workers)
	default:
		r, err = buildSparse(ctx, groups, bitLength, cfg.ChunkLength64, cfg.Workers)
	}
	if err != nil {
		return nil, err
	}

	return &Table[A, B]{SetA: setA, SetB: setB, Rows: r}, nil
}

// groupByA collects the item-B indices of every item-A index. Roaring
// deduplicates repeated pairs and yields members in ascending order.
func groupByA[A, B cmp.Ordered](rel Relation[A, B], setA Set[A], setB Set[B]) []*roaring.Bitmap {
	idxA := indexOf(setA)
	idxB := indexOf(setB)

	groups := make([]*roaring.Bitmap, len(setA))
	for _, p := range rel {
		ia := idxA[p.A]
		if groups[ia] == nil {
			groups[ia] = roaring.New()
		}
		groups[ia].Add(uint32(idxB[p.B]))
	}
	for i, g := range groups {
		if g == nil {
			groups[i] = roaring.New()
		}
	}
	return groups
}

// forEachShard splits [0, n) into one contiguous shard per worker and runs fn
// concurrently on each.
func forEachShard(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	workers = min(workers, n)
	per := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += per {
		hi := min(lo+per, n)
		g.Go(func() error {
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}

func buildSparse(ctx context.Context, groups []*roaring.Bitmap, bitLength, chunkLength64, workers int) (*Rows, error) {
	out := make([]sba.Row, len(groups))
	pool := bitmap.NewPool(bitLength, chunkLength64)
	err := forEachShard(ctx, len(groups), workers, func(ctx context.Context, lo, hi int) error {
		scratch := pool.Get()
		defer pool.Put(scratch)
		for i := lo; i < hi; i++ {
			if (i-lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			scratch.Clear()
			groups[i].Iterate(func(x uint32) bool {
				scratch.Add(x)
				return true
			})
			out[i] = scratch.Compress()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	wpr := wordsFor(bitLength)
	return &Rows{
		kind:        KindSparse,
		n:           len(out),
		bitLength:   bitLength,
		wordsPerRow: wpr,
		chunkLen:    chunkLength64,
		sparse:      out,
	}, nil
}

func buildDense(ctx context.Context, groups []*roaring.Bitmap, bitLength, workers int) (*Rows, error) {
	wpr := wordsFor(bitLength)
	flat := make([]uint64, len(groups)*wpr)
	err := forEachShard(ctx, len(groups), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if (i-lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row := flat[i*wpr : (i+1)*wpr]
			groups[i].Iterate(func(x uint32) bool {
				row[x/64] |= 1 << (x % 64)
				return true
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Rows{
		kind:        KindDense,
		n:           len(groups),
		bitLength:   bitLength,
		wordsPerRow: wpr,
		chunkLen:    1,
		dense:       flat,
	}, nil
}

func buildRoaring(ctx context.Context, groups []*roaring.Bitmap, bitLength, workers int) (*Rows, error) {
	err := forEachShard(ctx, len(groups), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if (i-lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			groups[i].RunOptimize()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Rows{
		kind:        KindRoaring,
		n:           len(groups),
		bitLength:   bitLength,
		wordsPerRow: wordsFor(bitLength),
		chunkLen:    1,
		roaring:     groups,
	}, nil
}
