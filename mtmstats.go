package mtmstats

import (
	"cmp"
	"context"
	"iter"
	"time"

	"github.com/hupe1980/mtmstats/engine"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/stream"
)

// Pair is a reported pair of row indices with its intersection count.
type Pair = engine.Pair

// Partition is a contiguous range of outer rows with its own pair sequence.
type Partition = stream.Partition

// Counts holds the intersection and union size of two b-sets.
type Counts struct {
	Intersection uint64
	Union        uint64
}

// Jaccard returns Intersection / Union, or 0 for an empty union.
func (c Counts) Jaccard() float64 {
	if c.Union == 0 {
		return 0
	}
	return float64(c.Intersection) / float64(c.Union)
}

// Prepared is a relation whose membership rows and degrees have been built.
// It is immutable and safe for concurrent use.
type Prepared[A, B cmp.Ordered] struct {
	table   *rows.Table[A, B]
	degrees []uint64
	engine  *engine.Engine
	opts    options
}

// Prepare builds the sets, rows and degrees of rel.
//
// Options are validated before any row is built.
func Prepare[A, B cmp.Ordered](ctx context.Context, rel rows.Relation[A, B], optFns ...Option) (*Prepared[A, B], error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	tbl, err := rows.Build(ctx, rel, rows.Config{
		ChunkLength64: o.chunkLength,
		Kind:          o.kind,
		Workers:       max(o.workers, 1),
	})
	elapsed := time.Since(start)
	if err != nil {
		o.logger.LogBuild(ctx, 0, 0, o.kind.String(), o.chunkLength, elapsed, err)
		o.metricsCollector.RecordBuild(0, 0, elapsed, err)
		return nil, translateError(err)
	}
	o.logger.LogBuild(ctx, tbl.Rows.Len(), tbl.Rows.BitLength(), o.kind.String(), o.chunkLength, elapsed, nil)
	o.metricsCollector.RecordBuild(tbl.Rows.Len(), tbl.Rows.BitLength(), elapsed, nil)

	return newPrepared(tbl, o)
}

func newPrepared[A, B cmp.Ordered](tbl *rows.Table[A, B], o options) (*Prepared[A, B], error) {
	degrees := rows.BaseCounts(tbl.Rows)

	e, err := engine.New(tbl.Rows, degrees, engine.Config{
		Cutoff:     o.cutoff,
		StartCol:   o.startCol,
		UpperOnly:  o.upperOnly,
		Workers:    o.workers,
		Controller: o.resourceController(),
		Logger:     o.logger.Logger,
	})
	if err != nil {
		return nil, translateError(err)
	}

	n := tbl.Rows.Len()
	for _, i := range o.indices {
		if i < 0 || i >= n {
			return nil, translateError(&engine.ErrIndexOutOfRange{Index: i, Len: n})
		}
	}

	return &Prepared[A, B]{
		table:   tbl,
		degrees: degrees,
		engine:  e,
		opts:    o,
	}, nil
}

// SetA returns the sorted distinct a-keys. Row i belongs to SetA()[i].
func (p *Prepared[A, B]) SetA() rows.Set[A] { return p.table.SetA }

// SetB returns the sorted distinct b-keys. Bit j belongs to SetB()[j].
func (p *Prepared[A, B]) SetB() rows.Set[B] { return p.table.SetB }

// Rows returns the membership rows.
func (p *Prepared[A, B]) Rows() *rows.Rows { return p.table.Rows }

// Table returns the built table.
func (p *Prepared[A, B]) Table() *rows.Table[A, B] { return p.table }

// Degrees returns the degree of every row. The slice must not be modified.
func (p *Prepared[A, B]) Degrees() []uint64 { return p.degrees }

// Degree returns the number of distinct b-keys connected to key.
func (p *Prepared[A, B]) Degree(key A) (uint64, bool) {
	i, ok := p.table.SetA.Index(key)
	if !ok {
		return 0, false
	}
	return p.degrees[i], true
}

// BaseCounts returns the degree of every a-key.
func (p *Prepared[A, B]) BaseCounts() map[A]uint64 {
	out := make(map[A]uint64, len(p.degrees))
	for i, d := range p.degrees {
		out[p.table.SetA.Key(i)] = d
	}
	return out
}

// Counts returns the intersection and union of a reported pair.
func (p *Prepared[A, B]) Counts(pair Pair) Counts {
	return Counts{Intersection: pair.Intersection, Union: pair.Union(p.degrees)}
}

// Keys maps a pair of row indices back to a-keys.
func (p *Prepared[A, B]) Keys(pair Pair) [2]A {
	return [2]A{p.table.SetA.Key(pair.I), p.table.SetA.Key(pair.J)}
}

// Pairs enumerates the reported pairs lazily. The outer rows are the ones
// given by WithIndices, or all rows.
//
// Errors raised during enumeration end the sequence.
func (p *Prepared[A, B]) Pairs(ctx context.Context) (iter.Seq2[Pair, error], error) {
	seq, err := p.engine.Pairs(ctx, p.opts.indices)
	if err != nil {
		return nil, translateError(err)
	}

	return func(yield func(Pair, error) bool) {
		start := time.Now()
		count := 0
		for pair, err := range seq {
			if err != nil {
				p.opts.logger.LogPairs(ctx, count, time.Since(start), err)
				p.opts.metricsCollector.RecordPairs(count, time.Since(start), err)
				yield(Pair{}, translateError(err))
				return
			}
			count++
			if !yield(pair, nil) {
				return
			}
		}
		p.opts.logger.LogPairs(ctx, count, time.Since(start), nil)
		p.opts.metricsCollector.RecordPairs(count, time.Since(start), nil)
	}, nil
}

// Partitions splits all rows into contiguous partitions of the configured
// partition size. Flattening the partitions yields the same pairs as Pairs
// without WithIndices.
func (p *Prepared[A, B]) Partitions(ctx context.Context) (iter.Seq[Partition], error) {
	d := &stream.Driver{
		Engine:        p.engine,
		PartitionSize: p.opts.partitionSize,
		Logger:        p.opts.logger.Logger,
		OnPartition: func(part stream.Partition, pairs int, elapsed time.Duration) {
			p.opts.logger.LogPartition(ctx, part.Index, part.Start, part.End, pairs, elapsed)
			p.opts.metricsCollector.RecordPartition(part.Index, pairs, elapsed)
		},
	}
	parts, err := d.Partitions(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return parts, nil
}

// Collect materializes all pairs.
func (p *Prepared[A, B]) Collect(ctx context.Context) ([]Pair, error) {
	seq, err := p.Pairs(ctx)
	if err != nil {
		return nil, err
	}
	var out []Pair
	for pair, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, nil
}

// Stats returns the degree of every a-key and the counts of every reported
// pair of a-keys.
func (p *Prepared[A, B]) Stats(ctx context.Context) (map[A]uint64, map[[2]A]Counts, error) {
	seq, err := p.Pairs(ctx)
	if err != nil {
		return nil, nil, err
	}
	counts := make(map[[2]A]Counts)
	for pair, err := range seq {
		if err != nil {
			return nil, nil, err
		}
		counts[p.Keys(pair)] = p.Counts(pair)
	}
	return p.BaseCounts(), counts, nil
}

// Stats computes degrees and pair counts for rel in one call.
func Stats[A, B cmp.Ordered](ctx context.Context, rel rows.Relation[A, B], optFns ...Option) (map[A]uint64, map[[2]A]Counts, error) {
	p, err := Prepare(ctx, rel, optFns...)
	if err != nil {
		return nil, nil, err
	}
	return p.Stats(ctx)
}

// Jaccard computes degrees and the Jaccard index of every reported pair.
func Jaccard[A, B cmp.Ordered](ctx context.Context, rel rows.Relation[A, B], optFns ...Option) (map[A]uint64, map[[2]A]float64, error) {
	base, counts, err := Stats(ctx, rel, optFns...)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[[2]A]float64, len(counts))
	for k, c := range counts {
		out[k] = c.Jaccard()
	}
	return base, out, nil
}
