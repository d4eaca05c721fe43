package stream

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/hupe1980/mtmstats/engine"
)

// ErrInvalidPartitionSize is returned for a partition size <= 0.
var ErrInvalidPartitionSize = errors.New("stream: partition size must be positive")

// Partition is a contiguous range [Start, End) of outer rows.
type Partition struct {
	Index      int
	Start, End int

	// Pairs enumerates the pairs whose outer row lies in the partition.
	Pairs iter.Seq2[engine.Pair, error]
}

// Len returns the number of outer rows in the partition.
func (p Partition) Len() int { return p.End - p.Start }

// Driver partitions an engine's outer rows.
type Driver struct {
	Engine        *engine.Engine
	PartitionSize int

	// Logger is optional.
	Logger *slog.Logger

	// OnPartition is optional. It is called after a partition's pairs have
	// been fully consumed.
	OnPartition func(p Partition, pairs int, elapsed time.Duration)
}

// Partitions returns the partitions in row order. The last partition may
// be shorter than PartitionSize.
func (d *Driver) Partitions(ctx context.Context) (iter.Seq[Partition], error) {
	if d.PartitionSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPartitionSize, d.PartitionSize)
	}
	if d.Engine == nil {
		return nil, errors.New("stream: nil engine")
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := d.Engine.Len()
	size := d.PartitionSize

	return func(yield func(Partition) bool) {
		for idx, start := 0, 0; start < n; idx, start = idx+1, start+size {
			p := Partition{Index: idx, Start: start, End: min(start+size, n)}
			p.Pairs = d.pairs(ctx, p, logger)
			if !yield(p) {
				return
			}
		}
	}, nil
}

func (d *Driver) pairs(ctx context.Context, p Partition, logger *slog.Logger) iter.Seq2[engine.Pair, error] {
	return func(yield func(engine.Pair, error) bool) {
		seq, err := d.Engine.PairsRange(ctx, p.Start, p.End)
		if err != nil {
			yield(engine.Pair{}, err)
			return
		}

		started := time.Now()
		count := 0
		for pair, err := range seq {
			if err != nil {
				yield(engine.Pair{}, err)
				return
			}
			count++
			if !yield(pair, nil) {
				return
			}
		}

		elapsed := time.Since(started)
		logger.Debug("partition done",
			"partition", p.Index,
			"start", p.Start,
			"end", p.End,
			"pairs", count,
			"elapsed", elapsed,
		)
		if d.OnPartition != nil {
			d.OnPartition(p, count, elapsed)
		}
	}
}

// Partitions is shorthand for a Driver without logging or hooks.
func Partitions(ctx context.Context, e *engine.Engine, partitionSize int) (iter.Seq[Partition], error) {
	d := &Driver{Engine: e, PartitionSize: partitionSize}
	return d.Partitions(ctx)
}

// Flatten concatenates the pair sequences of all partitions.
func Flatten(parts iter.Seq[Partition]) iter.Seq2[engine.Pair, error] {
	return func(yield func(engine.Pair, error) bool) {
		for p := range parts {
			for pair, err := range p.Pairs {
				if !yield(pair, err) {
					return
				}
				if err != nil {
					return
				}
			}
		}
	}
}
