package engine

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/mtmstats/resource"
	"github.com/hupe1980/mtmstats/rows"
)

// DefaultWaveSize is the number of outer rows per worker in one wave.
const DefaultWaveSize = 64

// Config controls pair enumeration.
type Config struct {
	// Cutoff drops pairs whose intersection is <= Cutoff.
	Cutoff uint64

	// StartCol is the lowest inner row index visited.
	StartCol int

	// UpperOnly restricts output to pairs with I < J.
	UpperOnly bool

	// Workers is the number of concurrent outer rows. 0 or 1 runs
	// sequentially on the consumer goroutine.
	Workers int

	// WaveSize is the number of outer rows per worker per wave.
	// If 0, DefaultWaveSize is used.
	WaveSize int

	// Controller is optional. It bounds workers and buffered results
	// across engines sharing it.
	Controller *resource.Controller

	// Logger is optional.
	Logger *slog.Logger
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.StartCol < 0 {
		return fmt.Errorf("%w: start col %d", ErrInvalidConfig, c.StartCol)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	if c.WaveSize < 0 {
		return fmt.Errorf("%w: wave size %d", ErrInvalidConfig, c.WaveSize)
	}
	return nil
}

// Engine enumerates pair intersections over immutable rows.
// It is safe for concurrent use.
type Engine struct {
	rows    *rows.Rows
	counter Counter
	degrees []uint64
	cfg     Config
	logger  *slog.Logger
}

// New creates an engine over r. If degrees is nil it is computed with
// rows.BaseCounts.
func New(r *rows.Rows, degrees []uint64, cfg Config) (*Engine, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil rows", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if degrees == nil {
		degrees = rows.BaseCounts(r)
	}
	if len(degrees) != r.Len() {
		return nil, fmt.Errorf("%w: %d degrees for %d rows", ErrInvalidConfig, len(degrees), r.Len())
	}
	if cfg.WaveSize == 0 {
		cfg.WaveSize = DefaultWaveSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		rows:    r,
		counter: NewCounter(r),
		degrees: degrees,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Len returns the number of rows.
func (e *Engine) Len() int { return e.rows.Len() }

// Rows returns the underlying rows.
func (e *Engine) Rows() *rows.Rows { return e.rows }

// Degrees returns the per-row degrees. The slice must not be modified.
func (e *Engine) Degrees() []uint64 { return e.degrees }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Pairs returns the pairs whose outer row is in indices, in the order given.
// A nil indices visits every row.
//
// Indices are validated up front. Errors raised while iterating (context
// cancellation, memory limit) are yielded once as the last element.
func (e *Engine) Pairs(ctx context.Context, indices []int) (iter.Seq2[Pair, error], error) {
	n := e.rows.Len()
	if indices == nil {
		return e.PairsRange(ctx, 0, n)
	}
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, &ErrIndexOutOfRange{Index: i, Len: n}
		}
	}
	return e.seq(ctx, indices), nil
}

// PairsRange returns the pairs whose outer row lies in [start, end).
func (e *Engine) PairsRange(ctx context.Context, start, end int) (iter.Seq2[Pair, error], error) {
	n := e.rows.Len()
	if start < 0 || start > n {
		return nil, &ErrIndexOutOfRange{Index: start, Len: n}
	}
	if end < start || end > n {
		return nil, &ErrIndexOutOfRange{Index: end, Len: n}
	}
	indices := make([]int, end-start)
	for k := range indices {
		indices[k] = start + k
	}
	return e.seq(ctx, indices), nil
}

func (e *Engine) seq(ctx context.Context, indices []int) iter.Seq2[Pair, error] {
	if e.cfg.Workers <= 1 {
		return e.sequential(ctx, indices)
	}
	return e.parallel(ctx, indices)
}

func (e *Engine) sequential(ctx context.Context, indices []int) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		for _, i := range indices {
			if err := ctx.Err(); err != nil {
				yield(Pair{}, err)
				return
			}
			stopped := false
			e.scanRow(i, func(p Pair) bool {
				if !yield(p, nil) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return
			}
		}
	}
}

// scanRow emits the pairs of outer row i until emit returns false.
func (e *Engine) scanRow(i int, emit func(Pair) bool) {
	n := e.counter.Len()
	cutoff := e.cfg.Cutoff
	mirror := !e.cfg.UpperOnly
	for j := max(i+1, e.cfg.StartCol); j < n; j++ {
		c := e.counter.Intersection(i, j)
		if c <= cutoff {
			continue
		}
		if !emit(Pair{I: i, J: j, Intersection: c}) {
			return
		}
		if mirror && !emit(Pair{I: j, J: i, Intersection: c}) {
			return
		}
	}
}

func (e *Engine) parallel(ctx context.Context, indices []int) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		waveRows := e.cfg.Workers * e.cfg.WaveSize
		for wave, lo := 0, 0; lo < len(indices); wave, lo = wave+1, lo+waveRows {
			hi := min(lo+waveRows, len(indices))

			e.logger.Debug("dispatching wave", "wave", wave, "rows", hi-lo)

			bufs, reserved, err := e.runWave(ctx, indices[lo:hi])
			if err != nil {
				e.cfg.Controller.ReleaseMemory(reserved)
				yield(Pair{}, err)
				return
			}

			ok := yieldAll(bufs, yield)
			e.cfg.Controller.ReleaseMemory(reserved)
			if !ok {
				return
			}
		}
	}
}

// runWave computes one buffer per outer row. The returned byte count is
// reserved on the controller and must be released by the caller, also on
// error.
func (e *Engine) runWave(ctx context.Context, wave []int) ([][]Pair, int64, error) {
	bufs := make([][]Pair, len(wave))
	sizes := make([]int64, len(wave))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for k, i := range wave {
		g.Go(func() error {
			rc := e.cfg.Controller
			if err := rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			if err := gctx.Err(); err != nil {
				return err
			}

			var buf []Pair
			e.scanRow(i, func(p Pair) bool {
				buf = append(buf, p)
				return true
			})

			size := int64(cap(buf)) * pairSize
			if err := rc.ReserveMemory(size); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			bufs[k] = buf
			sizes[k] = size
			return nil
		})
	}

	err := g.Wait()

	var reserved int64
	for _, s := range sizes {
		reserved += s
	}
	if err != nil {
		return nil, reserved, err
	}
	return bufs, reserved, nil
}

func yieldAll(bufs [][]Pair, yield func(Pair, error) bool) bool {
	for _, buf := range bufs {
		for _, p := range buf {
			if !yield(p, nil) {
				return false
			}
		}
	}
	return true
}
