package mtmstats

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/mtmstats/codec"
	"github.com/hupe1980/mtmstats/resource"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/rowstore"
)

// DefaultPartitionSize is the number of outer rows per streamed partition.
const DefaultPartitionSize = 1024

type options struct {
	chunkLength      int
	cutoff           uint64
	upperOnly        bool
	kind             rows.Kind
	indices          []int
	startCol         int
	partitionSize    int
	workers          int
	memoryLimit      int64
	controller       *resource.Controller
	logger           *Logger
	metricsCollector MetricsCollector
	codec            codec.Codec
	compression      rowstore.Compression
}

func defaultOptions() options {
	return options{
		chunkLength:      1,
		upperOnly:        true,
		kind:             rows.KindSparse,
		partitionSize:    DefaultPartitionSize,
		workers:          1,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		codec:            codec.Default,
		compression:      rowstore.CompressionLZ4,
	}
}

func (o *options) validate() error {
	if o.chunkLength <= 0 {
		return fmt.Errorf("%w: chunk length %d must be positive", ErrInvalidConfig, o.chunkLength)
	}
	if !o.kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidConfig, o.kind)
	}
	if o.startCol < 0 {
		return fmt.Errorf("%w: start col %d must not be negative", ErrInvalidConfig, o.startCol)
	}
	if o.partitionSize <= 0 {
		return fmt.Errorf("%w: partition size %d must be positive", ErrInvalidConfig, o.partitionSize)
	}
	if o.workers < 0 {
		return fmt.Errorf("%w: workers %d must not be negative", ErrInvalidConfig, o.workers)
	}
	if o.memoryLimit < 0 {
		return fmt.Errorf("%w: memory limit %d must not be negative", ErrInvalidConfig, o.memoryLimit)
	}
	return nil
}

// resourceController returns the configured controller, creating one when
// only a memory limit was given.
func (o *options) resourceController() *resource.Controller {
	if o.controller != nil {
		return o.controller
	}
	if o.memoryLimit > 0 {
		o.controller = resource.NewController(resource.Config{
			MaxWorkers:       int64(max(o.workers, 1)),
			MemoryLimitBytes: o.memoryLimit,
		})
	}
	return o.controller
}

// Option configures Prepare, Stats, Jaccard and Load.
type Option func(*options)

// WithChunkLength sets the SBA chunk size in 64-bit words (default 1).
//
// Larger chunks mean fewer location entries per row and longer AND runs per
// shared chunk; smaller chunks skip more empty space in very sparse rows.
func WithChunkLength(chunkLength64 int) Option {
	return func(o *options) {
		o.chunkLength = chunkLength64
	}
}

// WithCutoff reports only pairs whose intersection is strictly greater
// than cutoff (default 0).
func WithCutoff(cutoff uint64) Option {
	return func(o *options) {
		o.cutoff = cutoff
	}
}

// WithUpperOnly controls whether each unordered pair is reported once
// (true, default) or in both orders.
func WithUpperOnly(upperOnly bool) Option {
	return func(o *options) {
		o.upperOnly = upperOnly
	}
}

// WithKind selects the row representation (default rows.KindSparse).
func WithKind(kind rows.Kind) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithDense selects full word-array rows. It is shorthand for
// WithKind(rows.KindDense) when dense is true.
func WithDense(dense bool) Option {
	return func(o *options) {
		if dense {
			o.kind = rows.KindDense
		} else {
			o.kind = rows.KindSparse
		}
	}
}

// WithIndices restricts the outer rows of Pairs to the given row indices.
// Indices refer to positions in SetA. By default all rows participate.
// Partitions always cover all rows.
func WithIndices(indices ...int) Option {
	return func(o *options) {
		o.indices = indices
	}
}

// WithStartCol skips inner rows below startCol, which allows resuming a
// partially processed row.
func WithStartCol(startCol int) Option {
	return func(o *options) {
		o.startCol = startCol
	}
}

// WithPartitionSize sets the number of outer rows per partition returned
// by Prepared.Partitions (default DefaultPartitionSize).
func WithPartitionSize(size int) Option {
	return func(o *options) {
		o.partitionSize = size
	}
}

// WithWorkers sets the number of goroutines used for building rows and
// counting pairs (default 1).
//
// With workers > 1 pairs are computed in waves and buffered until they are
// consumed; see WithMemoryLimit to bound that buffer.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithMemoryLimit bounds the bytes of buffered pair results when workers > 1.
// Exceeding the limit ends enumeration with resource.ErrMemoryLimitExceeded.
// Ignored when WithResourceController is used.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController shares a resource controller between relations,
// bounding their combined workers, memory and persistence IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs text to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &mtmstats.BasicMetricsCollector{}
//	p, _ := mtmstats.Prepare(ctx, rel, mtmstats.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCodec configures the codec used for the manifest of saved relations.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression selects the block compression of saved rows
// (default rowstore.CompressionLZ4).
func WithCompression(c rowstore.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}
