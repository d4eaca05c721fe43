package rowstore

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/mtmstats/codec"
	"github.com/hupe1980/mtmstats/internal/blockcompress"
	"github.com/hupe1980/mtmstats/resource"
)

// Compression selects the block compression of the rows blob.
type Compression uint8

const (
	// CompressionNone stores rows uncompressed.
	CompressionNone Compression = iota
	// CompressionLZ4 favours speed.
	CompressionLZ4
	// CompressionZSTD favours size.
	CompressionZSTD
)

// String returns the stable name stored in manifests.
func (c Compression) String() string {
	return c.blockType().String()
}

func (c Compression) blockType() blockcompress.Type {
	switch c {
	case CompressionLZ4:
		return blockcompress.LZ4
	case CompressionZSTD:
		return blockcompress.ZSTD
	default:
		return blockcompress.None
	}
}

// Valid reports whether c is a known compression.
func (c Compression) Valid() bool {
	return c <= CompressionZSTD
}

type options struct {
	codec       codec.Codec
	compression Compression
	blockSize   int
	controller  *resource.Controller
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		codec:       codec.Default,
		compression: CompressionLZ4,
		blockSize:   blockcompress.DefaultBlockSize,
		logger:      slog.New(slog.DiscardHandler),
	}
}

func (o *options) validate() error {
	if !o.compression.Valid() {
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidConfig, o.compression)
	}
	if o.blockSize <= 0 {
		return fmt.Errorf("%w: block size %d must be positive", ErrInvalidConfig, o.blockSize)
	}
	return nil
}

// Option configures Save and Load.
type Option func(*options)

// WithCodec sets the codec for the manifest and key blobs (default
// codec.Default). Load ignores it and uses the codec recorded at save time.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the rows blob compression (default CompressionLZ4).
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size of the rows blob.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithResourceController rate limits blob IO through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
