package mtmstats

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/engine"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/rowstore"
	"github.com/hupe1980/mtmstats/sba"
	"github.com/hupe1980/mtmstats/stream"
)

var (
	// ErrInvalidConfig is returned for malformed options. It is raised
	// before any row is built.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNotFound is returned when a persisted relation does not exist.
	ErrNotFound = errors.New("not found")
)

// ErrIndexOutOfRange indicates a row index outside the prepared relation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIndexOutOfRange struct {
	Index int
	Len   int
	cause error
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("row index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *ErrIndexOutOfRange) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var oor *engine.ErrIndexOutOfRange
	if errors.As(err, &oor) {
		return &ErrIndexOutOfRange{Index: oor.Index, Len: oor.Len, cause: err}
	}

	if errors.Is(err, engine.ErrInvalidConfig) ||
		errors.Is(err, rows.ErrInvalidConfig) ||
		errors.Is(err, rowstore.ErrInvalidConfig) ||
		errors.Is(err, sba.ErrInvalidChunkLength) ||
		errors.Is(err, stream.ErrInvalidPartitionSize) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return err
}
