package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New for a malformed Config.
var ErrInvalidConfig = errors.New("engine: invalid config")

// ErrIndexOutOfRange indicates an outer-row index outside [0, Len).
type ErrIndexOutOfRange struct {
	Index int
	Len   int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("row index %d out of range [0, %d)", e.Index, e.Len)
}
