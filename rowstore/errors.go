package rowstore

import "errors"

var (
	// ErrInvalidConfig is returned for invalid options.
	ErrInvalidConfig = errors.New("rowstore: invalid config")

	// ErrChecksumMismatch is returned when a blob does not match the CRC32C
	// recorded in the manifest.
	ErrChecksumMismatch = errors.New("rowstore: checksum mismatch")

	// ErrIncompatibleFormat is returned when a saved table cannot be read
	// by this version or into the requested key types.
	ErrIncompatibleFormat = errors.New("rowstore: incompatible format")
)
