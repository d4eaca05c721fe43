package hash

import (
	"fmt"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// ChecksumError reports a CRC32C mismatch.
type ChecksumError struct {
	Want, Got uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("crc32c mismatch: want %08x, got %08x", e.Want, e.Got)
}

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Verify returns a *ChecksumError if data does not hash to want.
func Verify(data []byte, want uint32) error {
	if got := CRC32C(data); got != want {
		return &ChecksumError{Want: want, Got: got}
	}
	return nil
}
