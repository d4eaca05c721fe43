package sba

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mtmstats/internal/conv"
	"github.com/hupe1980/mtmstats/internal/simd"
)

var (
	// ErrInvalidChunkLength is returned when chunkLength64 is not positive.
	ErrInvalidChunkLength = errors.New("sba: chunk length must be positive")

	// ErrCorrupt is returned when a row violates the layout invariants.
	ErrCorrupt = errors.New("sba: corrupt row")
)

// Row is an SBA-compressed bit vector.
//
// Invariants: Locs is strictly increasing and len(Chunks) equals
// len(Locs)*chunkLength64. Chunk k occupies
// Chunks[k*chunkLength64 : (k+1)*chunkLength64] and holds the words of
// original chunk index Locs[k].
type Row struct {
	Locs   []uint32
	Chunks []uint64
}

// Len returns the number of stored (non-zero) chunks.
func (r Row) Len() int { return len(r.Locs) }

// IsEmpty reports whether the row has no set bits.
func (r Row) IsEmpty() bool { return len(r.Locs) == 0 }

// Chunk returns the words of the k-th stored chunk.
func (r Row) Chunk(k, chunkLength64 int) []uint64 {
	off := k * chunkLength64
	return r.Chunks[off : off+chunkLength64 : off+chunkLength64]
}

// Popcount returns the number of set bits in the row.
func (r Row) Popcount() uint64 {
	return simd.PopcountWords(r.Chunks)
}

// Validate checks the layout invariants for the given chunk length.
func (r Row) Validate(chunkLength64 int) error {
	if chunkLength64 <= 0 {
		return ErrInvalidChunkLength
	}
	if len(r.Chunks) != len(r.Locs)*chunkLength64 {
		return fmt.Errorf("%w: %d chunk words for %d locations of %d words", ErrCorrupt, len(r.Chunks), len(r.Locs), chunkLength64)
	}
	for k := 1; k < len(r.Locs); k++ {
		if r.Locs[k] <= r.Locs[k-1] {
			return fmt.Errorf("%w: locations not strictly increasing at %d", ErrCorrupt, k)
		}
	}
	return nil
}

// Append adds a chunk at location loc. The chunk must have exactly
// chunkLength64 words and loc must be greater than every stored location.
// All-zero chunks are skipped.
func (r *Row) Append(loc uint32, chunk []uint64) error {
	if len(r.Locs) > 0 && loc <= r.Locs[len(r.Locs)-1] {
		return fmt.Errorf("%w: location %d after %d", ErrCorrupt, loc, r.Locs[len(r.Locs)-1])
	}
	if isZero(chunk) {
		return nil
	}
	r.Locs = append(r.Locs, loc)
	r.Chunks = append(r.Chunks, chunk...)
	return nil
}

// Compress packs words (bit k lives in bit k%64 of words[k/64]) into an SBA
// row. A trailing partial chunk is zero-padded. An all-zero input yields an
// empty row.
func Compress(words []uint64, chunkLength64 int) (Row, error) {
	if chunkLength64 <= 0 {
		return Row{}, ErrInvalidChunkLength
	}

	var row Row
	var pad []uint64
	for lo := 0; lo < len(words); lo += chunkLength64 {
		hi := min(lo+chunkLength64, len(words))
		chunk := words[lo:hi]
		if isZero(chunk) {
			continue
		}
		loc, err := conv.IntToUint32(lo / chunkLength64)
		if err != nil {
			return Row{}, err
		}
		if len(chunk) < chunkLength64 {
			if pad == nil {
				pad = make([]uint64, chunkLength64)
			}
			copy(pad, chunk)
			chunk = pad
		}
		row.Locs = append(row.Locs, loc)
		row.Chunks = append(row.Chunks, chunk...)
	}
	return row, nil
}

// CompressBits is Compress for a vector given one bool per bit.
func CompressBits(bits []bool, chunkLength64 int) (Row, error) {
	return Compress(PackBits(bits), chunkLength64)
}

// Decompress expands row into ceil(bitLength/64) words. Chunks beyond
// bitLength are dropped and bits past bitLength in the last word are cleared.
//
// Decompress is O(bitLength) and exists for verification; the engine never
// decompresses rows.
func Decompress(row Row, chunkLength64, bitLength int) ([]uint64, error) {
	if bitLength < 0 {
		return nil, fmt.Errorf("%w: negative bit length %d", ErrCorrupt, bitLength)
	}
	if err := row.Validate(chunkLength64); err != nil {
		return nil, err
	}

	numWords := (bitLength + 63) / 64
	out := make([]uint64, numWords)
	for k, loc := range row.Locs {
		start := int(loc) * chunkLength64
		if start >= numWords {
			break
		}
		copy(out[start:], row.Chunk(k, chunkLength64))
	}
	if rem := bitLength % 64; rem != 0 {
		out[numWords-1] &= (uint64(1) << rem) - 1
	}
	return out, nil
}

// DecompressBits is Decompress returning one bool per bit.
func DecompressBits(row Row, chunkLength64, bitLength int) ([]bool, error) {
	words, err := Decompress(row, chunkLength64, bitLength)
	if err != nil {
		return nil, err
	}
	return UnpackBits(words, bitLength), nil
}

// PackBits packs bools into 64-bit words, LSB first.
func PackBits(bits []bool) []uint64 {
	words := make([]uint64, (len(bits)+63)/64)
	for i, set := range bits {
		if set {
			words[i/64] |= 1 << (i % 64)
		}
	}
	return words
}

// UnpackBits returns the first bitLength bits of words as bools.
func UnpackBits(words []uint64, bitLength int) []bool {
	out := make([]bool, bitLength)
	for i := range out {
		out[i] = words[i/64]&(1<<(i%64)) != 0
	}
	return out
}

func isZero(words []uint64) bool {
	for _, w := range words {
		if w != 0 {
			return false
		}
	}
	return true
}
