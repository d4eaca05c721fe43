package sba

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/mtmstats/internal/conv"
)

// Binary layout of one row:
//
//	uvarint(len(Locs))
//	uvarint(Locs[0]) uvarint(Locs[1]-Locs[0]) ...   (delta-encoded)
//	Chunks as little-endian uint64
//
// The layout carries no chunk length; readers supply it.

// EncodedSize returns an upper bound on the encoded size of r.
func EncodedSize(r Row) int {
	return binary.MaxVarintLen64*(len(r.Locs)+1) + 8*len(r.Chunks)
}

// AppendBinary appends the encoding of r to dst.
func AppendBinary(dst []byte, r Row) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(r.Locs)))
	var prev uint32
	for k, loc := range r.Locs {
		if k == 0 {
			dst = binary.AppendUvarint(dst, uint64(loc))
		} else {
			dst = binary.AppendUvarint(dst, uint64(loc-prev))
		}
		prev = loc
	}
	for _, w := range r.Chunks {
		dst = binary.LittleEndian.AppendUint64(dst, w)
	}
	return dst
}

// Decode reads one row from data and returns it with the number of bytes
// consumed. The returned row does not alias data.
func Decode(data []byte, chunkLength64 int) (Row, int, error) {
	if chunkLength64 <= 0 {
		return Row{}, 0, ErrInvalidChunkLength
	}

	n, off := binary.Uvarint(data)
	if off <= 0 {
		return Row{}, 0, fmt.Errorf("%w: bad location count", ErrCorrupt)
	}
	numLocs, err := conv.Uint64ToInt(n)
	if err != nil || numLocs > len(data) {
		return Row{}, 0, fmt.Errorf("%w: location count %d exceeds input", ErrCorrupt, n)
	}

	row := Row{}
	if numLocs > 0 {
		row.Locs = make([]uint32, numLocs)
	}
	var loc uint64
	for k := 0; k < numLocs; k++ {
		d, m := binary.Uvarint(data[off:])
		if m <= 0 {
			return Row{}, 0, fmt.Errorf("%w: truncated location %d", ErrCorrupt, k)
		}
		off += m
		if k > 0 && d == 0 {
			return Row{}, 0, fmt.Errorf("%w: duplicate location at %d", ErrCorrupt, k)
		}
		if d > 1<<32-1-loc {
			return Row{}, 0, fmt.Errorf("%w: location %d overflows uint32", ErrCorrupt, k)
		}
		loc += d
		row.Locs[k] = uint32(loc)
	}

	numWords := numLocs * chunkLength64
	if len(data)-off < 8*numWords {
		return Row{}, 0, fmt.Errorf("%w: want %d chunk words, have %d bytes", ErrCorrupt, numWords, len(data)-off)
	}
	if numWords > 0 {
		row.Chunks = make([]uint64, numWords)
	}
	for w := range row.Chunks {
		row.Chunks[w] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	return row, off, nil
}
