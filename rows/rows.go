package rows

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/mtmstats/sba"
)

var (
	// ErrInvalidConfig is returned for malformed build configuration.
	ErrInvalidConfig = errors.New("rows: invalid config")

	// ErrKindMismatch is returned when a row accessor does not match the
	// representation.
	ErrKindMismatch = errors.New("rows: representation mismatch")

	// ErrRowOutOfBounds is returned when pre-built rows address bits past
	// the declared bit length.
	ErrRowOutOfBounds = errors.New("rows: row exceeds bit length")
)

// Rows holds one membership row per item-A index in a single representation.
type Rows struct {
	kind        Kind
	n           int
	bitLength   int
	wordsPerRow int
	chunkLen    int

	sparse  []sba.Row
	dense   []uint64 // n * wordsPerRow
	roaring []*roaring.Bitmap
}

func wordsFor(bitLength int) int {
	return (bitLength + 63) / 64
}

// spillMask returns the bits of word w that lie at or past bitLength.
func spillMask(w, wpr, bitLength int) uint64 {
	switch {
	case w >= wpr:
		return ^uint64(0)
	case w == wpr-1 && bitLength%64 != 0:
		return ^(uint64(1)<<(bitLength%64) - 1)
	default:
		return 0
	}
}

// NewSparse wraps pre-built SBA rows. Every row must satisfy the SBA
// invariants for chunkLength64 and stay within bitLength.
func NewSparse(rows []sba.Row, chunkLength64, bitLength int) (*Rows, error) {
	if chunkLength64 <= 0 {
		return nil, fmt.Errorf("%w: chunk length %d", ErrInvalidConfig, chunkLength64)
	}
	if bitLength < 0 {
		return nil, fmt.Errorf("%w: bit length %d", ErrInvalidConfig, bitLength)
	}
	wpr := wordsFor(bitLength)
	for i, r := range rows {
		if err := r.Validate(chunkLength64); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if r.Len() == 0 {
			continue
		}
		// Locations ascend, so only the last chunk can reach past bitLength.
		last := r.Len() - 1
		base := int(r.Locs[last]) * chunkLength64
		for k, word := range r.Chunk(last, chunkLength64) {
			if word&spillMask(base+k, wpr, bitLength) != 0 {
				return nil, fmt.Errorf("%w: row %d chunk %d", ErrRowOutOfBounds, i, r.Locs[last])
			}
		}
	}
	return &Rows{
		kind:        KindSparse,
		n:           len(rows),
		bitLength:   bitLength,
		wordsPerRow: wpr,
		chunkLen:    chunkLength64,
		sparse:      rows,
	}, nil
}

// NewDense wraps pre-built dense rows. Each row must have
// ceil(bitLength/64) words.
func NewDense(rows [][]uint64, bitLength int) (*Rows, error) {
	if bitLength < 0 {
		return nil, fmt.Errorf("%w: bit length %d", ErrInvalidConfig, bitLength)
	}
	wpr := wordsFor(bitLength)
	flat := make([]uint64, 0, len(rows)*wpr)
	for i, r := range rows {
		if len(r) != wpr {
			return nil, fmt.Errorf("%w: row %d has %d words, want %d", ErrRowOutOfBounds, i, len(r), wpr)
		}
		if wpr > 0 && r[wpr-1]&spillMask(wpr-1, wpr, bitLength) != 0 {
			return nil, fmt.Errorf("%w: row %d sets bits past %d", ErrRowOutOfBounds, i, bitLength)
		}
		flat = append(flat, r...)
	}
	return &Rows{
		kind:        KindDense,
		n:           len(rows),
		bitLength:   bitLength,
		wordsPerRow: wpr,
		chunkLen:    1,
		dense:       flat,
	}, nil
}

// NewRoaring wraps pre-built roaring rows. Nil entries are empty rows.
func NewRoaring(rows []*roaring.Bitmap, bitLength int) (*Rows, error) {
	if bitLength < 0 {
		return nil, fmt.Errorf("%w: bit length %d", ErrInvalidConfig, bitLength)
	}
	out := make([]*roaring.Bitmap, len(rows))
	for i, rb := range rows {
		if rb == nil || rb.IsEmpty() {
			out[i] = roaring.New()
			continue
		}
		if int(rb.Maximum()) >= bitLength {
			return nil, fmt.Errorf("%w: row %d holds bit %d", ErrRowOutOfBounds, i, rb.Maximum())
		}
		out[i] = rb
	}
	return &Rows{
		kind:        KindRoaring,
		n:           len(rows),
		bitLength:   bitLength,
		wordsPerRow: wordsFor(bitLength),
		chunkLen:    1,
		roaring:     out,
	}, nil
}

// Kind returns the representation.
func (r *Rows) Kind() Kind { return r.kind }

// Len returns the number of rows.
func (r *Rows) Len() int { return r.n }

// BitLength returns the row length in bits (|B|).
func (r *Rows) BitLength() int { return r.bitLength }

// WordsPerRow returns ceil(BitLength/64).
func (r *Rows) WordsPerRow() int { return r.wordsPerRow }

// ChunkLength64 returns the SBA chunk length. It is 1 for non-sparse rows.
func (r *Rows) ChunkLength64() int { return r.chunkLen }

// Sparse returns SBA row i. It panics unless Kind is KindSparse.
func (r *Rows) Sparse(i int) sba.Row {
	if r.kind != KindSparse {
		panic(ErrKindMismatch)
	}
	return r.sparse[i]
}

// Dense returns the words of row i. It panics unless Kind is KindDense.
func (r *Rows) Dense(i int) []uint64 {
	if r.kind != KindDense {
		panic(ErrKindMismatch)
	}
	off := i * r.wordsPerRow
	return r.dense[off : off+r.wordsPerRow : off+r.wordsPerRow]
}

// Roaring returns roaring row i. It panics unless Kind is KindRoaring.
// Callers must not mutate the bitmap.
func (r *Rows) Roaring(i int) *roaring.Bitmap {
	if r.kind != KindRoaring {
		panic(ErrKindMismatch)
	}
	return r.roaring[i]
}

// Words returns row i expanded to WordsPerRow words, whatever the
// representation. It allocates for sparse and roaring rows.
func (r *Rows) Words(i int) []uint64 {
	switch r.kind {
	case KindDense:
		return append([]uint64(nil), r.Dense(i)...)
	case KindRoaring:
		out := make([]uint64, r.wordsPerRow)
		r.roaring[i].Iterate(func(x uint32) bool {
			out[x/64] |= 1 << (x % 64)
			return true
		})
		return out
	default:
		// Rows were validated against bitLength on construction.
		out, _ := sba.Decompress(r.sparse[i], r.chunkLen, r.bitLength)
		return out
	}
}

// Convert re-encodes the rows in another representation. chunkLength64 is
// used only when kind is KindSparse.
func (r *Rows) Convert(kind Kind, chunkLength64 int) (*Rows, error) {
	switch kind {
	case KindSparse:
		if chunkLength64 <= 0 {
			return nil, fmt.Errorf("%w: chunk length %d", ErrInvalidConfig, chunkLength64)
		}
		out := make([]sba.Row, r.n)
		for i := range out {
			row, err := sba.Compress(r.Words(i), chunkLength64)
			if err != nil {
				return nil, err
			}
			out[i] = row
		}
		return NewSparse(out, chunkLength64, r.bitLength)
	case KindDense:
		out := make([][]uint64, r.n)
		for i := range out {
			out[i] = r.Words(i)
		}
		return NewDense(out, r.bitLength)
	case KindRoaring:
		out := make([]*roaring.Bitmap, r.n)
		for i := range out {
			rb := roaring.New()
			for w, word := range r.Words(i) {
				for word != 0 {
					rb.Add(uint32(w*64 + bits.TrailingZeros64(word)))
					word &= word - 1
				}
			}
			rb.RunOptimize()
			out[i] = rb
		}
		return NewRoaring(out, r.bitLength)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidConfig, kind)
	}
}

// SizeBytes estimates the heap footprint of the row payload.
func (r *Rows) SizeBytes() uint64 {
	switch r.kind {
	case KindDense:
		return uint64(len(r.dense)) * 8
	case KindRoaring:
		var n uint64
		for _, rb := range r.roaring {
			n += rb.GetSizeInBytes()
		}
		return n
	default:
		var n uint64
		for _, row := range r.sparse {
			n += uint64(len(row.Locs))*4 + uint64(len(row.Chunks))*8
		}
		return n
	}
}
