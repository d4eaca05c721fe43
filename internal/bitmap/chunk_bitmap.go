package bitmap

import (
	"math/bits"
	"sync"

	"github.com/hupe1980/mtmstats/sba"
)

// wordBits is the number of bits per word.
const wordBits = 64

// ChunkBitmap is a fixed-universe bitmap with active-chunk tracking.
// It is not safe for concurrent use.
type ChunkBitmap struct {
	// words is chunk-aligned: len(words) is a multiple of chunkLen.
	words []uint64

	// activeChunks has bit k set when chunk k may hold set bits.
	activeChunks []uint64

	chunkLen  int
	bitLength int
}

// New creates a ChunkBitmap for bitLength bits grouped in chunks of
// chunkLength64 words. chunkLength64 must be positive.
func New(bitLength, chunkLength64 int) *ChunkBitmap {
	numWords := (bitLength + wordBits - 1) / wordBits
	numChunks := (numWords + chunkLength64 - 1) / chunkLength64
	return &ChunkBitmap{
		words:        make([]uint64, numChunks*chunkLength64),
		activeChunks: make([]uint64, (numChunks+wordBits-1)/wordBits),
		chunkLen:     chunkLength64,
		bitLength:    bitLength,
	}
}

// Add sets bit id. Returns false if id is outside the universe.
func (cb *ChunkBitmap) Add(id uint32) bool {
	if int(id) >= cb.bitLength {
		return false
	}
	w := int(id / wordBits)
	cb.words[w] |= uint64(1) << (id % wordBits)
	chunk := w / cb.chunkLen
	cb.activeChunks[chunk/wordBits] |= uint64(1) << (chunk % wordBits)
	return true
}

// Clear zeroes every touched chunk.
func (cb *ChunkBitmap) Clear() {
	for maskIdx, mask := range cb.activeChunks {
		for mask != 0 {
			chunk := maskIdx*wordBits + bits.TrailingZeros64(mask)
			clear(cb.words[chunk*cb.chunkLen : (chunk+1)*cb.chunkLen])
			mask &= mask - 1
		}
		cb.activeChunks[maskIdx] = 0
	}
}

// ActiveChunkCount returns the number of touched chunks.
func (cb *ChunkBitmap) ActiveChunkCount() int {
	n := 0
	for _, mask := range cb.activeChunks {
		n += bits.OnesCount64(mask)
	}
	return n
}

// Compress returns the SBA row of the current contents. The returned row
// owns its memory; the bitmap may be cleared and reused immediately.
func (cb *ChunkBitmap) Compress() sba.Row {
	row := sba.Row{}
	n := cb.ActiveChunkCount()
	if n == 0 {
		return row
	}
	row.Locs = make([]uint32, 0, n)
	row.Chunks = make([]uint64, 0, n*cb.chunkLen)
	cb.forEachChunk(func(chunk int, words []uint64) {
		// Append only rejects out-of-order locations; the mask walk is ascending.
		_ = row.Append(uint32(chunk), words)
	})
	return row
}

func (cb *ChunkBitmap) forEachChunk(fn func(chunk int, words []uint64)) {
	for maskIdx, mask := range cb.activeChunks {
		for mask != 0 {
			chunk := maskIdx*wordBits + bits.TrailingZeros64(mask)
			fn(chunk, cb.words[chunk*cb.chunkLen:(chunk+1)*cb.chunkLen])
			mask &= mask - 1
		}
	}
}

// Pool recycles ChunkBitmaps of one shape. Row builders take one scratch
// bitmap per shard.
type Pool struct {
	pool sync.Pool
}

// NewPool creates a pool of bitmaps for bitLength bits and chunkLength64-word chunks.
func NewPool(bitLength, chunkLength64 int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return New(bitLength, chunkLength64)
			},
		},
	}
}

// Get returns a cleared bitmap.
func (p *Pool) Get() *ChunkBitmap {
	return p.pool.Get().(*ChunkBitmap)
}

// Put clears cb and returns it to the pool.
func (p *Pool) Put(cb *ChunkBitmap) {
	if cb == nil {
		return
	}
	cb.Clear()
	p.pool.Put(cb)
}
