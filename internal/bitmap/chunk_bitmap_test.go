package bitmap

import (
	"math/rand"
	"testing"

	"github.com/hupe1980/mtmstats/sba"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkBitmap(t *testing.T) {
	t.Run("AddOutsideUniverse", func(t *testing.T) {
		cb := New(200, 2)
		assert.Zero(t, cb.ActiveChunkCount())
		assert.True(t, cb.Add(0))
		assert.True(t, cb.Add(130))
		assert.False(t, cb.Add(200))
		assert.Equal(t, 2, cb.ActiveChunkCount())

		row := cb.Compress()
		assert.Equal(t, []uint32{0, 1}, row.Locs)
		assert.Equal(t, []uint64{1, 0, 1 << 2, 0}, row.Chunks)
	})

	t.Run("ClearOnlyResetsTouchedChunks", func(t *testing.T) {
		cb := New(64*300, 1)
		cb.Add(5)
		cb.Add(64 * 299)
		cb.Clear()
		assert.Zero(t, cb.ActiveChunkCount())
		assert.True(t, cb.Compress().IsEmpty())
		for _, w := range cb.words {
			assert.Zero(t, w)
		}
	})
}

func TestCompressMatchesCodec(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, c := range []int{1, 2, 5} {
		bitLength := 64*37 + 13
		cb := New(bitLength, c)
		for round := 0; round < 5; round++ {
			cb.Clear()
			ref := make([]uint64, (bitLength+63)/64)
			n := rng.Intn(50)
			for k := 0; k < n; k++ {
				id := uint32(rng.Intn(bitLength))
				cb.Add(id)
				ref[id/64] |= 1 << (id % 64)
			}

			want, err := sba.Compress(ref, c)
			require.NoError(t, err)
			got := cb.Compress()
			assert.Equal(t, want.Locs, got.Locs, "c=%d", c)
			assert.Equal(t, want.Chunks, got.Chunks, "c=%d", c)

			dense, err := sba.Decompress(got, c, bitLength)
			require.NoError(t, err)
			assert.Equal(t, ref, dense)
		}
	}
}

func TestPool(t *testing.T) {
	p := NewPool(128, 1)
	cb := p.Get()
	cb.Add(7)
	p.Put(cb)
	p.Put(nil)

	again := p.Get()
	assert.Zero(t, again.ActiveChunkCount())
	assert.True(t, again.Add(127))
	assert.False(t, again.Add(128))
	assert.Equal(t, []uint32{1}, again.Compress().Locs)
}
