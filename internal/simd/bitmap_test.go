package simd

import (
	"math/bits"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func naivePopcount(words []uint64) uint64 {
	var n uint64
	for _, w := range words {
		n += uint64(bits.OnesCount64(w))
	}
	return n
}

func randomWords(rng *rand.Rand, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
	}
	return out
}

func TestPopcountWords(t *testing.T) {
	tests := []struct {
		name  string
		words []uint64
		want  uint64
	}{
		{name: "Empty", words: []uint64{}, want: 0},
		{name: "Single word", words: []uint64{0xFF}, want: 8},
		{name: "All ones", words: []uint64{^uint64(0), ^uint64(0)}, want: 128},
		{name: "5 words (unroll + tail)", words: []uint64{1, 3, 7, 15, 31}, want: 15},
		{name: "9 words (wide + tail)", words: []uint64{1, 1, 1, 1, 1, 1, 1, 1, 1}, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PopcountWords(tt.words))
			assert.Equal(t, tt.want, popcountWordsGeneric(tt.words))
			assert.Equal(t, tt.want, popcountWordsWide(tt.words))
		})
	}
}

func TestAndOrPopcount(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []uint64
		wantAnd uint64
		wantOr  uint64
	}{
		{name: "Empty", a: []uint64{}, b: []uint64{}, wantAnd: 0, wantOr: 0},
		{name: "Disjoint", a: []uint64{0xF0}, b: []uint64{0x0F}, wantAnd: 0, wantOr: 8},
		{name: "Identical", a: []uint64{0xFF, 0x1}, b: []uint64{0xFF, 0x1}, wantAnd: 9, wantOr: 9},
		{name: "Longer b is truncated", a: []uint64{0x3}, b: []uint64{0x1, ^uint64(0)}, wantAnd: 1, wantOr: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAnd, AndPopcount(tt.a, tt.b))
			assert.Equal(t, tt.wantOr, OrPopcount(tt.a, tt.b))
		})
	}
}

func TestKernelsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{0, 1, 3, 4, 7, 8, 9, 16, 33, 257} {
		a := randomWords(rng, n)
		b := randomWords(rng, n)

		and := make([]uint64, n)
		or := make([]uint64, n)
		for i := range a {
			and[i] = a[i] & b[i]
			or[i] = a[i] | b[i]
		}

		assert.Equal(t, naivePopcount(a), popcountWordsGeneric(a), "n=%d", n)
		assert.Equal(t, naivePopcount(a), popcountWordsWide(a), "n=%d", n)
		assert.Equal(t, naivePopcount(and), andPopcountGeneric(a, b), "n=%d", n)
		assert.Equal(t, naivePopcount(and), andPopcountWide(a, b), "n=%d", n)
		assert.Equal(t, naivePopcount(or), orPopcountGeneric(a, b), "n=%d", n)
		assert.Equal(t, naivePopcount(or), orPopcountWide(a, b), "n=%d", n)
	}
}

func TestParseISA(t *testing.T) {
	for _, isa := range []ISA{Generic, POPCNT, NEON} {
		got, ok := ParseISA(" " + isa.String() + " ")
		assert.True(t, ok)
		assert.Equal(t, isa, got)
	}

	_, ok := ParseISA("avx9000")
	assert.False(t, ok)
	assert.Equal(t, "unknown", ISA(99).String())
}

func BenchmarkAndPopcount(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	x := randomWords(rng, 1024)
	y := randomWords(rng, 1024)

	b.Run("generic", func(b *testing.B) {
		for b.Loop() {
			_ = andPopcountGeneric(x, y)
		}
	})
	b.Run("wide", func(b *testing.B) {
		for b.Loop() {
			_ = andPopcountWide(x, y)
		}
	})
}

func TestKernelsFullWords(t *testing.T) {
	const n = 4099
	ones := make([]uint64, n)
	for i := range ones {
		ones[i] = ^uint64(0)
	}
	zeros := make([]uint64, n)
	want := uint64(64 * n)

	for name, fn := range map[string]func([]uint64) uint64{
		"popcountGeneric": popcountWordsGeneric,
		"popcountWide":    popcountWordsWide,
		"andGeneric":      func(w []uint64) uint64 { return andPopcountGeneric(w, w) },
		"andWide":         func(w []uint64) uint64 { return andPopcountWide(w, w) },
		"orGeneric":       func(w []uint64) uint64 { return orPopcountGeneric(w, zeros) },
		"orWide":          func(w []uint64) uint64 { return orPopcountWide(w, zeros) },
	} {
		assert.Equal(t, want, fn(ones), name)
	}
	assert.Zero(t, andPopcountWide(ones, zeros))
}
