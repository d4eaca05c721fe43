package sba

import "github.com/hupe1980/mtmstats/internal/simd"

// IntersectionCount returns popcount(a AND b) for two rows compressed with
// the same chunk length. Chunk indices present in only one row are skipped
// without touching their words.
func IntersectionCount(a, b Row, chunkLength64 int) uint64 {
	var sum uint64
	ia, ib := 0, 0
	for ia < len(a.Locs) && ib < len(b.Locs) {
		la, lb := a.Locs[ia], b.Locs[ib]
		switch {
		case la < lb:
			ia++
		case lb < la:
			ib++
		default:
			sum += simd.AndPopcount(a.Chunk(ia, chunkLength64), b.Chunk(ib, chunkLength64))
			ia++
			ib++
		}
	}
	return sum
}

// UnionCount returns popcount(a OR b) computed directly from the two rows.
// The engine derives unions from degrees instead; this exists to
// cross-check that derivation.
func UnionCount(a, b Row, chunkLength64 int) uint64 {
	var sum uint64
	ia, ib := 0, 0
	for ia < len(a.Locs) && ib < len(b.Locs) {
		la, lb := a.Locs[ia], b.Locs[ib]
		switch {
		case la < lb:
			sum += simd.PopcountWords(a.Chunk(ia, chunkLength64))
			ia++
		case lb < la:
			sum += simd.PopcountWords(b.Chunk(ib, chunkLength64))
			ib++
		default:
			sum += simd.OrPopcount(a.Chunk(ia, chunkLength64), b.Chunk(ib, chunkLength64))
			ia++
			ib++
		}
	}
	sum += simd.PopcountWords(a.Chunks[ia*chunkLength64:])
	sum += simd.PopcountWords(b.Chunks[ib*chunkLength64:])
	return sum
}
