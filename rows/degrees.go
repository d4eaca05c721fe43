package rows

import "github.com/hupe1980/mtmstats/internal/simd"

// BaseCounts returns the degree (number of set bits) of every row.
// A row with no set bits has degree 0.
//
// Counts are uint64: the largest possible degree is |B| < 2^32, so neither
// a degree nor the union derived from two degrees can overflow.
func BaseCounts(r *Rows) []uint64 {
	out := make([]uint64, r.Len())
	switch r.Kind() {
	case KindDense:
		for i := range out {
			out[i] = simd.PopcountWords(r.Dense(i))
		}
	case KindRoaring:
		for i := range out {
			out[i] = r.Roaring(i).GetCardinality()
		}
	default:
		for i := range out {
			out[i] = r.Sparse(i).Popcount()
		}
	}
	return out
}
