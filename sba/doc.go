// Package sba implements the Sparse Block Array codec.
//
// A bit vector is cut into fixed-size chunks of chunkLength64 64-bit words.
// Only non-zero chunks are kept, together with their chunk index:
//
//	bits:   | chunk 0 | chunk 1 | chunk 2 | chunk 3 | chunk 4 |
//	        |  0...0  |  0110.. |  0...0  |  0...0  |  1000.. |
//
//	Locs:   [1, 4]
//	Chunks: [chunk 1 words..., chunk 4 words...]
//
// Two compressed rows intersect by merging their Locs; only chunk indices
// present in both rows are ever read, so the cost of a pairwise count is
// proportional to the number of shared non-zero chunks rather than to the
// universe size.
//
// Chunk size is a tuning knob. Larger chunks lower per-chunk bookkeeping but
// a single set bit forces the whole chunk to be stored.
package sba
