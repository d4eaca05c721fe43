// Package bitmap provides ChunkBitmap, the scratch bit buffer used while
// building SBA rows.
//
// A ChunkBitmap covers the whole item-B universe but remembers which chunks
// were touched since the last Clear:
//
//	Words (chunkLength64 words per chunk):
//	┌──────────┬──────────┬──────────┬──────────┬─────
//	│ chunk 0  │ chunk 1  │ chunk 2  │ chunk 3  │ ...
//	└──────────┴──────────┴──────────┴──────────┴─────
//
//	Active chunk mask ([]uint64), bit k = chunk k touched:
//	┌───────────────────────┬─────────────────────────┬─────
//	│ word 0: chunks 0-63   │ word 1: chunks 64-127   │ ...
//	└───────────────────────┴─────────────────────────┴─────
//
// Compressing and clearing walk the mask with TrailingZeros64, so the cost of
// turning one item's B-indices into a row is proportional to the chunks it
// touches, not to |B|. A builder keeps one ChunkBitmap per goroutine and
// reuses it for every row.
package bitmap
