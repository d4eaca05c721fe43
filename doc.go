// Package mtmstats computes overlap statistics for many-to-many relations.
//
// Given a relation of (a, b) pairs, mtmstats reports for every item a its
// degree (number of distinct b it connects to), and for every pair of items
// (a1, a2) the size of the intersection and union of their b-sets, from
// which the Jaccard index follows.
//
// # Quick Start
//
//	rel := rows.Relation[string, string]{
//	    {A: "a1", B: "b1"}, {A: "a1", B: "b2"}, {A: "a2", B: "b1"},
//	}
//	degrees, counts, err := mtmstats.Stats(ctx, rel)
//	// degrees["a1"] == 2
//	// counts[[2]string{"a1", "a2"}] == mtmstats.Counts{Intersection: 1, Union: 2}
//
// # Prepared relations
//
// Prepare builds the membership rows once. The result can be enumerated
// repeatedly, streamed partition by partition, or persisted:
//
//	p, err := mtmstats.Prepare(ctx, rel,
//	    mtmstats.WithChunkLength(4),
//	    mtmstats.WithCutoff(1),
//	    mtmstats.WithWorkers(8),
//	)
//	seq, err := p.Pairs(ctx)
//	for pair, err := range seq {
//	    ...
//	}
//
// # Representations
//
// Rows are stored as sparse block arrays by default: only non-zero chunks
// of chunk-length 64-bit words are kept, and two rows are intersected by
// merging their chunk locations. WithDense switches to full word arrays,
// which are faster for small, dense universes. WithKind(rows.KindRoaring)
// uses roaring bitmaps. All three produce identical results.
//
// # Output
//
// Only pairs whose intersection is strictly greater than the cutoff are
// reported. By default each unordered pair is reported once (a1 before a2
// in key order); WithUpperOnly(false) also reports the mirrored pair.
//
// # Persistence
//
// Prepared.Save writes the rows to a blobstore.Store (memory, local
// directory, Amazon S3 or MinIO). Load restores them without rebuilding.
package mtmstats
