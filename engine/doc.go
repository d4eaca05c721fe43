// Package engine counts pairwise intersections between membership rows.
//
// An Engine wraps immutable rows (see package rows) together with their
// degrees and yields every pair of rows whose intersection exceeds a cutoff
// as a lazy sequence:
//
//	e, err := engine.New(r, rows.BaseCounts(r), engine.Config{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	seq, err := e.Pairs(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	for p, err := range seq {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(p.I, p.J, p.Intersection, p.Union(e.Degrees()))
//	}
//
// # Counting
//
// The counting kernel is chosen once per engine from the row
// representation:
//
//   - Sparse rows: two-pointer merge over chunk locations; only chunks
//     present in both rows are touched.
//   - Dense rows: AND-popcount over full word arrays.
//   - Roaring rows: container-wise AND cardinality.
//
// All kernels produce identical counts for identical membership.
//
// # Output shape
//
// For each outer row i, inner rows j range over max(i+1, StartCol)..n-1.
// With UpperOnly unset, the mirrored pair (j, i) follows each (i, j).
// A pair is emitted only when its intersection is strictly greater than
// Cutoff. Unions are never stored: union(i, j) = deg(i) + deg(j) - inter(i, j).
//
// # Parallelism
//
// With Workers > 1 outer rows are processed in waves. Each wave fans out
// over an errgroup, acquires worker slots from the shared
// resource.Controller and charges its result buffers against the
// controller's memory limit. Results are yielded in outer-row order. When
// the consumer stops iterating, the in-flight wave finishes and no further
// wave is dispatched.
package engine
