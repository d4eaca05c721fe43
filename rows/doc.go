// Package rows turns a many-to-many relation into one membership row per
// item-A value and computes each row's degree.
//
// Build sorts and deduplicates both sides of the relation, assigns dense
// indices, and encodes every item-A row in one of three representations:
//
//   - KindSparse: SBA-compressed rows (package sba), the production layout
//   - KindDense: one full word array per row, the correctness oracle
//   - KindRoaring: one roaring bitmap per row, a second independent oracle
//
// The representation is chosen once at build time and recorded on Rows; the
// intersection engine selects its counting strategy from it.
//
// Rows are immutable after construction and safe for concurrent reads.
package rows
