// Package conv provides checked integer narrowing.
//
// Row indices and item-B positions are carried as int in the public API but
// stored as uint32 chunk locations and roaring members. Every narrowing that
// can observe caller-controlled or persisted values goes through this
// package so an oversized universe fails loudly instead of wrapping.
package conv
