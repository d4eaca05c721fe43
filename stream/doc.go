// Package stream splits pair enumeration into contiguous outer-row
// partitions so results can be consumed one bounded slice at a time.
//
// Each Partition carries its own lazy pair sequence. Flatten restores the
// single-sequence view, which is identical to enumerating the engine
// without partitioning.
package stream
