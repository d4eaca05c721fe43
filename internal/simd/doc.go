// Package simd provides the word-level bit kernels used by the row builder
// and the intersection engine.
//
// # Operations
//
//   - PopcountWords: number of set bits across a word slice (degrees)
//   - AndPopcount: popcount of a[i] & b[i] (intersection of two chunks)
//   - OrPopcount: popcount of a[i] | b[i] (direct union of two chunks)
//
// # Kernel Selection
//
// Runtime CPU feature detection (golang.org/x/sys/cpu) picks between the
// generic kernels and wide kernels that keep independent accumulators per
// lane. The wide kernels only pay off when popcount is a single hardware
// instruction (POPCNT on x86-64, CNT on ARM64 ASIMD); math/bits lowers
// OnesCount64 to those instructions, so no assembly is involved.
//
// Set MTMSTATS_SIMD=generic to force the generic kernels.
package simd
