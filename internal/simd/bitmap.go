package simd

import "math/bits"

// Kernel function pointers. Generic implementations are the default;
// platform-specific init() functions switch to the wide variants when a
// hardware popcount is available.
var (
	kernelPopcountWords = popcountWordsGeneric
	kernelAndPopcount   = andPopcountGeneric
	kernelOrPopcount    = orPopcountGeneric
)

// PopcountWords counts all set bits across words.
func PopcountWords(words []uint64) uint64 {
	return kernelPopcountWords(words)
}

// AndPopcount returns the number of bits set in both a and b.
// len(b) must be >= len(a).
func AndPopcount(a, b []uint64) uint64 {
	return kernelAndPopcount(a, b)
}

// OrPopcount returns the number of bits set in a or b.
// len(b) must be >= len(a).
func OrPopcount(a, b []uint64) uint64 {
	return kernelOrPopcount(a, b)
}

func useWideKernels() {
	kernelPopcountWords = popcountWordsWide
	kernelAndPopcount = andPopcountWide
	kernelOrPopcount = orPopcountWide
}

func useGenericKernels() {
	kernelPopcountWords = popcountWordsGeneric
	kernelAndPopcount = andPopcountGeneric
	kernelOrPopcount = orPopcountGeneric
}

// ==============================================================================
// Generic implementations
// ==============================================================================

func popcountWordsGeneric(words []uint64) uint64 {
	var count uint64
	i := 0
	for ; i+4 <= len(words); i += 4 {
		count += uint64(bits.OnesCount64(words[i]))
		count += uint64(bits.OnesCount64(words[i+1]))
		count += uint64(bits.OnesCount64(words[i+2]))
		count += uint64(bits.OnesCount64(words[i+3]))
	}
	for ; i < len(words); i++ {
		count += uint64(bits.OnesCount64(words[i]))
	}
	return count
}

func andPopcountGeneric(a, b []uint64) uint64 {
	b = b[:len(a)]
	var count uint64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		count += uint64(bits.OnesCount64(a[i] & b[i]))
		count += uint64(bits.OnesCount64(a[i+1] & b[i+1]))
		count += uint64(bits.OnesCount64(a[i+2] & b[i+2]))
		count += uint64(bits.OnesCount64(a[i+3] & b[i+3]))
	}
	for ; i < len(a); i++ {
		count += uint64(bits.OnesCount64(a[i] & b[i]))
	}
	return count
}

func orPopcountGeneric(a, b []uint64) uint64 {
	b = b[:len(a)]
	var count uint64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		count += uint64(bits.OnesCount64(a[i] | b[i]))
		count += uint64(bits.OnesCount64(a[i+1] | b[i+1]))
		count += uint64(bits.OnesCount64(a[i+2] | b[i+2]))
		count += uint64(bits.OnesCount64(a[i+3] | b[i+3]))
	}
	for ; i < len(a); i++ {
		count += uint64(bits.OnesCount64(a[i] | b[i]))
	}
	return count
}

// ==============================================================================
// Wide implementations (hardware popcount)
// ==============================================================================

// Four independent accumulators let the popcount units retire in parallel
// instead of serializing on a single add chain.

func popcountWordsWide(words []uint64) uint64 {
	var c0, c1, c2, c3 uint64
	i := 0
	for ; i+8 <= len(words); i += 8 {
		c0 += uint64(bits.OnesCount64(words[i]) + bits.OnesCount64(words[i+4]))
		c1 += uint64(bits.OnesCount64(words[i+1]) + bits.OnesCount64(words[i+5]))
		c2 += uint64(bits.OnesCount64(words[i+2]) + bits.OnesCount64(words[i+6]))
		c3 += uint64(bits.OnesCount64(words[i+3]) + bits.OnesCount64(words[i+7]))
	}
	for ; i < len(words); i++ {
		c0 += uint64(bits.OnesCount64(words[i]))
	}
	return c0 + c1 + c2 + c3
}

func andPopcountWide(a, b []uint64) uint64 {
	b = b[:len(a)]
	var c0, c1, c2, c3 uint64
	i := 0
	for ; i+8 <= len(a); i += 8 {
		c0 += uint64(bits.OnesCount64(a[i]&b[i]) + bits.OnesCount64(a[i+4]&b[i+4]))
		c1 += uint64(bits.OnesCount64(a[i+1]&b[i+1]) + bits.OnesCount64(a[i+5]&b[i+5]))
		c2 += uint64(bits.OnesCount64(a[i+2]&b[i+2]) + bits.OnesCount64(a[i+6]&b[i+6]))
		c3 += uint64(bits.OnesCount64(a[i+3]&b[i+3]) + bits.OnesCount64(a[i+7]&b[i+7]))
	}
	for ; i < len(a); i++ {
		c0 += uint64(bits.OnesCount64(a[i] & b[i]))
	}
	return c0 + c1 + c2 + c3
}

func orPopcountWide(a, b []uint64) uint64 {
	b = b[:len(a)]
	var c0, c1, c2, c3 uint64
	i := 0
	for ; i+8 <= len(a); i += 8 {
		c0 += uint64(bits.OnesCount64(a[i]|b[i]) + bits.OnesCount64(a[i+4]|b[i+4]))
		c1 += uint64(bits.OnesCount64(a[i+1]|b[i+1]) + bits.OnesCount64(a[i+5]|b[i+5]))
		c2 += uint64(bits.OnesCount64(a[i+2]|b[i+2]) + bits.OnesCount64(a[i+6]|b[i+6]))
		c3 += uint64(bits.OnesCount64(a[i+3]|b[i+3]) + bits.OnesCount64(a[i+7]|b[i+7]))
	}
	for ; i < len(a); i++ {
		c0 += uint64(bits.OnesCount64(a[i] | b[i]))
	}
	return c0 + c1 + c2 + c3
}
