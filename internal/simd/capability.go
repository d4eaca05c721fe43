package simd

import (
	"os"
	"strings"
)

// ISA identifies the kernel family in use.
type ISA uint8

const (
	// Generic represents the portable unrolled kernels.
	Generic ISA = iota
	// POPCNT represents x86-64 with the POPCNT instruction.
	POPCNT
	// NEON represents ARM64 ASIMD (vector CNT).
	NEON
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case POPCNT:
		return "popcnt"
	case NEON:
		return "neon"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "popcnt":
		return POPCNT, true
	case "neon":
		return NEON, true
	default:
		return Generic, false
	}
}

// EnvOverride is the environment variable consulted at init.
const EnvOverride = "MTMSTATS_SIMD"

// Initialized once at package init.
var (
	activeISA   ISA
	hasOverride bool

	hasPOPCNT bool
	hasASIMD  bool
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv(EnvOverride); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			hasOverride = true
			selectISA(isa)
			return
		}
	}
	selectISA(selectBestISA())
}

func selectISA(isa ISA) {
	activeISA = isa
	if isa == Generic {
		useGenericKernels()
		return
	}
	useWideKernels()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case POPCNT:
		return hasPOPCNT
	case NEON:
		return hasASIMD
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch {
	case hasPOPCNT:
		return POPCNT
	case hasASIMD:
		return NEON
	default:
		return Generic
	}
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if MTMSTATS_SIMD selected the ISA.
func IsOverridden() bool {
	return hasOverride
}
