package simd

import (
	"fmt"
	"os"
	"runtime"
	"testing"
)

// TestMain prints the kernel selection so CI logs show which path ran.
func TestMain(m *testing.M) {
	fmt.Printf("=== SIMD ISA Diagnostics ===\n")
	fmt.Printf("GOOS=%s GOARCH=%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("%s=%q\n", EnvOverride, os.Getenv(EnvOverride))
	fmt.Printf("Active ISA: %s\n", ActiveISA())
	fmt.Printf("Override: %v\n", IsOverridden())
	fmt.Printf("============================\n\n")

	os.Exit(m.Run())
}
