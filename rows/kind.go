package rows

import "strings"

// Kind is the row representation, selected once at build time.
type Kind uint8

const (
	// KindSparse stores SBA-compressed rows.
	KindSparse Kind = iota
	// KindDense stores one full word array per row.
	KindDense
	// KindRoaring stores one roaring bitmap per row.
	KindRoaring
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindSparse:
		return "sparse"
	case KindDense:
		return "dense"
	case KindRoaring:
		return "roaring"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known representation.
func (k Kind) Valid() bool {
	return k <= KindRoaring
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sparse", "sba":
		return KindSparse, true
	case "dense":
		return KindDense, true
	case "roaring":
		return KindRoaring, true
	default:
		return KindSparse, false
	}
}
