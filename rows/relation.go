package rows

import (
	"cmp"
	"iter"
	"slices"
)

// Pair is one (a, b) membership fact.
type Pair[A, B cmp.Ordered] struct {
	A A
	B B
}

// Relation is an unordered collection of pairs. Duplicates are allowed and
// collapse during Build.
type Relation[A, B cmp.Ordered] []Pair[A, B]

// Collect gathers a pair sequence into a Relation.
func Collect[A, B cmp.Ordered](seq iter.Seq2[A, B]) Relation[A, B] {
	var rel Relation[A, B]
	for a, b := range seq {
		rel = append(rel, Pair[A, B]{A: a, B: b})
	}
	return rel
}

// All iterates the pairs of the relation.
func (r Relation[A, B]) All() iter.Seq2[A, B] {
	return func(yield func(A, B) bool) {
		for _, p := range r {
			if !yield(p.A, p.B) {
				return
			}
		}
	}
}

// Set is a sorted, deduplicated sequence of keys. A key's position is its
// dense index.
type Set[K cmp.Ordered] []K

// NewSet sorts and deduplicates keys. The input slice is reordered in place.
func NewSet[K cmp.Ordered](keys []K) Set[K] {
	slices.Sort(keys)
	return Set[K](slices.Clip(slices.Compact(keys)))
}

// Len returns the number of keys.
func (s Set[K]) Len() int { return len(s) }

// Index returns the dense index of k.
func (s Set[K]) Index(k K) (int, bool) {
	return slices.BinarySearch(s, k)
}

// Key returns the key at index i.
func (s Set[K]) Key(i int) K { return s[i] }

func projectA[A, B cmp.Ordered](rel Relation[A, B]) Set[A] {
	keys := make([]A, len(rel))
	for i, p := range rel {
		keys[i] = p.A
	}
	return NewSet(keys)
}

func projectB[A, B cmp.Ordered](rel Relation[A, B]) Set[B] {
	keys := make([]B, len(rel))
	for i, p := range rel {
		keys[i] = p.B
	}
	return NewSet(keys)
}

func indexOf[K cmp.Ordered](s Set[K]) map[K]int {
	m := make(map[K]int, len(s))
	for i, k := range s {
		m[k] = i
	}
	return m
}
