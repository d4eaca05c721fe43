// Package testutil provides testing utilities for mtmstats.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and generators for synthetic
// many-to-many relations with skewed item popularity.
//
// # Synthetic relations
//
//	rng := testutil.NewRNG(seed)
//	rel := rng.GenerateRelation(testutil.RelationConfig{
//	    SizeA:       1000,
//	    SizeB:       100000,
//	    Connections: 50000,
//	})
//
// Items are named "a<i>" and "b<j>". Item weights are drawn from a Beta
// distribution and normalized, so a few items carry most connections.
package testutil
