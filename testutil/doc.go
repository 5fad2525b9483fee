// Package testutil provides deterministic fixtures for tests and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Records
//
//	rng := testutil.NewRNG(seed)
//	ids := rng.DistinctIDs(1000, 1<<20)  // unique positive keys, shuffled
//	p := rng.Person()                    // name, gender, phone, course, birth date
//
// # Skewed Workloads
//
//	i := rng.Zipf(len(ids), 1.2)         // a few keys receive most lookups
package testutil
