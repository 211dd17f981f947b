// Package testutil provides testing utilities for termvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded thread-safe RNG and generators for random
// term dictionaries and valid random documents.
//
// # Random Corpus Generation
//
//	rng := testutil.NewRNG(seed)
//	corpus := rng.Corpus(500, testutil.DefaultCorpusConfig())
//	w, _ := termvec.NewWriter(dir, "seg0", corpus.FieldInfos)
package testutil
