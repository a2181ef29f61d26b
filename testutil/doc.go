// Package testutil provides testing utilities for pkcc.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic random images and a scripted random source
// for pinning the exact draw sequence seen by the trainer.
//
// # Random Images
//
//	rng := testutil.NewRNG(seed)
//	img := rng.NoiseImage(64, 64)
//	img := rng.PatternImage(64, 64, 2, 2, 8, 6) // 8 block patterns, ±6 noise
//
// # Fixed Images
//
//	img := testutil.UniformImage(8, 8, 128)
//	img := testutil.BlockCheckerboard(4, 4, 2, 2, 0, 255)
//
// # Scripted Draws
//
//	src := testutil.NewScriptedSource(testutil.IntDraw(2), testutil.IntDraw(0))
//	rng := rand.New(src) // rng.Intn(n) yields 2 % n, then 0
package testutil
