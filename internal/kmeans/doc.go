// Package kmeans implements k-means clustering (Lloyd's algorithm) for
// codebook training.
//
// Train runs on the calling goroutine. TrainParallel shards the training
// set, accumulates per-shard cluster statistics and reduces them after a
// join, so no locks are taken. Both draw every random number from the
// caller's generator: k initial picks, then one pick per empty cluster in
// ascending cluster order on each update.
package kmeans
