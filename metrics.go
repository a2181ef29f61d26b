package pkcc

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordTraining is called after each codebook training run.
	// iterations is the number of Lloyd passes performed.
	RecordTraining(iterations int, duration time.Duration, err error)

	// RecordCompress is called after each compress operation.
	// bytes is the container size; zero on error.
	RecordCompress(bytes int64, duration time.Duration, err error)

	// RecordDecompress is called after each decompress operation.
	RecordDecompress(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTraining(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordCompress(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecompress(time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainingCount        atomic.Int64
	TrainingErrors       atomic.Int64
	TrainingIterations   atomic.Int64
	TrainingTotalNanos   atomic.Int64
	CompressCount        atomic.Int64
	CompressErrors       atomic.Int64
	CompressBytes        atomic.Int64
	CompressTotalNanos   atomic.Int64
	DecompressCount      atomic.Int64
	DecompressErrors     atomic.Int64
	DecompressTotalNanos atomic.Int64
}

// RecordTraining implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTraining(iterations int, duration time.Duration, err error) {
	b.TrainingCount.Add(1)
	b.TrainingIterations.Add(int64(iterations))
	b.TrainingTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainingErrors.Add(1)
	}
}

// RecordCompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompress(bytes int64, duration time.Duration, err error) {
	b.CompressCount.Add(1)
	b.CompressBytes.Add(bytes)
	b.CompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompressErrors.Add(1)
	}
}

// RecordDecompress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecompress(duration time.Duration, err error) {
	b.DecompressCount.Add(1)
	b.DecompressTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecompressErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainingCount:      b.TrainingCount.Load(),
		TrainingErrors:     b.TrainingErrors.Load(),
		TrainingIterations: b.TrainingIterations.Load(),
		TrainingAvgNanos:   avg(b.TrainingTotalNanos.Load(), b.TrainingCount.Load()),
		CompressCount:      b.CompressCount.Load(),
		CompressErrors:     b.CompressErrors.Load(),
		CompressBytes:      b.CompressBytes.Load(),
		CompressAvgNanos:   avg(b.CompressTotalNanos.Load(), b.CompressCount.Load()),
		DecompressCount:    b.DecompressCount.Load(),
		DecompressErrors:   b.DecompressErrors.Load(),
		DecompressAvgNanos: avg(b.DecompressTotalNanos.Load(), b.DecompressCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainingCount      int64
	TrainingErrors     int64
	TrainingIterations int64
	TrainingAvgNanos   int64
	CompressCount      int64
	CompressErrors     int64
	CompressBytes      int64
	CompressAvgNanos   int64
	DecompressCount    int64
	DecompressErrors   int64
	DecompressAvgNanos int64
}
