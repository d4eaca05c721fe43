package mtmstats

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after rows are built. rows and bits describe
	// the resulting matrix; err is nil if successful.
	RecordBuild(rows, bits int, duration time.Duration, err error)

	// RecordPairs is called when a pair enumeration ends, either exhausted
	// or with an error. Enumerations abandoned by the consumer are not
	// recorded.
	RecordPairs(pairs int, duration time.Duration, err error)

	// RecordPartition is called after a partition's pairs were consumed.
	RecordPartition(index, pairs int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPairs(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordPartition(int, int, time.Duration)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	RowsBuilt       atomic.Int64
	PairsCount      atomic.Int64
	PairsErrors     atomic.Int64
	PairsEmitted    atomic.Int64
	PairsTotalNanos atomic.Int64
	PartitionCount  atomic.Int64
	PartitionPairs  atomic.Int64
	PartitionNanos  atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(rows, bits int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.RowsBuilt.Add(int64(rows))
}

// RecordPairs implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPairs(pairs int, duration time.Duration, err error) {
	b.PairsCount.Add(1)
	b.PairsEmitted.Add(int64(pairs))
	b.PairsTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PairsErrors.Add(1)
	}
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(index, pairs int, duration time.Duration) {
	b.PartitionCount.Add(1)
	b.PartitionPairs.Add(int64(pairs))
	b.PartitionNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildAvgNanos:     avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		RowsBuilt:         b.RowsBuilt.Load(),
		PairsCount:        b.PairsCount.Load(),
		PairsErrors:       b.PairsErrors.Load(),
		PairsEmitted:      b.PairsEmitted.Load(),
		PairsAvgNanos:     avg(b.PairsTotalNanos.Load(), b.PairsCount.Load()),
		PartitionCount:    b.PartitionCount.Load(),
		PartitionPairs:    b.PartitionPairs.Load(),
		PartitionAvgNanos: avg(b.PartitionNanos.Load(), b.PartitionCount.Load()),
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
	BuildCount        int64
	BuildErrors       int64
	BuildAvgNanos     int64
	RowsBuilt         int64
	PairsCount        int64
	PairsErrors       int64
	PairsEmitted      int64
	PairsAvgNanos     int64
	PartitionCount    int64
	PartitionPairs    int64
	PartitionAvgNanos int64
}
