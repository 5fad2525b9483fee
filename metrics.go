package roster

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see package
// observability for a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called after each Load. count is the number of indexed
	// entities afterwards, err is nil if successful.
	RecordLoad(count int, duration time.Duration, err error)

	// RecordAdd is called after each Add that reached the store.
	RecordAdd(duration time.Duration, err error)

	// RecordUpdate is called after each Update that reached the store.
	RecordUpdate(duration time.Duration, err error)

	// RecordDelete is called after each Delete that reached the store.
	RecordDelete(duration time.Duration, err error)

	// RecordFind is called after each Find.
	RecordFind(hit bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordAdd(time.Duration, error)       {}
func (NoopMetricsCollector) RecordUpdate(time.Duration, error)    {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)    {}
func (NoopMetricsCollector) RecordFind(bool)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	LoadedEntities atomic.Int64
	AddCount       atomic.Int64
	AddErrors      atomic.Int64
	AddTotalNanos  atomic.Int64
	UpdateCount    atomic.Int64
	UpdateErrors   atomic.Int64
	DeleteCount    atomic.Int64
	DeleteErrors   atomic.Int64
	FindHits       atomic.Int64
	FindMisses     atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(count int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadedEntities.Store(int64(count))
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(_ time.Duration, err error) {
	b.UpdateCount.Add(1)
	if err != nil {
		b.UpdateErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(hit bool) {
	if hit {
		b.FindHits.Add(1)
	} else {
		b.FindMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		LoadedEntities: b.LoadedEntities.Load(),
		AddCount:       b.AddCount.Load(),
		AddErrors:      b.AddErrors.Load(),
		AddAvgNanos:    avg(b.AddTotalNanos.Load(), b.AddCount.Load()),
		UpdateCount:    b.UpdateCount.Load(),
		UpdateErrors:   b.UpdateErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		FindHits:       b.FindHits.Load(),
		FindMisses:     b.FindMisses.Load(),
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
	LoadCount      int64
	LoadErrors     int64
	LoadAvgNanos   int64
	LoadedEntities int64
	AddCount       int64
	AddErrors      int64
	AddAvgNanos    int64
	UpdateCount    int64
	UpdateErrors   int64
	DeleteCount    int64
	DeleteErrors   int64
	FindHits       int64
	FindMisses     int64
}
