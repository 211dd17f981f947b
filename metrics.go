package termvec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAddDocument is called after each AddDocument.
	// numFields is the number of vectored fields, err is nil if successful.
	RecordAddDocument(numFields int, err error)

	// RecordChunkFlush is called after each chunk flush. rawBytes and
	// storedBytes are the payload blob sizes before and after
	// compression; dirty marks a chunk flushed below the size threshold.
	RecordChunkFlush(docs int, rawBytes, storedBytes int64, dirty bool)

	// RecordGet is called after each vector Get.
	RecordGet(duration time.Duration, err error)

	// RecordLocatorLookup is called for each chunk locator lookup.
	// hit reports whether the locator block was already decoded.
	RecordLocatorLookup(hit bool)

	// RecordIntegrityCheck is called after each CheckIntegrity.
	RecordIntegrityCheck(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAddDocument(int, error)                 {}
func (NoopMetricsCollector) RecordChunkFlush(int, int64, int64, bool)     {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)               {}
func (NoopMetricsCollector) RecordLocatorLookup(bool)                     {}
func (NoopMetricsCollector) RecordIntegrityCheck(time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DocsAdded         atomic.Int64
	AddErrors         atomic.Int64
	FieldsAdded       atomic.Int64
	ChunksFlushed     atomic.Int64
	DirtyChunks       atomic.Int64
	RawPayloadBytes   atomic.Int64
	StoredBytes       atomic.Int64
	GetCount          atomic.Int64
	GetErrors         atomic.Int64
	GetTotalNanos     atomic.Int64
	LocatorHits       atomic.Int64
	LocatorMisses     atomic.Int64
	IntegrityChecks   atomic.Int64
	IntegrityFailures atomic.Int64
}

// RecordAddDocument implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddDocument(numFields int, err error) {
	b.DocsAdded.Add(1)
	b.FieldsAdded.Add(int64(numFields))
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordChunkFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordChunkFlush(docs int, rawBytes, storedBytes int64, dirty bool) {
	b.ChunksFlushed.Add(1)
	b.RawPayloadBytes.Add(rawBytes)
	b.StoredBytes.Add(storedBytes)
	if dirty {
		b.DirtyChunks.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// RecordLocatorLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocatorLookup(hit bool) {
	if hit {
		b.LocatorHits.Add(1)
	} else {
		b.LocatorMisses.Add(1)
	}
}

// RecordIntegrityCheck implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIntegrityCheck(duration time.Duration, err error) {
	b.IntegrityChecks.Add(1)
	if err != nil {
		b.IntegrityFailures.Add(1)
	}
}

// BasicMetricsStats is a point-in-time snapshot of a BasicMetricsCollector.
type BasicMetricsStats struct {
	DocsAdded       int64
	AddErrors       int64
	FieldsAdded     int64
	ChunksFlushed   int64
	DirtyChunks     int64
	RawPayloadBytes int64
	StoredBytes     int64
	GetCount        int64
	GetErrors       int64
	GetAvgNanos     int64
	LocatorHits     int64
	LocatorMisses   int64
	IntegrityChecks int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		DocsAdded:       b.DocsAdded.Load(),
		AddErrors:       b.AddErrors.Load(),
		FieldsAdded:     b.FieldsAdded.Load(),
		ChunksFlushed:   b.ChunksFlushed.Load(),
		DirtyChunks:     b.DirtyChunks.Load(),
		RawPayloadBytes: b.RawPayloadBytes.Load(),
		StoredBytes:     b.StoredBytes.Load(),
		GetCount:        b.GetCount.Load(),
		GetErrors:       b.GetErrors.Load(),
		LocatorHits:     b.LocatorHits.Load(),
		LocatorMisses:   b.LocatorMisses.Load(),
		IntegrityChecks: b.IntegrityChecks.Load(),
	}
	if stats.GetCount > 0 {
		stats.GetAvgNanos = b.GetTotalNanos.Load() / stats.GetCount
	}
	return stats
}
