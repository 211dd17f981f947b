// Package mmap provides read-only memory-mapped file access.
//
// Term vector segment files are immutable once written, so mapping
// them gives every reader zero-copy random access through the page
// cache, and clones of an input can share one mapping.
//
// # Usage
//
//	m, err := mmap.Open("seg.tvd")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent,
// but callers must ensure no goroutine touches Bytes() after Close
// returns.
package mmap
