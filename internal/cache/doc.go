// Package cache provides a bounded, generic LRU cache.
//
// LRU is owned by a single goroutine. The outline engine runs aggregation,
// animation and label layout on one goroutine per overlay session, so the
// cache carries no mutex and must not be shared across goroutines.
//
//	widths := cache.New[string, float64](1000)
//	w := widths.GetOrCreate("Button ×3", measure)
//
// # Statistics
//
// Hits, misses and evictions are counted for [LRU.Stats] so overlay
// diagnostics can report text-cache effectiveness.
package cache
