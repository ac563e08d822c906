// Package geom holds the geometry layer of the outline overlay: screen
// rectangles and their position keys, batched bounding-rectangle
// measurement, and a bounded cache of measured label text widths.
//
// # Batched measurement
//
// Reading layout one node at a time under a render burst is the dominant
// cost of an overlay. [Batcher] measures a whole set of nodes in bounded
// parallel chunks and hands each chunk to the caller as soon as it is
// ready, on the caller's goroutine:
//
//	b := geom.NewBatcher(src, 64, 4)
//	err := b.Measure(ctx, nodes, func(entries []geom.Entry) {
//	    // fold entries into the store
//	})
//
// Nodes that have left the document between scheduling and measurement
// are skipped silently.
//
// # Text widths
//
// [TextWidths] memoizes label widths in an LRU so a stable set of labels
// costs one map lookup per frame.
package geom
