// Package wire defines the messages exchanged between the outline engine
// and a render backend, and a compact binary encoding for outline batches.
//
// # Messages
//
// A backend understands four messages:
//
//   - [InitCanvas] hands over the drawing target and its size
//   - [Resize] changes the target size or pixel ratio
//   - [Draw] carries one frame: outline rectangles and merged labels
//   - [ScrollDelta] shifts everything already drawn without touching
//     alpha or frame state
//
// # Compact encoding
//
// High-volume outline updates are packed as fixed 7-field records
//
//	[instanceKey, count, x, y, width, height, committed]
//
// of little-endian float64 values, with component names carried in a
// parallel slice indexed identically. See [PackOutlines].
package wire
