// Package backend draws outline frames.
//
// Two interchangeable strategies implement [Backend]:
//
//   - [Direct] owns a gg.Context on the goroutine that posts to it and
//     draws every [wire.Draw] synchronously.
//   - [Offloaded] takes ownership of a transferable canvas and hands
//     every message to a worker goroutine over an append-only channel.
//     The worker keeps its own copy of the last frame and handles resize
//     and scroll on its own schedule.
//
// [Open] selects a strategy once and falls back to Direct when the
// canvas cannot be transferred:
//
//	b, err := backend.Open(init, true)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//	_ = b.Post(wire.Draw{Outlines: items})
//
// A Backend is owned by one goroutine. Post and Close must not be called
// concurrently.
package backend
