// Package outline aggregates component render events into animated
// on-screen outlines and labels.
//
// # Overview
//
// A profiler hook reports every render of every component instance as a
// RenderEvent. The Engine folds the events of one frame together, asks a
// geom.RectSource where each element is on screen, and groups renders by
// position: renders landing on the same rounded rectangle share one
// Outline. Outlines fade over Config.TotalFrames ticks unless new renders
// keep them alive, and glide toward their latest position when
// Config.SmoothlyAnimateOutlines is set.
//
// Every frame each visible Outline contributes a stroked rectangle and a
// label naming its components ("Row ×3, Cell"). Overlapping labels are
// merged so that no two drawn labels intersect.
//
// # Quick Start
//
//	e, err := outline.New(
//	    outline.WithRectSource(layout),
//	    outline.WithCanvas(canvas, 1280, 720, 2),
//	)
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.Schedule(outline.RenderEvent{Instance: 7, Name: "Row", Node: rowNode, DidCommit: true})
//	_ = e.Frame(ctx)
//
// # Threading
//
// The synchronous API belongs to one goroutine. Engine.Run drives frames
// from a ticker that only runs while outlines are live; other goroutines
// feed it through Engine.Submit and Engine.Control.
//
// # Color
//
// Outline color interpolates from Config.Cool to Config.Hot by severity,
// a weighted blend of the page frame-rate deficit and average render time.
// Outlines whose renders were all unnecessary are drawn in
// Config.Unnecessary instead.
//
// # Backends
//
// Drawing goes through the backend package. When the canvas can be
// transferred, rendering runs on a worker goroutine; otherwise it falls
// back to drawing on the caller's goroutine. See backend.Open.
//
// # Logging
//
// The package logs nothing by default. Use SetLogger to route diagnostics
// to an slog.Logger.
package outline
