package outline

import (
	"github.com/gogpu/outline/geom"
	"github.com/gogpu/outline/wire"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := outline.New(
//	    outline.WithRectSource(layout),
//	    outline.WithCanvas(canvas, 1280, 720, 2),
//	)
type Option func(*engineOptions)

type engineOptions struct {
	cfg      Config
	src      geom.RectSource
	measurer geom.TextMeasurer
	canvas   wire.Canvas
	width    float64
	height   float64
	dpr      float64
	viewport *geom.Viewport
}

func defaultEngineOptions() engineOptions {
	return engineOptions{cfg: DefaultConfig(), dpr: 1}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(o *engineOptions) {
		o.cfg = cfg
	}
}

// WithRectSource sets the source of element bounding rectangles.
// Without one, no render event can be placed.
func WithRectSource(src geom.RectSource) Option {
	return func(o *engineOptions) {
		o.src = src
	}
}

// WithTextMeasurer sets how label widths are measured. By default the Go
// Regular font at Config.LabelFontSize is used, falling back to a fixed
// 7px advance when the font cannot be loaded.
func WithTextMeasurer(m geom.TextMeasurer) Option {
	return func(o *engineOptions) {
		o.measurer = m
	}
}

// WithCanvas attaches a drawing target of the given CSS size and device
// pixel ratio. The viewport defaults to the canvas size.
func WithCanvas(c wire.Canvas, width, height, dpr float64) Option {
	return func(o *engineOptions) {
		o.canvas = c
		o.width, o.height, o.dpr = width, height, dpr
	}
}

// WithViewport sets the visible area used to discard off-screen renders.
func WithViewport(width, height float64) Option {
	return func(o *engineOptions) {
		o.viewport = &geom.Viewport{Width: width, Height: height}
	}
}
