package wire

import (
	"image"

	"github.com/gogpu/outline/geom"
)

// Kind identifies a message type.
type Kind uint8

const (
	KindInitCanvas Kind = iota
	KindResize
	KindDraw
	KindScrollDelta
)

var kindNames = [...]string{
	KindInitCanvas:  "init-canvas",
	KindResize:      "resize",
	KindDraw:        "draw",
	KindScrollDelta: "scroll-delta",
}

// String returns the protocol name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Message is implemented by every protocol message.
type Message interface {
	Kind() Kind
}

// Canvas is the drawing target a backend renders into. Present receives
// the finished frame in device pixels.
type Canvas interface {
	Present(frame *image.RGBA) error
}

// Transferable is implemented by canvases whose ownership can move to
// another goroutine. Transfer returns the handle the new owner must use;
// the original handle must not be used afterwards.
type Transferable interface {
	Canvas
	Transfer() (Canvas, error)
}

// Color is an 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Reason is a bitset explaining why an outline is shown.
type Reason uint8

const (
	ReasonCommitted Reason = 1 << iota
	ReasonUnstable
	ReasonUnnecessary
)

// Has reports whether all bits of f are set.
func (r Reason) Has(f Reason) bool { return r&f == f }

// InitCanvas hands a canvas to a backend.
type InitCanvas struct {
	Canvas           Canvas
	Width, Height    float64
	DevicePixelRatio float64
}

// Kind implements Message.
func (InitCanvas) Kind() Kind { return KindInitCanvas }

// Resize changes the canvas size in CSS pixels.
type Resize struct {
	Width, Height    float64
	DevicePixelRatio float64
}

// Kind implements Message.
func (Resize) Kind() Kind { return KindResize }

// DrawItem is one outline rectangle.
type DrawItem struct {
	Rect      geom.Rect
	Color     Color
	Alpha     float64
	FillAlpha float64
}

// LabelItem is one merged label.
type LabelItem struct {
	Rect    geom.Rect
	Color   Color
	Alpha   float64
	Reasons Reason
	Text    string
}

// Draw carries one frame.
type Draw struct {
	Outlines []DrawItem
	Labels   []LabelItem
}

// Kind implements Message.
func (Draw) Kind() Kind { return KindDraw }

// Translate returns a copy of d with every rectangle moved by (dx, dy).
func (d Draw) Translate(dx, dy float64) Draw {
	out := Draw{
		Outlines: make([]DrawItem, len(d.Outlines)),
		Labels:   make([]LabelItem, len(d.Labels)),
	}
	for i, it := range d.Outlines {
		it.Rect = it.Rect.Translate(dx, dy)
		out.Outlines[i] = it
	}
	for i, l := range d.Labels {
		l.Rect = l.Rect.Translate(dx, dy)
		out.Labels[i] = l
	}
	return out
}

// ScrollDelta shifts drawn content by (DX, DY) CSS pixels.
type ScrollDelta struct {
	DX, DY float64
}

// Kind implements Message.
func (ScrollDelta) Kind() Kind { return KindScrollDelta }
