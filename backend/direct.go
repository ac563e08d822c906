package backend

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/outline/wire"
)

// Direct draws frames synchronously with a gg.Context.
type Direct struct {
	opts   options
	canvas wire.Canvas
	dc     *gg.Context
	face   text.Face // opts.face scaled to the device pixel ratio
	dpr    float64
	width  float64
	height float64
	last   wire.Draw
	frames int
	closed bool
}

// NewDirect creates an uninitialized Direct backend.
func NewDirect(opts ...Option) *Direct {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Direct{opts: o, dpr: 1}
}

// Name implements Backend.
func (d *Direct) Name() string { return "direct" }

// Frames returns the number of frames presented.
func (d *Direct) Frames() int { return d.frames }

// Post implements Backend.
func (d *Direct) Post(msg wire.Message) error {
	if d.closed {
		return ErrClosed
	}
	switch m := msg.(type) {
	case wire.InitCanvas:
		return d.init(m)
	case wire.Resize:
		return d.resize(m.Width, m.Height, m.DevicePixelRatio)
	case wire.Draw:
		return d.draw(m)
	case wire.ScrollDelta:
		if d.dc == nil {
			return ErrNotInitialized
		}
		return d.draw(d.last.Translate(m.DX, m.DY))
	default:
		return fmt.Errorf("backend: unexpected message %T", msg)
	}
}

// Close implements Backend.
func (d *Direct) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.canvas = nil
	if d.dc != nil {
		err := d.dc.Close()
		d.dc = nil
		return err
	}
	return nil
}

func (d *Direct) init(m wire.InitCanvas) error {
	if m.Canvas == nil {
		return fmt.Errorf("%w: nil canvas", ErrNotInitialized)
	}
	d.canvas = m.Canvas
	return d.resize(m.Width, m.Height, m.DevicePixelRatio)
}

func (d *Direct) resize(width, height, dpr float64) error {
	dpr = normalizeDPR(dpr)
	pw, err := devicePixels(width, dpr)
	if err != nil {
		return err
	}
	ph, err := devicePixels(height, dpr)
	if err != nil {
		return err
	}

	if d.dc == nil {
		d.dc = gg.NewContext(pw, ph)
	} else if err := d.dc.Resize(pw, ph); err != nil {
		return fmt.Errorf("backend: resize: %w", err)
	}
	if d.face != nil && d.dpr == dpr {
		d.width, d.height = width, height
		return nil
	}
	d.width, d.height, d.dpr = width, height, dpr
	if f := d.opts.face; f != nil {
		d.face = f.Source().Face(f.Size() * dpr)
	}
	return nil
}

func (d *Direct) draw(m wire.Draw) error {
	if d.dc == nil || d.canvas == nil {
		return ErrNotInitialized
	}
	d.last = m
	dc, s := d.dc, d.dpr

	dc.Clear()
	dc.SetLineWidth(s)
	for _, it := range m.Outlines {
		r, g, b := rgb(it.Color)
		x, y, w, h := it.Rect.X*s, it.Rect.Y*s, it.Rect.Width*s, it.Rect.Height*s

		dc.SetRGBA(r, g, b, it.FillAlpha)
		dc.DrawRectangle(x, y, w, h)
		_ = dc.Fill()

		dc.SetRGBA(r, g, b, it.Alpha)
		dc.DrawRectangle(x, y, w, h)
		_ = dc.Stroke()
	}

	if d.face != nil {
		dc.SetFont(d.face)
	}
	descent := 0.0
	if d.face != nil {
		descent = d.face.Metrics().Descent
	}
	for _, l := range m.Labels {
		r, g, b := rgb(l.Color)
		x, y, w, h := l.Rect.X*s, l.Rect.Y*s, l.Rect.Width*s, l.Rect.Height*s

		dc.SetRGBA(r, g, b, l.Alpha)
		dc.DrawRectangle(x, y, w, h)
		_ = dc.Fill()

		if d.face == nil || l.Text == "" {
			continue
		}
		dc.SetRGBA(1, 1, 1, l.Alpha)
		dc.DrawString(l.Text, x+d.opts.labelPadding*s, y+h-descent)
	}

	return d.present()
}

func (d *Direct) present() error {
	img := d.dc.Image()
	frame, ok := img.(*image.RGBA)
	if !ok {
		frame = image.NewRGBA(img.Bounds())
		draw.Draw(frame, frame.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	if err := d.canvas.Present(frame); err != nil {
		return fmt.Errorf("backend: present: %w", err)
	}
	d.frames++
	return nil
}

func rgb(c wire.Color) (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}
