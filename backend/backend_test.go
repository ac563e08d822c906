package backend

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/outline/geom"
	"github.com/gogpu/outline/wire"
)

// recordCanvas keeps the frames it is given.
type recordCanvas struct {
	frames chan *image.RGBA
}

func newRecordCanvas() *recordCanvas {
	return &recordCanvas{frames: make(chan *image.RGBA, 64)}
}

func (c *recordCanvas) Present(frame *image.RGBA) error {
	c.frames <- frame
	return nil
}

// transferCanvas can move to a worker goroutine.
type transferCanvas struct {
	*recordCanvas
	err         error
	transferred bool
}

func (c *transferCanvas) Transfer() (wire.Canvas, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.transferred = true
	return c.recordCanvas, nil
}

func waitFrame(t *testing.T, c *recordCanvas) *image.RGBA {
	t.Helper()
	select {
	case f := <-c.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func redOutline(r geom.Rect) wire.Draw {
	return wire.Draw{Outlines: []wire.DrawItem{{
		Rect:      r,
		Color:     wire.Color{R: 255},
		Alpha:     1,
		FillAlpha: 1,
	}}}
}

func TestDirectDrawsOutline(t *testing.T) {
	c := newRecordCanvas()
	d := NewDirect()
	if err := d.Post(wire.InitCanvas{Canvas: c, Width: 100, Height: 80, DevicePixelRatio: 1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := d.Post(redOutline(geom.Rect{X: 10, Y: 10, Width: 40, Height: 20})); err != nil {
		t.Fatalf("draw: %v", err)
	}

	f := waitFrame(t, c)
	if f.Bounds().Dx() != 100 || f.Bounds().Dy() != 80 {
		t.Fatalf("unexpected frame size %v", f.Bounds())
	}
	inside := f.RGBAAt(30, 20)
	if inside.R < 200 || inside.G > 50 || inside.A < 200 {
		t.Errorf("expected red inside outline, got %+v", inside)
	}
	if outside := f.RGBAAt(80, 70); outside.A != 0 {
		t.Errorf("expected transparent outside outline, got %+v", outside)
	}
	if d.Frames() != 1 {
		t.Errorf("expected 1 frame, got %d", d.Frames())
	}
}

func TestDirectScalesByPixelRatio(t *testing.T) {
	c := newRecordCanvas()
	d := NewDirect()
	if err := d.Post(wire.InitCanvas{Canvas: c, Width: 50, Height: 40, DevicePixelRatio: 2}); err != nil {
		t.Fatalf("init: %v", err)
	}
	_ = d.Post(redOutline(geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}))
	f := waitFrame(t, c)
	if f.Bounds().Dx() != 100 {
		t.Errorf("expected 100 device pixels wide, got %d", f.Bounds().Dx())
	}
	if p := f.RGBAAt(30, 30); p.R < 200 {
		t.Errorf("expected scaled outline at device (30,30), got %+v", p)
	}
}

func TestDirectScrollRedrawsShifted(t *testing.T) {
	c := newRecordCanvas()
	d := NewDirect()
	_ = d.Post(wire.InitCanvas{Canvas: c, Width: 100, Height: 100, DevicePixelRatio: 1})
	_ = d.Post(redOutline(geom.Rect{X: 10, Y: 10, Width: 20, Height: 20}))
	waitFrame(t, c)

	if err := d.Post(wire.ScrollDelta{DX: 50, DY: 50}); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	f := waitFrame(t, c)
	if p := f.RGBAAt(20, 20); p.A != 0 {
		t.Errorf("old position still painted: %+v", p)
	}
	if p := f.RGBAAt(70, 70); p.R < 200 {
		t.Errorf("shifted position not painted: %+v", p)
	}
}

func TestDirectLabelsWithFace(t *testing.T) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		t.Fatalf("font: %v", err)
	}
	c := newRecordCanvas()
	d := NewDirect(WithFace(src.Face(11)))
	_ = d.Post(wire.InitCanvas{Canvas: c, Width: 200, Height: 100, DevicePixelRatio: 1})
	err = d.Post(wire.Draw{Labels: []wire.LabelItem{{
		Rect:  geom.Rect{X: 10, Y: 10, Width: 80, Height: 15},
		Color: wire.Color{R: 115, G: 97, B: 230},
		Alpha: 1,
		Text:  "Button ×3",
	}}})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	f := waitFrame(t, c)
	if p := f.RGBAAt(12, 12); p.A == 0 {
		t.Error("label box not painted")
	}
}

func TestDirectErrors(t *testing.T) {
	d := NewDirect()
	if err := d.Post(wire.Draw{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("draw before init: got %v", err)
	}
	if err := d.Post(wire.InitCanvas{Canvas: newRecordCanvas(), Width: 0, Height: 10}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero width: got %v", err)
	}
	_ = d.Close()
	if err := d.Post(wire.Draw{}); !errors.Is(err, ErrClosed) {
		t.Errorf("after close: got %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOffloadedDrawsOnWorker(t *testing.T) {
	rc := newRecordCanvas()
	tc := &transferCanvas{recordCanvas: rc}
	o := NewOffloaded()
	if err := o.Post(wire.InitCanvas{Canvas: tc, Width: 64, Height: 64, DevicePixelRatio: 1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !tc.transferred {
		t.Error("canvas was not transferred")
	}
	if err := o.Post(redOutline(geom.Rect{X: 4, Y: 4, Width: 20, Height: 20})); err != nil {
		t.Fatalf("draw: %v", err)
	}
	f := waitFrame(t, rc)
	if p := f.RGBAAt(10, 10); p.R < 200 {
		t.Errorf("worker did not draw outline: %+v", p)
	}

	if err := o.Post(wire.Resize{Width: 32, Height: 32, DevicePixelRatio: 1}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	_ = o.Post(redOutline(geom.Rect{X: 1, Y: 1, Width: 5, Height: 5}))
	if f := waitFrame(t, rc); f.Bounds().Dx() != 32 {
		t.Errorf("worker ignored resize: %v", f.Bounds())
	}

	if err := o.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := o.Post(wire.Draw{}); !errors.Is(err, ErrClosed) {
		t.Errorf("post after close: %v", err)
	}
}

func TestOffloadedRequiresInit(t *testing.T) {
	o := NewOffloaded()
	if err := o.Post(wire.Draw{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := o.Close(); err != nil {
		t.Errorf("close unstarted: %v", err)
	}
}

func TestOpenFallsBackToDirect(t *testing.T) {
	tests := []struct {
		name   string
		canvas wire.Canvas
	}{
		{"not transferable", newRecordCanvas()},
		{"transfer fails", &transferCanvas{recordCanvas: newRecordCanvas(), err: errors.New("detached")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(wire.InitCanvas{Canvas: tt.canvas, Width: 10, Height: 10, DevicePixelRatio: 1}, true)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer b.Close()
			if b.Name() != "direct" {
				t.Errorf("expected direct fallback, got %s", b.Name())
			}
		})
	}
}

func TestOpenPrefersOffloaded(t *testing.T) {
	tc := &transferCanvas{recordCanvas: newRecordCanvas()}
	b, err := Open(wire.InitCanvas{Canvas: tc, Width: 10, Height: 10, DevicePixelRatio: 1}, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()
	if b.Name() != "offloaded" {
		t.Errorf("expected offloaded, got %s", b.Name())
	}

	d, err := Open(wire.InitCanvas{Canvas: tc.recordCanvas, Width: 10, Height: 10}, false)
	if err != nil {
		t.Fatalf("Open direct: %v", err)
	}
	defer d.Close()
	if d.Name() != "direct" {
		t.Errorf("offload=false must select direct, got %s", d.Name())
	}
}
