package backend

import (
	"fmt"
	"math"

	"github.com/gogpu/outline/wire"
)

// Backend consumes protocol messages and draws them.
type Backend interface {
	// Post delivers one message. InitCanvas must come first.
	Post(msg wire.Message) error

	// Name identifies the strategy ("direct" or "offloaded").
	Name() string

	// Close releases the canvas. Close is idempotent.
	Close() error
}

// Open initializes a backend for init. When offload is true and the
// canvas is transferable, an Offloaded backend is returned; any failure
// there falls back to Direct on the same canvas.
func Open(init wire.InitCanvas, offload bool, opts ...Option) (Backend, error) {
	if offload {
		off := NewOffloaded(opts...)
		err := off.Post(init)
		if err == nil {
			logger().Info("backend: using offloaded canvas",
				"width", init.Width, "height", init.Height, "dpr", init.DevicePixelRatio)
			return off, nil
		}
		_ = off.Close()
		logger().Warn("backend: offloaded canvas unavailable, drawing directly", "err", err)
	}

	d := NewDirect(opts...)
	if err := d.Post(init); err != nil {
		return nil, err
	}
	logger().Info("backend: using direct canvas",
		"width", init.Width, "height", init.Height, "dpr", init.DevicePixelRatio)
	return d, nil
}

// devicePixels converts a CSS size to a device pixel count.
func devicePixels(css, dpr float64) (int, error) {
	px := int(math.Ceil(css * dpr))
	if css <= 0 || dpr <= 0 || px <= 0 || math.IsNaN(css) || math.IsInf(css, 0) {
		return 0, fmt.Errorf("%w: %vx%v", ErrInvalidSize, css, dpr)
	}
	return px, nil
}

func normalizeDPR(dpr float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) {
		return 1
	}
	return dpr
}
