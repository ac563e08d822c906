package backend

import (
	"fmt"

	"github.com/gogpu/outline/wire"
)

// Offloaded forwards messages to a worker goroutine that owns the canvas.
//
// The channel between the poster and the worker is the only shared state.
// Draw messages are dropped when the worker is behind, since the next tick
// carries a complete frame; every other message is always delivered.
type Offloaded struct {
	opts    options
	cmds    chan wire.Message
	done    chan struct{}
	started bool
	closed  bool
	dropped int
}

// NewOffloaded creates an Offloaded backend. The worker starts on the
// first InitCanvas.
func NewOffloaded(opts ...Option) *Offloaded {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Offloaded{opts: o}
}

// Name implements Backend.
func (o *Offloaded) Name() string { return "offloaded" }

// Dropped returns the number of draw messages discarded under backpressure.
func (o *Offloaded) Dropped() int { return o.dropped }

// Post implements Backend.
func (o *Offloaded) Post(msg wire.Message) error {
	if o.closed {
		return ErrClosed
	}
	if init, ok := msg.(wire.InitCanvas); ok {
		return o.start(init)
	}
	if !o.started {
		return ErrNotInitialized
	}

	if _, ok := msg.(wire.Draw); ok {
		select {
		case o.cmds <- msg:
		default:
			o.dropped++
			logger().Debug("backend: worker busy, draw dropped", "dropped", o.dropped)
		}
		return nil
	}
	o.cmds <- msg
	return nil
}

// Close stops the worker after it drains queued messages.
func (o *Offloaded) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	if !o.started {
		return nil
	}
	close(o.cmds)
	<-o.done
	return nil
}

func (o *Offloaded) start(init wire.InitCanvas) error {
	if o.started {
		return fmt.Errorf("backend: canvas already transferred")
	}
	t, ok := init.Canvas.(wire.Transferable)
	if !ok {
		return ErrTransferUnsupported
	}
	dpr := normalizeDPR(init.DevicePixelRatio)
	if _, err := devicePixels(init.Width, dpr); err != nil {
		return err
	}
	if _, err := devicePixels(init.Height, dpr); err != nil {
		return err
	}
	handle, err := t.Transfer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferUnsupported, err)
	}
	init.Canvas = handle

	worker := &Direct{opts: o.opts, dpr: 1}
	if err := worker.init(init); err != nil {
		return err
	}

	o.cmds = make(chan wire.Message, o.opts.queueSize)
	o.done = make(chan struct{})
	o.started = true
	go o.run(worker)
	return nil
}

// run is the worker loop. It exits when cmds is closed.
func (o *Offloaded) run(d *Direct) {
	defer close(o.done)
	defer func() { _ = d.Close() }()

	for msg := range o.cmds {
		if err := d.Post(msg); err != nil {
			logger().Warn("backend: worker message failed", "kind", msg.Kind().String(), "err", err)
		}
	}
}
