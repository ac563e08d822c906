package outline

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gg/text"

	"github.com/gogpu/outline/backend"
	"github.com/gogpu/outline/geom"
	"github.com/gogpu/outline/wire"
)

// fillRatio is the fill alpha of an outline relative to its stroke.
const fillRatio = 0.1

// Engine turns render events into animated outlines and labels for one
// overlay session.
//
// The synchronous methods (Schedule, IngestPacked, Frame, Scroll, Resize,
// Reset, AttachCanvas, Close) must be called from a single goroutine.
// Run makes its caller that goroutine; while Run is active, other
// goroutines use Submit and Control instead.
type Engine struct {
	cfg      Config
	store    *Store
	src      geom.RectSource
	batcher  *geom.Batcher
	widths   *geom.TextWidths
	labels   labeler
	face     text.Face
	viewport geom.Viewport
	backend  backend.Backend

	pending map[geom.Node]map[InstanceID]*fold
	packed  []wire.OutlineRecord

	lastLabels []*Label
	drewEmpty  bool

	inbox  chan []RenderEvent
	ctrl   chan func(*Engine)
	stop   chan struct{}
	exited chan struct{} // closed when Run returns

	frames  uint64
	drawn   uint64
	dropped uint64
	closed  bool
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Outlines        int
	LiveRenders     int
	Labels          int
	MergeStrategy   string
	Frames          uint64
	Drawn           uint64
	Dropped         uint64
	TextCacheHits   uint64
	TextCacheMisses uint64
	Backend         string
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     o.cfg,
		store:   NewStore(),
		pending: make(map[geom.Node]map[InstanceID]*fold),
		inbox:   make(chan []RenderEvent, 64),
		ctrl:    make(chan func(*Engine), 16),
		stop:    make(chan struct{}),
		exited:  make(chan struct{}),
	}

	src := o.src
	if src == nil {
		src = geom.RectSourceFunc(func(context.Context, geom.Node) (geom.Rect, bool) { return geom.Rect{}, false })
	}
	e.src = src
	e.batcher = geom.NewBatcher(src, e.cfg.MeasureChunk, e.cfg.MeasureConcurrency)

	m := o.measurer
	if m == nil {
		fm, err := geom.NewFontMeasurer(e.cfg.LabelFontSize)
		if err != nil {
			Logger().Warn("outline: label font unavailable, using fixed advance", "err", err)
			m = geom.FixedMeasurer{}
		} else {
			m = fm
		}
	}
	if fm, ok := m.(*geom.FontMeasurer); ok {
		e.face = fm.Face()
	}
	e.widths = geom.NewTextWidths(m, e.cfg.TextCacheSize)
	e.labels = labeler{cfg: &e.cfg, widths: e.widths}

	if o.viewport != nil {
		e.viewport = *o.viewport
	}
	if o.canvas != nil {
		if o.viewport == nil {
			e.viewport = geom.Viewport{Width: o.width, Height: o.height}
		}
		if err := e.AttachCanvas(o.canvas, o.width, o.height, o.dpr); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig replaces the configuration of a running engine. LabelFontSize,
// TextCacheSize and Offload are fixed at creation and keep their values.
func (e *Engine) SetConfig(cfg Config) error {
	if e.closed {
		return ErrClosed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.LabelFontSize = e.cfg.LabelFontSize
	cfg.TextCacheSize = e.cfg.TextCacheSize
	cfg.Offload = e.cfg.Offload
	e.cfg = cfg
	e.batcher = geom.NewBatcher(e.src, cfg.MeasureChunk, cfg.MeasureConcurrency)
	return nil
}

// Store exposes the aggregation store for inspection.
func (e *Engine) Store() *Store { return e.store }

// Labels returns the merged labels of the last frame.
func (e *Engine) Labels() []*Label { return e.lastLabels }

// AttachCanvas selects a backend for c and hands it the canvas. Any
// previous backend is closed. Live outlines are kept and appear on the
// next frame.
func (e *Engine) AttachCanvas(c wire.Canvas, width, height, dpr float64) error {
	if e.closed {
		return ErrClosed
	}
	if e.backend != nil {
		_ = e.backend.Close()
		e.backend = nil
	}
	init := wire.InitCanvas{Canvas: c, Width: width, Height: height, DevicePixelRatio: dpr}
	opts := []backend.Option{backend.WithLabelPadding(e.cfg.LabelPadding)}
	if e.face != nil {
		opts = append(opts, backend.WithFace(e.face))
	}
	b, err := backend.Open(init, e.cfg.Offload, opts...)
	if err != nil {
		return fmt.Errorf("outline: attach canvas: %w", err)
	}
	e.backend = b
	e.drewEmpty = false
	return nil
}

// Schedule queues render events for the next frame. Renders of one
// instance at one node are folded together immediately, so the queue
// grows with the number of distinct instances, not with event volume.
func (e *Engine) Schedule(events ...RenderEvent) {
	for _, ev := range events {
		key := ev.key()
		if ev.Node == nil || key == 0 {
			e.dropped++
			continue
		}
		byKey, ok := e.pending[ev.Node]
		if !ok {
			byKey = make(map[InstanceID]*fold, 1)
			e.pending[ev.Node] = byKey
		}
		f, ok := byKey[key]
		if !ok {
			f = &fold{}
			byKey[key] = f
		}
		f.add(ev)
	}
}

// IngestPacked queues outlines that were measured elsewhere, in the
// compact wire encoding. They skip geometry batching.
func (e *Engine) IngestPacked(buf []byte, names []string) error {
	recs, err := wire.UnpackOutlines(buf, names)
	if err != nil {
		return err
	}
	e.packed = append(e.packed, recs...)
	return nil
}

// Frame runs one tick: aggregate queued events, advance animations,
// compose and merge labels, then draw. Failures inside the tick are
// logged and never returned; only a closed engine is an error.
func (e *Engine) Frame(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	p := e.store.beginPass(&e.cfg, e.viewport)
	for _, rec := range e.packed {
		if rec.InstanceKey == 0 {
			p.dropped++
			continue
		}
		var f fold
		f.add(RenderEvent{
			Instance:  InstanceID(rec.InstanceKey),
			Name:      rec.Name,
			DidCommit: rec.Committed,
		})
		f.n = max(rec.Count, 1)
		p.place(&f, rec.Rect)
	}
	e.packed = e.packed[:0]
	if len(e.pending) > 0 {
		e.measure(ctx, p)
	}
	e.dropped += uint64(p.dropped)

	e.store.advance(&e.cfg, e.viewport)
	e.draw()
	e.frames++
	return nil
}

func (e *Engine) measure(ctx context.Context, p *pass) {
	nodes := make([]geom.Node, 0, len(e.pending))
	for n := range e.pending {
		nodes = append(nodes, n)
	}

	if e.cfg.MeasureTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.MeasureTimeout)
		defer cancel()
	}
	err := e.batcher.Measure(ctx, nodes, func(entries []geom.Entry) {
		for _, en := range entries {
			for _, f := range sortedFolds(e.pending[en.Node]) {
				p.place(f, en.Rect)
			}
			delete(e.pending, en.Node)
		}
	})
	if err != nil {
		Logger().Debug("outline: measurement incomplete", "err", err, "unmeasured", len(e.pending))
	}
	// Whatever is left was detached or not measured in time.
	for _, byKey := range e.pending {
		p.dropped += len(byKey)
	}
	clear(e.pending)
}

func sortedFolds(byKey map[InstanceID]*fold) []*fold {
	keys := make([]InstanceID, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*fold, len(keys))
	for i, k := range keys {
		out[i] = byKey[k]
	}
	return out
}

func (e *Engine) draw() {
	queue := make([]wire.DrawItem, 0, e.store.Len())
	labels := make([]*Label, 0, e.store.Len())
	for o := range e.store.All() {
		if o.Current == nil || o.Alpha <= 0 {
			continue
		}
		renders := o.Live()
		st := summarize(renders)
		color, _ := colorFor(st, &e.cfg)
		queue = append(queue, wire.DrawItem{
			Rect:      *o.Current,
			Color:     color,
			Alpha:     o.Alpha,
			FillAlpha: o.Alpha * fillRatio,
		})
		if l := e.labels.forOutline(o, renders, st); l != nil {
			labels = append(labels, l)
		}
	}
	labels = e.labels.merge(labels)
	e.lastLabels = labels

	if e.backend == nil {
		return
	}
	if len(queue) == 0 {
		if e.drewEmpty {
			return
		}
		e.drewEmpty = true
	} else {
		e.drewEmpty = false
	}

	items := make([]wire.LabelItem, len(labels))
	for i, l := range labels {
		items[i] = l.item()
	}
	if err := e.backend.Post(wire.Draw{Outlines: queue, Labels: items}); err != nil {
		Logger().Warn("outline: draw failed", "backend", e.backend.Name(), "err", err)
		return
	}
	e.drawn++
}

// Scroll shifts every live outline by (dx, dy) CSS pixels. Alpha and
// frame ages are untouched and animations continue.
func (e *Engine) Scroll(dx, dy float64) {
	e.store.translate(dx, dy)
	for _, l := range e.lastLabels {
		l.Rect = l.Rect.Translate(dx, dy)
	}
	if e.backend != nil {
		if err := e.backend.Post(wire.ScrollDelta{DX: dx, DY: dy}); err != nil {
			Logger().Warn("outline: scroll failed", "backend", e.backend.Name(), "err", err)
		}
	}
}

// Resize changes the viewport and canvas size. Live outlines are cleared.
func (e *Engine) Resize(width, height, dpr float64) {
	e.Reset()
	e.viewport = geom.Viewport{Width: width, Height: height}
	if e.backend != nil {
		msg := wire.Resize{Width: width, Height: height, DevicePixelRatio: dpr}
		if err := e.backend.Post(msg); err != nil {
			Logger().Warn("outline: resize failed", "backend", e.backend.Name(), "err", err)
		}
	}
}

// Reset drops every outline and queued event and clears the canvas.
func (e *Engine) Reset() {
	e.store.Reset()
	clear(e.pending)
	e.packed = e.packed[:0]
	e.lastLabels = nil
	if e.backend != nil && !e.drewEmpty {
		if err := e.backend.Post(wire.Draw{}); err == nil {
			e.drewEmpty = true
		}
	}
}

// Close disables the overlay: outlines are cleared and the backend is
// released. Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.Reset()
	e.widths.Reset()
	e.closed = true
	close(e.stop)
	if e.backend == nil {
		return nil
	}
	err := e.backend.Close()
	e.backend = nil
	return err
}

// Idle reports whether no outline is live and no event is queued.
func (e *Engine) Idle() bool {
	return e.store.Len() == 0 && len(e.pending) == 0 && len(e.packed) == 0
}

// Snapshot packs every live render into the compact wire encoding.
func (e *Engine) Snapshot() ([]byte, []string) {
	var recs []wire.OutlineRecord
	for o := range e.store.All() {
		rect := o.Target
		if o.Current != nil {
			rect = *o.Current
		}
		for _, r := range o.Live() {
			recs = append(recs, wire.OutlineRecord{
				InstanceKey: uint64(r.key),
				Count:       r.Count,
				Rect:        rect,
				Committed:   r.DidCommit,
				Name:        r.Name,
			})
		}
	}
	slices.SortFunc(recs, func(a, b wire.OutlineRecord) int { return cmp.Compare(a.InstanceKey, b.InstanceKey) })
	return wire.PackOutlines(nil, recs)
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	ts := e.widths.Stats()
	st := Stats{
		Outlines:        e.store.Len(),
		LiveRenders:     e.store.LiveRenders(),
		Labels:          len(e.lastLabels),
		MergeStrategy:   e.labels.strategy,
		Frames:          e.frames,
		Drawn:           e.drawn,
		Dropped:         e.dropped,
		TextCacheHits:   ts.Hits,
		TextCacheMisses: ts.Misses,
	}
	if e.backend != nil {
		st.Backend = e.backend.Name()
	}
	return st
}

// Submit queues events from any goroutine while Run is active. Before
// Run starts, up to a small backlog of batches is buffered.
func (e *Engine) Submit(events ...RenderEvent) error {
	if err := e.gone(); err != nil {
		return err
	}
	batch := slices.Clone(events)
	select {
	case e.inbox <- batch:
		return nil
	case <-e.stop:
		return ErrClosed
	case <-e.exited:
		return e.gone()
	}
}

// Control runs fn on the Run goroutine, from any goroutine. Use it for
// Scroll, Resize, Reset and Close while Run is active.
func (e *Engine) Control(fn func(*Engine)) error {
	if err := e.gone(); err != nil {
		return err
	}
	select {
	case e.ctrl <- fn:
		return nil
	case <-e.stop:
		return ErrClosed
	case <-e.exited:
		return e.gone()
	}
}

// gone reports ErrClosed after Close and ErrStopped once Run has returned.
func (e *Engine) gone() error {
	select {
	case <-e.stop:
		return ErrClosed
	default:
	}
	select {
	case <-e.exited:
		return ErrStopped
	default:
	}
	return nil
}

// Run drives frames at Config.RefreshRate until ctx ends or the engine is
// closed. The ticker only runs while there is work; going idle cancels
// the pending frame. Run may be called once; afterwards Submit and
// Control fail instead of waiting for a loop that is gone.
func (e *Engine) Run(ctx context.Context) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.gone(); err != nil {
		return err
	}
	defer close(e.exited)
	interval := e.cfg.FrameInterval()
	ticker := time.NewTicker(interval)
	ticker.Stop()
	defer ticker.Stop()

	ticking := false
	sync := func() {
		switch idle := e.Idle(); {
		case idle && ticking:
			ticker.Stop()
			ticking = false
		case !idle && !ticking:
			ticker.Reset(interval)
			ticking = true
		}
	}

	Logger().Info("outline: engine running", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case events := <-e.inbox:
			e.Schedule(events...)
		case fn := <-e.ctrl:
			fn(e)
			if e.closed {
				Logger().Info("outline: engine stopped")
				return nil
			}
		case <-ticker.C:
			_ = e.Frame(ctx)
		}
		sync()
	}
}
