package outline

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/gogpu/outline/geom"
)

// AggregatedRender accumulates the recent renders of one logical
// component instance at its current screen position.
type AggregatedRender struct {
	Name string

	// FrameAge counts ticks since the last render folded in.
	FrameAge int

	Count       int
	Time        time.Duration
	FPS         float64
	Unnecessary bool
	DidCommit   bool
	Changes     ChangeSummary
	LastSeen    time.Time

	key     InstanceID
	ids     []InstanceID
	outline geom.PositionKey
	current *geom.Rect // shared with the owning Outline
	retired bool
}

// Key returns the canonical instance ID the render is grouped under.
func (r *AggregatedRender) Key() InstanceID { return r.key }

// IDs returns every instance ID known to alias this render.
func (r *AggregatedRender) IDs() []InstanceID { return slices.Clone(r.ids) }

// OutlineKey returns the position of the Outline that owns the render.
func (r *AggregatedRender) OutlineKey() geom.PositionKey { return r.outline }

// Retired reports whether the render was left behind when its instance
// moved to another position. Retired renders only fade out.
func (r *AggregatedRender) Retired() bool { return r.retired }

// AverageTime returns the mean render duration.
func (r *AggregatedRender) AverageTime() time.Duration {
	if r.Count == 0 {
		return 0
	}
	return r.Time / time.Duration(r.Count)
}

func (r *AggregatedRender) addID(id InstanceID) {
	if id == 0 || slices.Contains(r.ids, id) {
		return
	}
	r.ids = append(r.ids, id)
	if r.key == 0 || id < r.key {
		r.key = id
	}
}

// absorb folds one tick's worth of renders into r.
func (r *AggregatedRender) absorb(f *fold) {
	ev := f.ev
	r.Count += f.n
	r.Time += f.total
	r.FrameAge = 0
	if ev.Name != "" {
		r.Name = ev.Name
	}
	r.Unnecessary = ev.Unnecessary
	r.DidCommit = ev.DidCommit
	r.Changes = ev.Changes
	if ev.FPS > 0 {
		if r.FPS == 0 {
			r.FPS = ev.FPS
		} else {
			r.FPS = (r.FPS + ev.FPS) / 2
		}
	}
	if ev.Timestamp.After(r.LastSeen) {
		r.LastSeen = ev.Timestamp
	}
	for _, id := range f.ids {
		r.addID(id)
	}
}

// Outline is one on-screen rectangle and the renders grouped at it.
type Outline struct {
	Key    geom.PositionKey
	Target geom.Rect

	// Current is the displayed rectangle; nil until the first
	// interpolation step.
	Current *geom.Rect

	Alpha       float64
	TotalFrames int

	// Groups holds one render per instance, keyed by canonical ID.
	Groups map[InstanceID]*AggregatedRender

	frameAge int
	removed  bool
}

// FrameAge returns the largest frame age among the grouped renders as of
// the last tick.
func (o *Outline) FrameAge() int { return o.frameAge }

// Live returns the non-retired renders of o.
func (o *Outline) Live() []*AggregatedRender {
	out := make([]*AggregatedRender, 0, len(o.Groups))
	for _, r := range o.Groups {
		if !r.retired {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b *AggregatedRender) int {
		return cmp.Compare(a.key, b.key)
	})
	return out
}

func (o *Outline) put(r *AggregatedRender) {
	r.outline = o.Key
	r.current = o.Current
	o.Groups[r.key] = r
}

// Store is the keyed collection of live Outlines. It is owned by one
// engine goroutine.
type Store struct {
	outlines map[geom.PositionKey]*Outline
	order    []*Outline // creation order, compacted each tick
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{outlines: make(map[geom.PositionKey]*Outline)}
}

// Len returns the number of Outlines.
func (s *Store) Len() int { return len(s.outlines) }

// Get returns the Outline at key.
func (s *Store) Get(key geom.PositionKey) (*Outline, bool) {
	o, ok := s.outlines[key]
	return o, ok
}

// All iterates Outlines in creation order.
func (s *Store) All() iter.Seq[*Outline] {
	return func(yield func(*Outline) bool) {
		for _, o := range s.order {
			if o.removed {
				continue
			}
			if !yield(o) {
				return
			}
		}
	}
}

// LiveRenders returns the number of non-retired renders in the Store.
func (s *Store) LiveRenders() int {
	n := 0
	for _, o := range s.outlines {
		for _, r := range o.Groups {
			if !r.retired {
				n++
			}
		}
	}
	return n
}

// Reset drops every Outline.
func (s *Store) Reset() {
	clear(s.outlines)
	s.order = s.order[:0]
}

func (s *Store) add(o *Outline) {
	s.outlines[o.Key] = o
	s.order = append(s.order, o)
}

func (s *Store) remove(o *Outline) {
	if o.removed {
		return
	}
	o.removed = true
	if s.outlines[o.Key] == o {
		delete(s.outlines, o.Key)
	}
}

// compact drops removed Outlines from the creation-order slice.
func (s *Store) compact() {
	s.order = slices.DeleteFunc(s.order, func(o *Outline) bool { return o.removed })
}

func newOutline(key geom.PositionKey, rect geom.Rect, cfg *Config) *Outline {
	current := rect
	return &Outline{
		Key:         key,
		Target:      rect,
		Current:     &current,
		Alpha:       cfg.InitialAlpha,
		TotalFrames: cfg.TotalFrames,
		Groups:      make(map[InstanceID]*AggregatedRender, 1),
	}
}
