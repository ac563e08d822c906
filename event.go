package outline

import (
	"slices"
	"time"

	"github.com/gogpu/outline/geom"
)

// InstanceID identifies one component instance object in the host
// framework. Zero means "no instance".
type InstanceID uint64

// ChangeSummary describes what changed in a render.
type ChangeSummary struct {
	Props   int
	State   int
	Context int

	// Unstable is set when a changed value was a new reference with an
	// equal value, the typical cause of avoidable re-renders.
	Unstable bool
}

// RenderEvent is one committed render of one component instance, as
// reported by the instrumentation layer.
type RenderEvent struct {
	Instance InstanceID

	// Alternate is the framework's paired shadow object for the same
	// logical instance. The two swap roles between passes, so either ID
	// may arrive as Instance. Zero when no pair exists yet.
	Alternate InstanceID

	Name string

	// Node is handed to the rect source unchanged.
	Node geom.Node

	Timestamp   time.Time
	DidCommit   bool
	Unnecessary bool
	Changes     ChangeSummary

	// Duration is the time spent rendering; FPS is the page frame rate
	// observed around the render. Both are optional.
	Duration time.Duration
	FPS      float64
}

// key returns the canonical identity of the event: the smaller non-zero
// ID of the instance pair.
func (ev RenderEvent) key() InstanceID {
	if ev.Alternate != 0 && (ev.Instance == 0 || ev.Alternate < ev.Instance) {
		return ev.Alternate
	}
	return ev.Instance
}

// fold accumulates every render of one instance at one node between two
// ticks. Counts and times are summed; flags come from the latest event.
// ids keeps every instance ID seen, so an alternate pairing reported by
// any event of the tick is not lost.
type fold struct {
	ev    RenderEvent
	n     int
	total time.Duration
	ids   []InstanceID
}

func (f *fold) add(ev RenderEvent) {
	f.n++
	f.total += ev.Duration
	f.addID(ev.Instance)
	f.addID(ev.Alternate)
	if f.n == 1 || !ev.Timestamp.Before(f.ev.Timestamp) {
		fps := f.ev.FPS
		f.ev = ev
		if ev.FPS == 0 {
			f.ev.FPS = fps
		}
	}
}

func (f *fold) addID(id InstanceID) {
	if id != 0 && !slices.Contains(f.ids, id) {
		f.ids = append(f.ids, id)
	}
}
