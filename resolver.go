package outline

import "slices"

// index maps every known instance ID, including alternates, to the live
// render it aliases. It is rebuilt at the start of each aggregation pass
// with one walk over the store and kept current while the pass runs.
type index map[InstanceID]*AggregatedRender

func (s *Store) index() index {
	ix := make(index, len(s.outlines))
	for _, o := range s.outlines {
		for _, r := range o.Groups {
			if !r.retired {
				ix.put(r)
			}
		}
	}
	return ix
}

func (ix index) put(r *AggregatedRender) {
	for _, id := range r.ids {
		ix[id] = r
	}
}

// resolve returns the live render for the instance IDs of a fold, merging
// first when the IDs are tracked by more than one render.
func (ix index) resolve(s *Store, ids []InstanceID) *AggregatedRender {
	var r *AggregatedRender
	for _, id := range ids {
		other := ix[id]
		switch {
		case other == nil || other == r:
		case r == nil:
			r = other
		default:
			r = s.mergeAliases(r, other)
			ix.put(r)
		}
	}
	return r
}

// mergeAliases replaces two renders of the same logical instance with
// their merge. Both leave their Outlines in the same step; the merge
// joins the Outline of the newer one.
func (s *Store) mergeAliases(a, b *AggregatedRender) *AggregatedRender {
	m := mergeRenders(a, b)
	s.detach(a)
	s.detach(b)
	if o, ok := s.outlines[m.outline]; ok {
		o.put(m)
	}
	return m
}

func (s *Store) detach(r *AggregatedRender) {
	if o, ok := s.outlines[r.outline]; ok && o.Groups[r.key] == r {
		delete(o.Groups, r.key)
	}
}

// mergeRenders combines two renders of one instance. Counts and times are
// summed and the smaller frame age (the more recent activity) is kept;
// descriptive fields come from the newer render. The result does not
// depend on argument order.
func mergeRenders(a, b *AggregatedRender) *AggregatedRender {
	if newer(b, a) {
		a, b = b, a
	}
	m := &AggregatedRender{
		Name:        a.Name,
		FrameAge:    min(a.FrameAge, b.FrameAge),
		Count:       a.Count + b.Count,
		Time:        a.Time + b.Time,
		FPS:         a.FPS,
		Unnecessary: a.Unnecessary,
		DidCommit:   a.DidCommit,
		Changes:     a.Changes,
		LastSeen:    a.LastSeen,
		outline:     a.outline,
		current:     a.current,
	}
	if m.Name == "" {
		m.Name = b.Name
	}
	if m.FPS == 0 {
		m.FPS = b.FPS
	}
	ids := append(slices.Clone(a.ids), b.ids...)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		m.addID(id)
	}
	return m
}

// newer reports whether a carries fresher data than b. Ties fall back to
// the larger count, then the smaller key, so the order is total.
func newer(a, b *AggregatedRender) bool {
	if !a.LastSeen.Equal(b.LastSeen) {
		return a.LastSeen.After(b.LastSeen)
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.key < b.key
}
