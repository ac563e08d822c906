package outline

import "github.com/gogpu/outline/geom"

// pass is one aggregation pass: the events scheduled since the previous
// tick folded into the store. Deliveries of measured rects may arrive in
// several parts; each place call leaves every Outline consistent.
type pass struct {
	s   *Store
	ix  index
	cfg *Config
	vp  geom.Viewport

	placed  int
	dropped int
}

func (s *Store) beginPass(cfg *Config, vp geom.Viewport) *pass {
	return &pass{s: s, ix: s.index(), cfg: cfg, vp: vp}
}

// place folds f, whose node measured as rect, into the store. It reports
// false when the rect is off screen or has no area.
func (p *pass) place(f *fold, rect geom.Rect) bool {
	if rect.IsDegenerate() || !p.vp.Visible(rect) {
		p.dropped++
		return false
	}
	s := p.s
	key := geom.KeyOf(rect)
	o := s.outlines[key]

	r := p.ix.resolve(s, f.ids)
	var from *geom.Rect
	switch {
	case r == nil:
		r = &AggregatedRender{}
	case r.outline != key || o == nil || o.Groups[r.key] != r:
		from = s.retire(r)
	}

	oldKey := r.key
	r.absorb(f)
	if oldKey != 0 && oldKey != r.key {
		if owner, ok := s.outlines[r.outline]; ok && owner.Groups[oldKey] == r {
			delete(owner.Groups, oldKey)
		}
	}

	if o == nil {
		o = newOutline(key, rect, p.cfg)
		// A moved instance keeps its displayed rect, which it shares with
		// its Outline, so the new Outline glides from the old position.
		if from != nil {
			c := *from
			o.Current = &c
		}
		s.add(o)
	} else {
		o.Target = rect
	}
	o.put(r)
	p.ix.put(r)
	p.placed++
	return true
}

// retire leaves a copy of r at its old Outline with its frame age at the
// expiry threshold, so it fades on the next tick instead of lingering as
// a duplicate. It returns the rect r was displayed at.
func (s *Store) retire(r *AggregatedRender) *geom.Rect {
	from := r.current
	old, ok := s.outlines[r.outline]
	if !ok || old.Groups[r.key] != r {
		return from
	}
	ghost := *r
	ghost.retired = true
	ghost.FrameAge = old.TotalFrames
	ghost.ids = nil
	old.Groups[r.key] = &ghost
	return from
}
