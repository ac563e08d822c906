package outline

import "github.com/gogpu/outline/geom"

// advance runs one animation tick over every Outline: ages each grouped
// render, drops renders past their lifetime, removes empty Outlines, sets
// alpha from the oldest remaining render and moves the displayed rect
// toward its target. Cost is linear in the number of live renders.
func (s *Store) advance(cfg *Config, vp geom.Viewport) {
	for _, o := range s.order {
		if o.removed {
			continue
		}
		if len(o.Groups) == 0 {
			Logger().Debug("outline: removing empty outline", "key", o.Key.String())
			s.remove(o)
			continue
		}

		maxAge := -1
		for id, r := range o.Groups {
			r.FrameAge++
			if r.FrameAge > o.TotalFrames {
				delete(o.Groups, id)
				continue
			}
			maxAge = max(maxAge, r.FrameAge)
		}
		if maxAge < 0 {
			s.remove(o)
			continue
		}

		o.frameAge = maxAge
		o.Alpha = max(0, cfg.InitialAlpha*(1-float64(maxAge)/float64(o.TotalFrames)))
		interpolate(o, cfg, vp)
	}
	s.compact()
}

// interpolate moves o.Current toward o.Target. The first step snaps, as
// do degenerate or off-screen targets and configurations without smooth
// animation.
func interpolate(o *Outline, cfg *Config, vp geom.Viewport) {
	if o.Current == nil {
		c := o.Target
		o.Current = &c
		for _, r := range o.Groups {
			r.current = o.Current
		}
		return
	}
	if !cfg.SmoothlyAnimateOutlines || o.Target.IsDegenerate() || !vp.Visible(o.Target) {
		*o.Current = o.Target
		return
	}
	*o.Current = o.Current.Approach(o.Target, cfg.ConvergenceRate)
}

// translate shifts every target and displayed rect by (dx, dy) without
// touching alpha or frame state.
func (s *Store) translate(dx, dy float64) {
	for _, o := range s.outlines {
		o.Target = o.Target.Translate(dx, dy)
		if o.Current != nil {
			*o.Current = o.Current.Translate(dx, dy)
		}
	}
}
