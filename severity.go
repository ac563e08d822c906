package outline

import (
	"math"
	"time"

	"github.com/gogpu/outline/wire"
)

// groupStats summarizes the renders grouped at one Outline.
type groupStats struct {
	count       int
	total       time.Duration
	fps         float64 // lowest observed, 0 when unknown
	unnecessary bool    // every render was unnecessary
	reasons     wire.Reason
}

func summarize(renders []*AggregatedRender) groupStats {
	st := groupStats{unnecessary: len(renders) > 0}
	for _, r := range renders {
		st.count += r.Count
		st.total += r.Time
		if r.FPS > 0 && (st.fps == 0 || r.FPS < st.fps) {
			st.fps = r.FPS
		}
		if !r.Unnecessary {
			st.unnecessary = false
		}
		st.reasons |= reasonsOf(r)
	}
	return st
}

func reasonsOf(r *AggregatedRender) wire.Reason {
	var f wire.Reason
	if r.DidCommit {
		f |= wire.ReasonCommitted
	}
	if r.Changes.Unstable {
		f |= wire.ReasonUnstable
	}
	if r.Unnecessary {
		f |= wire.ReasonUnnecessary
	}
	return f
}

// severity scores a group in [0, 1]:
//
//	score = w*fpsDeficit + (1-w)*timeScore
//
// where fpsDeficit is the shortfall below TargetFPS as a fraction of it
// (0 when FPS is unknown) and timeScore is the average render time over
// SlowRenderThreshold, capped at 1. w is FPSWeight.
func severity(st groupStats, cfg *Config) float64 {
	var fpsDeficit float64
	if st.fps > 0 {
		fpsDeficit = (cfg.TargetFPS - math.Min(st.fps, cfg.TargetFPS)) / cfg.TargetFPS
	}
	var timeScore float64
	if st.count > 0 {
		avg := float64(st.total) / float64(st.count)
		timeScore = math.Min(avg/float64(cfg.SlowRenderThreshold), 1)
	}
	score := cfg.FPSWeight*fpsDeficit + (1-cfg.FPSWeight)*timeScore
	return math.Max(0, math.Min(score, 1))
}

// colorFor maps a group to its outline color. Unnecessary groups are
// always drawn in the neutral color.
func colorFor(st groupStats, cfg *Config) (wire.Color, float64) {
	if st.unnecessary {
		return cfg.UnnecessaryColor, 0
	}
	s := severity(st, cfg)
	return lerpColor(cfg.CoolColor, cfg.HotColor, s), s
}

func lerpColor(a, b wire.Color, t float64) wire.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return wire.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}
