package outline

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/outline/geom"
)

// BenchmarkAdvance measures one animation tick over a populated store.
func BenchmarkAdvance(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			cfg := testConfig()
			cfg.TotalFrames = 1 << 30
			s := NewStore()
			vp := geom.Viewport{}
			p := s.beginPass(cfg, vp)
			for i := range n {
				var f fold
				f.add(RenderEvent{Instance: InstanceID(i + 1), Name: "C"})
				p.place(&f, geom.Rect{X: float64(i % 500 * 4), Y: float64(i / 500 * 4), Width: 3, Height: 3})
			}
			b.ReportAllocs()
			for b.Loop() {
				s.advance(cfg, vp)
			}
		})
	}
}

// BenchmarkMerge compares the sweep and grid label merges on the same input.
func BenchmarkMerge(b *testing.B) {
	for _, tc := range []struct {
		name      string
		threshold int
	}{
		{"sweep", 1 << 30},
		{"grid", 0},
	} {
		b.Run(tc.name, func(b *testing.B) {
			cfg := testConfig()
			cfg.LabelMergeThreshold = tc.threshold
			lb := testLabeler(cfg)
			rng := rand.New(rand.NewPCG(7, 7))
			base := randomLabels(rng, 2000, 4000)
			in := make([]*Label, len(base))
			b.ReportAllocs()
			for b.Loop() {
				for i, l := range base {
					c := *l
					in[i] = &c
				}
				lb.merge(in)
			}
		})
	}
}
