package outline

import (
	"cmp"
	"math"
	"slices"
)

// gridCell is the bucket size of the fallback merge, in CSS pixels.
const gridCell = 128

// Label merge strategies, reported by Stats.
const (
	mergeSweep = "sweep"
	mergeGrid  = "grid"
)

// merge combines overlapping labels until no two output rectangles
// intersect. Below threshold labels the sorted sweep is used; at or
// above it, a single unsorted pass over a uniform grid. The strategy is
// fixed for every round of one call.
//
// Text of merged labels is derived once the geometry settles. A label
// whose new text is wider than its box grows, which can create new
// overlaps, so the merge repeats until no box grows.
func (lb *labeler) merge(labels []*Label) []*Label {
	lb.strategy = mergeSweep
	if len(labels) >= lb.cfg.LabelMergeThreshold {
		lb.strategy = mergeGrid
	}
	for len(labels) >= 2 {
		if lb.strategy == mergeSweep {
			labels = lb.sweep(labels)
		} else {
			labels = lb.gridMerge(labels)
		}

		grew := false
		for _, l := range labels {
			if !l.dirty {
				continue
			}
			l.dirty = false
			l.Text = lb.text(l.Renders)
			if w := lb.widths.Width(l.Text) + 2*lb.cfg.LabelPadding; w > l.Rect.Width {
				l.Rect.Width = w
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	return labels
}

// sweep sorts labels by left edge and, from each unmerged label, scans
// forward only while the next left edge lies before the growing merged
// label's right edge. A merge can grow a label into one already emitted,
// so passes repeat until one completes without merging.
func (lb *labeler) sweep(labels []*Label) []*Label {
	for {
		slices.SortStableFunc(labels, func(a, b *Label) int { return cmp.Compare(a.Rect.X, b.Rect.X) })
		used := make([]bool, len(labels))
		out := make([]*Label, 0, len(labels))
		merged := false
		for i, cur := range labels {
			if used[i] {
				continue
			}
			for j := i + 1; j < len(labels) && labels[j].Rect.X < cur.Rect.Right(); j++ {
				if used[j] || !cur.Rect.Intersects(labels[j].Rect) {
					continue
				}
				cur = lb.combine(cur, labels[j])
				used[j] = true
				merged = true
			}
			out = append(out, cur)
		}
		if !merged {
			return out
		}
		labels = out
	}
}

type cellKey struct{ x, y int }

// gridMerge inserts labels one at a time into a set of pairwise disjoint
// outputs. An incoming label absorbs every output it meets, found through
// the grid cells it covers, before it is inserted itself.
func (lb *labeler) gridMerge(labels []*Label) []*Label {
	grid := make(map[cellKey][]int, len(labels))
	out := make([]*Label, 0, len(labels))
	alive := make([]bool, 0, len(labels))

	cellsOf := func(l *Label, fn func(cellKey) bool) {
		x0, y0 := int(math.Floor(l.Rect.X/gridCell)), int(math.Floor(l.Rect.Y/gridCell))
		x1, y1 := int(math.Floor(l.Rect.Right()/gridCell)), int(math.Floor(l.Rect.Bottom()/gridCell))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if !fn(cellKey{x, y}) {
					return
				}
			}
		}
	}

	for _, cur := range labels {
		for {
			hit := -1
			cellsOf(cur, func(k cellKey) bool {
				for _, idx := range grid[k] {
					if alive[idx] && out[idx].Rect.Intersects(cur.Rect) {
						hit = idx
						return false
					}
				}
				return true
			})
			if hit < 0 {
				break
			}
			alive[hit] = false
			cur = lb.combine(out[hit], cur)
		}
		idx := len(out)
		out = append(out, cur)
		alive = append(alive, true)
		cellsOf(cur, func(k cellKey) bool {
			grid[k] = append(grid[k], idx)
			return true
		})
	}

	result := out[:0]
	for i, l := range out {
		if alive[i] {
			result = append(result, l)
		}
	}
	return result
}

// combine merges two labels: the union of their boxes, reasons and
// renders. Its text is re-derived by merge. The color comes from
// the side that is not in the unnecessary state; between two informative
// sides, the cooler one wins.
func (lb *labeler) combine(a, b *Label) *Label {
	m := &Label{
		Rect:        a.Rect.Union(b.Rect),
		Alpha:       max(a.Alpha, b.Alpha),
		Reasons:     a.Reasons | b.Reasons,
		Renders:     append(slices.Clip(a.Renders), b.Renders...),
		unnecessary: a.unnecessary && b.unnecessary,
	}

	pick := a
	switch {
	case a.unnecessary && !b.unnecessary:
		pick = b
	case !a.unnecessary && b.unnecessary:
		pick = a
	case b.severity < a.severity:
		pick = b
	}
	m.Color, m.severity = pick.Color, pick.severity
	m.dirty = true
	return m
}
