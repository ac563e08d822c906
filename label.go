package outline

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/gogpu/outline/geom"
	"github.com/gogpu/outline/wire"
)

const ellipsis = "…"

// Label is the text tag drawn above an Outline, or the merge of several
// overlapping tags. Labels are rebuilt every frame.
type Label struct {
	Rect    geom.Rect
	Color   wire.Color
	Alpha   float64
	Reasons wire.Reason
	Text    string

	// Renders are the contributing renders, kept so merged labels can
	// re-derive their text.
	Renders []*AggregatedRender

	severity    float64
	unnecessary bool
	dirty       bool // Text is stale after a merge
}

// labeler derives label text and boxes. It holds the text-width cache, so
// it lives as long as the engine.
type labeler struct {
	cfg      *Config
	widths   *geom.TextWidths
	strategy string // merge strategy of the last frame
}

// height is the label box height in CSS pixels.
func (lb *labeler) height() float64 {
	return lb.cfg.LabelFontSize + 2*lb.cfg.LabelPadding + 2
}

// forOutline builds the label of o from its live renders, or returns nil
// when o has nothing to show.
func (lb *labeler) forOutline(o *Outline, renders []*AggregatedRender, st groupStats) *Label {
	if o.Current == nil || o.Alpha <= 0 || len(renders) == 0 {
		return nil
	}
	color, sev := colorFor(st, lb.cfg)
	l := &Label{
		Color:       color,
		Alpha:       o.Alpha,
		Reasons:     st.reasons,
		Text:        lb.text(renders),
		Renders:     renders,
		severity:    sev,
		unnecessary: st.unnecessary,
	}
	h := lb.height()
	l.Rect = geom.Rect{
		X:      o.Current.X,
		Y:      o.Current.Y - h,
		Width:  lb.widths.Width(l.Text) + 2*lb.cfg.LabelPadding,
		Height: h,
	}
	return l
}

// text summarizes renders as "Name, Other ×3, Third": render counts are
// summed per name, names are grouped by that total, highest first, and a
// ×N suffix follows each group whose count is above one.
func (lb *labeler) text(renders []*AggregatedRender) string {
	type group struct {
		count int
		names []string
	}
	// Instances sharing a name add up, so three "Row" renders read "Row ×3".
	perName := make(map[string]int)
	for _, r := range renders {
		name := r.Name
		if name == "" {
			name = "Unknown"
		}
		perName[name] += r.Count
	}
	byCount := make(map[int]*group)
	for name, count := range perName {
		g, ok := byCount[count]
		if !ok {
			g = &group{count: count}
			byCount[count] = g
		}
		g.names = append(g.names, name)
	}

	groups := make([]*group, 0, len(byCount))
	for _, g := range byCount {
		slices.Sort(g.names)
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b *group) int { return cmp.Compare(b.count, a.count) })

	var sb strings.Builder
	listed := 0
	truncated := false
	for _, g := range groups {
		if listed >= lb.cfg.MaxLabelNames {
			truncated = true
			break
		}
		names := g.names
		if room := lb.cfg.MaxLabelNames - listed; len(names) > room {
			names = names[:room]
			truncated = true
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strings.Join(names, ", "))
		if g.count > 1 {
			sb.WriteString(" ×")
			sb.WriteString(strconv.Itoa(g.count))
		}
		listed += len(names)
	}
	if truncated {
		sb.WriteString(", " + ellipsis)
	}
	return truncateCells(sb.String(), lb.cfg.MaxLabelChars)
}

// truncateCells shortens s to at most limit display cells, counting East
// Asian wide and fullwidth runes as two, and marks the cut with an
// ellipsis.
func truncateCells(s string, limit int) string {
	if cells(s) <= limit {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		w := runeCells(r)
		if used+w > limit-1 {
			break
		}
		sb.WriteRune(r)
		used += w
	}
	return strings.TrimRight(sb.String(), " ,") + ellipsis
}

func cells(s string) int {
	n := 0
	for _, r := range s {
		n += runeCells(r)
	}
	return n
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

func (l *Label) item() wire.LabelItem {
	return wire.LabelItem{
		Rect:    l.Rect,
		Color:   l.Color,
		Alpha:   l.Alpha,
		Reasons: l.Reasons,
		Text:    l.Text,
	}
}
