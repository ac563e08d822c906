package geom

import (
	"math"
	"strconv"
)

// Rect is an axis-aligned rectangle in CSS pixels.
// The origin is the top-left corner; Y grows downward.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsDegenerate reports whether r has no drawable area or holds a
// non-finite coordinate.
func (r Rect) IsDegenerate() bool {
	if r.Width <= 0 || r.Height <= 0 {
		return true
	}
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// Intersects reports whether r and o overlap with positive area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// IntersectionArea returns the overlapping area of r and o.
func (r Rect) IntersectionArea(o Rect) float64 {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Approach moves every component of r toward target by fraction t of the
// remaining distance. Components closer than half a pixel snap.
func (r Rect) Approach(target Rect, t float64) Rect {
	return Rect{
		X:      approach(r.X, target.X, t),
		Y:      approach(r.Y, target.Y, t),
		Width:  approach(r.Width, target.Width, t),
		Height: approach(r.Height, target.Height, t),
	}
}

func approach(from, to, t float64) float64 {
	d := to - from
	if math.Abs(d) < 0.5 {
		return to
	}
	return from + d*t
}

// Viewport is the visible area of the inspected document.
type Viewport struct {
	Width, Height float64
}

// Visible reports whether any part of r lies inside the viewport.
// A zero viewport is treated as unbounded.
func (v Viewport) Visible(r Rect) bool {
	if v.Width <= 0 || v.Height <= 0 {
		return true
	}
	return r.Right() > 0 && r.Bottom() > 0 && r.X < v.Width && r.Y < v.Height
}

// PositionKey identifies one on-screen position: the rect origin rounded
// to whole pixels.
type PositionKey struct {
	X, Y int
}

// KeyOf returns the position key of r.
func KeyOf(r Rect) PositionKey {
	return PositionKey{X: int(math.Round(r.X)), Y: int(math.Round(r.Y))}
}

// String formats the key as "x-y".
func (k PositionKey) String() string {
	return strconv.Itoa(k.X) + "-" + strconv.Itoa(k.Y)
}
