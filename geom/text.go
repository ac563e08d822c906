package geom

import (
	"fmt"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/outline/internal/cache"
)

// TextMeasurer returns the advance width of s in pixels.
type TextMeasurer interface {
	MeasureText(s string) float64
}

// FontMeasurer measures text with a gg text face.
type FontMeasurer struct {
	face text.Face
}

// NewFontMeasurer creates a measurer for the Go Regular font at size
// points.
func NewFontMeasurer(size float64) (*FontMeasurer, error) {
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("geom: load label font: %w", err)
	}
	return &FontMeasurer{face: src.Face(size)}, nil
}

// NewFaceMeasurer wraps an existing face.
func NewFaceMeasurer(face text.Face) *FontMeasurer {
	return &FontMeasurer{face: face}
}

// Face returns the face used for measurement, so drawing can share it.
func (m *FontMeasurer) Face() text.Face { return m.face }

// MeasureText implements TextMeasurer.
func (m *FontMeasurer) MeasureText(s string) float64 {
	w, _ := text.Measure(s, m.face)
	return w
}

// LineHeight returns the face's line height in pixels.
func (m *FontMeasurer) LineHeight() float64 {
	return m.face.Metrics().LineHeight()
}

// FixedMeasurer measures text with the 7x13 bitmap face. It needs no font
// data and serves as the fallback when no TTF face can be loaded.
type FixedMeasurer struct{}

// MeasureText implements TextMeasurer.
func (FixedMeasurer) MeasureText(s string) float64 {
	adv := font.MeasureString(basicfont.Face7x13, s)
	return float64(adv) / 64
}

// TextWidths memoizes TextMeasurer results in a bounded LRU.
// It is owned by the engine goroutine.
type TextWidths struct {
	measurer TextMeasurer
	widths   *cache.LRU[string, float64]
}

// NewTextWidths creates a cache of at most capacity widths.
func NewTextWidths(m TextMeasurer, capacity int) *TextWidths {
	if m == nil {
		m = FixedMeasurer{}
	}
	return &TextWidths{measurer: m, widths: cache.New[string, float64](capacity)}
}

// Width returns the advance width of s.
func (t *TextWidths) Width(s string) float64 {
	if s == "" {
		return 0
	}
	return t.widths.GetOrCreate(s, func() float64 {
		return t.measurer.MeasureText(s)
	})
}

// Stats reports cache counters.
func (t *TextWidths) Stats() cache.Stats { return t.widths.Stats() }

// Reset empties the cache.
func (t *TextWidths) Reset() { t.widths.Clear() }
