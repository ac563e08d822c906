package wire

import (
	"errors"
	"testing"

	"github.com/gogpu/outline/geom"
)

func TestPackLayout(t *testing.T) {
	recs := []OutlineRecord{
		{InstanceKey: 7, Count: 3, Rect: geom.Rect{X: 10, Y: 10, Width: 50, Height: 20}, Committed: true, Name: "Button"},
		{InstanceKey: 9, Count: 1, Rect: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1}, Name: "Card"},
	}
	buf, names := PackOutlines(nil, recs)
	if len(buf) != 2*RecordSize {
		t.Fatalf("expected %d bytes, got %d", 2*RecordSize, len(buf))
	}
	if names[0] != "Button" || names[1] != "Card" {
		t.Errorf("names not parallel to records: %v", names)
	}

	got, err := UnpackOutlines(buf, names)
	if err != nil {
		t.Fatalf("UnpackOutlines: %v", err)
	}
	for i := range recs {
		if got[i] != recs[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], recs[i])
		}
	}
}

func TestPackAppends(t *testing.T) {
	prefix := []byte{1, 2, 3}
	buf, _ := PackOutlines(prefix, []OutlineRecord{{InstanceKey: 1}})
	if len(buf) != 3+RecordSize {
		t.Errorf("expected append after prefix, got %d bytes", len(buf))
	}
	if buf[0] != 1 || buf[2] != 3 {
		t.Error("prefix overwritten")
	}
}

func TestUnpackErrors(t *testing.T) {
	if _, err := UnpackOutlines(make([]byte, RecordSize+3), []string{"a"}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer, got %v", err)
	}
	if _, err := UnpackOutlines(make([]byte, RecordSize), nil); !errors.Is(err, ErrNameMismatch) {
		t.Errorf("expected ErrNameMismatch, got %v", err)
	}
}

func TestDrawTranslate(t *testing.T) {
	d := Draw{
		Outlines: []DrawItem{{Rect: geom.Rect{X: 1, Y: 2, Width: 3, Height: 4}, Alpha: 0.5}},
		Labels:   []LabelItem{{Rect: geom.Rect{X: 0, Y: 0, Width: 5, Height: 5}, Text: "A"}},
	}
	moved := d.Translate(10, -2)
	if moved.Outlines[0].Rect != (geom.Rect{X: 11, Y: 0, Width: 3, Height: 4}) {
		t.Errorf("outline not translated: %+v", moved.Outlines[0].Rect)
	}
	if moved.Outlines[0].Alpha != 0.5 || moved.Labels[0].Text != "A" {
		t.Error("translate must keep alpha and text")
	}
	if d.Outlines[0].Rect.X != 1 {
		t.Error("translate mutated the original")
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		KindInitCanvas:  "init-canvas",
		KindResize:      "resize",
		KindDraw:        "draw",
		KindScrollDelta: "scroll-delta",
		Kind(42):        "unknown",
	} {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
