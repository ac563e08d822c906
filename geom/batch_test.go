package geom

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeNode struct{ id int }

type fakeSource struct {
	rects map[*fakeNode]Rect
	calls atomic.Int64
	delay time.Duration
}

func (s *fakeSource) BoundingRect(ctx context.Context, n Node) (Rect, bool) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Rect{}, false
		}
	}
	fn, ok := n.(*fakeNode)
	if !ok {
		return Rect{}, false
	}
	r, ok := s.rects[fn]
	return r, ok
}

func newFakeSource(n int) (*fakeSource, []Node) {
	src := &fakeSource{rects: make(map[*fakeNode]Rect, n)}
	nodes := make([]Node, 0, n)
	for i := range n {
		fn := &fakeNode{id: i}
		src.rects[fn] = Rect{X: float64(i), Y: 0, Width: 10, Height: 10}
		nodes = append(nodes, fn)
	}
	return src, nodes
}

func TestBatcherDeliversInChunks(t *testing.T) {
	src, nodes := newFakeSource(10)
	b := NewBatcher(src, 3, 2)

	var deliveries, total int
	err := b.Measure(context.Background(), nodes, func(entries []Entry) {
		deliveries++
		total += len(entries)
	})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if total != 10 {
		t.Errorf("expected 10 entries, got %d", total)
	}
	if deliveries != 4 {
		t.Errorf("expected 4 partial deliveries, got %d", deliveries)
	}
}

func TestBatcherSkipsDetachedAndDuplicates(t *testing.T) {
	src, nodes := newFakeSource(4)
	detached := &fakeNode{id: 99}
	input := append([]Node{}, nodes...)
	input = append(input, nodes[0], nodes[1], detached, nil)

	b := NewBatcher(src, 0, 0)
	var got []Entry
	if err := b.Measure(context.Background(), input, func(e []Entry) { got = append(got, e...) }); err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 entries, got %d", len(got))
	}
	if c := src.calls.Load(); c != 5 {
		t.Errorf("expected 5 lookups (4 unique + detached), got %d", c)
	}
}

func TestBatcherDeadlineKeepsPartialResults(t *testing.T) {
	src, nodes := newFakeSource(8)
	src.delay = 20 * time.Millisecond
	b := NewBatcher(src, 1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var got int
	err := b.Measure(ctx, nodes, func(e []Entry) { got += len(e) })
	if err == nil {
		t.Fatal("expected deadline error")
	}
	if got >= len(nodes) {
		t.Errorf("expected partial delivery, got all %d entries", got)
	}
}

func TestBatcherEmpty(t *testing.T) {
	b := NewBatcher(RectSourceFunc(func(context.Context, Node) (Rect, bool) {
		t.Fatal("source must not be called")
		return Rect{}, false
	}), 0, 0)
	if err := b.Measure(context.Background(), nil, func([]Entry) {}); err != nil {
		t.Errorf("Measure(nil) = %v", err)
	}
}
