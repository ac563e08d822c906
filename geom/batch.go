package geom

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Default batching parameters.
const (
	DefaultChunkSize   = 64
	DefaultConcurrency = 4
)

// Node is an opaque handle to a visual element. Nodes must be comparable;
// pointers are the usual choice.
type Node any

// RectSource resolves the bounding rectangle of one node.
// It returns ok == false when the node is no longer in the document.
// Implementations must be safe for concurrent use.
type RectSource interface {
	BoundingRect(ctx context.Context, n Node) (r Rect, ok bool)
}

// RectSourceFunc adapts a function to RectSource.
type RectSourceFunc func(ctx context.Context, n Node) (Rect, bool)

// BoundingRect implements RectSource.
func (f RectSourceFunc) BoundingRect(ctx context.Context, n Node) (Rect, bool) {
	return f(ctx, n)
}

// Entry is one measured node.
type Entry struct {
	Node Node
	Rect Rect
}

// Batcher measures many nodes in one pass with bounded parallelism.
type Batcher struct {
	src         RectSource
	chunkSize   int
	concurrency int
}

// NewBatcher creates a Batcher over src. Non-positive chunkSize or
// concurrency select the defaults.
func NewBatcher(src RectSource, chunkSize, concurrency int) *Batcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Batcher{src: src, chunkSize: chunkSize, concurrency: concurrency}
}

// Measure resolves the rectangles of nodes and calls deliver once per
// completed chunk, always on the calling goroutine. Duplicate nodes are
// measured once. Detached nodes are left out of the delivered entries.
//
// When ctx ends before every chunk is delivered, Measure returns ctx.Err();
// chunks already delivered stay valid.
func (b *Batcher) Measure(ctx context.Context, nodes []Node, deliver func([]Entry)) error {
	unique := dedupe(nodes)
	if len(unique) == 0 {
		return nil
	}

	chunks := (len(unique) + b.chunkSize - 1) / b.chunkSize
	// Buffered to the chunk count so workers never block on a caller
	// that stopped receiving.
	results := make(chan []Entry, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	go func() {
		for start := 0; start < len(unique); start += b.chunkSize {
			part := unique[start:min(start+b.chunkSize, len(unique))]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results <- b.measureChunk(gctx, part)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entries, ok := <-results:
			if !ok {
				return ctx.Err()
			}
			if len(entries) > 0 {
				deliver(entries)
			}
		}
	}
}

func (b *Batcher) measureChunk(ctx context.Context, nodes []Node) []Entry {
	out := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		r, ok := b.src.BoundingRect(ctx, n)
		if !ok {
			continue
		}
		out = append(out, Entry{Node: n, Rect: r})
	}
	return out
}

func dedupe(nodes []Node) []Node {
	seen := make(map[Node]struct{}, len(nodes))
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
