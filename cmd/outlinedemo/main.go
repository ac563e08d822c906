// Command outlinedemo drives the outline engine with a synthetic component
// tree and writes the overlay as PNG frames.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/outline"
	"github.com/gogpu/outline/geom"
	"github.com/gogpu/outline/wire"
)

func main() {
	var (
		width      = flag.Float64("width", 800, "viewport width in CSS pixels")
		height     = flag.Float64("height", 600, "viewport height in CSS pixels")
		dpr        = flag.Float64("dpr", 1, "device pixel ratio")
		components = flag.Int("components", 40, "number of synthetic components")
		duration   = flag.Duration("duration", 3*time.Second, "how long to run")
		every      = flag.Int("every", 15, "save every Nth presented frame")
		outDir     = flag.String("output", "frames", "output directory")
		configPath = flag.String("config", "", "TOML config file")
		watch      = flag.Bool("watch", false, "reload the config file when it changes")
		seed       = flag.Uint64("seed", 1, "random seed")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	outline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := outline.DefaultConfig()
	if *configPath != "" {
		c, err := outline.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = c
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	tree := newTree(rng, *components, *width, *height)
	canvas := &pngCanvas{dir: *outDir, every: *every}

	e, err := outline.New(
		outline.WithConfig(cfg),
		outline.WithRectSource(tree),
		outline.WithCanvas(canvas, *width, *height, *dpr),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Run(ctx) })
	g.Go(func() error { return produce(ctx, e, tree, rng, cfg.FrameInterval()) })
	if *watch && *configPath != "" {
		g.Go(func() error { return watchConfig(ctx, e, *configPath) })
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Fatalf("Demo failed: %v", err)
	}
	_ = e.Close()

	st := e.Stats()
	log.Printf("Ran %d frames, drew %d, saved %d PNGs to %s (backend %s)\n",
		st.Frames, st.Drawn, canvas.saved(), *outDir, st.Backend)
}

// component is one node of the synthetic tree.
type component struct {
	id   outline.InstanceID
	name string
	rect geom.Rect
	cost time.Duration
}

// tree is a RectSource over a fixed set of components that drift slowly.
type tree struct {
	mu    sync.Mutex
	nodes []*component
}

var names = []string{"App", "Header", "Sidebar", "List", "Row", "Cell", "Button", "Avatar", "Tooltip", "Chart"}

func newTree(rng *rand.Rand, n int, w, h float64) *tree {
	t := &tree{nodes: make([]*component, n)}
	for i := range t.nodes {
		cw := 40 + rng.Float64()*160
		ch := 20 + rng.Float64()*60
		t.nodes[i] = &component{
			id:   outline.InstanceID(i + 1),
			name: names[i%len(names)],
			rect: geom.Rect{X: rng.Float64() * (w - cw), Y: rng.Float64() * (h - ch), Width: cw, Height: ch},
			cost: time.Duration(rng.ExpFloat64() * float64(4*time.Millisecond)),
		}
	}
	return t
}

// BoundingRect implements geom.RectSource.
func (t *tree) BoundingRect(_ context.Context, n geom.Node) (geom.Rect, bool) {
	c, ok := n.(*component)
	if !ok {
		return geom.Rect{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return c.rect, true
}

func (t *tree) nudge(c *component, dx, dy float64) {
	t.mu.Lock()
	c.rect = c.rect.Translate(dx, dy)
	t.mu.Unlock()
}

// produce submits a burst of renders every interval until ctx ends.
func produce(ctx context.Context, e *outline.Engine, t *tree, rng *rand.Rand, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fps := 60.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			var batch []outline.RenderEvent
			for _, c := range t.nodes {
				if rng.Float64() > 0.08 {
					continue
				}
				if rng.Float64() < 0.1 {
					t.nudge(c, rng.NormFloat64()*8, rng.NormFloat64()*8)
				}
				fps = max(10, min(60, fps+rng.NormFloat64()*3))
				batch = append(batch, outline.RenderEvent{
					Instance:    c.id,
					Name:        c.name,
					Node:        c,
					Timestamp:   now,
					DidCommit:   rng.Float64() < 0.7,
					Unnecessary: rng.Float64() < 0.2,
					Changes:     outline.ChangeSummary{Props: rng.IntN(3), Unstable: rng.Float64() < 0.05},
					Duration:    c.cost,
					FPS:         fps,
				})
			}
			if len(batch) == 0 {
				continue
			}
			if err := e.Submit(batch...); err != nil {
				if errors.Is(err, outline.ErrStopped) || errors.Is(err, outline.ErrClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// watchConfig reloads path into e whenever the file is written.
func watchConfig(ctx context.Context, e *outline.Engine, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	// Editors often replace the file, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := outline.LoadConfig(path)
			if err != nil {
				outline.Logger().Warn("outlinedemo: config reload failed", "err", err)
				continue
			}
			err = e.Control(func(e *outline.Engine) {
				if err := e.SetConfig(cfg); err != nil {
					outline.Logger().Warn("outlinedemo: config rejected", "err", err)
					return
				}
				outline.Logger().Info("outlinedemo: config reloaded", "path", path)
			})
			if errors.Is(err, outline.ErrStopped) || errors.Is(err, outline.ErrClosed) {
				return nil
			}
			if err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			outline.Logger().Warn("outlinedemo: watcher error", "err", err)
		}
	}
}

// pngCanvas saves every Nth presented frame. It can be handed to the
// offloaded backend's worker.
type pngCanvas struct {
	dir   string
	every int

	mu        sync.Mutex
	presented int
	written   int
}

// Present implements wire.Canvas.
func (c *pngCanvas) Present(frame *image.RGBA) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presented++
	if c.every <= 0 || c.presented%c.every != 0 {
		return nil
	}
	f, err := os.Create(filepath.Join(c.dir, fmt.Sprintf("frame-%04d.png", c.presented)))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		return err
	}
	c.written++
	return nil
}

// Transfer implements wire.Transferable.
func (c *pngCanvas) Transfer() (wire.Canvas, error) { return c, nil }

func (c *pngCanvas) saved() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}
