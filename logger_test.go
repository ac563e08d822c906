package outline

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/outline/backend"
	"github.com/gogpu/outline/wire"
)

// captureLogs routes outline logging into a buffer for the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestDefaultLoggerSilent(t *testing.T) {
	h := nopHandler{}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs(nil).(nopHandler); !ok {
		t.Error("WithAttrs should stay silent")
	}
	if _, ok := h.WithGroup("g").(nopHandler); !ok {
		t.Error("WithGroup should stay silent")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if Logger().Enabled(context.Background(), level) {
			t.Errorf("default logger enabled at %v", level)
		}
	}
}

func TestSetLoggerNil(t *testing.T) {
	captureLogs(t, slog.LevelDebug)
	SetLogger(nil)
	if l := Logger(); l == nil || l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore a silent logger")
	}
}

func TestSetLoggerPropagatesToBackend(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	init := wire.InitCanvas{Canvas: newFrameCanvas(), Width: 10, Height: 10, DevicePixelRatio: 1}
	b, err := backend.Open(init, false)
	if err != nil {
		t.Fatalf("backend.Open() = %v", err)
	}
	defer b.Close()

	if !strings.Contains(buf.String(), "using direct canvas") {
		t.Errorf("backend did not log through the outline logger, got: %s", buf.String())
	}
}

func TestEngineLogsFallback(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)

	e, err := New(WithConfig(*testConfig()), WithTextMeasurer(runeMeasurer(6)), WithCanvas(newFrameCanvas(), 100, 100, 1))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	defer e.Close()

	if !strings.Contains(buf.String(), "offloaded canvas unavailable") {
		t.Errorf("expected fallback warning, got: %s", buf.String())
	}
	if strings.Contains(buf.String(), "using direct canvas") {
		t.Error("info record leaked through a warn-level logger")
	}
}

func TestSetLoggerConcurrent(t *testing.T) {
	captureLogs(t, slog.LevelDebug)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("outline: concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(nopHandler{}))
		}()
	}
	wg.Wait()
}
