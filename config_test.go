package outline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/outline/wire"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.TotalFrames != 45 || cfg.InitialAlpha != 0.8 {
		t.Errorf("TotalFrames/InitialAlpha = %d/%v, want 45/0.8", cfg.TotalFrames, cfg.InitialAlpha)
	}
	if got := cfg.FrameInterval(); got != time.Second/60 {
		t.Errorf("FrameInterval = %v, want %v", got, time.Second/60)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"total_frames", func(c *Config) { c.TotalFrames = 0 }},
		{"initial_alpha", func(c *Config) { c.InitialAlpha = 1.5 }},
		{"convergence_rate", func(c *Config) { c.ConvergenceRate = 0 }},
		{"refresh_rate", func(c *Config) { c.RefreshRate = -1 }},
		{"target_fps", func(c *Config) { c.TargetFPS = 0 }},
		{"slow_render_threshold", func(c *Config) { c.SlowRenderThreshold = 0 }},
		{"fps_weight", func(c *Config) { c.FPSWeight = 2 }},
		{"max_label_chars", func(c *Config) { c.MaxLabelChars = 1 }},
		{"max_label_names", func(c *Config) { c.MaxLabelNames = 0 }},
		{"label_font_size", func(c *Config) { c.LabelFontSize = 0 }},
		{"measure_timeout", func(c *Config) { c.MeasureTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("Validate() = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
smoothly_animate_outlines = false
total_frames = 30
slow_render_threshold = "8ms"
measure_timeout = "0s"
max_label_names = 2

[hot_color]
r = 255
g = 0
b = 0
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.SmoothlyAnimateOutlines {
		t.Error("SmoothlyAnimateOutlines = true, want false")
	}
	if cfg.TotalFrames != 30 || cfg.MaxLabelNames != 2 {
		t.Errorf("TotalFrames/MaxLabelNames = %d/%d", cfg.TotalFrames, cfg.MaxLabelNames)
	}
	if cfg.SlowRenderThreshold != 8*time.Millisecond || cfg.MeasureTimeout != 0 {
		t.Errorf("durations = %v/%v", cfg.SlowRenderThreshold, cfg.MeasureTimeout)
	}
	if cfg.HotColor != (wire.Color{R: 255}) {
		t.Errorf("HotColor = %+v", cfg.HotColor)
	}
	// Unset keys keep defaults.
	if cfg.InitialAlpha != 0.8 || cfg.LabelMergeThreshold != 1500 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "total_frames = ="},
		{"bad duration", `slow_render_threshold = "fast"`},
		{"invalid value", "total_frames = -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data)); err == nil {
				t.Error("ParseConfig() = nil error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.toml")
	if err := os.WriteFile(path, []byte("refresh_rate = 30\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if cfg.RefreshRate != 30 {
		t.Errorf("RefreshRate = %v, want 30", cfg.RefreshRate)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadConfig(missing) = nil error")
	}
}
