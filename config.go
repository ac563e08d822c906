package outline

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/outline/wire"
)

// Config holds the tunable parameters of the overlay. All fields are pure
// parameters; none switches behavior beyond what its name says.
type Config struct {
	// SmoothlyAnimateOutlines interpolates rectangles toward their target.
	// When false, rectangles snap.
	SmoothlyAnimateOutlines bool

	// TotalFrames is the outline lifetime in animation frames.
	TotalFrames int

	// InitialAlpha is the stroke alpha of a fresh outline.
	InitialAlpha float64

	// ConvergenceRate is the fraction of the remaining distance covered
	// per tick while interpolating, in (0, 1].
	ConvergenceRate float64

	// RefreshRate is the tick rate of Engine.Run in Hz.
	RefreshRate float64

	CoolColor        wire.Color
	HotColor         wire.Color
	UnnecessaryColor wire.Color

	// TargetFPS caps the FPS deficit term of the severity score.
	TargetFPS float64

	// SlowRenderThreshold is the average render time that scores as
	// fully severe.
	SlowRenderThreshold time.Duration

	// FPSWeight is the share of the FPS deficit in the severity score;
	// the render-time term gets the rest.
	FPSWeight float64

	MaxLabelChars       int
	MaxLabelNames       int
	LabelMergeThreshold int
	LabelFontSize       float64
	LabelPadding        float64

	TextCacheSize      int
	MeasureConcurrency int
	MeasureChunk       int
	MeasureTimeout     time.Duration

	// Offload draws on a worker goroutine when the canvas allows it.
	Offload bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SmoothlyAnimateOutlines: true,
		TotalFrames:             45,
		InitialAlpha:            0.8,
		ConvergenceRate:         0.35,
		RefreshRate:             60,
		CoolColor:               wire.Color{R: 115, G: 97, B: 230},
		HotColor:                wire.Color{R: 185, G: 49, B: 115},
		UnnecessaryColor:        wire.Color{R: 158, G: 158, B: 158},
		TargetFPS:               60,
		SlowRenderThreshold:     16 * time.Millisecond,
		FPSWeight:               0.5,
		MaxLabelChars:           40,
		MaxLabelNames:           4,
		LabelMergeThreshold:     1500,
		LabelFontSize:           11,
		LabelPadding:            2,
		TextCacheSize:           1000,
		MeasureConcurrency:      4,
		MeasureChunk:            64,
		MeasureTimeout:          8 * time.Millisecond,
		Offload:                 true,
	}
}

// Validate checks every field and returns the first *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.TotalFrames <= 0:
		return &ConfigError{"total_frames", "must be positive"}
	case c.InitialAlpha <= 0 || c.InitialAlpha > 1:
		return &ConfigError{"initial_alpha", "must be in (0, 1]"}
	case c.ConvergenceRate <= 0 || c.ConvergenceRate > 1:
		return &ConfigError{"convergence_rate", "must be in (0, 1]"}
	case c.RefreshRate <= 0:
		return &ConfigError{"refresh_rate", "must be positive"}
	case c.TargetFPS <= 0:
		return &ConfigError{"target_fps", "must be positive"}
	case c.SlowRenderThreshold <= 0:
		return &ConfigError{"slow_render_threshold", "must be positive"}
	case c.FPSWeight < 0 || c.FPSWeight > 1:
		return &ConfigError{"fps_weight", "must be in [0, 1]"}
	case c.MaxLabelChars < 2:
		return &ConfigError{"max_label_chars", "must be at least 2"}
	case c.MaxLabelNames <= 0:
		return &ConfigError{"max_label_names", "must be positive"}
	case c.LabelMergeThreshold < 0:
		return &ConfigError{"label_merge_threshold", "must not be negative"}
	case c.LabelFontSize <= 0:
		return &ConfigError{"label_font_size", "must be positive"}
	case c.LabelPadding < 0:
		return &ConfigError{"label_padding", "must not be negative"}
	case c.MeasureTimeout < 0:
		return &ConfigError{"measure_timeout", "must not be negative"}
	}
	return nil
}

// FrameInterval returns the tick period for RefreshRate.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.RefreshRate)
}

// ParseConfig decodes TOML data over the defaults and validates the result.
// Durations are written as strings such as "16ms".
func ParseConfig(data []byte) (Config, error) {
	var raw configFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("outline: parse config: %w", err)
	}
	cfg := DefaultConfig()
	if err := raw.apply(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("outline: read config: %w", err)
	}
	return ParseConfig(data)
}

// configFile mirrors Config with optional fields so unset keys keep
// their defaults.
type configFile struct {
	SmoothlyAnimateOutlines *bool       `toml:"smoothly_animate_outlines"`
	TotalFrames             *int        `toml:"total_frames"`
	InitialAlpha            *float64    `toml:"initial_alpha"`
	ConvergenceRate         *float64    `toml:"convergence_rate"`
	RefreshRate             *float64    `toml:"refresh_rate"`
	CoolColor               *wire.Color `toml:"cool_color"`
	HotColor                *wire.Color `toml:"hot_color"`
	UnnecessaryColor        *wire.Color `toml:"unnecessary_color"`
	TargetFPS               *float64    `toml:"target_fps"`
	SlowRenderThreshold     *string     `toml:"slow_render_threshold"`
	FPSWeight               *float64    `toml:"fps_weight"`
	MaxLabelChars           *int        `toml:"max_label_chars"`
	MaxLabelNames           *int        `toml:"max_label_names"`
	LabelMergeThreshold     *int        `toml:"label_merge_threshold"`
	LabelFontSize           *float64    `toml:"label_font_size"`
	LabelPadding            *float64    `toml:"label_padding"`
	TextCacheSize           *int        `toml:"text_cache_size"`
	MeasureConcurrency      *int        `toml:"measure_concurrency"`
	MeasureChunk            *int        `toml:"measure_chunk"`
	MeasureTimeout          *string     `toml:"measure_timeout"`
	Offload                 *bool       `toml:"offload"`
}

func (f *configFile) apply(c *Config) error {
	set(&c.SmoothlyAnimateOutlines, f.SmoothlyAnimateOutlines)
	set(&c.TotalFrames, f.TotalFrames)
	set(&c.InitialAlpha, f.InitialAlpha)
	set(&c.ConvergenceRate, f.ConvergenceRate)
	set(&c.RefreshRate, f.RefreshRate)
	set(&c.CoolColor, f.CoolColor)
	set(&c.HotColor, f.HotColor)
	set(&c.UnnecessaryColor, f.UnnecessaryColor)
	set(&c.TargetFPS, f.TargetFPS)
	set(&c.FPSWeight, f.FPSWeight)
	set(&c.MaxLabelChars, f.MaxLabelChars)
	set(&c.MaxLabelNames, f.MaxLabelNames)
	set(&c.LabelMergeThreshold, f.LabelMergeThreshold)
	set(&c.LabelFontSize, f.LabelFontSize)
	set(&c.LabelPadding, f.LabelPadding)
	set(&c.TextCacheSize, f.TextCacheSize)
	set(&c.MeasureConcurrency, f.MeasureConcurrency)
	set(&c.MeasureChunk, f.MeasureChunk)
	set(&c.Offload, f.Offload)

	for _, d := range []struct {
		field string
		src   *string
		dst   *time.Duration
	}{
		{"slow_render_threshold", f.SlowRenderThreshold, &c.SlowRenderThreshold},
		{"measure_timeout", f.MeasureTimeout, &c.MeasureTimeout},
	} {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return &ConfigError{d.field, fmt.Sprintf("is not a duration: %q", *d.src)}
		}
		*d.dst = v
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
