// Package config loads the editor's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is looked up when no -config flag is given.
const DefaultPath = "canvasedit.toml"

// Config is the canvasedit.toml file.
type Config struct {
	Canvas   CanvasConfig   `toml:"canvas"`
	Assets   AssetsConfig   `toml:"assets"`
	Elements ElementsConfig `toml:"elements"`
	Video    VideoConfig    `toml:"video"`
	Log      LogConfig      `toml:"log"`
}

type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type AssetsConfig struct {
	ImageURL string `toml:"image_url"`
	VideoURL string `toml:"video_url"`
	// Seconds before an image fetch is abandoned
	FetchTimeout int `toml:"fetch_timeout"`
}

// ElementsConfig holds the literals used when elements are created or nudged.
type ElementsConfig struct {
	MoveStep    float64 `toml:"move_step"`
	ShapeSize   float64 `toml:"shape_size"`
	ShapeFill   string  `toml:"shape_fill"`
	TextFill    string  `toml:"text_fill"`
	FontSize    float64 `toml:"font_size"`
	ImageWidth  float64 `toml:"image_width"`
	ImageHeight float64 `toml:"image_height"`
	// New elements land at SpawnMin + rand*SpawnRange on both axes
	SpawnMin   float64 `toml:"spawn_min"`
	SpawnRange float64 `toml:"spawn_range"`
}

// VideoConfig is the geometry stored on the video descriptor. The frame is
// always drawn at full canvas size regardless.
type VideoConfig struct {
	X         float64 `toml:"x"`
	Y         float64 `toml:"y"`
	Width     float64 `toml:"width"`
	Height    float64 `toml:"height"`
	FrameRate float64 `toml:"frame_rate"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 550, Height: 550},
		Assets: AssetsConfig{
			ImageURL:     "https://plus.unsplash.com/premium_photo-1683865776032-07bf70b0add1?q=80&w=1932&auto=format&fit=crop&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D",
			VideoURL:     "https://www.w3schools.com/html/mov_bbb.mp4",
			FetchTimeout: 30,
		},
		Elements: ElementsConfig{
			MoveStep:    10,
			ShapeSize:   100,
			ShapeFill:   "red",
			TextFill:    "black",
			FontSize:    24,
			ImageWidth:  100,
			ImageHeight: 100,
			SpawnMin:    50,
			SpawnRange:  400,
		},
		Video: VideoConfig{X: 150, Y: 150, Width: 300, Height: 200, FrameRate: 60},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the editor cannot work with.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	positive("canvas.width", c.Canvas.Width)
	positive("canvas.height", c.Canvas.Height)
	positive("elements.move_step", c.Elements.MoveStep)
	positive("elements.shape_size", c.Elements.ShapeSize)
	positive("elements.font_size", c.Elements.FontSize)
	positive("elements.image_width", c.Elements.ImageWidth)
	positive("elements.image_height", c.Elements.ImageHeight)
	positive("video.frame_rate", c.Video.FrameRate)
	if c.Elements.SpawnRange < 0 {
		errs = append(errs, fmt.Errorf("elements.spawn_range must not be negative, got %v", c.Elements.SpawnRange))
	}
	if c.Assets.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("assets.fetch_timeout must be positive, got %d", c.Assets.FetchTimeout))
	}
	if _, err := ParseColor(c.Elements.ShapeFill); err != nil {
		errs = append(errs, fmt.Errorf("elements.shape_fill: %w", err))
	}
	if _, err := ParseColor(c.Elements.TextFill); err != nil {
		errs = append(errs, fmt.Errorf("elements.text_fill: %w", err))
	}
	return errors.Join(errs...)
}

// FetchTimeoutDuration returns the image fetch timeout.
func (c Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.Assets.FetchTimeout) * time.Second
}

// FrameInterval is the period of the video frame task.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.Video.FrameRate)
}

var namedColors = map[string]color.NRGBA{
	"black":  {A: 255},
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"red":    {R: 255, A: 255},
	"green":  {G: 128, A: 255},
	"blue":   {B: 255, A: 255},
	"yellow": {R: 255, G: 255, A: 255},
}

// ParseColor accepts a handful of CSS colour names or #rrggbb.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	return color.NRGBA{}, fmt.Errorf("unknown colour %q", s)
}
