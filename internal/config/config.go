// Package config handles mesh tool and viewer configuration.
package config

import (
	"github.com/pkg/errors"
)

// ErrInvalid reports a configuration value out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds display and draw path settings.
type RenderConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
	// VBO selects buffer objects over streamed client arrays.
	VBO            bool       `yaml:"vbo"`
	SelectionColor [4]float32 `yaml:"selection_color"`
	Background     [4]float32 `yaml:"background"`
	// LightLongitude and LightLatitude place the light in degrees around
	// the viewer.
	LightLongitude float32 `yaml:"light_longitude"`
	LightLatitude  float32 `yaml:"light_latitude"`
}

// MeshConfig holds mesh processing settings.
type MeshConfig struct {
	SharpEdgePrecision float64 `yaml:"sharp_edge_precision"`
	SharpEdgeAngle     float64 `yaml:"sharp_edge_angle"`
	// Workers bounds the sharp-edge pass. Zero uses every CPU.
	Workers int `yaml:"workers"`
	// LodPercent picks the LOD drawn, 0 being the finest.
	LodPercent int        `yaml:"lod_percent"`
	WireColor  [4]float32 `yaml:"wire_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Title:          "Midgard Mesh Viewer",
			Width:          1280,
			Height:         720,
			Fullscreen:     false,
			VSync:          true,
			FPSLimit:       0,
			VBO:            true,
			SelectionColor: [4]float32{0, 1, 0, 1},
			Background:     [4]float32{0.15, 0.15, 0.18, 1},
			LightLongitude: 17,
			LightLatitude:  25,
		},
		Mesh: MeshConfig{
			SharpEdgePrecision: 1e-5,
			SharpEdgeAngle:     25,
			Workers:            0,
			LodPercent:         0,
			WireColor:          [4]float32{0, 0, 0, 1},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return errors.Wrapf(ErrInvalid, "window size %dx%d", c.Render.Width, c.Render.Height)
	case c.Render.LightLatitude < -90 || c.Render.LightLatitude > 90:
		return errors.Wrapf(ErrInvalid, "light latitude %g", c.Render.LightLatitude)
	case c.Mesh.SharpEdgePrecision <= 0:
		return errors.Wrapf(ErrInvalid, "sharp edge precision %g", c.Mesh.SharpEdgePrecision)
	case c.Mesh.SharpEdgeAngle < 0 || c.Mesh.SharpEdgeAngle > 180:
		return errors.Wrapf(ErrInvalid, "sharp edge angle %g", c.Mesh.SharpEdgeAngle)
	case c.Mesh.Workers < 0:
		return errors.Wrapf(ErrInvalid, "workers %d", c.Mesh.Workers)
	case c.Mesh.LodPercent < 0 || c.Mesh.LodPercent > 100:
		return errors.Wrapf(ErrInvalid, "lod percent %d", c.Mesh.LodPercent)
	}
	return nil
}
