package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagNoVBO      = flag.Bool("novbo", false, "Stream client arrays instead of buffer objects")
	flagWorkers    = flag.Int("workers", 0, "Sharp edge workers (0 keeps the config value)")
	flagLod        = flag.Int("lod", -1, "LOD percent to draw")
	flagAngle      = flag.Float64("angle", 0, "Sharp edge angle in degrees")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Render.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Render.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagNoVBO {
		cfg.Render.VBO = false
	}
	if *flagWorkers > 0 {
		cfg.Mesh.Workers = *flagWorkers
	}
	if *flagLod >= 0 {
		cfg.Mesh.LodPercent = *flagLod
	}
	if *flagAngle > 0 {
		cfg.Mesh.SharpEdgeAngle = *flagAngle
	}
}
