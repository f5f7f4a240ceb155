// Package config handles stl2glb configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	OpenSCAD OpenSCADConfig `yaml:"openscad"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
}

// OpenSCADConfig configures the external geometry kernel.
type OpenSCADConfig struct {
	Binary      string        `yaml:"binary"`
	LibraryPath string        `yaml:"library_path"` // Exported as OPENSCADPATH
	Manifold    bool          `yaml:"manifold"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	RenderRate   float64 `yaml:"render_rate"` // Renders per second
	RenderBurst  int     `yaml:"render_burst"`
	MaxBodyBytes int64   `yaml:"max_body_bytes"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		OpenSCAD: OpenSCADConfig{
			Binary:   "openscad",
			Manifold: true,
			Timeout:  2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			RenderRate:   1,
			RenderBurst:  2,
			MaxBodyBytes: 256 << 20,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
