package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Overrides are command line values that take priority over the file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	LogLevel    string
	LogFile     string
	Debug       bool
	OpenSCAD    string
	LibraryPath string
	NoManifold  bool
	Timeout     time.Duration
}

// BindFlags registers the override flags on fs
func (o *Overrides) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LogFile, "log-file", "", "Also write logs to this file, rotated")
	fs.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&o.OpenSCAD, "openscad", "", "Path to the openscad executable")
	fs.StringVar(&o.LibraryPath, "library-path", "", "OpenSCAD library directory (OPENSCADPATH)")
	fs.BoolVar(&o.NoManifold, "no-manifold", false, "Disable the manifold geometry backend")
	fs.DurationVar(&o.Timeout, "timeout", 0, "Maximum time for one OpenSCAD render")
}

// apply applies CLI flag overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.OpenSCAD != "" {
		cfg.OpenSCAD.Binary = o.OpenSCAD
	}
	if o.LibraryPath != "" {
		cfg.OpenSCAD.LibraryPath = o.LibraryPath
	}
	if o.NoManifold {
		cfg.OpenSCAD.Manifold = false
	}
	if o.Timeout > 0 {
		cfg.OpenSCAD.Timeout = o.Timeout
	}
}
