package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/stl2glb/internal/config"
	"github.com/philipparndt/stl2glb/internal/logger"
	"github.com/philipparndt/stl2glb/version"
)

var (
	configPath string
	overrides  config.Overrides

	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "stl2glb",
	Short: "Convert binary STL and OpenSCAD models to GLB",
	Long: `stl2glb converts binary STL meshes to GLB (binary glTF 2.0) files.
OpenSCAD sources are rendered with the openscad executable first, so a
.scad file can be previewed in any glTF viewer.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, overrides)
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
		if err != nil {
			return fmt.Errorf("invalid logging configuration: %w", err)
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	overrides.BindFlags(rootCmd.PersistentFlags())
}

func main() {
	err := rootCmd.Execute()
	logger.Sync(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
