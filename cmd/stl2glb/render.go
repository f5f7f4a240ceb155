package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	renderOutput   string
	renderPreview  bool
	renderSimplify float64
	exportOutput   string
)

var renderCmd = &cobra.Command{
	Use:   "render [file.scad]",
	Short: "Render an OpenSCAD file to GLB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if !isOpenSCAD(input) {
			return fmt.Errorf("%s is not an OpenSCAD file", input)
		}
		return convertFile(cmd.Context(), input, outputPath(input, renderOutput, ".glb"), convertOptions{
			Preview:  renderPreview,
			Simplify: renderSimplify,
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file.scad]",
	Short: "Render an OpenSCAD file to binary STL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if !isOpenSCAD(input) {
			return fmt.Errorf("%s is not an OpenSCAD file", input)
		}

		data, err := renderSTL(cmd.Context(), input, false)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		output := outputPath(input, exportOutput, ".stl")
		if err := writeOutput(output, data); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		log.Info("STL file exported successfully", zap.String("output", output))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default: input with .glb extension, - for stdout)")
	renderCmd.Flags().BoolVar(&renderPreview, "preview", false, "Render with $preview=true")
	renderCmd.Flags().Float64Var(&renderSimplify, "simplify", 0, "Decimate to this fraction of the triangles, e.g. 0.5")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: input with .stl extension, - for stdout)")
}
