package main

import (
	"github.com/spf13/cobra"
)

var (
	convertOutput   string
	convertBase64   bool
	convertPreview  bool
	convertSimplify float64
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a binary STL (or OpenSCAD) file to GLB",
	Long: `Convert a binary STL file to GLB. The output holds a single mesh with
POSITION and NORMAL attributes and no index buffer. OpenSCAD files are
rendered first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		return convertFile(cmd.Context(), input, outputPath(input, convertOutput, ".glb"), convertOptions{
			Preview:  convertPreview,
			Base64:   convertBase64,
			Simplify: convertSimplify,
		})
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: input with .glb extension, - for stdout)")
	convertCmd.Flags().BoolVar(&convertBase64, "base64", false, "Write the GLB base64 encoded")
	convertCmd.Flags().BoolVar(&convertPreview, "preview", false, "Render OpenSCAD sources in preview mode")
	convertCmd.Flags().Float64Var(&convertSimplify, "simplify", 0, "Decimate to this fraction of the triangles, e.g. 0.5")
}
