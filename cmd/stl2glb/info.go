package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipparndt/stl2glb/pkg/analysis"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display information about an STL, OpenSCAD or GLB file",
	Long:  "Show triangle and vertex counts, bounding box, surface area and buffer sizes. GLB files are read back with a glTF decoder.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	out := cmd.OutOrStdout()

	if strings.EqualFold(filepath.Ext(filename), ".glb") {
		return glbInfo(out, filename)
	}

	data, err := loadSTL(cmd.Context(), filename, false)
	if err != nil {
		return err
	}
	mesh, err := stl.Decode(data)
	if err != nil {
		return fmt.Errorf("error parsing STL file: %w", err)
	}

	result := analysis.AnalyzeMesh(mesh)

	fmt.Fprintln(out, "STL File Information")
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Degenerate triangles: %d\n", result.DegenerateTriangles)
	if result.NonFiniteTriangles > 0 {
		fmt.Fprintf(out, "  Non-finite triangles: %d\n", result.NonFiniteTriangles)
	}
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n\n", result.SurfaceArea)

	if result.TriangleCount > 0 {
		fmt.Fprintln(out, "Bounding Box:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
		fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

		fmt.Fprintln(out, "Dimensions:")
		fmt.Fprintf(out, "  Width (X): %.6f units\n", result.Dimensions.X)
		fmt.Fprintf(out, "  Depth (Y): %.6f units\n", result.Dimensions.Y)
		fmt.Fprintf(out, "  Height (Z): %.6f units\n", result.Dimensions.Z)
		fmt.Fprintf(out, "  Diagonal: %.6f units\n\n", result.BoundingBox.Diagonal())
	}

	fmt.Fprintln(out, "GLB Buffers:")
	fmt.Fprintf(out, "  Positions: %s\n", analysis.FormatBytes(result.PositionBytes))
	fmt.Fprintf(out, "  Normals: %s\n", analysis.FormatBytes(result.NormalBytes))
	return nil
}

func glbInfo(out io.Writer, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read GLB file: %w", err)
	}

	result, err := analysis.AnalyzeGLB(data)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "GLB File Information")
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Container:")
	fmt.Fprintf(out, "  Version: %d\n", result.Layout.Version)
	fmt.Fprintf(out, "  Total: %s\n", analysis.FormatBytes(result.Layout.Total))
	fmt.Fprintf(out, "  JSON chunk: %s\n", analysis.FormatBytes(result.Layout.JSONLength))
	fmt.Fprintf(out, "  BIN chunk: %s\n\n", analysis.FormatBytes(result.Layout.BINLength))

	fmt.Fprintln(out, "Document:")
	fmt.Fprintf(out, "  Meshes: %d\n", result.Meshes)
	fmt.Fprintf(out, "  Primitives: %d\n", result.Primitives)
	fmt.Fprintf(out, "  Accessors: %d\n", result.Accessors)
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Normals: %t\n", result.HasNormals)

	if result.VertexCount > 0 {
		fmt.Fprintln(out, "\nBounding Box:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	}
	return nil
}
