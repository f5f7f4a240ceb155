package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/stl2glb/pkg/analysis"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

var (
	triCount    int
	triLargest  bool
	triSmallest bool
)

var trianglesCmd = &cobra.Command{
	Use:   "triangles [file]",
	Short: "Analyze triangles in an STL or OpenSCAD file",
	Long:  "Display area, perimeter and vertex positions of the triangles that end up in the GLB.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriangles,
}

func init() {
	rootCmd.AddCommand(trianglesCmd)

	trianglesCmd.Flags().IntVarP(&triCount, "count", "n", 10, "Number of triangles to display")
	trianglesCmd.Flags().BoolVarP(&triLargest, "largest", "l", false, "Show largest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triSmallest, "smallest", "s", false, "Show smallest triangles by area")
	trianglesCmd.MarkFlagsMutuallyExclusive("largest", "smallest")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	filename := args[0]

	data, err := loadSTL(cmd.Context(), filename, false)
	if err != nil {
		return err
	}
	mesh, err := stl.Decode(data)
	if err != nil {
		return fmt.Errorf("error parsing STL file: %w", err)
	}

	order := analysis.FileOrder
	title := fmt.Sprintf("First %d Triangles", triCount)
	switch {
	case triLargest:
		order = analysis.LargestFirst
		title = fmt.Sprintf("Top %d Largest Triangles", triCount)
	case triSmallest:
		order = analysis.SmallestFirst
		title = fmt.Sprintf("Top %d Smallest Triangles", triCount)
	}

	triangles, stats := analysis.RankTriangles(mesh, order, triCount)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total triangles: %d\n", stats.Count)
	fmt.Fprintf(out, "Total surface area: %.6f square units\n", stats.TotalArea)
	fmt.Fprintf(out, "Min triangle area: %.6f square units\n", stats.MinArea)
	fmt.Fprintf(out, "Max triangle area: %.6f square units\n", stats.MaxArea)
	fmt.Fprintf(out, "Avg triangle area: %.6f square units\n\n", stats.AverageArea())

	for _, tri := range triangles {
		fmt.Fprintf(out, "Triangle #%d:\n", tri.Index)
		fmt.Fprintf(out, "  Area: %.6f square units\n", tri.Area)
		fmt.Fprintf(out, "  Perimeter: %.6f units\n", tri.Perimeter)
		fmt.Fprintf(out, "  Vertices: %s, %s, %s\n\n",
			analysis.FormatVector(tri.Triangle.V1),
			analysis.FormatVector(tri.Triangle.V2),
			analysis.FormatVector(tri.Triangle.V3))
	}
	return nil
}
