package analysis

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/philipparndt/stl2glb/pkg/geometry"
	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

// MeshInfo summarizes a decoded STL mesh
type MeshInfo struct {
	TriangleCount       int
	VertexCount         int
	DegenerateTriangles int
	// NonFiniteTriangles have a NaN or infinite vertex coordinate and are
	// left out of SurfaceArea
	NonFiniteTriangles int
	BoundingBox         geometry.BoundingBox
	Dimensions          geometry.Vector3
	SurfaceArea         float64
	PositionBytes       int
	NormalBytes         int
}

// GLBInfo summarizes a GLB file as read back by a glTF decoder
type GLBInfo struct {
	Layout      glb.Layout
	Meshes      int
	Primitives  int
	Accessors   int
	VertexCount int
	HasNormals  bool
	// BoundingBox is recomputed from the POSITION data, not taken from the
	// accessor min/max
	BoundingBox geometry.BoundingBox
}

// AnalyzeMesh computes statistics for a decoded mesh
func AnalyzeMesh(mesh *stl.Mesh) *MeshInfo {
	info := &MeshInfo{
		TriangleCount: int(mesh.TriangleCount),
		VertexCount:   mesh.VertexCount(),
		BoundingBox:   mesh.Bounds,
		Dimensions:    mesh.Bounds.Size(),
		PositionBytes: mesh.PositionBytes(),
		NormalBytes:   mesh.NormalBytes(),
	}

	for i := 0; i < info.TriangleCount; i++ {
		tri := mesh.Triangle(i)
		if tri.IsDegenerate() {
			info.DegenerateTriangles++
		}
		if !tri.V1.IsFinite() || !tri.V2.IsFinite() || !tri.V3.IsFinite() {
			info.NonFiniteTriangles++
			continue
		}
		info.SurfaceArea += tri.Area()
	}

	return info
}

// TriangleOrder selects how RankTriangles sorts
type TriangleOrder int

const (
	FileOrder TriangleOrder = iota
	LargestFirst
	SmallestFirst
)

// TriangleInfo describes one facet of a mesh
type TriangleInfo struct {
	Index     int
	Area      float64
	Perimeter float64
	Triangle  geometry.Triangle
}

// TriangleStats aggregates facet areas
type TriangleStats struct {
	Count     int
	TotalArea float64
	MinArea   float64
	MaxArea   float64
}

// AverageArea returns the mean facet area, or zero for an empty mesh
func (s TriangleStats) AverageArea() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.TotalArea / float64(s.Count)
}

// RankTriangles returns up to limit facets in the requested order along with
// area statistics over the whole mesh. A limit of zero or less means all.
func RankTriangles(mesh *stl.Mesh, order TriangleOrder, limit int) ([]TriangleInfo, TriangleStats) {
	n := int(mesh.TriangleCount)
	triangles := make([]TriangleInfo, 0, n)
	stats := TriangleStats{Count: n}
	if n > 0 {
		stats.MinArea = math.MaxFloat64
	}

	for i := 0; i < n; i++ {
		tri := mesh.Triangle(i)
		area := tri.Area()
		triangles = append(triangles, TriangleInfo{
			Index:     i,
			Area:      area,
			Perimeter: tri.Perimeter(),
			Triangle:  tri,
		})

		stats.TotalArea += area
		stats.MinArea = min(stats.MinArea, area)
		stats.MaxArea = max(stats.MaxArea, area)
	}

	switch order {
	case LargestFirst:
		slices.SortStableFunc(triangles, func(a, b TriangleInfo) int { return cmp.Compare(b.Area, a.Area) })
	case SmallestFirst:
		slices.SortStableFunc(triangles, func(a, b TriangleInfo) int { return cmp.Compare(a.Area, b.Area) })
	}

	if limit > 0 && limit < len(triangles) {
		triangles = triangles[:limit]
	}
	return triangles, stats
}

// AnalyzeGLB decodes a GLB buffer and summarizes its first mesh
func AnalyzeGLB(data []byte) (*GLBInfo, error) {
	layout, err := glb.Inspect(data)
	if err != nil {
		return nil, err
	}
	if layout.BINLength == 0 {
		return analyzeEmptyGLB(data)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode GLB: %w", err)
	}

	info := &GLBInfo{
		Layout:      layout,
		Meshes:      len(doc.Meshes),
		Accessors:   len(doc.Accessors),
		BoundingBox: geometry.NewBoundingBox(),
	}

	for _, mesh := range doc.Meshes {
		info.Primitives += len(mesh.Primitives)
	}
	if info.Meshes == 0 || len(doc.Meshes[0].Primitives) == 0 {
		return info, nil
	}

	primitive := doc.Meshes[0].Primitives[0]
	if _, ok := primitive.Attributes[gltf.NORMAL]; ok {
		info.HasNormals = true
	}

	posIdx, ok := primitive.Attributes[gltf.POSITION]
	if !ok || int(posIdx) >= len(doc.Accessors) {
		return info, nil
	}
	accessor := doc.Accessors[posIdx]
	info.VertexCount = int(accessor.Count)
	if info.VertexCount == 0 {
		return info, nil
	}

	positions, err := modeler.ReadPosition(doc, accessor, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	for _, p := range positions {
		info.BoundingBox.Extend(geometry.NewVector3(p[0], p[1], p[2]))
	}

	return info, nil
}

// analyzeEmptyGLB summarizes a GLB without binary payload, such as the
// output for a zero-triangle mesh. The glTF decoder rejects buffers with a
// byteLength of 0, so the JSON chunk is read directly.
func analyzeEmptyGLB(data []byte) (*GLBInfo, error) {
	doc, layout, err := glb.ReadDocument(data)
	if err != nil {
		return nil, err
	}

	info := &GLBInfo{
		Layout:      layout,
		Meshes:      len(doc.Meshes),
		Accessors:   len(doc.Accessors),
		BoundingBox: geometry.NewBoundingBox(),
	}
	for _, mesh := range doc.Meshes {
		info.Primitives += len(mesh.Primitives)
	}
	if info.Primitives > 0 {
		info.HasNormals = true
		if attr := doc.Meshes[0].Primitives[0].Attributes; attr.Position < len(doc.Accessors) {
			info.VertexCount = doc.Accessors[attr.Position].Count
		}
	}
	return info, nil
}

// FormatVector formats a vector for display
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

// FormatBytes formats a byte count for display
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
