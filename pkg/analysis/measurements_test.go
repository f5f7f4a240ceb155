package analysis

import (
	"math"
	"testing"

	"github.com/philipparndt/stl2glb/pkg/geometry"
	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

func testMesh(t *testing.T) *stl.Mesh {
	t.Helper()
	triangles := []geometry.Triangle{
		geometry.NewTriangle(
			geometry.NewVector3(0, 0, 1),
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(3, 0, 0),
			geometry.NewVector3(0, 4, 0),
		),
		geometry.NewTriangle(
			geometry.NewVector3(0, 0, 1),
			geometry.NewVector3(1, 1, 1),
			geometry.NewVector3(2, 2, 2),
			geometry.NewVector3(3, 3, 3),
		),
	}
	mesh, err := stl.Decode(stl.Encode("", triangles))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return mesh
}

func TestAnalyzeMesh(t *testing.T) {
	info := AnalyzeMesh(testMesh(t))

	if info.TriangleCount != 2 {
		t.Errorf("expected 2 triangles, got %d", info.TriangleCount)
	}
	if info.VertexCount != 6 {
		t.Errorf("expected 6 vertices, got %d", info.VertexCount)
	}
	if info.DegenerateTriangles != 1 {
		t.Errorf("expected 1 degenerate triangle, got %d", info.DegenerateTriangles)
	}
	if math.Abs(info.SurfaceArea-6.0) > 1e-6 {
		t.Errorf("expected surface area 6, got %v", info.SurfaceArea)
	}
	if info.Dimensions != geometry.NewVector3(3, 4, 3) {
		t.Errorf("unexpected dimensions %v", info.Dimensions)
	}
	if info.PositionBytes != 72 || info.NormalBytes != 72 {
		t.Errorf("unexpected payload sizes %d/%d", info.PositionBytes, info.NormalBytes)
	}
}

func TestAnalyzeGLB(t *testing.T) {
	mesh := testMesh(t)
	info, err := AnalyzeGLB(glb.Encode(mesh))
	if err != nil {
		t.Fatalf("failed to analyze GLB: %v", err)
	}

	if info.Meshes != 1 || info.Primitives != 1 || info.Accessors != 2 {
		t.Errorf("unexpected structure: %+v", info)
	}
	if info.VertexCount != 6 {
		t.Errorf("expected 6 vertices, got %d", info.VertexCount)
	}
	if !info.HasNormals {
		t.Error("expected NORMAL attribute")
	}
	if info.BoundingBox != mesh.Bounds {
		t.Errorf("expected bounds %v, got %v", mesh.Bounds, info.BoundingBox)
	}
	if info.Layout.BINLength != 144 {
		t.Errorf("expected 144 byte BIN chunk, got %d", info.Layout.BINLength)
	}
}

func TestAnalyzeGLBEmptyMesh(t *testing.T) {
	mesh, err := stl.Decode(make([]byte, stl.MinSize))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	info, err := AnalyzeGLB(glb.Encode(mesh))
	if err != nil {
		t.Fatalf("failed to analyze empty GLB: %v", err)
	}
	if info.Meshes != 1 || info.Primitives != 1 || info.Accessors != 2 {
		t.Errorf("unexpected structure: %+v", info)
	}
	if info.VertexCount != 0 {
		t.Errorf("expected 0 vertices, got %d", info.VertexCount)
	}
	if info.Layout.BINLength != 0 {
		t.Errorf("expected empty BIN chunk, got %d bytes", info.Layout.BINLength)
	}
	if !info.BoundingBox.IsEmpty() {
		t.Errorf("expected empty bounds, got %v", info.BoundingBox)
	}
}

func TestAnalyzeMeshNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	triangles := []geometry.Triangle{
		geometry.NewTriangle(
			geometry.NewVector3(0, 0, 1),
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(3, 0, 0),
			geometry.NewVector3(0, 4, 0),
		),
		geometry.NewTriangle(
			geometry.NewVector3(0, 0, 1),
			geometry.NewVector3(nan, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(0, 1, 0),
		),
	}
	mesh, err := stl.Decode(stl.Encode("", triangles))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	info := AnalyzeMesh(mesh)
	if info.NonFiniteTriangles != 1 {
		t.Errorf("expected 1 non-finite triangle, got %d", info.NonFiniteTriangles)
	}
	if math.Abs(info.SurfaceArea-6) > 1e-9 {
		t.Errorf("expected surface area 6, got %v", info.SurfaceArea)
	}
}

func TestAnalyzeGLBRejectsGarbage(t *testing.T) {
	if _, err := AnalyzeGLB([]byte("not a glb file at all")); err == nil {
		t.Error("expected error for invalid GLB")
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int]string{
		12:      "12 B",
		2048:    "2.0 KiB",
		5 << 20: "5.0 MiB",
	}
	for n, want := range cases {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRankTriangles(t *testing.T) {
	mesh := testMesh(t)

	ranked, stats := RankTriangles(mesh, SmallestFirst, 0)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(ranked))
	}
	if ranked[0].Index != 1 || ranked[1].Index != 0 {
		t.Errorf("smallest first order = [%d %d], want [1 0]", ranked[0].Index, ranked[1].Index)
	}
	if math.Abs(ranked[1].Perimeter-12) > 1e-9 {
		t.Errorf("expected perimeter 12, got %v", ranked[1].Perimeter)
	}

	if stats.MinArea != 0 || math.Abs(stats.MaxArea-6) > 1e-9 {
		t.Errorf("unexpected area range [%v, %v]", stats.MinArea, stats.MaxArea)
	}
	if math.Abs(stats.AverageArea()-3) > 1e-9 {
		t.Errorf("expected average area 3, got %v", stats.AverageArea())
	}

	ranked, _ = RankTriangles(mesh, LargestFirst, 1)
	if len(ranked) != 1 || ranked[0].Index != 0 {
		t.Errorf("largest first limited to 1 = %+v", ranked)
	}

	ranked, _ = RankTriangles(mesh, FileOrder, 5)
	if len(ranked) != 2 || ranked[0].Index != 0 {
		t.Errorf("file order = %+v", ranked)
	}
}

func TestRankTrianglesEmpty(t *testing.T) {
	mesh, err := stl.Decode(stl.Encode("", nil))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	ranked, stats := RankTriangles(mesh, LargestFirst, 10)
	if len(ranked) != 0 || stats.Count != 0 || stats.AverageArea() != 0 || stats.MinArea != 0 {
		t.Errorf("expected empty result, got %+v %+v", ranked, stats)
	}
}
