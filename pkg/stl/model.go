package stl

import (
	"github.com/philipparndt/stl2glb/pkg/geometry"
)

// Mesh is a decoded binary STL model laid out as non-indexed vertex buffers.
// Every triangle contributes three vertices; vertices shared between
// triangles are repeated.
type Mesh struct {
	// Positions holds x,y,z for each vertex, v1 v2 v3 per triangle
	Positions []float32
	// Normals has the same shape as Positions; a triangle's facet normal is
	// repeated for each of its three vertices
	Normals []float32
	// Bounds covers every vertex position. It keeps its infinite sentinels
	// when the mesh has no triangles.
	Bounds geometry.BoundingBox
	// TriangleCount is the count declared in the STL header
	TriangleCount uint32
}

// NewMesh allocates buffers for the given number of triangles
func NewMesh(triangles uint32) *Mesh {
	n := int(triangles) * floatsPerTriangle
	return &Mesh{
		Positions:     make([]float32, 0, n),
		Normals:       make([]float32, 0, n),
		Bounds:        geometry.NewBoundingBox(),
		TriangleCount: triangles,
	}
}

// AddTriangle appends a triangle and extends the bounding box
func (m *Mesh) AddTriangle(tri geometry.Triangle) {
	normal := tri.Normal.Array()
	for _, v := range tri.Vertices() {
		m.Bounds.Extend(v)
		m.Positions = append(m.Positions, v.X, v.Y, v.Z)
		m.Normals = append(m.Normals, normal[:]...)
	}
}

// VertexCount returns the number of vertices, three per triangle
func (m *Mesh) VertexCount() int {
	return int(m.TriangleCount) * 3
}

// PositionBytes returns the size of the position buffer in bytes
func (m *Mesh) PositionBytes() int {
	return len(m.Positions) * 4
}

// NormalBytes returns the size of the normal buffer in bytes
func (m *Mesh) NormalBytes() int {
	return len(m.Normals) * 4
}

// Triangle reconstructs the i-th triangle from the vertex buffers
func (m *Mesh) Triangle(i int) geometry.Triangle {
	p := m.Positions[i*floatsPerTriangle : (i+1)*floatsPerTriangle]
	n := m.Normals[i*floatsPerTriangle:]
	return geometry.NewTriangle(
		geometry.NewVector3(n[0], n[1], n[2]),
		geometry.NewVector3(p[0], p[1], p[2]),
		geometry.NewVector3(p[3], p[4], p[5]),
		geometry.NewVector3(p[6], p[7], p[8]),
	)
}
