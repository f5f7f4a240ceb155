package convert

import (
	"math"

	"github.com/fogleman/simplify"

	"github.com/philipparndt/stl2glb/pkg/geometry"
	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

// Simplify decimates mesh to roughly factor times its triangle count using
// quadric error metrics. Facet normals are recomputed from the winding of the
// remaining triangles. A factor outside (0, 1) returns mesh unchanged.
func Simplify(mesh *stl.Mesh, factor float64) *stl.Mesh {
	if factor <= 0 || factor >= 1 || mesh.TriangleCount == 0 {
		return mesh
	}

	triangles := make([]*simplify.Triangle, 0, mesh.TriangleCount)
	for i := 0; i < int(mesh.TriangleCount); i++ {
		tri := mesh.Triangle(i)
		triangles = append(triangles, simplify.NewTriangle(toVector(tri.V1), toVector(tri.V2), toVector(tri.V3)))
	}

	reduced := simplify.NewMesh(triangles).Simplify(factor)

	out := stl.NewMesh(uint32(len(reduced.Triangles)))
	for _, t := range reduced.Triangles {
		v1, v2, v3 := fromVector(t.V1), fromVector(t.V2), fromVector(t.V3)
		out.AddTriangle(geometry.NewTriangle(facetNormal(v1, v2, v3), v1, v2, v3))
	}
	return out
}

// ConvertSimplified is Convert with a decimation pass before encoding
func ConvertSimplified(input []byte, factor float64) (*Result, error) {
	mesh, err := stl.Decode(input)
	if err != nil {
		return nil, err
	}
	mesh = Simplify(mesh, factor)
	return &Result{GLB: glb.Encode(mesh), Mesh: mesh}, nil
}

func toVector(v geometry.Vector3) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromVector(v simplify.Vector) geometry.Vector3 {
	return geometry.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func facetNormal(v1, v2, v3 geometry.Vector3) geometry.Vector3 {
	n := v2.Sub(v1).Cross(v3.Sub(v1))
	length := n.Length()
	if length == 0 || math.IsNaN(length) {
		return geometry.Vector3{}
	}
	scale := float32(1 / length)
	return geometry.NewVector3(n.X*scale, n.Y*scale, n.Z*scale)
}
