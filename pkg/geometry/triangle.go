package geometry

// Triangle represents a triangular facet in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{
		Normal: normal,
		V1:     v1,
		V2:     v2,
		V3:     v3,
	}
}

// Vertices returns the three corners in winding order
func (t Triangle) Vertices() [3]Vector3 {
	return [3]Vector3{t.V1, t.V2, t.V3}
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)
	return edge1.Cross(edge2).Length() / 2.0
}

// IsDegenerate reports whether the triangle has no area
func (t Triangle) IsDegenerate() bool {
	return t.Area() == 0
}

// Perimeter returns the sum of the edge lengths
func (t Triangle) Perimeter() float64 {
	return t.V2.Sub(t.V1).Length() + t.V3.Sub(t.V2).Length() + t.V1.Sub(t.V3).Length()
}
