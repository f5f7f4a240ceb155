package geometry

import "math"

// Vector3 is a point or direction stored with the same 32-bit precision
// the mesh formats use on disk
type Vector3 struct {
	X, Y, Z float32
}

// NewVector3 creates a new 3D vector
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Array returns the components in x, y, z order
func (v Vector3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector, computed in float64
func (v Vector3) Length() float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// Min returns the component-wise minimum. NaN components propagate.
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{
		X: min(v.X, other.X),
		Y: min(v.Y, other.Y),
		Z: min(v.Z, other.Z),
	}
}

// Max returns the component-wise maximum. NaN components propagate.
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{
		X: max(v.X, other.X),
		Y: max(v.Y, other.Y),
		Z: max(v.Z, other.Z),
	}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vector3) IsFinite() bool {
	for _, c := range v.Array() {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
