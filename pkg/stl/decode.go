package stl

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/philipparndt/stl2glb/pkg/geometry"
)

const (
	// HeaderSize is the free-form header that precedes the triangle count
	HeaderSize = 80
	// MinSize is the header plus the uint32 triangle count
	MinSize = HeaderSize + 4
	// TriangleSize is one record: normal, three vertices, attribute bytes
	TriangleSize = 50

	floatsPerTriangle = 9
)

// Decode parses a binary STL buffer. The 80 byte header is not interpreted.
// Bytes beyond the declared triangles are ignored.
func Decode(data []byte) (*Mesh, error) {
	if len(data) < MinSize {
		return nil, &FormatError{Triangles: -1, Declared: MinSize, Available: len(data)}
	}

	r := newReader(data)
	if err := r.skip(HeaderSize); err != nil {
		return nil, err
	}

	count, err := r.uint32()
	if err != nil {
		return nil, err
	}

	expected := ExpectedSize(count)
	if int64(len(data)) < expected {
		return nil, &FormatError{Triangles: int64(count), Declared: expected, Available: len(data)}
	}

	mesh := NewMesh(count)
	for i := uint32(0); i < count; i++ {
		tri, err := readTriangle(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		mesh.AddTriangle(tri)
	}

	return mesh, nil
}

// ExpectedSize returns the minimum buffer length for count triangles
func ExpectedSize(count uint32) int64 {
	return MinSize + int64(count)*TriangleSize
}

// IsASCII reports whether data looks like an ASCII STL file: it starts with
// "solid" and its length does not match a binary layout. Some exporters
// write "solid" into binary headers too, hence the size check.
func IsASCII(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("solid")) {
		return false
	}
	if len(data) < MinSize {
		return true
	}
	count := binary.LittleEndian.Uint32(data[HeaderSize:])
	return int64(len(data)) < ExpectedSize(count)
}

func readTriangle(r *reader) (geometry.Triangle, error) {
	var fields [4][3]float32
	for i := range fields {
		v, err := r.vector()
		if err != nil {
			return geometry.Triangle{}, err
		}
		fields[i] = v
	}

	// Attribute byte count, unused
	if err := r.skip(2); err != nil {
		return geometry.Triangle{}, err
	}

	return geometry.NewTriangle(vec(fields[0]), vec(fields[1]), vec(fields[2]), vec(fields[3])), nil
}

func vec(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}
