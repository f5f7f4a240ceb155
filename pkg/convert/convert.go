// Package convert turns binary STL buffers into GLB buffers.
//
// Conversion is a pure function of its input: it performs no I/O, keeps no
// state between calls and is safe for concurrent use with independent
// buffers.
package convert

import (
	"encoding/base64"

	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

// Result holds the encoded GLB together with the mesh it was built from
type Result struct {
	GLB  []byte
	Mesh *stl.Mesh
}

// STLToGLB decodes a binary STL buffer and encodes it as GLB. The only
// error is *stl.FormatError; no partial output is returned.
func STLToGLB(input []byte) ([]byte, error) {
	result, err := Convert(input)
	if err != nil {
		return nil, err
	}
	return result.GLB, nil
}

// Convert is STLToGLB that also returns the decoded mesh
func Convert(input []byte) (*Result, error) {
	mesh, err := stl.Decode(input)
	if err != nil {
		return nil, err
	}
	return &Result{GLB: glb.Encode(mesh), Mesh: mesh}, nil
}

// Base64 encodes a GLB buffer with standard padded base64
func Base64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
