// Package glb writes single-mesh GLB (binary glTF 2.0) containers.
package glb

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/philipparndt/stl2glb/pkg/stl"
)

const (
	// Magic is "glTF" read as a little-endian uint32
	Magic uint32 = 0x46546C67
	// Version is the container version
	Version uint32 = 2
	// ChunkJSON is the chunk type "JSON"
	ChunkJSON uint32 = 0x4E4F534A
	// ChunkBIN is the chunk type "BIN\x00"
	ChunkBIN uint32 = 0x004E4942

	// HeaderLength is magic, version and total length
	HeaderLength = 12
	// ChunkHeaderLength is chunk length and chunk type
	ChunkHeaderLength = 8
)

// Encode builds a GLB file for mesh: a 12 byte header, a JSON chunk padded
// with spaces to 4 bytes, and a BIN chunk holding positions then normals.
// Encoding the same mesh twice yields identical bytes.
func Encode(mesh *stl.Mesh) []byte {
	doc := marshalDocument(NewDocument(mesh))
	jsonLength := PaddedLength(len(doc))
	binLength := mesh.PositionBytes() + mesh.NormalBytes()
	total := HeaderLength + ChunkHeaderLength + jsonLength + ChunkHeaderLength + binLength

	out := make([]byte, 0, total)

	out = binary.LittleEndian.AppendUint32(out, Magic)
	out = binary.LittleEndian.AppendUint32(out, Version)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))

	out = binary.LittleEndian.AppendUint32(out, uint32(jsonLength))
	out = binary.LittleEndian.AppendUint32(out, ChunkJSON)
	out = append(out, doc...)
	for i := len(doc); i < jsonLength; i++ {
		out = append(out, ' ')
	}

	out = binary.LittleEndian.AppendUint32(out, uint32(binLength))
	out = binary.LittleEndian.AppendUint32(out, ChunkBIN)
	out = appendFloats(out, mesh.Positions)
	out = appendFloats(out, mesh.Normals)

	return out
}

// EncodeTo writes the GLB for mesh to w
func EncodeTo(w io.Writer, mesh *stl.Mesh) error {
	if _, err := w.Write(Encode(mesh)); err != nil {
		return fmt.Errorf("failed to write GLB: %w", err)
	}
	return nil
}

// PaddedLength rounds n up to the 4 byte chunk alignment
func PaddedLength(n int) int {
	return (n + 3) &^ 3
}

func marshalDocument(doc *Document) []byte {
	data, err := json.Marshal(doc)
	if err != nil {
		// Only Bound has a custom marshaler and it cannot fail for float32.
		panic(fmt.Sprintf("glb: marshal document: %v", err))
	}
	return data
}

func appendFloats(out []byte, values []float32) []byte {
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}
