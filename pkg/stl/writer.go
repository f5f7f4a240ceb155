package stl

import (
	"encoding/binary"
	"math"

	"github.com/philipparndt/stl2glb/pkg/geometry"
)

// Encode writes triangles in binary STL layout. The header is truncated or
// zero-padded to 80 bytes; attribute byte counts are written as zero.
func Encode(header string, triangles []geometry.Triangle) []byte {
	buf := make([]byte, MinSize, ExpectedSize(uint32(len(triangles))))
	copy(buf[:HeaderSize], header)
	binary.LittleEndian.PutUint32(buf[HeaderSize:], uint32(len(triangles)))

	for _, tri := range triangles {
		for _, v := range [4]geometry.Vector3{tri.Normal, tri.V1, tri.V2, tri.V3} {
			for _, c := range v.Array() {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
			}
		}
		buf = append(buf, 0, 0)
	}

	return buf
}
