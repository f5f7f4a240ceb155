package glb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/philipparndt/stl2glb/pkg/stl"
)

const (
	// ComponentFloat is the glTF componentType for 32-bit floats
	ComponentFloat = 5126
	// TypeVec3 is the glTF accessor type for three-component vectors
	TypeVec3 = "VEC3"
	// AssetVersion is the glTF specification version written to asset.version
	AssetVersion = "2.0"
)

// Document is the subset of the glTF 2.0 schema used for a single
// non-indexed triangle mesh. Field order is the serialization order.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       int          `json:"scene"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Buffers     []Buffer     `json:"buffers"`
	BufferViews []BufferView `json:"bufferViews"`
	Accessors   []Accessor   `json:"accessors"`
}

type Asset struct {
	Version string `json:"version"`
}

type Scene struct {
	Nodes []int `json:"nodes"`
}

type Node struct {
	Mesh int `json:"mesh"`
}

type Mesh struct {
	Primitives []Primitive `json:"primitives"`
}

type Primitive struct {
	Attributes Attributes `json:"attributes"`
}

// Attributes maps vertex semantics to accessor indices
type Attributes struct {
	Position int `json:"POSITION"`
	Normal   int `json:"NORMAL"`
}

// Buffer has no uri; its data is the GLB binary chunk
type Buffer struct {
	ByteLength int `json:"byteLength"`
}

// BufferView always carries byteOffset, including zero
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
}

type Accessor struct {
	BufferView    int    `json:"bufferView"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	Min           *Bound `json:"min,omitempty"`
	Max           *Bound `json:"max,omitempty"`
}

// Bound is an accessor min or max. JSON has no NaN or Infinity, so
// non-finite components are written as null and read back as NaN.
type Bound [3]float32

// MarshalJSON implements json.Marshaler
func (b Bound) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
			continue
		}
		num, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(num)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (b *Bound) UnmarshalJSON(data []byte) error {
	var raw []*float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(b) {
		return fmt.Errorf("bound has %d components, want %d", len(raw), len(b))
	}
	for i, c := range raw {
		if c == nil {
			b[i] = float32(math.NaN())
			continue
		}
		b[i] = *c
	}
	return nil
}

// NewDocument describes mesh as one scene with one node, one mesh and one
// primitive. Positions occupy the first buffer view and normals the second.
func NewDocument(mesh *stl.Mesh) *Document {
	positionBytes := mesh.PositionBytes()
	normalBytes := mesh.NormalBytes()
	count := mesh.VertexCount()

	lower := Bound(mesh.Bounds.Min.Array())
	upper := Bound(mesh.Bounds.Max.Array())

	return &Document{
		Asset:  Asset{Version: AssetVersion},
		Scene:  0,
		Scenes: []Scene{{Nodes: []int{0}}},
		Nodes:  []Node{{Mesh: 0}},
		Meshes: []Mesh{{
			Primitives: []Primitive{{
				Attributes: Attributes{Position: 0, Normal: 1},
			}},
		}},
		Buffers: []Buffer{{ByteLength: positionBytes + normalBytes}},
		BufferViews: []BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: positionBytes},
			{Buffer: 0, ByteOffset: positionBytes, ByteLength: normalBytes},
		},
		Accessors: []Accessor{
			{
				BufferView:    0,
				ComponentType: ComponentFloat,
				Count:         count,
				Type:          TypeVec3,
				Min:           &lower,
				Max:           &upper,
			},
			{
				BufferView:    1,
				ComponentType: ComponentFloat,
				Count:         count,
				Type:          TypeVec3,
			},
		},
	}
}
