package convert

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/philipparndt/stl2glb/pkg/geometry"
	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube() []geometry.Triangle {
	v := func(x, y, z float32) geometry.Vector3 { return geometry.NewVector3(x, y, z) }
	return []geometry.Triangle{
		geometry.NewTriangle(v(0, 0, -1), v(0, 0, 0), v(0, 1, 0), v(1, 1, 0)),
		geometry.NewTriangle(v(0, 0, -1), v(0, 0, 0), v(1, 1, 0), v(1, 0, 0)),
		geometry.NewTriangle(v(0, 0, 1), v(0, 0, 1), v(1, 0, 1), v(1, 1, 1)),
		geometry.NewTriangle(v(0, 0, 1), v(0, 0, 1), v(1, 1, 1), v(0, 1, 1)),
		geometry.NewTriangle(v(0, -1, 0), v(0, 0, 0), v(1, 0, 0), v(1, 0, 1)),
		geometry.NewTriangle(v(0, -1, 0), v(0, 0, 0), v(1, 0, 1), v(0, 0, 1)),
		geometry.NewTriangle(v(0, 1, 0), v(0, 1, 0), v(0, 1, 1), v(1, 1, 1)),
		geometry.NewTriangle(v(0, 1, 0), v(0, 1, 0), v(1, 1, 1), v(1, 1, 0)),
		geometry.NewTriangle(v(-1, 0, 0), v(0, 0, 0), v(0, 0, 1), v(0, 1, 1)),
		geometry.NewTriangle(v(-1, 0, 0), v(0, 0, 0), v(0, 1, 1), v(0, 1, 0)),
		geometry.NewTriangle(v(1, 0, 0), v(1, 0, 0), v(1, 1, 0), v(1, 1, 1)),
		geometry.NewTriangle(v(1, 0, 0), v(1, 0, 0), v(1, 1, 1), v(1, 0, 1)),
	}
}

func TestSTLToGLBCube(t *testing.T) {
	out, err := STLToGLB(stl.Encode("cube", cube()))
	require.NoError(t, err)

	doc, layout, err := glb.ReadDocument(out)
	require.NoError(t, err)

	assert.Equal(t, 36, doc.Accessors[0].Count)
	assert.Equal(t, glb.Bound{0, 0, 0}, *doc.Accessors[0].Min)
	assert.Equal(t, glb.Bound{1, 1, 1}, *doc.Accessors[0].Max)
	assert.Nil(t, doc.Accessors[1].Min)
	assert.Equal(t, 2*36*12, layout.BINLength)
	assert.Equal(t, 12+8+layout.JSONLength+8+layout.BINLength, len(out))
}

func TestSTLToGLBFormatError(t *testing.T) {
	out, err := STLToGLB(make([]byte, 10))

	assert.Nil(t, out)
	var formatErr *stl.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestSTLToGLBDeclaredCountTooLarge(t *testing.T) {
	data := stl.Encode("", cube())
	binary.LittleEndian.PutUint32(data[stl.HeaderSize:], 13)

	out, err := STLToGLB(data)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, stl.ErrFormat)
}

func TestSTLToGLBEmpty(t *testing.T) {
	out, err := STLToGLB(make([]byte, stl.MinSize))
	require.NoError(t, err)

	doc, _, err := glb.ReadDocument(out)
	require.NoError(t, err)
	assert.Zero(t, doc.Accessors[0].Count)
}

func TestConvertReturnsMesh(t *testing.T) {
	result, err := Convert(stl.Encode("", cube()))
	require.NoError(t, err)

	assert.Equal(t, uint32(12), result.Mesh.TriangleCount)
	assert.Equal(t, glb.Encode(result.Mesh), result.GLB)
}

func TestSTLToGLBConcurrent(t *testing.T) {
	input := stl.Encode("", cube())
	want, err := STLToGLB(input)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = STLToGLB(input)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestBase64(t *testing.T) {
	out, err := STLToGLB(stl.Encode("", cube()))
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(Base64(out))
	require.NoError(t, err)
	assert.Equal(t, out, decoded)
}
