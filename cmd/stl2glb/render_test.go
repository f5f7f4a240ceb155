package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/stl2glb/pkg/convert"
	"github.com/philipparndt/stl2glb/pkg/geometry"
	"github.com/philipparndt/stl2glb/pkg/glb"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

// fakeOpenSCAD installs a shell script standing in for openscad. It writes
// the STL named by $STL2GLB_TEST_STL to the -o target followed by the staged
// source, which the decoder ignores as trailing bytes. Sources containing
// "fail" exit with code 1.
func fakeOpenSCAD(t *testing.T) (binary string, stlData []byte) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake openscad is a shell script")
	}

	dir := t.TempDir()
	stlPath, stlData := writeSTL(t, dir)
	t.Setenv("STL2GLB_TEST_STL", stlPath)

	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
if grep -q fail input.scad; then
  echo "ERROR: Parser error in file input.scad" >&2
  exit 1
fi
{ cat "$STL2GLB_TEST_STL"; cat input.scad; } > "$out"
`
	binary = filepath.Join(dir, "openscad")
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))
	return binary, stlData
}

// scadProject writes sub/part.scad including sub/lib.scad below a fresh
// working directory and changes into it
func scadProject(t *testing.T, source string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.MkdirAll("sub", 0755))
	require.NoError(t, os.WriteFile(filepath.Join("sub", "lib.scad"), []byte("module part() { cube(1); }\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join("sub", "part.scad"), []byte(source), 0644))
}

func TestExportRelativeSubdirectory(t *testing.T) {
	binary, stlData := fakeOpenSCAD(t)
	scadProject(t, "include <lib.scad>\npart();\n")

	_, err := execute(t, "--openscad", binary, "export", filepath.Join("sub", "part.scad"), "-o", "out.stl")
	require.NoError(t, err)

	got, err := os.ReadFile("out.stl")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, stlData))
	assert.Contains(t, string(got), "part();")
}

func TestExportDefaultOutput(t *testing.T) {
	binary, stlData := fakeOpenSCAD(t)
	scadProject(t, "cube(2);\n")

	_, err := execute(t, "--openscad", binary, "export", filepath.Join("sub", "part.scad"))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join("sub", "part.stl"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, stlData))
}

func TestRenderRelativeSubdirectory(t *testing.T) {
	binary, stlData := fakeOpenSCAD(t)
	scadProject(t, "include <lib.scad>\npart();\n")

	_, err := execute(t, "--openscad", binary, "render", filepath.Join("sub", "part.scad"), "--preview")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join("sub", "part.glb"))
	require.NoError(t, err)
	want, err := convert.STLToGLB(stlData)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInfoCommandRendersOpenSCAD(t *testing.T) {
	binary, _ := fakeOpenSCAD(t)
	scadProject(t, "cube(1);\n")

	out, err := execute(t, "--openscad", binary, "info", filepath.Join("sub", "part.scad"))
	require.NoError(t, err)
	assert.Contains(t, out, "Triangles: 1")
}

func TestRenderCommandFailure(t *testing.T) {
	binary, _ := fakeOpenSCAD(t)
	scadProject(t, "fail();\n")

	_, err := execute(t, "--openscad", binary, "render", filepath.Join("sub", "part.scad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenSCAD returned non-zero error code: 1")
	assert.Contains(t, err.Error(), "Parser error")
	assert.NoFileExists(t, filepath.Join("sub", "part.glb"))
}

// vertexCount returns the POSITION count of a GLB file, or -1 when it cannot
// be read yet
func vertexCount(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	doc, _, err := glb.ReadDocument(data)
	if err != nil {
		return -1
	}
	return doc.Accessors[0].Count
}

func TestWatchRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	input, data := writeSTL(t, dir)
	output := filepath.Join(dir, "out.glb")
	configFile := filepath.Join(dir, "stl2glb.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("watch:\n  debounce: 50ms\n"), 0644))

	mesh, err := stl.Decode(data)
	require.NoError(t, err)
	grown := stl.Encode("grown", []geometry.Triangle{mesh.Triangle(0), mesh.Triangle(0)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := executeContext(ctx, "--config", configFile, "watch", input, "-o", output)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return vertexCount(output) == 3
	}, 5*time.Second, 20*time.Millisecond, "initial conversion")

	// Rewrite until the watcher has picked the change up; the first write can
	// land before the watch is registered
	require.Eventually(t, func() bool {
		if vertexCount(output) == 6 {
			return true
		}
		_ = os.WriteFile(input, grown, 0644)
		return false
	}, 10*time.Second, 200*time.Millisecond, "rebuild after change")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
