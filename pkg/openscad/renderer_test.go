package openscad

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fakeOpenSCAD installs a shell script that behaves like openscad: it
// copies the staged input to the -o target, or fails when the source
// contains "fail".
func fakeOpenSCAD(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake openscad is a shell script")
	}

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
if grep -q slow input.scad; then
  exec sleep 5
fi
{ cat input.scad; echo; echo "OPENSCADPATH=$OPENSCADPATH"; ls -R; } > "$out"
`
	path := filepath.Join(t.TempDir(), "openscad")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestArgs(t *testing.T) {
	r := NewRenderer(".")
	assert.Equal(t,
		[]string{"in.scad", "--enable=manifold", "--export-format=binstl", "-o", "out.stl"},
		r.Args("in.scad", "out.stl"))

	r.Manifold = false
	assert.Equal(t,
		[]string{"in.scad", "--export-format=binstl", "-o", "out.stl"},
		r.Args("in.scad", "out.stl"))
}

func TestRenderMissingBinary(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.Binary = "definitely-not-openscad-binary"

	_, err := r.Render(context.Background(), Source{Text: "cube(1);"})
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestRenderText(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.Binary = fakeOpenSCAD(t)

	out, err := r.Render(context.Background(), Source{Text: "cube(1);"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "cube(1);"))
}

func TestRenderPreviewPrefix(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.Binary = fakeOpenSCAD(t)

	out, err := r.Render(context.Background(), Source{Text: "cube(1);", Preview: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "$preview=true;cube(1);"))
}

func TestRenderFileStagesDependencies(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, filepath.Join(dir, "main.scad"), "include <parts/gear.scad>\nuse <BOSL2/std.scad>\ngear();\n")
	writeFile(t, filepath.Join(dir, "parts", "gear.scad"), "module gear() { cube(1); }\n")

	r := NewRenderer(dir)
	r.Binary = fakeOpenSCAD(t)
	r.LibraryPath = "/opt/openscad/libraries"

	out, err := r.RenderFile(context.Background(), "main.scad", false)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "gear();")
	assert.Contains(t, text, "gear.scad")
	assert.Contains(t, text, "OPENSCADPATH="+dir+string(os.PathListSeparator)+"/opt/openscad/libraries")
	assert.FileExists(t, main)
}

func TestRenderErrorCarriesCodeAndOutput(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.Binary = fakeOpenSCAD(t)

	_, err := r.Render(context.Background(), Source{Text: "fail();"})

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr), "got %v", err)
	assert.Equal(t, 1, renderErr.Code)
	assert.Contains(t, renderErr.Output, "Parser error")
	assert.Contains(t, err.Error(), "non-zero error code: 1")
}

func TestRenderHonorsContext(t *testing.T) {
	r := NewRenderer(t.TempDir())
	r.Binary = fakeOpenSCAD(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := r.Render(ctx, Source{Text: "slow();"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderErrorMessageWithoutOutput(t *testing.T) {
	err := &RenderError{Code: 2}
	assert.Equal(t, "OpenSCAD returned non-zero error code: 2", err.Error())
}
