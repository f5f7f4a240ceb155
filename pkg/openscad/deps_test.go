package openscad

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDependencies(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, filepath.Join(dir, "main.scad"),
		"use <lib/a.scad>\n"+
			"include \"lib/b.scad\"\n"+
			"// include <commented.scad>\n"+
			"cube(1);\n")
	a := writeFile(t, filepath.Join(dir, "lib", "a.scad"), "include <./c.scad>\n")
	b := writeFile(t, filepath.Join(dir, "lib", "b.scad"), "sphere(1);\n")
	c := writeFile(t, filepath.Join(dir, "lib", "c.scad"), "use <../main.scad>\n")

	r := NewRenderer(dir)
	deps, err := r.ResolveDependencies("main.scad")
	require.NoError(t, err)

	assert.Equal(t, []string{main, a, c, b}, deps)
}

func TestResolveDependenciesSkipsLibraries(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, filepath.Join(dir, "main.scad"), "include <BOSL2/std.scad>\ncuboid(1);\n")

	deps, err := NewRenderer(dir).ResolveDependencies(main)
	require.NoError(t, err)
	assert.Equal(t, []string{main}, deps)
}

func TestResolveDependenciesMissingRoot(t *testing.T) {
	_, err := NewRenderer(t.TempDir()).ResolveDependencies("missing.scad")
	assert.Error(t, err)
}

func TestStage(t *testing.T) {
	src := t.TempDir()
	root := filepath.Join(src, "main.scad")
	writeFile(t, filepath.Join(src, "parts", "gear.scad"), "include <../shared/thread.scad>\n")
	writeFile(t, filepath.Join(src, "shared", "thread.scad"), "module thread() {}\n")
	writeFile(t, filepath.Join(filepath.Dir(src), "outside.scad"), "module outside() {}\n")

	staging := t.TempDir()
	// The unsaved text is authoritative, not the file on disk
	text := "include <parts/gear.scad>\nuse <../outside.scad>\n"

	count, err := NewRenderer(src).Stage(staging, root, text)
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.FileExists(t, filepath.Join(staging, InputFile))
	assert.FileExists(t, filepath.Join(staging, "parts", "gear.scad"))
	assert.FileExists(t, filepath.Join(staging, "shared", "thread.scad"))
	assert.NoFileExists(t, filepath.Join(staging, "outside.scad"))
}

func TestStageWithoutRoot(t *testing.T) {
	staging := t.TempDir()

	count, err := NewRenderer("").Stage(staging, "", "cube(1);")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, filepath.Join(staging, InputFile))
}
