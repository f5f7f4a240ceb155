package openscad

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// InputFile is the name of the staged source inside the staging directory
	InputFile = "input.scad"
	// OutputFile is the name OpenSCAD writes the binary STL to
	OutputFile = "output.stl"

	previewPrefix = "$preview=true;"
)

// ErrNotInstalled is returned when the openscad binary cannot be found
var ErrNotInstalled = errors.New("openscad not found in PATH. Please install OpenSCAD from https://openscad.org/")

// RenderError is a failed OpenSCAD run: the exit code plus whatever the
// process printed
type RenderError struct {
	Code   int
	Output string
	Err    error
}

func (e *RenderError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "OpenSCAD returned non-zero error code: %d", e.Code)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg.WriteString("\n")
		msg.WriteString(out)
	}
	return msg.String()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Source is the OpenSCAD program to render. Text is used when set, which
// lets callers render unsaved editor content; otherwise Path is read.
// Path also anchors relative use/include statements.
type Source struct {
	Path    string
	Text    string
	Preview bool
}

// Renderer handles OpenSCAD rendering to binary STL
type Renderer struct {
	// Binary is the openscad executable name or path
	Binary string
	// WorkDir resolves relative source paths and dependencies
	WorkDir string
	// LibraryPath is exported to OpenSCAD as OPENSCADPATH
	LibraryPath string
	// Manifold enables the manifold geometry backend
	Manifold bool
	Logger   *zap.Logger
}

// NewRenderer creates a new OpenSCAD renderer
func NewRenderer(workDir string) *Renderer {
	return &Renderer{
		Binary:   "openscad",
		WorkDir:  workDir,
		Manifold: true,
		Logger:   zap.NewNop(),
	}
}

// Args returns the OpenSCAD command line for rendering input to a binary
// STL at output
func (r *Renderer) Args(input, output string) []string {
	args := []string{input}
	if r.Manifold {
		args = append(args, "--enable=manifold")
	}
	return append(args, "--export-format=binstl", "-o", output)
}

// Render stages src in a temporary directory, runs OpenSCAD on it and
// returns the binary STL bytes. The staging directory is removed afterwards.
func (r *Renderer) Render(ctx context.Context, src Source) ([]byte, error) {
	bin, err := exec.LookPath(r.binary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInstalled, err)
	}

	text, err := r.sourceText(src)
	if err != nil {
		return nil, err
	}
	if src.Preview {
		// OpenSCAD has no command line switch for $preview
		text = previewPrefix + text
	}

	dir, err := os.MkdirTemp("", "stl2glb-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(dir)

	staged, err := r.Stage(dir, r.abs(src.Path), text)
	if err != nil {
		return nil, err
	}
	r.log().Debug("staged OpenSCAD sources", zap.String("dir", dir), zap.Int("files", staged))

	cmd := exec.CommandContext(ctx, bin, r.Args(InputFile, OutputFile)...)
	cmd.Dir = dir
	cmd.Env = r.environ(src)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("render of %s interrupted: %w", r.name(src), ctxErr)
		}
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, &RenderError{Code: code, Output: string(output), Err: err}
	}

	stlData, err := os.ReadFile(filepath.Join(dir, OutputFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered STL: %w", err)
	}

	r.log().Info("rendered OpenSCAD source",
		zap.String("source", r.name(src)),
		zap.Bool("preview", src.Preview),
		zap.Int("bytes", len(stlData)))

	return stlData, nil
}

// RenderFile renders the OpenSCAD file at path
func (r *Renderer) RenderFile(ctx context.Context, path string, preview bool) ([]byte, error) {
	return r.Render(ctx, Source{Path: path, Preview: preview})
}

func (r *Renderer) sourceText(src Source) (string, error) {
	if src.Text != "" || src.Path == "" {
		return src.Text, nil
	}
	data, err := os.ReadFile(r.abs(src.Path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src.Path, err)
	}
	return string(data), nil
}

// environ exports the library path and the source directory so includes
// that could not be staged still resolve
func (r *Renderer) environ(src Source) []string {
	var paths []string
	if src.Path != "" {
		paths = append(paths, filepath.Dir(r.abs(src.Path)))
	}
	if r.LibraryPath != "" {
		paths = append(paths, r.LibraryPath)
	}

	env := os.Environ()
	if len(paths) > 0 {
		env = append(env, "OPENSCADPATH="+strings.Join(paths, string(os.PathListSeparator)))
	}
	return env
}

func (r *Renderer) abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.WorkDir, path)
}

func (r *Renderer) binary() string {
	if r.Binary == "" {
		return "openscad"
	}
	return r.Binary
}

func (r *Renderer) name(src Source) string {
	if src.Path == "" {
		return "<text>"
	}
	return src.Path
}

func (r *Renderer) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
