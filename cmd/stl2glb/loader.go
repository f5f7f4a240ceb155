package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/philipparndt/stl2glb/pkg/convert"
	"github.com/philipparndt/stl2glb/pkg/openscad"
	"github.com/philipparndt/stl2glb/pkg/stl"
)

func isOpenSCAD(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".scad")
}

// newRenderer builds an OpenSCAD renderer from the loaded configuration
func newRenderer(workDir string) *openscad.Renderer {
	renderer := openscad.NewRenderer(workDir)
	renderer.Binary = cfg.OpenSCAD.Binary
	renderer.LibraryPath = cfg.OpenSCAD.LibraryPath
	renderer.Manifold = cfg.OpenSCAD.Manifold
	renderer.Logger = log
	return renderer
}

// renderSTL renders an OpenSCAD file to binary STL bytes
func renderSTL(ctx context.Context, filePath string, preview bool) ([]byte, error) {
	if cfg.OpenSCAD.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.OpenSCAD.Timeout)
		defer cancel()
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", filePath, err)
	}

	log.Info("rendering OpenSCAD file", zap.String("file", filePath), zap.Bool("preview", preview))
	data, err := newRenderer(filepath.Dir(absPath)).RenderFile(ctx, absPath, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenSCAD file: %w", err)
	}
	return data, nil
}

// loadSTL returns binary STL bytes for an .stl file, or for an .scad file
// after rendering it
func loadSTL(ctx context.Context, filePath string, preview bool) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".scad":
		return renderSTL(ctx, filePath, preview)
	case ".stl":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read STL file: %w", err)
		}
		if stl.IsASCII(data) {
			return nil, fmt.Errorf("%s is an ASCII STL file; only binary STL is supported", filePath)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s (expected .stl or .scad)", ext)
	}
}

// convertOptions controls how convertFile builds and writes the GLB
type convertOptions struct {
	Preview  bool
	Base64   bool
	Simplify float64
}

// convertFile loads filePath and writes the GLB to output
func convertFile(ctx context.Context, filePath, output string, opts convertOptions) error {
	start := time.Now()

	data, err := loadSTL(ctx, filePath, opts.Preview)
	if err != nil {
		return err
	}

	var result *convert.Result
	if opts.Simplify > 0 && opts.Simplify < 1 {
		result, err = convert.ConvertSimplified(data, opts.Simplify)
	} else {
		result, err = convert.Convert(data)
	}
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", filePath, err)
	}

	out := result.GLB
	if opts.Base64 {
		out = []byte(convert.Base64(result.GLB))
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}

	log.Info("converted",
		zap.String("source", filePath),
		zap.String("output", output),
		zap.Uint32("triangles", result.Mesh.TriangleCount),
		zap.Int("bytes", len(result.GLB)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// outputPath replaces the extension of input, or returns explicit when set
func outputPath(input, explicit, ext string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

// writeOutput writes data to path; "-" means stdout
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
