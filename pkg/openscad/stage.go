package openscad

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Stage writes text as InputFile into dir and copies the local files it
// depends on, keeping their layout relative to root's directory. Files
// outside that directory are left to OPENSCADPATH. root may be empty for
// sources that have no file on disk. Returns the number of files written.
func (r *Renderer) Stage(dir, root, text string) (int, error) {
	if err := os.WriteFile(filepath.Join(dir, InputFile), []byte(text), 0644); err != nil {
		return 0, fmt.Errorf("failed to stage %s: %w", InputFile, err)
	}
	if root == "" {
		return 1, nil
	}

	deps, err := r.resolve(root, strings.NewReader(text))
	if err != nil {
		return 0, fmt.Errorf("failed to resolve dependencies: %w", err)
	}

	count := 1
	baseDir := filepath.Dir(root)
	for _, dep := range deps[1:] {
		rel, err := filepath.Rel(baseDir, dep)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			r.log().Debug("dependency outside source directory", zap.String("path", dep))
			continue
		}
		if rel == InputFile {
			// Would clobber the staged source
			r.log().Warn("dependency shadows staged input", zap.String("path", dep))
			continue
		}

		if err := copyFile(dep, filepath.Join(dir, rel)); err != nil {
			return count, err
		}
		r.log().Debug("staged dependency", zap.String("from", dep), zap.String("to", rel))
		count++
	}

	return count, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
