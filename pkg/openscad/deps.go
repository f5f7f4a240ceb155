package openscad

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matches: use <file.scad>, include <file.scad>, include "file.scad", etc.
var dependencyRegex = regexp.MustCompile(`^\s*(?:use|include)\s*(?:<([^>]+)>|"([^"]+)")`)

// ResolveDependencies finds all dependencies (use/include statements) in an OpenSCAD file
// Returns absolute paths with the file itself first. Dependencies that do not
// exist on disk are assumed to be library files and skipped.
func (r *Renderer) ResolveDependencies(scadFile string) ([]string, error) {
	absScadFile := r.abs(scadFile)

	file, err := os.Open(absScadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	return r.resolve(absScadFile, file)
}

// resolve walks the dependency graph starting at root, whose content is
// read from src
func (r *Renderer) resolve(root string, src io.Reader) ([]string, error) {
	visited := map[string]bool{root: true}
	deps := []string{root}

	direct, err := r.parseDependencies(src, filepath.Dir(root))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", root, err)
	}

	for _, dep := range direct {
		if err := r.resolveDependenciesRecursive(dep, visited, &deps); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// resolveDependenciesRecursive recursively finds all dependencies
func (r *Renderer) resolveDependenciesRecursive(scadFile string, visited map[string]bool, deps *[]string) error {
	// Avoid circular dependencies
	if visited[scadFile] {
		return nil
	}
	visited[scadFile] = true

	file, err := os.Open(scadFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	*deps = append(*deps, scadFile)

	fileDeps, err := r.parseDependencies(file, filepath.Dir(scadFile))
	if err != nil {
		return fmt.Errorf("error reading %s: %w", scadFile, err)
	}

	for _, dep := range fileDeps {
		if err := r.resolveDependenciesRecursive(dep, visited, deps); err != nil {
			return err
		}
	}

	return nil
}

// parseDependencies scans OpenSCAD source for use/include statements
func (r *Renderer) parseDependencies(src io.Reader, scadDir string) ([]string, error) {
	var deps []string
	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}

		if matches := dependencyRegex.FindStringSubmatch(line); matches != nil {
			dep := matches[1]
			if dep == "" {
				dep = matches[2]
			}
			deps = append(deps, r.resolveDepPath(dep, scadDir))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return deps, nil
}

// resolveDepPath resolves a dependency path relative to the current file's directory
func (r *Renderer) resolveDepPath(depPath, currentDir string) string {
	if filepath.IsAbs(depPath) {
		return filepath.Clean(depPath)
	}

	// If the path starts with ./ or ../, it's relative to the current file
	if strings.HasPrefix(depPath, "./") || strings.HasPrefix(depPath, "../") {
		return filepath.Clean(filepath.Join(currentDir, depPath))
	}

	// Otherwise, try relative to current directory first
	absPath := filepath.Join(currentDir, depPath)
	if _, err := os.Stat(absPath); err == nil {
		return filepath.Clean(absPath)
	}

	// Try relative to work directory
	return filepath.Clean(filepath.Join(r.WorkDir, depPath))
}
