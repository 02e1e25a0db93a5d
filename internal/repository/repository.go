// Package repository locates the repository root and the single solution
// file (the build manifest) that every generated project is registered in.
package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultMarker          = ".git"
	DefaultManifestPattern = "*.sln"
)

var (
	// ErrRepositoryNotFound is returned when no ancestor of the start
	// directory contains the repository marker.
	ErrRepositoryNotFound = errors.New("could not find the repository root; make sure you are running this within a git repository")

	// ErrManifestNotFound is returned when the repository root holds no
	// manifest file.
	ErrManifestNotFound = errors.New("no solution file found in the repository root")
)

// AmbiguousManifestError is returned when the repository root holds more
// than one manifest file.
type AmbiguousManifestError struct {
	Root       string
	Candidates []string
}

func (e *AmbiguousManifestError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = filepath.Base(c)
	}
	return fmt.Sprintf("multiple solution files found in the repository root %s: %s", e.Root, strings.Join(names, ", "))
}

// Context is the resolved repository a scaffold run operates on.
type Context struct {
	Root         string
	ManifestPath string
}

// Options tunes repository discovery.
type Options struct {
	Marker          string // entry that marks the root, default ".git"
	ManifestPattern string // glob matched directly under the root, default "*.sln"
}

// Locate walks upward from startDir until it finds a directory containing
// marker and returns that directory's absolute path.
func Locate(startDir, marker string) (string, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}

	for {
		// .git may be a file in worktrees and submodules.
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched upward from %s)", ErrRepositoryNotFound, startDir)
		}
		dir = parent
	}
}

// FindManifest returns the single file under root matching pattern.
func FindManifest(root, pattern string) (string, error) {
	if pattern == "" {
		pattern = DefaultManifestPattern
	}
	matches, err := filepath.Glob(filepath.Join(root, pattern))
	if err != nil {
		return "", fmt.Errorf("matching manifest pattern %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)

	switch len(files) {
	case 0:
		return "", fmt.Errorf("%w (%s in %s)", ErrManifestNotFound, pattern, root)
	case 1:
		return files[0], nil
	default:
		return "", &AmbiguousManifestError{Root: root, Candidates: files}
	}
}

// Open locates the repository root from startDir and its manifest file.
func Open(startDir string, opts Options) (*Context, error) {
	root, err := Locate(startDir, opts.Marker)
	if err != nil {
		return nil, err
	}
	manifest, err := FindManifest(root, opts.ManifestPattern)
	if err != nil {
		return nil, err
	}
	return &Context{Root: root, ManifestPath: manifest}, nil
}
