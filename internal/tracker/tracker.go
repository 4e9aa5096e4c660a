// Package tracker finds source images and decides which of them still
// need processing.
package tracker

import (
	"fmt"
	"os"
	"path/filepath"
)

// Image is one source photo, identified by its file name.
type Image struct {
	Name string
	Path string
}

// Source lists the images available for processing, in discovery order.
type Source interface {
	List() ([]Image, error)
}

// DirSource lists images of a single extension from a local directory.
type DirSource struct {
	dir string
	ext string
}

func NewDirSource(dir, ext string) *DirSource {
	return &DirSource{dir: dir, ext: ext}
}

func (s *DirSource) List() ([]Image, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("images directory %s: %w", s.dir, err)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, "*."+s.ext))
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]Image, 0, len(matches))
	for _, path := range matches {
		images = append(images, Image{Name: filepath.Base(path), Path: path})
	}
	return images, nil
}

// ResolvePending returns the images whose names have no ledger row yet,
// preserving discovery order. Names are compared as exact strings — no
// normalization, no case folding; "A.jpg" and "a.jpg" are distinct images.
// Callers must pass a freshly loaded ledger name list, since the store is
// externally mutable between runs.
func ResolvePending(images []Image, recordedNames []string) []Image {
	if len(recordedNames) == 0 {
		// Empty ledger: everything is pending, no need to build a set.
		return images
	}

	recorded := make(map[string]struct{}, len(recordedNames))
	for _, name := range recordedNames {
		recorded[name] = struct{}{}
	}

	pending := make([]Image, 0, len(images))
	for _, img := range images {
		if _, ok := recorded[img.Name]; !ok {
			pending = append(pending, img)
		}
	}
	return pending
}
