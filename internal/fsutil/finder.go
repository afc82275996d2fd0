// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFilesByExtension returns the names (not full paths) of all regular files
// directly inside dir that end with the given extension, sorted lexicographically.
// It does not recurse.
func ListFilesByExtension(dir string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), extension) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

// DiscoverDocuments lists the files in dir with the given extension, minus any
// whose name appears in exclude. The excluded names are shared preamble or
// path-setup files that are not standalone documents.
func DiscoverDocuments(dir string, extension string, exclude []string) ([]string, error) {
	names, err := ListFilesByExtension(dir, extension)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	var kept []string
	for _, name := range names {
		if !excluded[name] {
			kept = append(kept, name)
		}
	}
	return kept, nil
}

// Exists reports whether a regular file or directory exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MoveFile relocates src to dst, creating dst's parent directory if needed.
// It falls back to copy-and-delete when a rename crosses filesystems.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies src to dst, creating dst's parent directory if needed.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
