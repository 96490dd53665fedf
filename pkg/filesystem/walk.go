// Package filesystem walks source trees and copies template trees.
package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIgnoreDirs are build and tooling directories of Xcode and Gradle
// projects that never hold convertible sources.
var DefaultIgnoreDirs = []string{
	".git", ".svn", ".hg",
	"build", ".build", "DerivedData", "Pods", "Carthage", "xcuserdata", ".swiftpm",
	".gradle", ".idea", ".vscode",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directory names to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File name patterns to skip (e.g., "*.tmp")
	IncludeHidden  bool     // Include hidden files/dirs
	Extensions     []string // Only visit files with these extensions (e.g., ".swift"); empty means all
}

// Walk visits every file below root that passes the options, in lexical
// order. Directories are not passed to the visitor.
func Walk(root string, opts WalkOptions, visitor func(path string, d fs.DirEntry) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if slices.Contains(ignoreDirs, name) {
				return filepath.SkipDir
			}
			return nil
		}

		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}

		if len(opts.Extensions) > 0 && !slices.Contains(opts.Extensions, strings.ToLower(filepath.Ext(name))) {
			return nil
		}

		return visitor(path, d)
	})
}

// FindFiles returns the paths Walk would visit.
func FindFiles(root string, opts WalkOptions) ([]string, error) {
	var paths []string
	err := Walk(root, opts, func(path string, _ fs.DirEntry) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// CopyTree copies every file Walk visits below src into dst, keeping
// relative paths and file modes. It returns the destination paths written.
func CopyTree(src, dst string, opts WalkOptions) ([]string, error) {
	var written []string
	err := Walk(src, opts, func(path string, d fs.DirEntry) error {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if err := CopyFile(path, target); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return written, nil
}

// CopyFile copies a single file, creating parent directories.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SameContent reports whether both files exist and hold identical bytes.
func SameContent(a, b string) bool {
	da, err := os.ReadFile(a)
	if err != nil {
		return false
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false
	}
	return bytes.Equal(da, db)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
