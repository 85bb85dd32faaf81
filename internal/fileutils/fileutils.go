// Package fileutils provides common file operations used throughout the application.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ReadFile reads the entire contents of a file and returns it as a byte slice
func ReadFile(filePath string) ([]byte, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- paths are user-supplied CLI arguments
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// ListFilesWithExtension returns the files below dirPath whose extension
// matches extension case-insensitively, sorted by path.
func ListFilesWithExtension(dirPath, extension string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}

	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// CollectInputs expands paths into a list of files: directories contribute
// their files with extension, plain files are kept as given. The result keeps
// argument order and contains no duplicates.
func CollectInputs(paths []string, extension string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		key := filepath.Clean(p)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		switch {
		case DirectoryExists(p):
			found, err := ListFilesWithExtension(p, extension)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		case FileExists(p):
			add(p)
		default:
			return nil, fmt.Errorf("input does not exist: %s", p)
		}
	}
	return files, nil
}
