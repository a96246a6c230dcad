// Package security validates user-supplied file paths before they are read.
package security

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxTaskFileSize caps how much of a task file is read.
const MaxTaskFileSize = 4 << 20

// dangerousChars are shell metacharacters that never appear in a task file path.
var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "!", "\n", "\r"}

// taskFileExts are the extensions a task file may carry.
var taskFileExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// ValidateFilePath cleans path, makes it absolute and resolves symlinks.
// Paths that do not exist yet are returned cleaned.
func ValidateFilePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	for _, char := range dangerousChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	cleanPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cleanPath, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ValidateTaskFilePath validates path and requires a .json, .yaml or .yml
// extension.
func ValidateTaskFilePath(path string) (string, error) {
	cleanPath, err := ValidateFilePath(path)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if !taskFileExts[ext] {
		return "", fmt.Errorf("unsupported task file type %q: use .json, .yaml or .yml", ext)
	}
	return cleanPath, nil
}

// ReadTaskFile reads a validated task file, refusing directories and files
// larger than MaxTaskFileSize.
func ReadTaskFile(path string) ([]byte, error) {
	cleanPath, err := ValidateTaskFilePath(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is validated above
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxTaskFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxTaskFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxTaskFileSize)
	}
	return data, nil
}
