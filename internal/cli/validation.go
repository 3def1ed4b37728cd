package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExportFormats lists the formats accepted by the export command.
var ExportFormats = []string{"json", "yaml", "html"}

// Validator provides methods for validating CLI inputs
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDirectory checks that path names an existing directory.
func (v *Validator) ValidateDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("directory path cannot be empty")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	if !stat.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// ValidateFile checks if a file path is valid and exists
func (v *Validator) ValidateFile(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	if stat.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	return nil
}

// ValidateFormat checks an export format name.
func (v *Validator) ValidateFormat(format string) error {
	for _, f := range ExportFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want json, yaml or html)", format)
}

// ValidateLimit checks a result limit.
func (v *Validator) ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}
	return nil
}

// ResolvePath resolves a path to an absolute path
func (v *Validator) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(cwd, path), nil
}
