// Package output names and writes the generated HTML documents.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

const extension = ".html"

// BaseName returns the document base name for an export folder: its last
// path component.
func BaseName(folder string) string {
	return filepath.Base(filepath.Clean(folder))
}

// NextVersionedName scans dir for <base>_v<N>.html and returns the name for
// the next version. The first version is v0.
func NextVersionedName(dir, base string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `_v(\d+)` + regexp.QuoteMeta(extension) + `$`)

	latest := -1
	for _, e := range entries {
		m := pattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > latest {
			latest = n
		}
	}

	return fmt.Sprintf("%s_v%d%s", base, latest+1, extension), nil
}

// WriteNew writes data to path, failing if the file already exists.
func WriteNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
