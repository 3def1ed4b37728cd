// Package scanner discovers chat export folders on disk.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportInfo describes a folder that directly contains a chat file.
type ExportInfo struct {
	Path     string
	Title    string
	ChatSize int64
	ModTime  time.Time
}

// ScanResult summarises a batch conversion over discovered exports.
type ScanResult struct {
	ExportsFound int
	Converted    int
	Failed       int
	Errors       []string
}

// AddError records a failed export.
func (r *ScanResult) AddError(path string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", path, err))
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindExports walks root and returns every folder that directly contains
// chatFile, sorted by path. Hidden directories below root are skipped and
// unreadable directories are ignored.
func FindExports(root, chatFile string) ([]ExportInfo, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root is not a directory: %s", root)
	}

	var exports []ExportInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Name() != chatFile {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		dir := filepath.Dir(path)
		exports = append(exports, ExportInfo{
			Path:     dir,
			Title:    filepath.Base(dir),
			ChatSize: fi.Size(),
			ModTime:  fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(exports, func(i, j int) bool {
		return exports[i].Path < exports[j].Path
	})

	return exports, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
