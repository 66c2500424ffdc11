package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"deliveryboard/pkg/contracts/domain"
)

// ErrNoReports is returned when a directory holds no candidate file
var ErrNoReports = errors.New("no report files in directory")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Source converts the file info into the snapshot source description
func (f FileInfo) Source() domain.SourceFile {
	return domain.SourceFile{
		Path:    f.Path,
		Name:    f.Name,
		Size:    f.Size,
		ModTime: f.ModTime,
	}
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// passed to its methods are resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// Resolve returns dir as an absolute-or-base-relative path
func (d *Discovery) Resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// ListReports lists the regular, non-hidden files directly in dir, sorted by
// name. Subdirectories are not descended into.
func (d *Discovery) ListReports(dir string) ([]FileInfo, error) {
	fullPath := d.Resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || IsHidden(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// LatestFile returns the most recently modified report in dir
func (d *Discovery) LatestFile(dir string) (FileInfo, error) {
	files, err := d.ListReports(dir)
	if err != nil {
		return FileInfo{}, err
	}
	latest, ok := GetLatestFile(files)
	if !ok {
		return FileInfo{}, fmt.Errorf("%s: %w", d.Resolve(dir), ErrNoReports)
	}
	return latest, nil
}

// GetLatestFile returns the most recently modified file from a list.
// On equal modification times the earlier entry wins.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// IsHidden reports whether a file name is a dotfile or an editor temp file
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") || strings.HasSuffix(name, "~")
}
