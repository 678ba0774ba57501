package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// osDirEntry implements DirEntry for the OS filesystem
type osDirEntry struct {
	name string
	path string
}

func (e *osDirEntry) Name() string { return e.name }
func (e *osDirEntry) Path() string { return e.path }

func (e *osDirEntry) Classify() (EntryType, error) {
	info, err := os.Stat(e.path)
	if err == nil {
		return EntryTypeOf(info), nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		// Dangling symlink: the link itself is still there
		if linfo, lerr := os.Lstat(e.path); lerr == nil && linfo.Mode()&fs.ModeSymlink != 0 {
			return EntryOther, nil
		}
	}

	return EntryOther, fmt.Errorf("failed to classify entry: %w", err)
}

// OSFileSystem implements FileSystemProvider for the OS filesystem
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem provider
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (p *OSFileSystem) Stat(path string) (FileInfo, error) {
	// os.Stat returns os.FileInfo which implements fs.FileInfo
	return os.Stat(path)
}

func (p *OSFileSystem) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &osDirEntry{
			name: entry.Name(),
			path: JoinPath(path, entry.Name()),
		})
	}

	return result, nil
}

func (p *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (p *OSFileSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// JoinPath appends name to dir without cleaning dir, so "./ws" yields "./ws/a.meta".
// No separator is added when dir already ends with one.
func JoinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

// Verify OSFileSystem implements the interface at compile time
var _ FileSystemProvider = (*OSFileSystem)(nil)
