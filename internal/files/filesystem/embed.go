package filesystem

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// embedDirEntry implements DirEntry for embed.FS
type embedDirEntry struct {
	entry fs.DirEntry
	path  string // caller-facing path (always uses forward slashes)
}

func (e *embedDirEntry) Name() string { return e.entry.Name() }
func (e *embedDirEntry) Path() string { return e.path }

func (e *embedDirEntry) Classify() (EntryType, error) {
	// embed.FS has no symlinks, so the listing type is authoritative
	switch {
	case e.entry.IsDir():
		return EntryDirectory, nil
	case e.entry.Type().IsRegular():
		return EntryRegular, nil
	default:
		return EntryOther, nil
	}
}

// EmbedFileSystem implements FileSystemProvider for embed.FS.
// It is read-only: WriteFile always fails with ErrReadOnly.
type EmbedFileSystem struct {
	embedFS fs.FS
	root    string // root path within the embed.FS (always uses forward slashes)
}

// NewEmbedFileSystem creates a new filesystem provider wrapping an embed.FS.
// The root parameter specifies the subdirectory within the embed.FS to treat as the root.
// All paths are normalized to use forward slashes for consistency with embed.FS.
func NewEmbedFileSystem(embedFS embed.FS, root string) *EmbedFileSystem {
	// Normalize root path to use forward slashes and remove trailing slash
	root = path.Clean(strings.ReplaceAll(root, "\\", "/"))
	return &EmbedFileSystem{
		embedFS: embedFS,
		root:    root,
	}
}

// resolve maps a caller path to a path within the embed.FS.
// Relative paths are joined with root; absolute paths address the embed.FS top level.
func (efs *EmbedFileSystem) resolve(p string) string {
	// Normalize path to forward slashes (explicit replace for cross-platform compatibility)
	p = strings.ReplaceAll(p, "\\", "/")

	var absPath string
	if p == "" || p == "." {
		absPath = efs.root
	} else if strings.HasPrefix(p, "/") {
		absPath = strings.TrimPrefix(path.Clean(p), "/")
		if absPath == "" {
			absPath = "."
		}
	} else {
		absPath = path.Join(efs.root, p)
	}

	return path.Clean(absPath)
}

// Stat implements FileSystemProvider.Stat
func (efs *EmbedFileSystem) Stat(statPath string) (FileInfo, error) {
	info, err := fs.Stat(efs.embedFS, efs.resolve(statPath))
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", statPath, err)
	}

	return info, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (efs *EmbedFileSystem) ReadDir(dirPath string) ([]DirEntry, error) {
	entries, err := fs.ReadDir(efs.embedFS, efs.resolve(dirPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirPath, err)
	}

	callerPath := strings.ReplaceAll(dirPath, "\\", "/")
	result := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &embedDirEntry{
			entry: entry,
			path:  path.Join(callerPath, entry.Name()),
		})
	}

	return result, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (efs *EmbedFileSystem) ReadFile(filePath string) ([]byte, error) {
	content, err := fs.ReadFile(efs.embedFS, efs.resolve(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return content, nil
}

// WriteFile implements FileSystemProvider.WriteFile
func (efs *EmbedFileSystem) WriteFile(filePath string, _ []byte) error {
	return &fs.PathError{Op: "write", Path: filePath, Err: ErrReadOnly}
}

// Verify EmbedFileSystem implements the interface at compile time
var _ FileSystemProvider = (*EmbedFileSystem)(nil)
