package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// billyDirEntry implements DirEntry for go-billy filesystems
type billyDirEntry struct {
	fs   billy.Filesystem
	info os.FileInfo // as listed, symlinks not followed
	path string
}

func (e *billyDirEntry) Name() string { return e.info.Name() }
func (e *billyDirEntry) Path() string { return e.path }

func (e *billyDirEntry) Classify() (EntryType, error) {
	if e.info.Mode()&fs.ModeSymlink == 0 {
		return EntryTypeOf(e.info), nil
	}

	target, err := e.fs.Stat(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EntryOther, nil
		}
		return EntryOther, fmt.Errorf("billy: stat %q: %w", e.path, err)
	}
	return EntryTypeOf(target), nil
}

// BillyFileSystem implements FileSystemProvider over a go-billy filesystem.
// Paths are interpreted by the wrapped filesystem, so a chrooted billy
// filesystem confines every operation to its root.
type BillyFileSystem struct {
	fs billy.Filesystem
}

// NewBillyFileSystem wraps the given go-billy filesystem.
func NewBillyFileSystem(fsys billy.Filesystem) *BillyFileSystem {
	return &BillyFileSystem{fs: fsys}
}

// NewBillyMemoryFileSystem creates a provider backed by a fresh go-billy memfs.
func NewBillyMemoryFileSystem() *BillyFileSystem {
	return &BillyFileSystem{fs: memfs.New()}
}

// NewBillyOSFileSystem creates a provider backed by the OS filesystem rooted at root.
func NewBillyOSFileSystem(root string) *BillyFileSystem {
	return &BillyFileSystem{fs: osfs.New(root)}
}

// NewBillyBoundOSFileSystem creates a provider confined to root on the OS filesystem.
// Relative and absolute paths, and symlink targets, resolve beneath root.
func NewBillyBoundOSFileSystem(root string) *BillyFileSystem {
	return &BillyFileSystem{fs: osfs.New(root, osfs.WithBoundOS())}
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target for fixture setup.
func (b *BillyFileSystem) Raw() billy.Filesystem {
	return b.fs
}

// Stat implements FileSystemProvider.Stat
func (b *BillyFileSystem) Stat(path string) (FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", path, err)
	}
	return info, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (b *BillyFileSystem) ReadDir(dirname string) ([]DirEntry, error) {
	infos, err := b.fs.ReadDir(dirname)
	if err != nil {
		return nil, fmt.Errorf("billy: readdir %q: %w", dirname, err)
	}

	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, &billyDirEntry{
			fs:   b.fs,
			info: info,
			path: b.fs.Join(dirname, info.Name()),
		})
	}
	return entries, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (b *BillyFileSystem) ReadFile(path string) ([]byte, error) {
	info, err := b.fs.Stat(path)
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, ErrIsDirectory)
	}

	bts, err := util.ReadFile(b.fs, path)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", path, err)
	}
	return bts, nil
}

// WriteFile implements FileSystemProvider.WriteFile.
// The parent directory must already exist; billy would otherwise create it.
func (b *BillyFileSystem) WriteFile(filename string, data []byte) error {
	parent, err := b.fs.Stat(filepath.Dir(filename))
	if err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	if !parent.IsDir() {
		return fmt.Errorf("billy: writefile %q: %w", filename, ErrNotDirectory)
	}

	if err := util.WriteFile(b.fs, filename, data, 0o644); err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	return nil
}

// Verify BillyFileSystem implements the interface at compile time
var _ FileSystemProvider = (*BillyFileSystem)(nil)
