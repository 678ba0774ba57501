package filesystem

import (
	"errors"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

var (
	// ErrReadOnly is returned by providers that do not support writes.
	ErrReadOnly = errors.New("read-only filesystem")

	// ErrNotDirectory is returned when a directory operation targets a non-directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// EntryType classifies a directory entry.
type EntryType int

const (
	// EntryOther is anything that is neither a directory nor a regular file:
	// sockets, devices, named pipes and symlinks whose target is missing.
	EntryOther EntryType = iota

	// EntryDirectory is a directory, or a symlink resolving to one.
	EntryDirectory

	// EntryRegular is a regular file, or a symlink resolving to one.
	EntryRegular
)

func (t EntryType) String() string {
	switch t {
	case EntryDirectory:
		return "directory"
	case EntryRegular:
		return "file"
	default:
		return "other"
	}
}

// EntryTypeOf classifies already-resolved file metadata.
func EntryTypeOf(info FileInfo) EntryType {
	switch {
	case info.IsDir():
		return EntryDirectory
	case info.Mode().IsRegular():
		return EntryRegular
	default:
		return EntryOther
	}
}

// DirEntry is one entry produced while listing a directory.
// Entries are transient and should not be retained across listings.
type DirEntry interface {
	// Name returns the base name of the entry
	Name() string

	// Path returns the listed directory path joined with Name
	Path() string

	// Classify resolves the entry, following symlinks, and reports what it is.
	// A symlink whose target does not exist classifies as EntryOther.
	// An entry that can no longer be inspected (removed after the listing,
	// permission denied) returns an error.
	Classify() (EntryType, error)
}

// FileSystemProvider is the host filesystem layer consumed by workspace operations.
type FileSystemProvider interface {
	// Stat returns file information for the given path, following symlinks.
	// Errors for missing paths satisfy errors.Is(err, fs.ErrNotExist).
	Stat(path string) (FileInfo, error)

	// ReadDir returns the immediate entries of the directory at path.
	// Entry order is not specified.
	ReadDir(path string) ([]DirEntry, error)

	// ReadFile reads the full content of the file at path.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the content of the file at path, creating it if absent.
	// A failure partway through may leave the file truncated.
	WriteFile(path string, data []byte) error
}
