// Package textio reads and writes workspace files as whole UTF-8 text.
package textio

import (
	"errors"
	"io/fs"
	"unicode/utf8"

	"github.com/metaws/metaws/internal/files/filesystem"
	"github.com/metaws/metaws/pkg/metaws"
)

// ErrInvalidEncoding is the cause of a read failure on content that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid encoding: content is not valid UTF-8")

// Store reads and writes files in full through a filesystem provider.
// It keeps no state between calls; concurrent writes to one path race
// at the filesystem and the last writer wins.
type Store struct {
	fsProvider filesystem.FileSystemProvider
}

// NewStore creates a Store over the OS filesystem.
func NewStore() *Store {
	return &Store{fsProvider: filesystem.NewOSFileSystem()}
}

// NewStoreWithFS creates a Store over a custom filesystem provider.
// Panics if fsProvider is nil.
func NewStoreWithFS(fsProvider filesystem.FileSystemProvider) *Store {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Store{fsProvider: fsProvider}
}

// ReadText returns the full content of the file at path.
// Any failure, including content that is not valid UTF-8, is reported as
// KindReadFailed and no partial content is returned.
func (s *Store) ReadText(path string) (string, error) {
	data, err := s.fsProvider.ReadFile(path)
	if err != nil {
		return "", metaws.NewWorkspaceError(metaws.KindReadFailed, path, err)
	}
	if !utf8.Valid(data) {
		return "", metaws.NewWorkspaceError(metaws.KindReadFailed, path, ErrInvalidEncoding)
	}
	return string(data), nil
}

// WriteText replaces the file at path with content, creating it if absent.
// The write is not atomic: a failure partway through may leave the file truncated.
func (s *Store) WriteText(path, content string) error {
	if err := s.fsProvider.WriteFile(path, []byte(content)); err != nil {
		return metaws.NewWorkspaceError(metaws.KindWriteFailed, path, err)
	}
	return nil
}

// Exists reports whether path names an existing entry.
func (s *Store) Exists(path string) (bool, error) {
	if _, err := s.fsProvider.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Verify Store implements the public interface at compile time
var _ metaws.TextStore = (*Store)(nil)
