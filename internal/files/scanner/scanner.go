package scanner

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
	"syscall"

	"github.com/metaws/metaws/internal/files/filesystem"
	"github.com/metaws/metaws/internal/logging"
	"github.com/metaws/metaws/pkg/metaws"
)

// Scanner discovers workspace files from a directory tree.
// Scanner holds no per-scan state and is safe for concurrent use by multiple
// goroutines as long as the provided fsProvider and logger are also thread-safe.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
	extensions map[string]struct{}
	logger     metaws.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions replaces the set of matched extensions.
// Extensions are compared case-insensitively; a leading dot is ignored.
func WithExtensions(extensions ...string) Option {
	return func(s *Scanner) {
		s.extensions = ExtensionSet(extensions)
	}
}

// WithLogger sets the logger used for verbose traversal output.
func WithLogger(logger metaws.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a new workspace scanner over the OS filesystem.
func NewScanner(opts ...Option) *Scanner {
	return NewScannerWithFS(filesystem.NewOSFileSystem(), opts...)
}

// NewScannerWithFS creates a new workspace scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider, opts ...Option) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	s := &Scanner{
		fsProvider: fsProvider,
		extensions: ExtensionSet(metaws.DefaultExtensions),
		logger:     logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanWorkspace returns every regular file beneath root whose extension is in
// the scanner's extension set, sorted ascending by path string.
//
// Errors are *metaws.WorkspaceError values:
//   - KindPathNotFound: root does not exist, including a root beneath a regular file
//   - KindNotADirectory: root is not a directory
//   - KindListingFailed: a directory could not be listed or an entry could not
//     be classified; no partial result is returned
//
// Symlinks are followed and there is no cycle detection, so a symlink loop that
// resolves to a directory recurses until the filesystem reports an error.
func (s *Scanner) ScanWorkspace(root string) ([]string, error) {
	info, err := s.fsProvider.Stat(root)
	if err != nil {
		if rootMissing(err) {
			return nil, metaws.NewWorkspaceError(metaws.KindPathNotFound, root, nil)
		}
		return nil, metaws.NewWorkspaceError(metaws.KindListingFailed, root, err)
	}
	if !info.IsDir() {
		return nil, metaws.NewWorkspaceError(metaws.KindNotADirectory, root, nil)
	}

	found, err := s.scanDir(root, []string{})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)
	s.logger.Verbose("Found %d workspace file(s) under %s", len(found), root)
	return found, nil
}

// rootMissing reports whether a root stat failure means nothing is at that path.
// A component that is a regular file (ENOTDIR) counts as missing.
func rootMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, filesystem.ErrNotDirectory)
}

// scanDir appends the matches beneath dir to found and returns the extended slice.
func (s *Scanner) scanDir(dir string, found []string) ([]string, error) {
	s.logger.Verbose("Listing %s", dir)

	entries, err := s.fsProvider.ReadDir(dir)
	if err != nil {
		return nil, metaws.NewWorkspaceError(metaws.KindListingFailed, dir, err)
	}

	for _, entry := range entries {
		kind, err := entry.Classify()
		if err != nil {
			return nil, metaws.NewWorkspaceError(metaws.KindListingFailed, entry.Path(), err)
		}

		switch kind {
		case filesystem.EntryDirectory:
			found, err = s.scanDir(entry.Path(), found)
			if err != nil {
				return nil, err
			}
		case filesystem.EntryRegular:
			if MatchesExtension(entry.Name(), s.extensions) {
				found = append(found, entry.Path())
			}
		}
	}

	return found, nil
}

// Extension returns the text after the final '.' of name, ASCII-lowercased.
// Names without a '.', and dotfiles whose only '.' is the leading one,
// have no extension.
func Extension(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return "", false
	}
	return asciiLower(name[i+1:]), true
}

// MatchesExtension reports whether name has an extension in extensions.
// The set must hold lowercase extensions without a leading dot.
func MatchesExtension(name string, extensions map[string]struct{}) bool {
	ext, ok := Extension(name)
	if !ok {
		return false
	}
	_, match := extensions[ext]
	return match
}

// ExtensionSet normalizes extensions into a lookup set.
func ExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = asciiLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// Verify Scanner implements the public interface at compile time
var _ metaws.WorkspaceScanner = (*Scanner)(nil)
