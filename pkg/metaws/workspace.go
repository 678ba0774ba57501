package metaws

// WorkspaceScanner enumerates the meta files of a workspace.
// Implementations must be safe for concurrent use by multiple goroutines.
type WorkspaceScanner interface {
	// ScanWorkspace recursively collects every regular file under root whose
	// extension, compared case-insensitively, is one of the meta extensions.
	// The result is sorted ascending by path string. The scan is all-or-nothing:
	// any traversal failure returns an error and no paths.
	ScanWorkspace(root string) ([]string, error)
}

// TextStore reads and writes whole text files.
// Implementations must be safe for concurrent use by multiple goroutines.
type TextStore interface {
	// ReadText returns the full content of the file at path.
	ReadText(path string) (string, error)

	// WriteText replaces the content of the file at path, creating it if absent.
	// Writes are not atomic.
	WriteText(path string, content string) error
}
