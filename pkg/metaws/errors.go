package metaws

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the workspace error taxonomy.
// These enable callers to distinguish error kinds using errors.Is().
//
// Example usage:
//
//	files, err := scanner.ScanWorkspace(root)
//	if errors.Is(err, metaws.ErrPathNotFound) {
//	    // workspace path does not exist
//	}
var (
	// ErrPathNotFound indicates the workspace root does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotADirectory indicates the workspace root exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrListingFailed indicates a directory could not be listed or an entry
	// could not be classified during traversal. The whole scan is aborted.
	ErrListingFailed = errors.New("listing failed")

	// ErrReadFailed indicates a text file could not be read.
	ErrReadFailed = errors.New("read failed")

	// ErrWriteFailed indicates a text file could not be written.
	ErrWriteFailed = errors.New("write failed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrApprovalDenied indicates the user declined to overwrite an existing file.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrInvalidXML indicates a workspace file is not well-formed XML.
	ErrInvalidXML = errors.New("invalid xml")
)

// ErrorKind tags a WorkspaceError with its place in the taxonomy.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindPathNotFound
	KindNotADirectory
	KindListingFailed
	KindReadFailed
	KindWriteFailed
)

var kindSentinels = map[ErrorKind]error{
	KindPathNotFound:  ErrPathNotFound,
	KindNotADirectory: ErrNotADirectory,
	KindListingFailed: ErrListingFailed,
	KindReadFailed:    ErrReadFailed,
	KindWriteFailed:   ErrWriteFailed,
}

// String returns the human-readable name of the kind.
func (k ErrorKind) String() string {
	if sentinel, ok := kindSentinels[k]; ok {
		return sentinel.Error()
	}
	return "unknown error"
}

// WorkspaceError is the structured error returned by scan, read and write
// operations. Path names the file or directory the operation failed on and
// Err carries the underlying cause, if any.
type WorkspaceError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewWorkspaceError creates a WorkspaceError of the given kind.
func NewWorkspaceError(kind ErrorKind, path string, cause error) *WorkspaceError {
	return &WorkspaceError{Kind: kind, Path: path, Err: cause}
}

func (e *WorkspaceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WorkspaceError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel error for this error's kind.
func (e *WorkspaceError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf extracts the ErrorKind from err if it wraps a WorkspaceError.
func KindOf(err error) (ErrorKind, bool) {
	var we *WorkspaceError
	if errors.As(err, &we) {
		return we.Kind, true
	}
	return KindUnknown, false
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrPathNotFound):
		return ExitPathNotFound
	case errors.Is(err, ErrNotADirectory):
		return ExitNotADirectory
	case errors.Is(err, ErrListingFailed):
		return ExitListingFailed
	case errors.Is(err, ErrReadFailed):
		return ExitReadFailed
	case errors.Is(err, ErrWriteFailed):
		return ExitWriteFailed
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrInvalidXML):
		return ExitInvalidXML
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	}

	// Cobra reports usage problems as plain errors
	errStr := err.Error()
	if strings.HasPrefix(errStr, "unknown flag") ||
		strings.HasPrefix(errStr, "unknown shorthand flag") ||
		strings.HasPrefix(errStr, "unknown command") ||
		strings.HasPrefix(errStr, "invalid argument") ||
		strings.HasPrefix(errStr, "missing required argument") ||
		strings.Contains(errStr, "arg(s), received") ||
		(strings.HasPrefix(errStr, "required flag") && strings.HasSuffix(errStr, "not set")) {
		return ExitUsageError
	}

	return ExitGeneralError
}
