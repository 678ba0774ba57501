// Package scanner discovers workspace files of interest beneath a root directory.
//
// The scanner package is responsible for:
//   - Validating the workspace root before any traversal begins
//   - Recursively descending the directory tree, following symlinks
//   - Filtering regular files by case-insensitive extension (meta and xml by default)
//   - Returning the matches sorted by path string
//
// Scans are all-or-nothing: a listing or classification failure anywhere in the
// tree aborts the scan with metaws.ErrListingFailed and discards collected paths.
//
// The scanner is designed to be filesystem-agnostic through the use of
// filesystem.FileSystemProvider interface, enabling both production use
// with the OS filesystem and testing with in-memory filesystems.
package scanner
