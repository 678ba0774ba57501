// Package filesystem provides the filesystem primitives used by workspace operations.
//
// This package defines the directory-listing and whole-file I/O interfaces the
// scanner and text store depend on, enabling testability through in-memory
// implementations while maintaining compatibility with the OS filesystem.
//
// Key interfaces:
//   - FileSystemProvider: Stat, ReadDir, ReadFile and WriteFile over one backend
//   - DirEntry: one entry of a directory listing that can classify itself
//
// Implementations:
//   - OSFileSystem: Production implementation using the os package
//   - MemoryFileSystem: In-memory implementation for testing, with failure injection
//   - EmbedFileSystem: Read-only implementation over an embed.FS
//   - BillyFileSystem: Implementation over any go-billy filesystem
package filesystem
