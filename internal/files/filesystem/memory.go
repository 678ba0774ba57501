package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// maxSymlinkDepth bounds symlink resolution, matching the usual kernel limit
const maxSymlinkDepth = 40

var errSymlinkLoop = errors.New("too many levels of symbolic links")

type memoryNodeKind int

const (
	memoryDir memoryNodeKind = iota
	memoryRegular
	memorySymlink
	memorySpecial
)

// memoryFileInfo implements fs.FileInfo for in-memory nodes
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryNode struct {
	kind    memoryNodeKind
	content []byte
	target  string
	modTime time.Time
}

func (n *memoryNode) info(name string) *memoryFileInfo {
	fi := &memoryFileInfo{name: name, modTime: n.modTime}
	switch n.kind {
	case memoryDir:
		fi.mode = 0o755 | fs.ModeDir
	case memoryRegular:
		fi.mode = 0o644
		fi.size = int64(len(n.content))
	case memorySymlink:
		fi.mode = 0o777 | fs.ModeSymlink
	case memorySpecial:
		fi.mode = 0o600 | fs.ModeSocket
	}
	return fi
}

// memoryDirEntry implements DirEntry for the in-memory filesystem
type memoryDirEntry struct {
	mfs     *MemoryFileSystem
	name    string
	path    string
	absPath string
}

func (e *memoryDirEntry) Name() string { return e.name }
func (e *memoryDirEntry) Path() string { return e.path }

func (e *memoryDirEntry) Classify() (EntryType, error) {
	e.mfs.mu.RLock()
	defer e.mfs.mu.RUnlock()

	if err, ok := e.mfs.classifyErrs[e.absPath]; ok {
		return EntryOther, err
	}

	if _, _, err := e.mfs.lstat(e.absPath); err != nil {
		return EntryOther, &fs.PathError{Op: "lstat", Path: e.path, Err: err}
	}

	node, _, err := e.mfs.follow(e.absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return EntryOther, nil
		}
		return EntryOther, &fs.PathError{Op: "stat", Path: e.path, Err: err}
	}

	switch node.kind {
	case memoryDir:
		return EntryDirectory, nil
	case memoryRegular:
		return EntryRegular, nil
	default:
		return EntryOther, nil
	}
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths use forward slashes; relative paths are resolved against the root.
// Safe for concurrent use by multiple goroutines.
type MemoryFileSystem struct {
	mu           sync.RWMutex
	nodes        map[string]*memoryNode // absolute path -> node
	root         string
	readDirErrs  map[string]error
	classifyErrs map[string]error
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean("/" + filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		nodes:        make(map[string]*memoryNode),
		root:         root,
		readDirErrs:  make(map[string]error),
		classifyErrs: make(map[string]error),
	}
	mfs.nodes["/"] = &memoryNode{kind: memoryDir, modTime: time.Now()}
	mfs.AddDir(root)

	return mfs
}

// Root returns the directory relative paths are resolved against.
func (mfs *MemoryFileSystem) Root() string { return mfs.root }

// resolve converts a caller path into an absolute, cleaned virtual path
func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	switch {
	case p == "" || p == ".":
		return mfs.root
	case path.IsAbs(p):
		return path.Clean(p)
	default:
		return path.Join(mfs.root, p)
	}
}

// AddFile adds a regular file, creating parent directories as needed.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.AddFileWithTime(filePath, content, time.Now())
}

// AddFileWithTime adds a regular file with a specific modification time.
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	mfs.put(filePath, &memoryNode{kind: memoryRegular, content: []byte(content), modTime: modTime})
}

// AddDir adds a directory, creating parent directories as needed.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.put(dirPath, &memoryNode{kind: memoryDir, modTime: time.Now()})
}

// AddSymlink adds a symbolic link at linkPath pointing to target.
// Relative targets are resolved against the link's directory.
func (mfs *MemoryFileSystem) AddSymlink(linkPath string, target string) {
	mfs.put(linkPath, &memoryNode{kind: memorySymlink, target: filepath.ToSlash(target), modTime: time.Now()})
}

// AddSpecial adds an entry that is neither a directory nor a regular file.
func (mfs *MemoryFileSystem) AddSpecial(specialPath string) {
	mfs.put(specialPath, &memoryNode{kind: memorySpecial, modTime: time.Now()})
}

// Remove deletes a node and everything beneath it.
func (mfs *MemoryFileSystem) Remove(removePath string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(removePath)
	for p := range mfs.nodes {
		if p == absPath || strings.HasPrefix(p, absPath+"/") {
			delete(mfs.nodes, p)
		}
	}
}

// FailReadDir makes every ReadDir of dirPath return err.
func (mfs *MemoryFileSystem) FailReadDir(dirPath string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.readDirErrs[mfs.resolve(dirPath)] = err
}

// FailClassify makes classification of the entry at entryPath return err.
func (mfs *MemoryFileSystem) FailClassify(entryPath string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.classifyErrs[mfs.resolve(entryPath)] = err
}

func (mfs *MemoryFileSystem) put(p string, node *memoryNode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.resolve(p)
	mfs.ensureDirectoriesExist(absPath)
	if existing, ok := mfs.nodes[absPath]; ok && existing.kind == memoryDir && node.kind == memoryDir {
		return
	}
	mfs.nodes[absPath] = node
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(absPath string) {
	for dir := path.Dir(absPath); ; dir = path.Dir(dir) {
		if _, exists := mfs.nodes[dir]; exists {
			return
		}
		mfs.nodes[dir] = &memoryNode{kind: memoryDir, modTime: time.Now()}
		if dir == "/" {
			return
		}
	}
}

// follow resolves symlinks in every component of absPath and returns the
// final node with its link-free path. Callers must hold mu.
func (mfs *MemoryFileSystem) follow(absPath string) (*memoryNode, string, error) {
	hops := 0
	resolved := "/"
	rest := splitPath(absPath)
	for len(rest) > 0 {
		candidate := path.Join(resolved, rest[0])
		rest = rest[1:]

		node, exists := mfs.nodes[candidate]
		if !exists {
			return nil, candidate, fs.ErrNotExist
		}
		if node.kind != memorySymlink {
			resolved = candidate
			continue
		}

		hops++
		if hops > maxSymlinkDepth {
			return nil, candidate, errSymlinkLoop
		}
		target := node.target
		if !path.IsAbs(target) {
			target = path.Join(resolved, target)
		}
		rest = append(splitPath(target), rest...)
		resolved = "/"
	}

	return mfs.nodes[resolved], resolved, nil
}

// lstat finds the node at absPath without following a final symlink. Callers must hold mu.
func (mfs *MemoryFileSystem) lstat(absPath string) (*memoryNode, string, error) {
	if absPath == "/" {
		return mfs.nodes["/"], "/", nil
	}
	_, parent, err := mfs.follow(path.Dir(absPath))
	if err != nil {
		return nil, absPath, err
	}
	target := path.Join(parent, path.Base(absPath))
	node, exists := mfs.nodes[target]
	if !exists {
		return nil, target, fs.ErrNotExist
	}
	return node, target, nil
}

func splitPath(absPath string) []string {
	var parts []string
	for _, part := range strings.Split(path.Clean(absPath), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	node, _, err := mfs.follow(mfs.resolve(statPath))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: statPath, Err: err}
	}

	return node.info(path.Base(mfs.resolve(statPath))), nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.resolve(dirPath)
	if err, ok := mfs.readDirErrs[absPath]; ok {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	node, resolved, err := mfs.follow(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", &fs.PathError{Op: "readdir", Path: dirPath, Err: err})
	}
	if node.kind != memoryDir {
		return nil, fmt.Errorf("failed to read directory: %w", &fs.PathError{Op: "readdir", Path: dirPath, Err: ErrNotDirectory})
	}

	var names []string
	for p := range mfs.nodes {
		if p != resolved && path.Dir(p) == resolved {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)

	callerPath := filepath.ToSlash(dirPath)
	entries := make([]DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, &memoryDirEntry{
			mfs:     mfs,
			name:    name,
			path:    path.Join(callerPath, name),
			absPath: path.Join(absPath, name),
		})
	}

	return entries, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	node, _, err := mfs.follow(mfs.resolve(filePath))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: err}
	}
	if node.kind == memoryDir {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: ErrIsDirectory}
	}
	if node.kind != memoryRegular {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrInvalid}
	}

	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile implements FileSystemProvider.WriteFile.
// Like the OS, the parent directory must already exist.
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	_, parentPath, err := mfs.follow(path.Dir(mfs.resolve(filePath)))
	if err != nil {
		return &fs.PathError{Op: "open", Path: filePath, Err: err}
	}
	if mfs.nodes[parentPath].kind != memoryDir {
		return &fs.PathError{Op: "open", Path: filePath, Err: ErrNotDirectory}
	}

	absPath := path.Join(parentPath, path.Base(mfs.resolve(filePath)))
	if existing, ok := mfs.nodes[absPath]; ok {
		if existing.kind == memorySymlink {
			_, target, err := mfs.follow(absPath)
			if err != nil {
				return &fs.PathError{Op: "open", Path: filePath, Err: err}
			}
			absPath = target
			existing = mfs.nodes[absPath]
		}
		switch existing.kind {
		case memoryDir:
			return &fs.PathError{Op: "open", Path: filePath, Err: ErrIsDirectory}
		case memorySpecial:
			return &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrInvalid}
		}
	}

	content := make([]byte, len(data))
	copy(content, data)
	mfs.nodes[absPath] = &memoryNode{kind: memoryRegular, content: content, modTime: time.Now()}
	return nil
}

// Verify MemoryFileSystem implements the interface at compile time
var _ FileSystemProvider = (*MemoryFileSystem)(nil)
