package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/metaws/metaws/internal/files/scanner"
	"github.com/metaws/metaws/internal/files/textio"
	"github.com/metaws/metaws/internal/logging"
	"github.com/metaws/metaws/pkg/metaws"
)

// Command names accepted by Invoke.
const (
	ReadMetaFile           = "read_meta_file"
	WriteMetaFile          = "write_meta_file"
	ListWorkspaceMetaFiles = "list_workspace_meta_files"
)

var (
	// ErrUnknownCommand is returned by Call for a name that is not a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArguments is returned by Call when the argument object cannot be decoded.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Response is the result of one command invocation as seen by a host.
type Response struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// PathArgs is the argument object of read_meta_file and list_workspace_meta_files.
type PathArgs struct {
	Path string `json:"path"`
}

// WriteArgs is the argument object of write_meta_file.
type WriteArgs struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

// Dispatcher routes host commands to the workspace scanner and text store.
// It holds no mutable state and is safe for concurrent use when its
// collaborators are.
type Dispatcher struct {
	scanner metaws.WorkspaceScanner
	store   metaws.TextStore
	logger  metaws.Logger
}

// NewDispatcher creates a Dispatcher.
// Panics if scanner or store is nil. A nil logger discards output.
func NewDispatcher(scanner metaws.WorkspaceScanner, store metaws.TextStore, logger metaws.Logger) *Dispatcher {
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Dispatcher{scanner: scanner, store: store, logger: logger}
}

// NewDefaultDispatcher creates a Dispatcher over the OS filesystem.
func NewDefaultDispatcher(extensions []string, logger metaws.Logger) *Dispatcher {
	s := scanner.NewScanner(scanner.WithExtensions(extensions...), scanner.WithLogger(logger))
	return NewDispatcher(s, textio.NewStore(), logger)
}

// ReadMetaFile returns the content of path, or a non-empty error message.
func (d *Dispatcher) ReadMetaFile(path string) (string, string) {
	content, err := d.store.ReadText(path)
	if err != nil {
		return "", d.fail(ReadMetaFile, err)
	}
	return content, ""
}

// WriteMetaFile replaces the content of path, returning a non-empty error message on failure.
func (d *Dispatcher) WriteMetaFile(path, content string) string {
	if err := d.store.WriteText(path, content); err != nil {
		return d.fail(WriteMetaFile, err)
	}
	return ""
}

// ListWorkspaceMetaFiles returns the sorted workspace files under path,
// or a non-empty error message.
func (d *Dispatcher) ListWorkspaceMetaFiles(path string) ([]string, string) {
	files, err := d.scanner.ScanWorkspace(path)
	if err != nil {
		return nil, d.fail(ListWorkspaceMetaFiles, err)
	}
	return files, ""
}

// Call runs the named command with a JSON argument object and returns its
// structured result. Unlike Invoke, failures are returned as errors.
func (d *Dispatcher) Call(name string, args json.RawMessage) (interface{}, error) {
	d.logger.Verbose("Invoking %s", name)

	switch name {
	case ReadMetaFile:
		var a PathArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Path == "" {
			return nil, fmt.Errorf("%w: missing \"path\"", ErrInvalidArguments)
		}
		return d.store.ReadText(a.Path)

	case WriteMetaFile:
		var a WriteArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Path == "" {
			return nil, fmt.Errorf("%w: missing \"path\"", ErrInvalidArguments)
		}
		if a.Content == nil {
			return nil, fmt.Errorf("%w: missing \"content\"", ErrInvalidArguments)
		}
		if err := d.store.WriteText(a.Path, *a.Content); err != nil {
			return nil, err
		}
		return nil, nil

	case ListWorkspaceMetaFiles:
		var a PathArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Path == "" {
			return nil, fmt.Errorf("%w: missing \"path\"", ErrInvalidArguments)
		}
		return d.scanner.ScanWorkspace(a.Path)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// Invoke runs the named command and wraps the outcome in a Response.
// Failures never escape as errors; they are rendered with Describe.
func (d *Dispatcher) Invoke(name string, args json.RawMessage) Response {
	result, err := d.Call(name, args)
	if err != nil {
		return Response{OK: false, Error: d.fail(name, err)}
	}
	return Response{OK: true, Result: result}
}

func (d *Dispatcher) fail(name string, err error) string {
	msg := Describe(err)
	d.logger.Error("%s: %s", name, msg)
	return msg
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// Names returns the command names in sorted order.
func Names() []string {
	names := []string{ReadMetaFile, WriteMetaFile, ListWorkspaceMetaFiles}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name is a command.
func IsKnown(name string) bool {
	switch name {
	case ReadMetaFile, WriteMetaFile, ListWorkspaceMetaFiles:
		return true
	}
	return false
}

// Describe renders an error as the short message shown to the host.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var we *metaws.WorkspaceError
	if !errors.As(err, &we) {
		return err.Error()
	}

	switch we.Kind {
	case metaws.KindPathNotFound:
		return "Workspace path does not exist"
	case metaws.KindNotADirectory:
		return "Workspace path is not a directory"
	case metaws.KindListingFailed:
		return fmt.Sprintf("Failed to list %s: %v", we.Path, we.Err)
	case metaws.KindReadFailed:
		return fmt.Sprintf("Failed to read %s: %v", we.Path, we.Err)
	case metaws.KindWriteFailed:
		return fmt.Sprintf("Failed to write %s: %v", we.Path, we.Err)
	default:
		return err.Error()
	}
}
