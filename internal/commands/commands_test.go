package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaws/metaws/internal/files/filesystem"
	"github.com/metaws/metaws/internal/files/scanner"
	"github.com/metaws/metaws/internal/files/textio"
	"github.com/metaws/metaws/internal/logging"
	"github.com/metaws/metaws/pkg/metaws"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *filesystem.MemoryFileSystem) {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem("/ws")
	mfs.AddFile("/ws/a.meta", "<a/>")
	mfs.AddFile("/ws/sub/b.xml", "<b/>")
	mfs.AddFile("/ws/sub/c.txt", "c")
	mfs.AddFile("/ws/d.json", "{}")
	d := NewDispatcher(scanner.NewScannerWithFS(mfs), textio.NewStoreWithFS(mfs), nil)
	return d, mfs
}

func TestNewDispatcher_NilArgs(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/")
	s := scanner.NewScannerWithFS(mfs)
	st := textio.NewStoreWithFS(mfs)

	assert.Panics(t, func() { NewDispatcher(nil, st, nil) })
	assert.Panics(t, func() { NewDispatcher(s, nil, nil) })
	assert.NotPanics(t, func() { NewDispatcher(s, st, nil) })
}

func TestTypedOperations(t *testing.T) {
	d, _ := newTestDispatcher(t)

	files, errMsg := d.ListWorkspaceMetaFiles("/ws")
	assert.Empty(t, errMsg)
	assert.Equal(t, []string{"/ws/a.meta", "/ws/sub/b.xml"}, files)

	errMsg = d.WriteMetaFile("/ws/a.meta", "<changed/>")
	assert.Empty(t, errMsg)

	content, errMsg := d.ReadMetaFile("/ws/a.meta")
	assert.Empty(t, errMsg)
	assert.Equal(t, "<changed/>", content)
}

func TestTypedOperations_Failures(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, errMsg := d.ListWorkspaceMetaFiles("/missing")
	assert.Equal(t, "Workspace path does not exist", errMsg)

	_, errMsg = d.ListWorkspaceMetaFiles("/ws/a.meta")
	assert.Equal(t, "Workspace path is not a directory", errMsg)

	_, errMsg = d.ReadMetaFile("/ws/nope.meta")
	assert.Contains(t, errMsg, "Failed to read /ws/nope.meta")

	errMsg = d.WriteMetaFile("/ws/no/such/dir.meta", "x")
	assert.Contains(t, errMsg, "Failed to write /ws/no/such/dir.meta")
}

func TestInvoke(t *testing.T) {
	d, mfs := newTestDispatcher(t)

	resp := d.Invoke(ListWorkspaceMetaFiles, json.RawMessage(`{"path":"/ws"}`))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, []string{"/ws/a.meta", "/ws/sub/b.xml"}, resp.Result)

	resp = d.Invoke(WriteMetaFile, json.RawMessage(`{"path":"/ws/new.meta","content":""}`))
	require.True(t, resp.OK, resp.Error)
	assert.Nil(t, resp.Result)
	content, err := mfs.ReadFile("/ws/new.meta")
	require.NoError(t, err)
	assert.Empty(t, content)

	resp = d.Invoke(ReadMetaFile, json.RawMessage(`{"path":"/ws/sub/b.xml"}`))
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, "<b/>", resp.Result)
}

func TestInvoke_Failures(t *testing.T) {
	d, _ := newTestDispatcher(t)

	tests := []struct {
		name    string
		command string
		args    string
		want    string
	}{
		{"unknown command", "delete_meta_file", `{}`, `unknown command: "delete_meta_file"`},
		{"malformed json", ReadMetaFile, `{"path":`, "invalid arguments"},
		{"unknown field", ReadMetaFile, `{"file":"/ws/a.meta"}`, "invalid arguments"},
		{"missing path", ListWorkspaceMetaFiles, ``, `invalid arguments: missing "path"`},
		{"missing content", WriteMetaFile, `{"path":"/ws/a.meta"}`, `invalid arguments: missing "content"`},
		{"not found", ListWorkspaceMetaFiles, `{"path":"/gone"}`, "Workspace path does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := d.Invoke(tt.command, json.RawMessage(tt.args))
			assert.False(t, resp.OK)
			assert.Nil(t, resp.Result)
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestCall_ReturnsStructuredErrors(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Call("nope", nil)
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	_, err = d.Call(ReadMetaFile, json.RawMessage(`[]`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	_, err = d.Call(ListWorkspaceMetaFiles, json.RawMessage(`{"path":"/ws/a.meta"}`))
	assert.True(t, errors.Is(err, metaws.ErrNotADirectory))
}

func TestInvoke_EmptyListSerializesAsArray(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/empty")
	d := NewDispatcher(scanner.NewScannerWithFS(mfs), textio.NewStoreWithFS(mfs), nil)

	resp := d.Invoke(ListWorkspaceMetaFiles, json.RawMessage(`{"path":"/empty"}`))
	require.True(t, resp.OK)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"result":[]}`, string(data))
}

func TestInvoke_LogsFailures(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/ws")
	var buf bytes.Buffer
	d := NewDispatcher(scanner.NewScannerWithFS(mfs), textio.NewStoreWithFS(mfs), logging.NewConsoleLoggerTo(&buf, false))

	d.Invoke(ReadMetaFile, json.RawMessage(`{"path":"/ws/x.meta"}`))
	assert.Contains(t, buf.String(), "[ERROR] read_meta_file: Failed to read /ws/x.meta")
}

func TestDescribe(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/ws/locked", Err: fs.ErrPermission}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", metaws.NewWorkspaceError(metaws.KindPathNotFound, "/ws", nil), "Workspace path does not exist"},
		{"not a directory", metaws.NewWorkspaceError(metaws.KindNotADirectory, "/ws", nil), "Workspace path is not a directory"},
		{"listing", metaws.NewWorkspaceError(metaws.KindListingFailed, "/ws/locked", cause), "Failed to list /ws/locked: open /ws/locked: permission denied"},
		{"read", metaws.NewWorkspaceError(metaws.KindReadFailed, "/ws/a.meta", textio.ErrInvalidEncoding), "Failed to read /ws/a.meta: " + textio.ErrInvalidEncoding.Error()},
		{"write", metaws.NewWorkspaceError(metaws.KindWriteFailed, "/ro/a.meta", filesystem.ErrReadOnly), "Failed to write /ro/a.meta: read-only filesystem"},
		{"wrapped", fmt.Errorf("outer: %w", metaws.NewWorkspaceError(metaws.KindPathNotFound, "/ws", nil)), "Workspace path does not exist"},
		{"plain", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestNamesAndIsKnown(t *testing.T) {
	assert.Equal(t, []string{ListWorkspaceMetaFiles, ReadMetaFile, WriteMetaFile}, Names())
	for _, n := range Names() {
		assert.True(t, IsKnown(n))
	}
	assert.False(t, IsKnown("list"))
}
