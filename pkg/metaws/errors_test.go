package metaws_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaws/metaws/pkg/metaws"
)

func TestWorkspaceError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind     metaws.ErrorKind
		sentinel error
	}{
		{metaws.KindPathNotFound, metaws.ErrPathNotFound},
		{metaws.KindNotADirectory, metaws.ErrNotADirectory},
		{metaws.KindListingFailed, metaws.ErrListingFailed},
		{metaws.KindReadFailed, metaws.ErrReadFailed},
		{metaws.KindWriteFailed, metaws.ErrWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := metaws.NewWorkspaceError(tt.kind, "/ws", nil)
			assert.ErrorIs(t, err, tt.sentinel)

			wrapped := fmt.Errorf("outer: %w", err)
			assert.ErrorIs(t, wrapped, tt.sentinel)

			for _, other := range []error{metaws.ErrPathNotFound, metaws.ErrNotADirectory, metaws.ErrListingFailed, metaws.ErrReadFailed, metaws.ErrWriteFailed} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestWorkspaceError_UnwrapsCause(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/ws/a.meta", Err: fs.ErrPermission}
	err := metaws.NewWorkspaceError(metaws.KindReadFailed, "/ws/a.meta", cause)

	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "read failed")
	assert.Contains(t, err.Error(), "/ws/a.meta")
}

func TestWorkspaceError_ErrorWithoutCause(t *testing.T) {
	err := metaws.NewWorkspaceError(metaws.KindNotADirectory, "/ws/file.txt", nil)
	assert.Equal(t, "not a directory: /ws/file.txt", err.Error())
}

func TestKindOf(t *testing.T) {
	kind, ok := metaws.KindOf(fmt.Errorf("scan: %w", metaws.NewWorkspaceError(metaws.KindListingFailed, "/ws/sub", nil)))
	require.True(t, ok)
	assert.Equal(t, metaws.KindListingFailed, kind)

	kind, ok = metaws.KindOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, metaws.KindUnknown, kind)
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, metaws.ExitSuccess},
		{"general error", errors.New("something went wrong"), metaws.ExitGeneralError},
		{"path not found", metaws.NewWorkspaceError(metaws.KindPathNotFound, "/x", nil), metaws.ExitPathNotFound},
		{"not a directory", metaws.NewWorkspaceError(metaws.KindNotADirectory, "/x", nil), metaws.ExitNotADirectory},
		{"listing failed", metaws.NewWorkspaceError(metaws.KindListingFailed, "/x", nil), metaws.ExitListingFailed},
		{"read failed", metaws.NewWorkspaceError(metaws.KindReadFailed, "/x", nil), metaws.ExitReadFailed},
		{"write failed", metaws.NewWorkspaceError(metaws.KindWriteFailed, "/x", nil), metaws.ExitWriteFailed},
		{"approval denied", fmt.Errorf("write: %w", metaws.ErrApprovalDenied), metaws.ExitApprovalDenied},
		{"invalid xml", fmt.Errorf("validate: %w", metaws.ErrInvalidXML), metaws.ExitInvalidXML},
		{"invalid config", fmt.Errorf("%w: bad extension", metaws.ErrInvalidConfig), metaws.ExitConfigError},
		{"unknown flag", errors.New("unknown flag: --foo"), metaws.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x' in -x"), metaws.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), metaws.ExitUsageError},
		{"missing argument", errors.New("missing required argument: <path>"), metaws.ExitUsageError},
		{"required flag", errors.New("required flag(s) \"content\" not set"), metaws.ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metaws.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
