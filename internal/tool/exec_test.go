package tool

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePosixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test drives /bin/sh")
	}
}

func TestExecInvoker_Success(t *testing.T) {
	requirePosixShell(t)

	result, err := NewExecInvoker().Invoke(context.Background(), Spec{
		Tool:    "engine",
		Command: "sh",
		Args:    []string{"-c", "echo compiled"},
		Dir:     t.TempDir(),
	})
	require.NoError(t, err)
	assert.Zero(t, result.ExitCode)
	assert.Equal(t, "compiled\n", result.Stdout)
}

func TestExecInvoker_NonZeroExit(t *testing.T) {
	requirePosixShell(t)

	result, err := NewExecInvoker().Invoke(context.Background(), Spec{
		Tool:    "engine",
		Command: "sh",
		Args:    []string{"-c", "echo 'Emergency stop' >&2; exit 3"},
	})
	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Error(), "exited with code 3")
	assert.Contains(t, exitErr.Error(), "Emergency stop")
}

func TestExecInvoker_MissingBinary(t *testing.T) {
	result, err := NewExecInvoker().Invoke(context.Background(), Spec{
		Tool:    "installer",
		Command: "definitely-not-a-real-binary-name",
	})
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "start failures are not ExitErrors")
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "b | c", lastLines("a\nb\nc", 2))
	assert.Equal(t, "a", lastLines("\n\na\n\n", 5))
	assert.Equal(t, "", lastLines("", 3))
}
