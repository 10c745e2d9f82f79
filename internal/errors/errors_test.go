package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitErrorFormatting(t *testing.T) {
	t.Parallel()
	underlying := Wrap(ErrGitOperationFailed, "exit status 128")
	err := NewGitError("push", []string{"origin"}, underlying, "remote: access denied")

	msg := err.Error()
	assert.Contains(t, msg, "git push failed")
	assert.Contains(t, msg, "remote: access denied")
	assert.Contains(t, msg, "exit status 128")
}

func TestGitErrorUnwrapPreservesSentinel(t *testing.T) {
	t.Parallel()
	underlying := fmt.Errorf("%w: %w", ErrGitOperationFailed, fmt.Errorf("exit status 1"))
	err := NewGitError("diff", []string{"--cached", "--quiet"}, underlying, "")

	assert.True(t, Is(err, ErrGitOperationFailed))

	var gitErr *GitError
	require.True(t, As(error(err), &gitErr))
	assert.Equal(t, "diff", gitErr.Operation)
}

func TestLockErrorIncludesPID(t *testing.T) {
	t.Parallel()
	err := NewLockError("/tmp/snapkit-abc.lock", 4242, ErrAlreadyRunning)

	assert.Contains(t, err.Error(), "PID: 4242")
	assert.True(t, Is(err, ErrAlreadyRunning))
}

func TestLockErrorWithoutPID(t *testing.T) {
	t.Parallel()
	err := NewLockError("/tmp/snapkit-abc.lock", 0, New("disk full"))

	assert.NotContains(t, err.Error(), "PID")
	assert.Contains(t, err.Error(), "disk full")
}

func TestConfigErrorReportsParameterAndValue(t *testing.T) {
	t.Parallel()
	err := NewConfigError("retain", 0, Wrap(ErrInvalidConfiguration, "must be at least 1"))

	assert.Contains(t, err.Error(), "retain = 0")
	assert.True(t, Is(err, ErrInvalidConfiguration))
}

func TestWrapfAddsContext(t *testing.T) {
	t.Parallel()
	err := Wrapf(ErrNotGitRepository, "path %s", "/tmp/x")

	assert.Equal(t, "path /tmp/x: not a git repository", err.Error())
	assert.True(t, Is(err, ErrNotGitRepository))
}
