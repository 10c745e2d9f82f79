package git

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/logger"
)

// MockCommandExecutor records commands instead of running them.
type MockCommandExecutor struct {
	Commands            []*exec.Cmd
	ExecuteFn           func(cmd *exec.Cmd) error
	ExecuteWithOutputFn func(cmd *exec.Cmd) (string, error)
	Output              string
}

func (m *MockCommandExecutor) Execute(cmd *exec.Cmd) error {
	m.Commands = append(m.Commands, cmd)
	if m.ExecuteFn != nil {
		return m.ExecuteFn(cmd)
	}
	return nil
}

func (m *MockCommandExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	m.Commands = append(m.Commands, cmd)
	if m.ExecuteWithOutputFn != nil {
		return m.ExecuteWithOutputFn(cmd)
	}
	return m.Output, nil
}

func testClient(executor CommandExecutor) *CLIClient {
	log := logger.NewWithOutput(false, "", false, io.Discard, io.Discard)
	return NewCLIClientWithExecutor("/repo", log, executor)
}

// exitError produces a real *exec.ExitError with the given code.
func exitError(t *testing.T, code int) *exec.ExitError {
	t.Helper()
	err := exec.Command("sh", "-c", fmt.Sprintf("exit %d", code)).Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, code, exitErr.ExitCode())
	return exitErr
}

// gitErrorWithExit mimics what ExecExecutor returns for a failed command.
func gitErrorWithExit(t *testing.T, code int) error {
	t.Helper()
	return errors.NewGitError("git", []string{"diff"}, wrapExecError(exitError(t, code)), "")
}

func TestStageAllInvokesGitAdd(t *testing.T) {
	t.Parallel()
	mock := &MockCommandExecutor{}
	client := testClient(mock)

	require.NoError(t, client.StageAll(context.Background()))

	require.Len(t, mock.Commands, 1)
	assert.Equal(t, []string{"git", "-C", "/repo", "add", "."}, mock.Commands[0].Args)
}

func TestCommitPassesMessage(t *testing.T) {
	t.Parallel()
	mock := &MockCommandExecutor{}
	client := testClient(mock)

	require.NoError(t, client.Commit(context.Background(), "autopush: snapshot #7"))

	require.Len(t, mock.Commands, 1)
	assert.Equal(t, []string{"git", "-C", "/repo", "commit", "-m", "autopush: snapshot #7"}, mock.Commands[0].Args)
}

func TestPullAndPushInvokeGit(t *testing.T) {
	t.Parallel()
	mock := &MockCommandExecutor{}
	client := testClient(mock)

	require.NoError(t, client.Pull(context.Background()))
	require.NoError(t, client.Push(context.Background()))

	require.Len(t, mock.Commands, 2)
	assert.Equal(t, []string{"git", "-C", "/repo", "pull"}, mock.Commands[0].Args)
	assert.Equal(t, []string{"git", "-C", "/repo", "push"}, mock.Commands[1].Args)
}

func TestHasStagedChangesCleanIndex(t *testing.T) {
	t.Parallel()
	mock := &MockCommandExecutor{}
	client := testClient(mock)

	staged, err := client.HasStagedChanges(context.Background())
	require.NoError(t, err)
	assert.False(t, staged)

	require.Len(t, mock.Commands, 1)
	assert.Equal(t, []string{"git", "-C", "/repo", "diff", "--cached", "--quiet"}, mock.Commands[0].Args)
}

func TestHasStagedChangesDirtyIndex(t *testing.T) {
	t.Parallel()
	dirtyErr := gitErrorWithExit(t, 1)
	mock := &MockCommandExecutor{
		ExecuteFn: func(cmd *exec.Cmd) error { return dirtyErr },
	}

	staged, err := testClient(mock).HasStagedChanges(context.Background())
	require.NoError(t, err, "exit code 1 is the dirty signal, not a failure")
	assert.True(t, staged)
}

func TestHasStagedChangesPropagatesRealFailures(t *testing.T) {
	t.Parallel()
	// Exit code 2 is outside the clean/dirty protocol (e.g. not a repo).
	brokenErr := gitErrorWithExit(t, 2)
	mock := &MockCommandExecutor{
		ExecuteFn: func(cmd *exec.Cmd) error { return brokenErr },
	}

	staged, err := testClient(mock).HasStagedChanges(context.Background())
	assert.Error(t, err)
	assert.False(t, staged)
	assert.True(t, errors.Is(err, errors.ErrGitOperationFailed))
}

func TestExecExecutorWrapsFailures(t *testing.T) {
	t.Parallel()
	executor := NewExecExecutor()

	err := executor.Execute(exec.Command("snapkit-test-binary-that-does-not-exist"))
	require.Error(t, err)

	var gitErr *errors.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "snapkit-test-binary-that-does-not-exist", gitErr.Operation)
	assert.True(t, errors.Is(err, errors.ErrGitOperationFailed))
}

func TestExecExecutorCapturesStderr(t *testing.T) {
	t.Parallel()
	executor := NewExecExecutor()

	_, err := executor.ExecuteWithOutput(exec.Command("sh", "-c", "echo boom >&2; exit 3"))
	require.Error(t, err)

	var gitErr *errors.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Contains(t, gitErr.Output, "boom")

	var exitErr *exec.ExitError
	require.ErrorAs(t, gitErr.Err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestIsRepositoryRejectsPlainDirectory(t *testing.T) {
	t.Parallel()
	assert.False(t, IsRepository(t.TempDir()))
}
