package git

import (
	"context"
	"os/exec"
	"strings"

	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/logger"
)

// Client is the narrow set of version-control capabilities the snapshotters
// need. Keeping it this small lets the orchestration logic run against a
// fake in tests instead of a real repository.
type Client interface {
	// Pull fetches and integrates remote changes.
	Pull(ctx context.Context) error

	// StageAll stages every change in the working tree.
	StageAll(ctx context.Context) error

	// HasStagedChanges reports whether the index differs from HEAD.
	// A failure of the underlying check (anything other than the binary
	// clean/dirty signal) is returned as an error.
	HasStagedChanges(ctx context.Context) (bool, error)

	// Commit records the staged changes with the given message.
	Commit(ctx context.Context, message string) error

	// Push publishes local commits to the remote.
	Push(ctx context.Context) error
}

// CLIClient implements Client by shelling out to the git binary.
type CLIClient struct {
	repoPath string
	executor CommandExecutor
	logger   logger.Logger
}

// NewCLIClient creates a CLIClient for the repository at repoPath.
func NewCLIClient(repoPath string, log logger.Logger) *CLIClient {
	return NewCLIClientWithExecutor(repoPath, log, NewExecExecutor())
}

// NewCLIClientWithExecutor creates a CLIClient with a custom executor.
func NewCLIClientWithExecutor(repoPath string, log logger.Logger, executor CommandExecutor) *CLIClient {
	return &CLIClient{
		repoPath: repoPath,
		executor: executor,
		logger:   log,
	}
}

// IsRepository checks if the given path is a git repository.
func IsRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	return NewExecExecutor().Execute(cmd) == nil
}

// Pull implements Client.Pull.
func (c *CLIClient) Pull(ctx context.Context) error {
	c.logger.Info("Pulling latest changes from remote")
	return c.run(ctx, "pull")
}

// StageAll implements Client.StageAll.
func (c *CLIClient) StageAll(ctx context.Context) error {
	return c.run(ctx, "add", ".")
}

// HasStagedChanges implements Client.HasStagedChanges.
//
// git diff --cached --quiet exits 0 when the index is clean and 1 when it
// holds changes. Only those two exit codes are part of the clean/dirty
// signal; anything else is a real failure and is propagated.
func (c *CLIClient) HasStagedChanges(ctx context.Context) (bool, error) {
	err := c.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}

	var gitErr *errors.GitError
	if errors.As(err, &gitErr) {
		var exitErr *exec.ExitError
		if errors.As(gitErr.Err, &exitErr) && exitErr.ExitCode() == 1 {
			return true, nil
		}
	}

	return false, err
}

// Commit implements Client.Commit.
func (c *CLIClient) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-m", message)
}

// Push implements Client.Push.
func (c *CLIClient) Push(ctx context.Context) error {
	c.logger.Info("Pushing to remote")
	return c.run(ctx, "push")
}

// CurrentBranch returns the name of the checked-out branch.
func (c *CLIClient) CurrentBranch(ctx context.Context) (string, error) {
	output, err := c.runWithOutput(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// run executes a git subcommand in the repository directory.
func (c *CLIClient) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", c.repoPath}, args...)...)
	cmd.Dir = c.repoPath
	return c.executor.Execute(cmd)
}

// runWithOutput executes a git subcommand and returns its stdout.
func (c *CLIClient) runWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", c.repoPath}, args...)...)
	cmd.Dir = c.repoPath
	return c.executor.ExecuteWithOutput(cmd)
}
