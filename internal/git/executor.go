package git

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/amirpz/snapkit/internal/errors"
)

// CommandExecutor abstracts running external commands so git orchestration
// can be tested without a real repository.
type CommandExecutor interface {
	// Execute runs a command, discarding output.
	Execute(cmd *exec.Cmd) error

	// ExecuteWithOutput runs a command and returns its stdout.
	ExecuteWithOutput(cmd *exec.Cmd) (string, error)
}

// ExecExecutor is the default CommandExecutor backed by os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute implements CommandExecutor.Execute.
func (e *ExecExecutor) Execute(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		operation, args := splitCommand(cmd)
		return errors.NewGitError(operation, args, wrapExecError(err), stderr.String())
	}
	return nil
}

// ExecuteWithOutput implements CommandExecutor.ExecuteWithOutput.
func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		operation, args := splitCommand(cmd)
		return "", errors.NewGitError(operation, args, wrapExecError(err), stderr.String())
	}

	return stdout.String(), nil
}

// wrapExecError tags err with the ErrGitOperationFailed sentinel while
// keeping the original error (including any *exec.ExitError) in the chain.
func wrapExecError(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrGitOperationFailed, err)
}

// splitCommand extracts the operation name and its arguments for error
// context. For git invocations the operation is the subcommand, with the
// leading "-C <path>" pairs skipped; for anything else it is the executable.
func splitCommand(cmd *exec.Cmd) (string, []string) {
	if len(cmd.Args) == 0 {
		return "", nil
	}

	if cmd.Args[0] != "git" {
		return cmd.Args[0], cmd.Args[1:]
	}

	rest := cmd.Args[1:]
	for len(rest) >= 2 && rest[0] == "-C" {
		rest = rest[2:]
	}
	if len(rest) == 0 {
		return "git", nil
	}
	return rest[0], rest[1:]
}
