// Package git wraps the external git binary behind the Client interface:
// stage all, check the stage, commit, push, pull. Commands run through a
// CommandExecutor so tests can substitute a mock and never touch a real
// repository.
package git
