// Package errors provides the error taxonomy shared by the snapkit
// packages: sentinel errors for classification with errors.Is, and typed
// errors (GitError, LockError, ConfigError) that carry the context a user
// needs to act on a failure.
//
// Failures split into four classes across the application:
//
//   - fatal external-process failures (git pull/commit/push) abort the run
//   - "nothing staged" is a logged no-op, never an error
//   - per-file deletion failures during pruning are logged and skipped
//   - an unprepared icon output directory produces guidance, not a crash
//
// Only the first class surfaces through these types; the others are
// handled where they occur.
package errors
