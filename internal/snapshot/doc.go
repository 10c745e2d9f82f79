// Package snapshot orchestrates the two snapshot flows: the counter-based
// run (bump counter, conditional commit/push, full-tree archive, prune) and
// the timestamp-based run (pull, optional note, filtered archive,
// conditional commit/push). Both drive git through the git.Client interface
// and are exercised against a fake client in tests.
package snapshot
