package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amirpz/snapkit/internal/archive"
	"github.com/amirpz/snapkit/internal/git"
	"github.com/amirpz/snapkit/internal/logger"
)

// timestampLayout names archives down to the second, filesystem-safe.
const timestampLayout = "2006-01-02_15-04-05"

// TimestampConfig contains configuration for a timestamp-based snapshot run.
type TimestampConfig struct {
	// RepoPath is the working tree being snapshotted.
	RepoPath string

	// ProjectName names the archives: {project}_snapshot_{timestamp}.zip.
	ProjectName string

	// LocalSnapshotDir is the archive destination, relative to RepoPath
	// when not absolute.
	LocalSnapshotDir string

	// NoteFile is where an optional free-text message is recorded,
	// relative to RepoPath when not absolute.
	NoteFile string

	// ExcludeDirs lists directory names kept out of the archive at any
	// depth.
	ExcludeDirs []string

	// ExcludeFiles lists file names kept out of the archive.
	ExcludeFiles []string
}

// TimestampSnapshotter performs one timestamp-based snapshot: pull,
// optionally record a note, archive the tree with exclusions, then commit
// and push whatever changed.
type TimestampSnapshotter struct {
	config TimestampConfig
	logger logger.Logger
	client git.Client
	now    func() time.Time
}

// NewTimestampSnapshotter creates a TimestampSnapshotter with default
// dependencies.
func NewTimestampSnapshotter(config TimestampConfig, log logger.Logger) *TimestampSnapshotter {
	return NewTimestampSnapshotterWithDeps(config, log, git.NewCLIClient(config.RepoPath, log), time.Now)
}

// NewTimestampSnapshotterWithDeps creates a TimestampSnapshotter with custom
// dependencies, for tests.
func NewTimestampSnapshotterWithDeps(
	config TimestampConfig,
	log logger.Logger,
	client git.Client,
	now func() time.Time,
) *TimestampSnapshotter {
	return &TimestampSnapshotter{
		config: config,
		logger: log,
		client: client,
		now:    now,
	}
}

// Run executes one snapshot cycle with the optional note message.
//
// The pull is required: a failure aborts the run with no recovery attempt.
// Commit and push follow the same conditional policy as the counter
// snapshotter and are skipped silently when nothing is staged.
func (s *TimestampSnapshotter) Run(ctx context.Context, message string) error {
	s.logger.InfoToUser("Pulling latest changes from Git...")
	if err := s.client.Pull(ctx); err != nil {
		return err
	}

	if message != "" {
		if err := s.writeNote(message); err != nil {
			return err
		}
	}

	timestamp := s.now().Format(timestampLayout)

	snapshotDir := s.resolve(s.config.LocalSnapshotDir)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	name := fmt.Sprintf("%s_snapshot_%s.zip", s.config.ProjectName, timestamp)
	dest := filepath.Join(snapshotDir, name)

	opts := archive.Options{
		ExcludeDirs:  s.config.ExcludeDirs,
		ExcludeFiles: s.config.ExcludeFiles,
	}
	if err := archive.Create(s.config.RepoPath, dest, opts); err != nil {
		return err
	}
	s.logger.Success("Snapshot saved to: %s", dest)

	if err := s.client.StageAll(ctx); err != nil {
		return err
	}

	staged, err := s.client.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		s.logger.InfoToUser("No staged changes. Skipping commit and push.")
		return nil
	}

	commitMsg := fmt.Sprintf("snapshot @ %s", timestamp)
	if message != "" {
		commitMsg = fmt.Sprintf("%s - %s", commitMsg, message)
	}

	if err := s.client.Commit(ctx, commitMsg); err != nil {
		return err
	}

	s.logger.InfoToUser("Pushing to remote...")
	if err := s.client.Push(ctx); err != nil {
		return err
	}

	s.logger.Success("Snapshot, pull, commit, and push complete.")
	return nil
}

// writeNote persists the free-text message to the configured note file.
func (s *TimestampSnapshotter) writeNote(message string) error {
	path := s.resolve(s.config.NoteFile)
	if err := os.WriteFile(path, []byte(message), 0644); err != nil {
		return fmt.Errorf("failed to write note file: %w", err)
	}
	s.logger.Info("Recorded note to %s", path)
	return nil
}

// resolve anchors a relative path at the repository root.
func (s *TimestampSnapshotter) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.config.RepoPath, path)
}
