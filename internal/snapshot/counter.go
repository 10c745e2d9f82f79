package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirpz/snapkit/internal/archive"
	"github.com/amirpz/snapkit/internal/counter"
	"github.com/amirpz/snapkit/internal/git"
	"github.com/amirpz/snapkit/internal/logger"
)

// CounterConfig contains configuration for a counter-based snapshot run.
type CounterConfig struct {
	// RepoPath is the working tree being snapshotted.
	RepoPath string

	// ProjectName names the archives: {project}_{N}.zip.
	ProjectName string

	// SnapshotDir is the destination directory for archives; it lives
	// outside the working tree by default.
	SnapshotDir string

	// CounterFile is the path of the persisted counter.
	CounterFile string

	// Retain is how many archives the prune keeps.
	Retain int
}

// CounterSnapshotter performs one counter-based snapshot: bump the counter,
// commit and push when something is staged, archive the whole tree, prune.
type CounterSnapshotter struct {
	config  CounterConfig
	logger  logger.Logger
	client  git.Client
	counter *counter.File
	pruner  *archive.Pruner
}

// NewCounterSnapshotter creates a CounterSnapshotter with default dependencies.
func NewCounterSnapshotter(config CounterConfig, log logger.Logger) *CounterSnapshotter {
	return NewCounterSnapshotterWithDeps(
		config,
		log,
		git.NewCLIClient(config.RepoPath, log),
		counter.New(config.CounterFile),
		archive.NewPruner(config.SnapshotDir, config.ProjectName, config.Retain, log),
	)
}

// NewCounterSnapshotterWithDeps creates a CounterSnapshotter with custom
// dependencies, for tests.
func NewCounterSnapshotterWithDeps(
	config CounterConfig,
	log logger.Logger,
	client git.Client,
	ctr *counter.File,
	pruner *archive.Pruner,
) *CounterSnapshotter {
	return &CounterSnapshotter{
		config:  config,
		logger:  log,
		client:  client,
		counter: ctr,
		pruner:  pruner,
	}
}

// Run executes one snapshot cycle.
//
// The counter is bumped and persisted before any git work, matching the
// archive name to the run even when the commit is skipped. A clean stage
// skips commit and push without error; a failing stage check aborts the
// run. The archive and the prune happen either way.
func (s *CounterSnapshotter) Run(ctx context.Context) error {
	n, err := s.counter.Next()
	if err != nil {
		return err
	}
	s.logger.Info("Snapshot counter advanced to %d", n)

	if err := s.client.StageAll(ctx); err != nil {
		return err
	}

	staged, err := s.client.HasStagedChanges(ctx)
	if err != nil {
		return err
	}

	if staged {
		message := fmt.Sprintf("autopush: snapshot #%d", n)
		if err := s.client.Commit(ctx, message); err != nil {
			return err
		}
		if err := s.client.Push(ctx); err != nil {
			return err
		}
		s.logger.Success("Pushed commit: %q", message)
	} else {
		s.logger.InfoToUser("No staged changes. Skipping commit and push.")
	}

	if err := os.MkdirAll(s.config.SnapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	dest := filepath.Join(s.config.SnapshotDir, fmt.Sprintf("%s_%d.zip", s.config.ProjectName, n))
	if err := archive.Create(s.config.RepoPath, dest, archive.Options{}); err != nil {
		return err
	}
	s.logger.Success("Snapshot created: %s", dest)

	if _, err := s.pruner.Prune(); err != nil {
		return err
	}

	return nil
}
