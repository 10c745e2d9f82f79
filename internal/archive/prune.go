package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/logger"
)

// Pruner deletes stale counter-named archives from a snapshot directory,
// keeping only the Retain most recent ones. "Most recent" is decided by the
// counter embedded in the file name, parsed as an integer; proj_10.zip is
// newer than proj_9.zip even though it sorts earlier lexicographically.
type Pruner struct {
	// Dir is the directory holding the archives.
	Dir string

	// Project is the project name prefix of the archive pattern
	// {project}_<digits>.zip.
	Project string

	// Retain is how many archives survive a prune.
	Retain int

	// Logger receives per-file results.
	Logger logger.Logger

	// remove is swappable in tests to simulate deletion failures.
	remove func(string) error
}

// NewPruner creates a Pruner with the default deletion function.
func NewPruner(dir, project string, retain int, log logger.Logger) *Pruner {
	return &Pruner{
		Dir:     dir,
		Project: project,
		Retain:  retain,
		Logger:  log,
		remove:  os.Remove,
	}
}

// numbered pairs an archive path with its parsed counter value.
type numbered struct {
	n    int
	path string
}

// Prune scans Dir for archives matching the project pattern and deletes all
// but the Retain highest-numbered ones. A failure to delete one file is
// logged and does not stop the remaining deletions; only a failure to list
// the directory is an error. It returns the paths actually deleted.
func (p *Pruner) Prune() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list snapshot directory")
	}

	pattern := regexp.MustCompile(fmt.Sprintf(`^%s_(\d+)\.zip$`, regexp.QuoteMeta(p.Project)))

	var matches []numbered
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Digit group too large for int; leave the file alone.
			continue
		}
		matches = append(matches, numbered{n: n, path: filepath.Join(p.Dir, entry.Name())})
	}

	if len(matches) <= p.Retain {
		return nil, nil
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].n < matches[j].n })

	removeFn := p.remove
	if removeFn == nil {
		removeFn = os.Remove
	}

	var deleted []string
	for _, stale := range matches[:len(matches)-p.Retain] {
		if err := removeFn(stale.path); err != nil {
			p.Logger.Warning("Failed to delete old snapshot %s: %v", filepath.Base(stale.path), err)
			continue
		}
		p.Logger.InfoToUser("Deleted old snapshot: %s", filepath.Base(stale.path))
		deleted = append(deleted, stale.path)
	}

	return deleted, nil
}
