package counter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amirpz/snapkit/internal/errors"
	"github.com/amirpz/snapkit/internal/lock"
)

// File is a persisted, monotonically increasing snapshot counter. The
// counter is a single non-negative integer stored as text; it starts at
// zero when the file does not exist and is never reset.
//
// Next performs the read-modify-write under an advisory lock and persists
// through a temp file plus rename, so concurrent invocations cannot lose
// an increment or observe a partially written value.
type File struct {
	Path string
}

// New creates a counter backed by the file at path.
func New(path string) *File {
	return &File{Path: path}
}

// Next increments the counter and returns the new value.
func (f *File) Next() (int, error) {
	locker, err := lock.New(f.Path)
	if err != nil {
		return 0, err
	}
	if err := locker.Acquire(); err != nil {
		if errors.Is(err, errors.ErrAlreadyRunning) {
			return 0, err
		}
		return 0, errors.Wrap(errors.ErrLockAcquisitionFailure, err.Error())
	}
	defer func() { _ = locker.Release() }()

	current, err := f.read()
	if err != nil {
		return 0, err
	}

	next := current + 1
	if err := f.write(next); err != nil {
		return 0, err
	}

	return next, nil
}

// Current returns the persisted value without modifying it. A missing file
// reads as zero.
func (f *File) Current() (int, error) {
	return f.read()
}

// read parses the counter file, treating a missing file as zero.
func (f *File) read() (int, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read counter file")
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Wrapf(err, "counter file %s holds a non-numeric value", f.Path)
	}
	if value < 0 {
		return 0, errors.Errorf("counter file %s holds a negative value: %d", f.Path, value)
	}

	return value, nil
}

// write persists value atomically: write to a temp file in the same
// directory, fsync, then rename over the target.
func (f *File) write(value int) error {
	dir := filepath.Dir(f.Path)

	tmp, err := os.CreateTemp(dir, ".snapshot_count-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary counter file")
	}
	tmpName := tmp.Name()

	cleanup := func(err error, msg string) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, msg)
	}

	if _, err := fmt.Fprintf(tmp, "%d", value); err != nil {
		return cleanup(err, "failed to write counter value")
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err, "failed to sync counter file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to close counter file")
	}

	if err := os.Rename(tmpName, f.Path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to replace counter file")
	}

	return nil
}
