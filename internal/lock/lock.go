package lock

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	snapkiterrors "github.com/amirpz/snapkit/internal/errors"
)

// Locker guards a filesystem path (a repository, or a state file such as
// the snapshot counter) against concurrent snapkit invocations. The lock
// file lives in the system temp directory and is named after a hash of the
// guarded path, so two processes locking the same path always contend on
// the same file.
type Locker struct {
	lockFile string
	lockFd   *os.File
	pid      int
	acquired bool
}

// New creates a Locker for the given target path.
func New(targetPath string) (*Locker, error) {
	if runtime.GOOS == "windows" {
		return nil, snapkiterrors.NewLockError("", 0,
			snapkiterrors.Wrap(snapkiterrors.ErrLockAcquisitionFailure,
				"snapkit currently only supports Unix-like operating systems (Linux, macOS, BSD)"))
	}

	pathHash := fmt.Sprintf("%x", sha256.Sum256([]byte(targetPath)))[:16]
	lockFile := filepath.Join(os.TempDir(), fmt.Sprintf("snapkit-%s.lock", pathHash))

	return &Locker{
		lockFile: lockFile,
		pid:      os.Getpid(),
		acquired: false,
	}, nil
}

// Acquire tries to acquire the lock without blocking.
func (l *Locker) Acquire() error {
	err := l.tryCreateLock()
	if err == nil {
		return nil
	} else if os.IsExist(err) {
		return l.tryAcquireExistingLock()
	}

	return err
}

// tryCreateLock attempts to create and lock a fresh lock file.
func (l *Locker) tryCreateLock() error {
	var err error

	// O_EXCL with O_CREATE ensures the file is created atomically
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		// Pass through the original error so os.IsExist() can detect it
		if os.IsExist(err) {
			return err
		}
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to create lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to acquire lock on newly created lock file"))
	}

	if err = l.writePidToLockFile(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return snapkiterrors.Wrap(err, fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// tryAcquireExistingLock acquires a lock on an existing lock file.
func (l *Locker) tryAcquireExistingLock() error {
	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_RDWR, 0666)
	if err != nil {
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to open existing lock file"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()

		// Older Unix systems report EWOULDBLOCK as a distinct code from
		// EAGAIN, so check both.
		if snapkiterrors.Is(err, syscall.EWOULDBLOCK) || snapkiterrors.Is(err, syscall.EAGAIN) {
			return l.handleBlockedLock()
		}

		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to acquire lock"))
	}

	if err = l.resetAndWritePid(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return snapkiterrors.Wrap(err, fmt.Sprintf("failed to reset/write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// handleBlockedLock inspects a lock held elsewhere and recovers it when the
// holding process no longer exists.
func (l *Locker) handleBlockedLock() error {
	otherPid, pidErr := l.readLockFilePid()
	if pidErr != nil {
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(pidErr, "another snapkit instance is running, but couldn't identify its PID"))
	}

	if isProcessRunning(otherPid) {
		return snapkiterrors.NewLockError(l.lockFile, otherPid, snapkiterrors.ErrAlreadyRunning)
	}

	return l.handleStaleLock(otherPid)
}

// acquireFlock gets an exclusive non-blocking lock.
func (l *Locker) acquireFlock() error {
	return syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

// resetAndWritePid clears the file and writes the current PID.
func (l *Locker) resetAndWritePid() error {
	if err := l.lockFd.Truncate(0); err != nil {
		return snapkiterrors.NewLockError(l.lockFile, l.pid,
			snapkiterrors.Wrap(err, "failed to truncate lock file"))
	}

	return l.writePidToLockFile()
}

// writePidToLockFile writes the owner PID to the lock file.
func (l *Locker) writePidToLockFile() error {
	if _, err := l.lockFd.WriteAt([]byte(strconv.Itoa(l.pid)), 0); err != nil {
		return snapkiterrors.NewLockError(l.lockFile, l.pid,
			snapkiterrors.Wrap(err, "failed to write PID to lock file"))
	}
	return nil
}

// closeFileDescriptor closes the lock file descriptor.
func (l *Locker) closeFileDescriptor() {
	if l.lockFd != nil {
		_ = l.lockFd.Close()
		l.lockFd = nil
	}
}

// isProcessRunning checks if a process exists using signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}

// handleStaleLock removes and recreates a lock abandoned by a dead process.
func (l *Locker) handleStaleLock(otherPid int) error {
	l.closeFileDescriptor()

	if err := os.Remove(l.lockFile); err != nil {
		return snapkiterrors.NewLockError(l.lockFile, otherPid,
			snapkiterrors.Wrap(err, fmt.Sprintf("found stale lock file from PID %d, but failed to remove it", otherPid)))
	}

	var err error
	l.lockFd, err = os.OpenFile(l.lockFile, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		if os.IsExist(err) {
			return snapkiterrors.NewLockError(l.lockFile, 0,
				snapkiterrors.Wrap(err, "another snapkit instance took the lock immediately after the stale lock was removed"))
		}
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to open lock file after removing stale lock"))
	}

	if err = l.acquireFlock(); err != nil {
		l.closeFileDescriptor()
		return snapkiterrors.NewLockError(l.lockFile, 0,
			snapkiterrors.Wrap(err, "failed to acquire lock even after removing stale lock"))
	}

	if err = l.writePidToLockFile(); err != nil {
		if releaseErr := l.Release(); releaseErr != nil {
			return snapkiterrors.Wrap(err, fmt.Sprintf("failed to write PID and failed to release lock: %v", releaseErr))
		}
		return err
	}

	l.acquired = true
	return nil
}

// readLockFilePid reads and parses the PID from the lock file.
func (l *Locker) readLockFilePid() (int, error) {
	data, err := os.ReadFile(l.lockFile)
	if err != nil {
		return 0, snapkiterrors.Wrap(err, "failed to read lock file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, snapkiterrors.Wrap(err, "invalid PID in lock file")
	}

	return pid, nil
}

// Release releases the lock if it was acquired.
func (l *Locker) Release() error {
	if l.lockFd == nil {
		return nil
	}

	var err error

	if flockErr := syscall.Flock(int(l.lockFd.Fd()), syscall.LOCK_UN); flockErr != nil {
		err = snapkiterrors.NewLockError(l.lockFile, l.pid,
			snapkiterrors.Wrap(flockErr, "failed to release lock"))
	}

	if closeErr := l.lockFd.Close(); closeErr != nil && err == nil {
		err = snapkiterrors.NewLockError(l.lockFile, l.pid,
			snapkiterrors.Wrap(closeErr, "failed to close lock file"))
	}

	l.lockFd = nil
	l.acquired = false

	// Best-effort cleanup of the lock file itself; a missing file is fine.
	if removeErr := os.Remove(l.lockFile); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = snapkiterrors.NewLockError(l.lockFile, l.pid,
			snapkiterrors.Wrap(removeErr, "failed to remove lock file"))
	}

	return err
}
