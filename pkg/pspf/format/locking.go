package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	psperrors "github.com/provide-io/pspf/pkg/pspf/errors"
)

// ExtractionLock serializes extraction into one destination directory across
// processes. It is a PID lock file: creation with O_EXCL is the acquisition,
// and a lock whose owning process is gone is stale and reclaimed.
type ExtractionLock struct {
	path   string
	logger hclog.Logger
	held   bool
}

// NewExtractionLock returns a lock guarding destDir. The lock file lives
// inside destDir.
func NewExtractionLock(destDir string, logger hclog.Logger) *ExtractionLock {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExtractionLock{
		path:   filepath.Join(destDir, LockFileName),
		logger: logger,
	}
}

// isProcessRunning checks whether a PID names a live process. Signal 0
// probes existence without delivering anything.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// TryAcquire attempts a single non-blocking acquisition. Stale locks from
// dead processes are removed first.
func (l *ExtractionLock) TryAcquire() (bool, error) {
	if l.held {
		return true, nil
	}

	if data, err := os.ReadFile(l.path); err == nil {
		contents := strings.TrimSpace(string(data))
		if oldPid, err := strconv.Atoi(contents); err == nil {
			if isProcessRunning(oldPid) {
				l.logger.Debug("🔒 lock held by active process", "pid", oldPid)
				return false, nil
			}
			l.logger.Info("🧹 removing stale lock from dead process", "pid", oldPid)
		} else {
			l.logger.Info("🧹 removing invalid lock file")
		}
		os.Remove(l.path)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		os.Remove(l.path)
		return false, err
	}

	l.logger.Debug("🔒 acquired extraction lock", "path", l.path)
	l.held = true
	return true, nil
}

// Acquire blocks until the lock is held or timeout elapses, polling every
// LockPollMillis. Timeout surfaces as ErrLockTimeout, a distinct catchable
// failure; extraction must not have begun.
func (l *ExtractionLock) Acquire(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		ok, err := l.TryAcquire()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s after %s", psperrors.ErrLockTimeout, l.path, timeout)
		}
		time.Sleep(LockPollMillis * time.Millisecond)
	}
}

// Release drops the lock. No-op when not held.
func (l *ExtractionLock) Release() {
	if !l.held {
		return
	}
	if err := os.Remove(l.path); err != nil {
		l.logger.Debug("⚠️ failed to remove lock file", "error", err)
	} else {
		l.logger.Debug("🔓 released extraction lock", "path", l.path)
	}
	l.held = false
}
