// Package lock implements the single-writer lockfile protocol (spec.md
// §4.G): a JSON file recording {pid, timestamp, hostname}, acquired before
// a tick and released after, with staleness detection so a crashed run
// never wedges the daemon permanently.
//
// Grounded on the teacher's PID-stamped-file habits carried over from
// internal/statestore (no direct lock manager exists in the example pack),
// generalized with the liveness/staleness rules spec.md §4.G specifies.
package lock

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"
)

// Lockfile is the on-disk shape of the lock.
type Lockfile struct {
	PID       int       `json:"pid"`
	Timestamp time.Time `json:"timestamp"`
	Hostname  string    `json:"hostname"`
}

// Result describes what Acquire did, so the caller can log and decide
// whether to proceed with a tick.
type Result struct {
	Acquired bool
	Stolen   bool
	Reason   string
}

// Acquire implements the spec.md §4.G protocol:
//  1. no lockfile -> write ours.
//  2. lockfile present, unparsable -> steal.
//  3. lockfile's pid not alive -> steal.
//  4. lockfile's pid alive, age < timeout -> refuse (Acquired=false).
//  5. lockfile's pid alive, age >= timeout -> steal (assumed hung).
func Acquire(path string, timeout time.Duration, now time.Time) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := write(path, now); werr != nil {
				return Result{}, werr
			}
			return Result{Acquired: true, Reason: "no prior lockfile"}, nil
		}
		return Result{}, fmt.Errorf("lock: read: %w", err)
	}

	var existing Lockfile
	if err := json.Unmarshal(data, &existing); err != nil {
		slog.Warn("lock: existing lockfile unparsable, stealing", "path", path, "err", err)
		if werr := write(path, now); werr != nil {
			return Result{}, werr
		}
		return Result{Acquired: true, Stolen: true, Reason: "unparsable lockfile"}, nil
	}

	if !alive(existing.PID) {
		slog.Warn("lock: holder pid is not alive, stealing", "path", path, "pid", existing.PID)
		if werr := write(path, now); werr != nil {
			return Result{}, werr
		}
		return Result{Acquired: true, Stolen: true, Reason: "holder not alive"}, nil
	}

	age := now.Sub(existing.Timestamp)
	if age < timeout {
		return Result{Acquired: false, Reason: "live holder within timeout"}, nil
	}

	slog.Warn("lock: holder alive but lock is stale, stealing", "path", path, "pid", existing.PID, "age", age)
	if werr := write(path, now); werr != nil {
		return Result{}, werr
	}
	return Result{Acquired: true, Stolen: true, Reason: "stale lock"}, nil
}

// Release removes the lockfile only if it still names our own pid
// (spec.md §4.G step 3 / invariant F), so a steal that raced past us in
// flight is never undone.
func Release(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("lock: read for release: %w", err)
	}

	var existing Lockfile
	if err := json.Unmarshal(data, &existing); err != nil {
		return fmt.Errorf("lock: unparsable lockfile at release: %w", err)
	}

	if existing.PID != os.Getpid() {
		slog.Warn("lock: refusing to release, lockfile no longer names our pid", "path", path, "lockfilePid", existing.PID, "ourPid", os.Getpid())
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lock: remove: %w", err)
	}
	return nil
}

func write(path string, now time.Time) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	data, err := json.MarshalIndent(Lockfile{
		PID:       os.Getpid(),
		Timestamp: now,
		Hostname:  hostname,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("lock: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lock: write: %w", err)
	}
	return nil
}

// alive tests liveness with a no-op signal to pid (spec.md §4.G: "a no-op
// signal to the pid"); any error, including permission denial, is treated
// as dead per spec.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}
