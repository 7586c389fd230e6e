package lock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquire_NoLockfileWritesOurs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	now := time.Now()

	res, err := Acquire(path, 10*time.Minute, now)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !res.Acquired || res.Stolen {
		t.Fatalf("got %+v, want Acquired=true Stolen=false", res)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		t.Fatal(err)
	}
	if lf.PID != os.Getpid() {
		t.Errorf("PID = %d, want %d", lf.PID, os.Getpid())
	}
}

func TestAcquire_RefusesWhenLiveHolderWithinTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	now := time.Now()
	writeLockfile(t, path, Lockfile{PID: os.Getpid(), Timestamp: now, Hostname: "h"})

	res, err := Acquire(path, 10*time.Minute, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if res.Acquired {
		t.Fatalf("expected refusal while live holder is within timeout, got %+v", res)
	}
}

func TestAcquire_StealsWhenHolderDead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	now := time.Now()
	// pid 1 is conventionally init and alive, so pick a pid unlikely to
	// exist: a very large number not present on the test host.
	deadPID := 999999
	writeLockfile(t, path, Lockfile{PID: deadPID, Timestamp: now, Hostname: "h"})

	res, err := Acquire(path, 10*time.Minute, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !res.Acquired || !res.Stolen {
		t.Fatalf("expected a steal of the dead holder's lock, got %+v", res)
	}
}

func TestAcquire_StealsWhenStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	now := time.Now()
	writeLockfile(t, path, Lockfile{PID: os.Getpid(), Timestamp: now, Hostname: "h"})

	res, err := Acquire(path, 10*time.Minute, now.Add(11*time.Minute))
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !res.Acquired || !res.Stolen {
		t.Fatalf("expected a steal of the stale lock, got %+v", res)
	}
}

func TestAcquire_StealsWhenUnparsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Acquire(path, 10*time.Minute, time.Now())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !res.Acquired || !res.Stolen {
		t.Fatalf("expected a steal of the unparsable lock, got %+v", res)
	}
}

func TestRelease_OnlyOwningPIDReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	writeLockfile(t, path, Lockfile{PID: 999999, Timestamp: time.Now(), Hostname: "h"})

	if err := Release(path); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("lockfile naming a different pid should not have been removed")
	}
}

func TestRelease_RemovesOwnLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	writeLockfile(t, path, Lockfile{PID: os.Getpid(), Timestamp: time.Now(), Hostname: "h"})

	if err := Release(path); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected lockfile to be removed")
	}
}

func TestRelease_MissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.lock")
	if err := Release(path); err != nil {
		t.Fatalf("Release() on missing file error = %v", err)
	}
}

func writeLockfile(t *testing.T, path string, lf Lockfile) {
	t.Helper()
	data, err := json.Marshal(lf)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
