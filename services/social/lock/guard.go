// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Guard timing defaults.
const (
	// DefaultTimeout bounds the wait for a contended lock. Lock
	// acquisition never blocks indefinitely.
	DefaultTimeout = 5 * time.Second

	// DefaultRetryInterval is the pause between non-blocking lock
	// attempts while waiting.
	DefaultRetryInterval = 25 * time.Millisecond
)

// Mode selects the lock strength.
type Mode int

const (
	// Shared allows concurrent readers. A reader must not observe the
	// record mid-write; the rename-based commit already guarantees
	// that, so the shared lock exists to keep readers off a record
	// whose directory entry is being swapped on filesystems without
	// atomic rename visibility.
	Shared Mode = iota

	// Exclusive serializes mutating invocations. Exactly one holder.
	Exclusive
)

func (m Mode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// LockInfo is the holder metadata written next to the lock file while
// an exclusive lock is held. Purely informational: correctness comes
// from the advisory lock, the info file exists for debugging and for
// naming the holder in timeout errors.
type LockInfo struct {
	RecordPath string    `json:"record_path"`
	PID        int       `json:"pid"`
	SessionID  string    `json:"session_id"`
	Mode       string    `json:"mode"`
	AcquiredAt time.Time `json:"acquired_at"`
	Reason     string    `json:"reason"`
}

// Options configures a Guard.
type Options struct {
	// Timeout bounds lock acquisition. Zero means DefaultTimeout.
	Timeout time.Duration

	// RetryInterval is the pause between attempts. Zero means
	// DefaultRetryInterval.
	RetryInterval time.Duration

	// SessionID identifies this invocation in lock info files.
	// Empty means a fresh UUID.
	SessionID string
}

// Guard serializes access to one durable record path.
//
// # Description
//
// The guard locks a sidecar file (<record>.lock) rather than the
// record: commits replace the record by rename, and an advisory lock
// follows the inode, not the name. The sidecar is created once and
// never renamed, so its lock is meaningful across commits.
//
// # Thread Safety
//
// A Guard belongs to one invocation. Acquire/Release must not be
// called concurrently on the same Guard.
type Guard struct {
	recordPath string
	lockPath   string
	infoPath   string
	opts       Options
	locker     FileLocker

	f    *os.File
	mode Mode
	held bool
}

// NewGuard creates a guard for the given durable record path.
func NewGuard(recordPath string, opts Options) *Guard {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	lockPath := recordPath + ".lock"
	return &Guard{
		recordPath: recordPath,
		lockPath:   lockPath,
		infoPath:   lockPath + ".info",
		opts:       opts,
		locker:     newFileLocker(),
	}
}

// Acquire takes the lock in the requested mode, waiting up to the
// configured timeout.
//
// # Description
//
// Repeats non-blocking attempts on a fixed interval until the lock is
// granted, the context is cancelled, or the timeout expires. Timeout
// yields an error wrapping ErrLockTimeout, naming the current holder
// when its info file is readable.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - mode: Shared for read-only commands, Exclusive for mutations.
//   - reason: Human-readable purpose recorded in the lock info file.
//
// # Outputs
//
//   - error: nil on success; ErrLockTimeout (wrapped) on bounded-wait
//     expiry; context error on cancellation.
func (g *Guard) Acquire(ctx context.Context, mode Mode, reason string) error {
	if g.held {
		return fmt.Errorf("guard already holds %s lock on %s", g.mode, g.recordPath)
	}

	if err := os.MkdirAll(filepath.Dir(g.lockPath), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	f, err := os.OpenFile(g.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("opening lock file %s: %w", g.lockPath, err)
	}

	deadline := time.Now().Add(g.opts.Timeout)
	for {
		if mode == Exclusive {
			err = g.locker.Lock(f)
		} else {
			err = g.locker.LockShared(f)
		}
		if err == nil {
			break
		}
		if err != ErrFileLocked {
			f.Close()
			return fmt.Errorf("acquiring %s lock on %s: %w", mode, g.lockPath, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			if holder := g.readHolder(); holder != nil {
				return fmt.Errorf("%w: held by pid %d (session %s) since %s",
					ErrLockTimeout, holder.PID, holder.SessionID,
					holder.AcquiredAt.Format(time.RFC3339))
			}
			return fmt.Errorf("%w: %s", ErrLockTimeout, g.recordPath)
		}

		select {
		case <-ctx.Done():
			f.Close()
			return fmt.Errorf("waiting for %s lock: %w", mode, ctx.Err())
		case <-time.After(g.opts.RetryInterval):
		}
	}

	g.f = f
	g.mode = mode
	g.held = true

	if mode == Exclusive {
		g.writeHolder(reason)
	}

	slog.Debug("acquired record lock",
		slog.String("path", g.recordPath),
		slog.String("mode", mode.String()),
		slog.String("session", g.opts.SessionID))
	return nil
}

// Release drops the lock. Returns ErrLockNotHeld if the guard does not
// hold one.
func (g *Guard) Release() error {
	if !g.held {
		return ErrLockNotHeld
	}

	if g.mode == Exclusive {
		if err := os.Remove(g.infoPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove lock info file",
				slog.String("path", g.infoPath),
				slog.String("error", err.Error()))
		}
	}
	if err := g.locker.Unlock(g.f); err != nil {
		slog.Warn("failed to unlock record",
			slog.String("path", g.lockPath),
			slog.String("error", err.Error()))
	}
	err := g.f.Close()
	g.f = nil
	g.held = false

	slog.Debug("released record lock",
		slog.String("path", g.recordPath),
		slog.String("mode", g.mode.String()))
	return err
}

// Holder returns the current exclusive holder's metadata if an info
// file from a live process exists. Nil means unlocked, a shared-only
// lock, or a stale info file from a dead pid.
func (g *Guard) Holder() *LockInfo {
	info := g.readHolder()
	if info == nil || !IsProcessAlive(info.PID) {
		return nil
	}
	return info
}

// writeHolder records this process as the exclusive holder. Failures
// are logged, not fatal: the advisory lock alone carries correctness.
func (g *Guard) writeHolder(reason string) {
	info := LockInfo{
		RecordPath: g.recordPath,
		PID:        os.Getpid(),
		SessionID:  g.opts.SessionID,
		Mode:       g.mode.String(),
		AcquiredAt: time.Now(),
		Reason:     reason,
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err == nil {
		err = os.WriteFile(g.infoPath, data, 0o644)
	}
	if err != nil {
		slog.Warn("failed to write lock info file",
			slog.String("path", g.infoPath),
			slog.String("error", err.Error()))
	}
}

// readHolder loads the info file, nil on any failure.
func (g *Guard) readHolder() *LockInfo {
	data, err := os.ReadFile(g.infoPath)
	if err != nil {
		return nil
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}
