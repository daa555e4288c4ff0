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
	"os"
)

// FileLocker abstracts platform-specific file locking operations.
//
// # Description
//
// Provides a unified interface for advisory file locking across Unix
// and Windows. Unix uses syscall.Flock, Windows uses LockFileEx.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use on different files.
// Locking the same file handle from multiple goroutines is undefined
// behavior.
type FileLocker interface {
	// Lock acquires an exclusive lock on the file.
	//
	// Non-blocking: returns ErrFileLocked immediately if any other
	// process holds a shared or exclusive lock.
	Lock(f *os.File) error

	// LockShared acquires a shared lock on the file.
	//
	// Non-blocking: returns ErrFileLocked immediately if another
	// process holds an exclusive lock. Multiple shared holders are
	// allowed.
	LockShared(f *os.File) error

	// Unlock releases the lock on the file.
	//
	// Safe to call even if not locked.
	Unlock(f *os.File) error
}

// IsProcessAlive checks if a process with the given PID is still
// running.
//
// # Description
//
// Used for stale lock-info detection. On Unix, uses signal 0.
// On Windows, uses OpenProcess.
func IsProcessAlive(pid int) bool {
	return isProcessAlive(pid)
}

// newFileLocker creates a platform-appropriate FileLocker.
func newFileLocker() FileLocker {
	return newPlatformLocker()
}
