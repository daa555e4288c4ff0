// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build unix

package lock

import (
	"os"
	"syscall"
)

// UnixFileLocker implements FileLocker using syscall.Flock.
//
// # Description
//
// Uses advisory file locking via flock(2). Locks are:
// - Scoped to the open file description
// - Released on file close or process exit
// - Non-blocking when LOCK_NB is specified
//
// Process exit releasing the lock is what makes a killed invocation
// harmless: the next invocation acquires the lock and sees the last
// fully committed record.
type UnixFileLocker struct{}

// Lock acquires an exclusive lock using flock(2).
//
// Uses LOCK_EX|LOCK_NB. Returns ErrFileLocked without blocking if any
// other process holds the lock.
func (l *UnixFileLocker) Lock(f *os.File) error {
	return flockNB(f, syscall.LOCK_EX)
}

// LockShared acquires a shared lock using flock(2).
//
// Uses LOCK_SH|LOCK_NB. Multiple readers may hold the lock at once;
// returns ErrFileLocked if an exclusive holder exists.
func (l *UnixFileLocker) LockShared(f *os.File) error {
	return flockNB(f, syscall.LOCK_SH)
}

// Unlock releases the lock using LOCK_UN. Safe to call even if not
// locked.
func (l *UnixFileLocker) Unlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

func flockNB(f *os.File, how int) error {
	err := syscall.Flock(int(f.Fd()), how|syscall.LOCK_NB)
	if err != nil {
		if err == syscall.EWOULDBLOCK {
			return ErrFileLocked
		}
		return err
	}
	return nil
}

// isProcessAlive checks if a process exists using kill -0.
//
// Sends signal 0 to the process, which checks existence without
// affecting it. Returns false if the process doesn't exist or we lack
// permission.
func isProcessAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 doesn't actually send anything, just checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// newPlatformLocker returns a Unix-specific file locker.
func newPlatformLocker() FileLocker {
	return &UnixFileLocker{}
}
