// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build windows

package lock

import (
	"os"
)

// WindowsFileLocker implements FileLocker for Windows.
//
// # Description
//
// Uses LockFileEx via golang.org/x/sys/windows for file locking.
// Currently a stub implementation - full implementation pending.
type WindowsFileLocker struct{}

// Lock acquires an exclusive lock using LockFileEx.
//
// TODO: Implement using golang.org/x/sys/windows.LockFileEx with
// LOCKFILE_EXCLUSIVE_LOCK|LOCKFILE_FAIL_IMMEDIATELY.
// Currently returns nil (no-op) for stub implementation.
func (l *WindowsFileLocker) Lock(f *os.File) error {
	return nil
}

// LockShared acquires a shared lock using LockFileEx.
//
// TODO: Implement using golang.org/x/sys/windows.LockFileEx with
// LOCKFILE_FAIL_IMMEDIATELY only.
func (l *WindowsFileLocker) LockShared(f *os.File) error {
	return nil
}

// Unlock releases the lock using UnlockFileEx.
//
// TODO: Implement using golang.org/x/sys/windows.UnlockFileEx.
func (l *WindowsFileLocker) Unlock(f *os.File) error {
	return nil
}

// isProcessAlive checks if a process exists using OpenProcess.
//
// TODO: Implement using golang.org/x/sys/windows.OpenProcess with
// PROCESS_QUERY_LIMITED_INFORMATION.
func isProcessAlive(pid int) bool {
	return false
}

// newPlatformLocker returns a Windows-specific file locker.
func newPlatformLocker() FileLocker {
	return &WindowsFileLocker{}
}
