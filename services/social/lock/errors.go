// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lock provides the advisory locking primitives that serialize
// command invocations against a shared durable record.
//
// Each invocation that mutates the record acquires an exclusive
// advisory lock on a sidecar lock file before reading, and holds it
// through the atomic replace of the record. The lock file, not the
// record itself, carries the lock: the record is swapped by rename, so
// its inode cannot hold a lock across a commit.
//
// # Thread Safety
//
// A Guard belongs to a single invocation and is not safe for
// concurrent use. Distinct Guards on the same path are safe and are
// exactly the contended case the package exists for.
package lock

import "errors"

// Sentinel errors for lock operations.
var (
	// ErrFileLocked is returned by a single non-blocking attempt when
	// another process holds a conflicting lock.
	ErrFileLocked = errors.New("record is locked by another process")

	// ErrLockTimeout is returned when the bounded wait for a lock
	// expires before the lock could be acquired.
	ErrLockTimeout = errors.New("timed out waiting for record lock")

	// ErrLockNotHeld is returned when releasing a lock that was never
	// acquired or was already released.
	ErrLockNotHeld = errors.New("lock not held")
)
