// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store implements the load-mutate-commit transaction over the
// durable record.
//
// Every command invocation goes through this package: reads load a
// snapshot under a shared lock, mutations run under an exclusive lock
// and commit by atomic replace (write temp, fsync, rename, fsync
// directory). A concurrent reader therefore sees either the fully-old
// or fully-new record, never a torn intermediate, and a crash before
// the rename leaves the previous record intact.
//
// Two mutating invocations are strictly serialized by the lock; there
// is no optimistic merging. Because each invocation loads, mutates and
// commits the whole record, the second committer rewrites the first
// committer's state as it saw it after its own load - last committer
// wins. That is the accepted consequence of the no-shared-server
// design: updates are never torn, but an invocation that raced another
// writer operates on the post-commit state of whichever writer got the
// lock first, never on a merge.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gravitymesh/socialgraph/services/social/graph"
	"github.com/gravitymesh/socialgraph/services/social/lock"
	"github.com/gravitymesh/socialgraph/services/social/record"
)

// ErrRecordCorrupt is returned when the durable record exists but
// cannot be read for reasons other than absence (permissions, the path
// is a directory, I/O failure). Distinct from the codec's tolerant
// row-skipping: this is the unrecoverable case.
var ErrRecordCorrupt = errors.New("durable record unreadable")

// Store owns one durable record path and its concurrency guard.
type Store struct {
	path  string
	guard *lock.Guard
}

// New creates a store for the given record path.
func New(path string, opts lock.Options) *Store {
	return &Store{
		path:  path,
		guard: lock.NewGuard(path, opts),
	}
}

// Path returns the durable record path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the record under a shared lock and reconstructs the
// graph.
//
// A missing record is an empty graph, not an error. An unreadable
// record yields an error wrapping ErrRecordCorrupt. Lock contention
// beyond the configured timeout yields lock.ErrLockTimeout.
func (s *Store) Load(ctx context.Context) (*graph.Graph, error) {
	if err := s.guard.Acquire(ctx, lock.Shared, "load"); err != nil {
		return nil, err
	}
	defer s.guard.Release()

	return s.read()
}

// Update runs one mutating command as a transaction.
//
// # Description
//
// Acquires the exclusive lock, loads the record, applies fn to the
// freshly loaded graph, and commits the encoded result by atomic
// replace. If fn returns an error nothing is written: the record on
// disk is exactly what it was before the call.
//
// # Inputs
//
//   - ctx: Context for cancellation during lock wait.
//   - reason: Recorded in the lock info file for visibility.
//   - fn: The mutation. Receives an exclusively-held graph; must not
//     retain it past the call.
//
// # Outputs
//
//   - error: fn's error verbatim, lock.ErrLockTimeout on contention,
//     ErrRecordCorrupt (wrapped) on unreadable record, or a commit
//     I/O error.
func (s *Store) Update(ctx context.Context, reason string, fn func(*graph.Graph) error) error {
	if err := s.guard.Acquire(ctx, lock.Exclusive, reason); err != nil {
		return err
	}
	defer s.guard.Release()

	g, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(g); err != nil {
		return err
	}

	return s.commit(g)
}

// read loads and decodes the record. Caller holds the lock.
func (s *Store) read() (*graph.Graph, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("record not found, starting from empty graph",
				slog.String("path", s.path))
			return graph.New(), nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRecordCorrupt, s.path, err)
	}
	return record.Decode(data), nil
}

// commit atomically replaces the record with the encoded graph.
// Caller holds the exclusive lock.
func (s *Store) commit(g *graph.Graph) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}

	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(record.Encode(g)); err != nil {
		f.Close()
		return fmt.Errorf("writing temp record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing temp record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp record: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	cleanupTmp = false // Rename succeeded, don't cleanup

	// Sync directory for full durability on all filesystems
	if err := syncDir(filepath.Dir(s.path)); err != nil {
		// Log but don't fail - the record was committed
		slog.Warn("directory sync failed (record still committed)",
			slog.String("error", err.Error()))
	}

	slog.Debug("committed record",
		slog.String("path", s.path),
		slog.Int("users", g.UserCount()),
		slog.Int("edges", g.EdgeCount()))
	return nil
}

// syncDir fsyncs a directory so the rename is durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
