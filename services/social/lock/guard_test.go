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
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func testGuard(t *testing.T, timeout time.Duration) (*Guard, string) {
	t.Helper()
	recordPath := filepath.Join(t.TempDir(), "users.csv")
	return NewGuard(recordPath, Options{
		Timeout:       timeout,
		RetryInterval: 5 * time.Millisecond,
	}), recordPath
}

func TestGuard_AcquireRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("exclusive acquire and release", func(t *testing.T) {
		g, recordPath := testGuard(t, time.Second)

		if err := g.Acquire(ctx, Exclusive, "test"); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}

		// Lock info file appears while held.
		if _, err := os.Stat(recordPath + ".lock.info"); err != nil {
			t.Errorf("lock info file missing: %v", err)
		}
		holder := NewGuard(recordPath, Options{}).Holder()
		if holder == nil {
			t.Fatal("Holder() = nil while an exclusive lock is held")
		}
		if holder.PID != os.Getpid() || holder.Mode != "exclusive" {
			t.Errorf("Holder() = %+v, want this pid holding exclusive", holder)
		}

		if err := g.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if _, err := os.Stat(recordPath + ".lock.info"); !os.IsNotExist(err) {
			t.Errorf("lock info file not removed after release")
		}
	})

	t.Run("release without acquire", func(t *testing.T) {
		g, _ := testGuard(t, time.Second)
		if err := g.Release(); !errors.Is(err, ErrLockNotHeld) {
			t.Errorf("Release error = %v, want ErrLockNotHeld", err)
		}
	})

	t.Run("double acquire on one guard fails", func(t *testing.T) {
		g, _ := testGuard(t, time.Second)
		if err := g.Acquire(ctx, Shared, "first"); err != nil {
			t.Fatal(err)
		}
		defer g.Release()

		if err := g.Acquire(ctx, Shared, "second"); err == nil {
			t.Error("second Acquire on held guard succeeded")
		}
	})

	t.Run("reacquire after release", func(t *testing.T) {
		g, _ := testGuard(t, time.Second)
		for i := 0; i < 3; i++ {
			if err := g.Acquire(ctx, Exclusive, "cycle"); err != nil {
				t.Fatalf("cycle %d Acquire failed: %v", i, err)
			}
			if err := g.Release(); err != nil {
				t.Fatalf("cycle %d Release failed: %v", i, err)
			}
		}
	})
}

func TestGuard_Contention(t *testing.T) {
	ctx := context.Background()

	t.Run("exclusive blocks exclusive until timeout", func(t *testing.T) {
		holder, recordPath := testGuard(t, time.Second)
		if err := holder.Acquire(ctx, Exclusive, "holding"); err != nil {
			t.Fatal(err)
		}
		defer holder.Release()

		waiter := NewGuard(recordPath, Options{
			Timeout:       50 * time.Millisecond,
			RetryInterval: 5 * time.Millisecond,
		})
		start := time.Now()
		err := waiter.Acquire(ctx, Exclusive, "waiting")
		if !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("Acquire error = %v, want ErrLockTimeout", err)
		}
		if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
			t.Errorf("gave up after %v, before the bounded wait expired", elapsed)
		}
	})

	t.Run("exclusive blocks shared", func(t *testing.T) {
		holder, recordPath := testGuard(t, time.Second)
		if err := holder.Acquire(ctx, Exclusive, "holding"); err != nil {
			t.Fatal(err)
		}
		defer holder.Release()

		reader := NewGuard(recordPath, Options{
			Timeout:       30 * time.Millisecond,
			RetryInterval: 5 * time.Millisecond,
		})
		if err := reader.Acquire(ctx, Shared, "reading"); !errors.Is(err, ErrLockTimeout) {
			t.Errorf("shared Acquire error = %v, want ErrLockTimeout", err)
		}
	})

	t.Run("shared locks coexist", func(t *testing.T) {
		first, recordPath := testGuard(t, time.Second)
		if err := first.Acquire(ctx, Shared, "reader one"); err != nil {
			t.Fatal(err)
		}
		defer first.Release()

		second := NewGuard(recordPath, Options{
			Timeout:       time.Second,
			RetryInterval: 5 * time.Millisecond,
		})
		if err := second.Acquire(ctx, Shared, "reader two"); err != nil {
			t.Errorf("concurrent shared Acquire failed: %v", err)
		} else {
			second.Release()
		}
	})

	t.Run("waiter succeeds once holder releases", func(t *testing.T) {
		holder, recordPath := testGuard(t, time.Second)
		if err := holder.Acquire(ctx, Exclusive, "holding briefly"); err != nil {
			t.Fatal(err)
		}

		waiter := NewGuard(recordPath, Options{
			Timeout:       2 * time.Second,
			RetryInterval: 5 * time.Millisecond,
		})
		done := make(chan error, 1)
		go func() {
			done <- waiter.Acquire(ctx, Exclusive, "waiting")
		}()

		time.Sleep(30 * time.Millisecond)
		if err := holder.Release(); err != nil {
			t.Fatal(err)
		}

		if err := <-done; err != nil {
			t.Fatalf("waiter did not acquire after release: %v", err)
		}
		waiter.Release()
	})

	t.Run("cancelled context stops the wait", func(t *testing.T) {
		holder, recordPath := testGuard(t, time.Second)
		if err := holder.Acquire(ctx, Exclusive, "holding"); err != nil {
			t.Fatal(err)
		}
		defer holder.Release()

		cancelCtx, cancel := context.WithCancel(ctx)
		waiter := NewGuard(recordPath, Options{
			Timeout:       10 * time.Second,
			RetryInterval: 5 * time.Millisecond,
		})

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		err := waiter.Acquire(cancelCtx, Exclusive, "waiting")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Acquire error = %v, want context.Canceled", err)
		}
	})
}

func TestGuard_TimeoutNamesHolder(t *testing.T) {
	ctx := context.Background()
	holder, recordPath := testGuard(t, time.Second)
	if err := holder.Acquire(ctx, Exclusive, "holding"); err != nil {
		t.Fatal(err)
	}
	defer holder.Release()

	waiter := NewGuard(recordPath, Options{
		Timeout:       30 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
	})
	err := waiter.Acquire(ctx, Exclusive, "waiting")
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("error = %v, want ErrLockTimeout", err)
	}
	// The holder wrote its pid into the info file; the timeout error
	// should surface it.
	if got := err.Error(); !strings.Contains(got, strconv.Itoa(os.Getpid())) {
		t.Errorf("timeout error %q does not name the holder pid %d", got, os.Getpid())
	}
}
