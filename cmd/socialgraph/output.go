// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"strconv"

	"github.com/gravitymesh/socialgraph/services/social/lock"
)

// Process exit codes. Scripts branch on these, so they are part of the
// external contract.
const (
	// ExitSuccess means the operation completed.
	ExitSuccess = 0

	// ExitError covers every domain failure: unknown user, duplicate
	// user, self-friendship, malformed input, unreadable record.
	ExitError = 1

	// ExitLockTimeout means the record lock could not be acquired
	// within the bounded wait. Retryable by the caller.
	ExitLockTimeout = 2
)

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, lock.ErrLockTimeout) {
		return ExitLockTimeout
	}
	return ExitError
}

// formatScore renders a PageRank score the way the record renders ids:
// fixed precision, locale-free.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 6, 64)
}
