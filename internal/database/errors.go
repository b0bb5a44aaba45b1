// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package database

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a campaign or alert has no rows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSeverity is returned for a severity filter outside the
	// known levels.
	ErrInvalidSeverity = errors.New("invalid severity")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "cannot update a table that has been altered")
}

// withRetry runs fn, retrying DuckDB transaction conflicts with linear
// backoff.
func (db *DB) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= db.maxRetries; attempt++ {
		if err = fn(); !isTransactionConflict(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * db.retryDelay):
		}
	}
	return err
}
