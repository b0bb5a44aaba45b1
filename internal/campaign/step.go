// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// stepLog collects failed pipeline steps of one scoring call.
type stepLog struct {
	log    *zerolog.Logger
	mu     sync.Mutex
	failed map[string]struct{}
}

func newStepLog(log *zerolog.Logger) *stepLog {
	return &stepLog{log: log, failed: make(map[string]struct{})}
}

func (s *stepLog) record(step string, err error) {
	s.mu.Lock()
	s.failed[step] = struct{}{}
	s.mu.Unlock()
	metrics.RecordCollaboratorFailure(step)
	s.log.Warn().
		Str("component", "campaign").
		Str("step", step).
		Err(err).
		Msg("scoring step failed, component defaults to zero")
}

// merge adds a detector's own degraded sub-steps as "step.sub".
func (s *stepLog) merge(step string, sub []string) {
	if len(sub) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range sub {
		s.failed[step+"."+name] = struct{}{}
	}
}

func (s *stepLog) degraded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.failed))
	for name := range s.failed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// guard runs fn and converts a panic into an error.
func guard[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
