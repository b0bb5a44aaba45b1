// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package detection

import (
	"fmt"
	"sync"

	"github.com/tomtom215/campaignwatch/internal/logging"
)

// stepLog collects the names of sub-analyses that failed during one call.
type stepLog struct {
	component string
	mu        sync.Mutex
	failed    []string
}

func newStepLog(component string) *stepLog {
	return &stepLog{component: component}
}

func (s *stepLog) degraded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failed) == 0 {
		return nil
	}
	out := make([]string, len(s.failed))
	copy(out, s.failed)
	return out
}

func (s *stepLog) record(step string, err error) {
	s.mu.Lock()
	s.failed = append(s.failed, step)
	s.mu.Unlock()
	logging.Warn().
		Str("component", s.component).
		Str("step", step).
		Err(err).
		Msg("detection step failed, using neutral result")
}

// runStep executes fn inside an error boundary. A panic is converted to an
// error, recorded on log, and fallback is returned in place of the result.
func runStep[T any](log *stepLog, step string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.record(step, fmt.Errorf("panic: %v", r))
			out = fallback
		}
	}()
	return fn()
}
