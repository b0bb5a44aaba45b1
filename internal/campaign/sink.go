// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// Sink receives scored results for persistence or delivery.
type Sink interface {
	Record(ctx context.Context, res Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, res Result) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, res Result) error { return f(ctx, res) }

type namedSink struct {
	name string
	sink Sink
}

// Fanout delivers each result to every registered sink in registration
// order. A failing sink does not stop the others.
type Fanout struct {
	sinks []namedSink
}

// NewFanout returns an empty fan-out.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a sink under name. Nil sinks are ignored.
func (f *Fanout) Add(name string, s Sink) *Fanout {
	if s != nil {
		f.sinks = append(f.sinks, namedSink{name: name, sink: s})
	}
	return f
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

// Record delivers res to every sink and joins their errors. Each failure is
// logged and counted.
func (f *Fanout) Record(ctx context.Context, res Result) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.sink.Record(ctx, res); err != nil {
			metrics.RecordCollaboratorFailure("sink_" + s.name)
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("component", "campaign").
				Str("sink", s.name).
				Str("campaign_id", res.CampaignID).
				Msg("Result delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
