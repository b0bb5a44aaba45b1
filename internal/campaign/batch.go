// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package campaign

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/campaignwatch/internal/logging"
)

// ScoreBatch scores campaigns concurrently, at most BatchConcurrency at a
// time. Results keep input order; a campaign without an ID is named
// campaign_<index>.
func (s *Scorer) ScoreBatch(ctx context.Context, campaigns []Campaign) []Result {
	start := time.Now()
	results := make([]Result, len(campaigns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.BatchConcurrency)
	for i := range campaigns {
		c := campaigns[i]
		if c.ID == "" {
			c.ID = fmt.Sprintf("campaign_%d", i)
		}
		g.Go(func() error {
			results[i] = s.ScoreCampaign(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	logging.Ctx(ctx).Info().
		Str("component", "campaign").
		Int("campaigns", len(campaigns)).
		Int("concurrency", s.config.BatchConcurrency).
		Dur("duration", time.Since(start)).
		Msg("Batch scoring completed")
	return results
}
