// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// ErrNilScorer is returned by NewScoringHandler without a scorer.
var ErrNilScorer = errors.New("scorer is required")

// CampaignScorer scores one campaign.
type CampaignScorer interface {
	ScoreCampaign(ctx context.Context, c campaign.Campaign) campaign.Result
}

// HandlerStats is a snapshot of handler counters.
type HandlerStats struct {
	Received        int64     `json:"received"`
	Scored          int64     `json:"scored"`
	Poison          int64     `json:"poison"`
	DeliveryErrors  int64     `json:"delivery_errors"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// ScoringHandler scores campaigns consumed from the requests topic and
// hands results to a sink.
//
// Malformed requests are acked and logged; retrying cannot fix them. Sink
// failures are logged and never cause redelivery, so a campaign is scored
// once per message.
type ScoringHandler struct {
	scorer CampaignScorer
	sink   campaign.Sink

	received       atomic.Int64
	scored         atomic.Int64
	poison         atomic.Int64
	deliveryErrors atomic.Int64
	lastMessage    atomic.Int64
}

// NewScoringHandler creates a handler. sink may be nil.
func NewScoringHandler(scorer CampaignScorer, sink campaign.Sink) (*ScoringHandler, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	return &ScoringHandler{scorer: scorer, sink: sink}, nil
}

// Handle processes one request message. It is a message.NoPublishHandlerFunc.
func (h *ScoringHandler) Handle(msg *message.Message) error {
	h.received.Add(1)
	h.lastMessage.Store(time.Now().UnixNano())

	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)

	req, err := DecodeScoreRequest(msg.Payload)
	if err != nil {
		h.poison.Add(1)
		metrics.RecordEventProcessed("poison")
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("Discarding malformed scoring request")
		return nil
	}
	if req.ID == "" {
		req.ID = msg.UUID
	}
	ctx = logging.ContextWithCampaignID(ctx, req.ID)

	res := h.scorer.ScoreCampaign(ctx, req.Campaign())
	h.scored.Add(1)
	metrics.RecordEventProcessed("scored")

	if h.sink != nil {
		if err := h.sink.Record(ctx, res); err != nil {
			h.deliveryErrors.Add(1)
			metrics.RecordEventProcessed("error")
			logging.Ctx(ctx).Warn().Err(err).Msg("Scored campaign delivery incomplete")
		}
	}

	logging.Ctx(ctx).Debug().
		Float64("score", res.Score).
		Str("severity", string(res.Severity)).
		Int("alerts", len(res.Alerts)).
		Msg("Scored campaign from event")
	return nil
}

// Stats returns the current counters.
func (h *ScoringHandler) Stats() HandlerStats {
	s := HandlerStats{
		Received:       h.received.Load(),
		Scored:         h.scored.Load(),
		Poison:         h.poison.Load(),
		DeliveryErrors: h.deliveryErrors.Load(),
	}
	if ns := h.lastMessage.Load(); ns > 0 {
		s.LastMessageTime = time.Unix(0, ns)
	}
	return s
}
