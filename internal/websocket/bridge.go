// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package websocket

import (
	"context"
	"fmt"

	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

// MessageSource delivers raw payloads published on a topic.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}

// Bridge forwards alerts published on the message bus to the hub, so every
// instance's dashboards see alerts raised anywhere in the deployment.
type Bridge struct {
	hub    *Hub
	source MessageSource
	topic  string
}

// NewBridge creates a bridge from topic on source to hub.
func NewBridge(hub *Hub, source MessageSource, topic string) *Bridge {
	return &Bridge{hub: hub, source: source, topic: topic}
}

// Serve subscribes and forwards until ctx is canceled or the subscription
// closes. It implements suture.Service.
func (b *Bridge) Serve(ctx context.Context) error {
	messages, err := b.source.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.topic, err)
	}
	logging.Info().Str("component", "websocket-bridge").Str("topic", b.topic).Msg("Alert bridge started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", b.topic)
			}
			if err := b.hub.BroadcastRawAlert(data); err != nil {
				metrics.WSErrors.WithLabelValues("invalid_alert").Inc()
				logging.Warn().Err(err).Str("topic", b.topic).Msg("failed to decode alert from message bus")
			}
		}
	}
}

func (b *Bridge) String() string {
	return "websocket-bridge"
}
