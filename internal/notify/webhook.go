// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package notify

import (
	"context"
	"maps"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/campaignwatch/internal/campaign"
)

// WebhookConfig configures the generic webhook notifier.
type WebhookConfig struct {
	URL       string
	Headers   map[string]string // e.g. Authorization
	RateLimit time.Duration
	Timeout   time.Duration
}

// WebhookPayload is the JSON body posted for each alert.
type WebhookPayload struct {
	EventType     string            `json:"event_type"` // campaign_alert
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	CampaignID    string            `json:"campaign_id,omitempty"`
	CampaignScore float64           `json:"campaign_score"`
	Severity      campaign.Severity `json:"campaign_severity"`
	Alert         *campaign.Alert   `json:"alert"`
}

// WebhookNotifier posts alerts to a generic HTTP endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewWebhookNotifier returns a notifier for cfg.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		url:     cfg.URL,
		headers: maps.Clone(cfg.Headers),
		client:  newClient(cfg.Timeout),
		limiter: newLimiter(cfg.RateLimit),
		now:     time.Now,
	}
}

// Name returns the notifier name.
func (n *WebhookNotifier) Name() string { return "webhook" }

// Send posts one alert.
func (n *WebhookNotifier) Send(ctx context.Context, res *campaign.Result, alert *campaign.Alert) error {
	payload := WebhookPayload{
		EventType:     "campaign_alert",
		Source:        "campaignwatch",
		Timestamp:     n.now().UTC(),
		CampaignID:    res.CampaignID,
		CampaignScore: res.Score,
		Severity:      res.Severity,
		Alert:         alert,
	}
	return postJSON(ctx, n.client, n.limiter, n.url, n.headers, payload)
}
