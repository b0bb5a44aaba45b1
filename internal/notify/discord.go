// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/campaignwatch/internal/campaign"
)

// DiscordConfig configures the Discord notifier.
type DiscordConfig struct {
	URL       string
	RateLimit time.Duration // minimum gap between messages
	Timeout   time.Duration
}

// DiscordNotifier posts alerts to a Discord webhook as embeds.
type DiscordNotifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewDiscordNotifier returns a notifier for cfg.
func NewDiscordNotifier(cfg DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		url:     cfg.URL,
		client:  newClient(cfg.Timeout),
		limiter: newLimiter(cfg.RateLimit),
	}
}

// Name returns the notifier name.
func (n *DiscordNotifier) Name() string { return "discord" }

// Send posts one alert as an embed.
func (n *DiscordNotifier) Send(ctx context.Context, res *campaign.Result, alert *campaign.Alert) error {
	payload := discordWebhookPayload{Embeds: []discordEmbed{buildEmbed(res, alert)}}
	return postJSON(ctx, n.client, n.limiter, n.url, nil, payload)
}

func buildEmbed(res *campaign.Result, alert *campaign.Alert) discordEmbed {
	campaignID := res.CampaignID
	if campaignID == "" {
		campaignID = "unnamed"
	}
	fields := []discordEmbedField{
		{Name: "Campaign", Value: campaignID, Inline: true},
		{Name: "Severity", Value: string(alert.Severity), Inline: true},
		{Name: "Component", Value: alert.Component, Inline: true},
		{Name: "Score", Value: fmt.Sprintf("%.1f", alert.Score), Inline: true},
		{Name: "Campaign Score", Value: fmt.Sprintf("%.1f", res.Score), Inline: true},
	}
	if alert.Evidence != "" {
		fields = append(fields, discordEmbedField{Name: "Evidence", Value: alert.Evidence})
	}

	return discordEmbed{
		Title:       alert.Type,
		Description: alert.Message,
		Color:       severityColor(alert.Severity),
		Timestamp:   alert.CreatedAt.Format(time.RFC3339),
		Fields:      fields,
		Footer:      discordEmbedFooter{Text: "CampaignWatch"},
	}
}

func severityColor(s campaign.Severity) int {
	switch s {
	case campaign.SeverityCritical:
		return 0xFF0000 // Red
	case campaign.SeverityHigh:
		return 0xFFA500 // Orange
	case campaign.SeverityMedium:
		return 0xF1C40F // Yellow
	case campaign.SeverityLow:
		return 0x3498DB // Blue
	default:
		return 0x95A5A6 // Gray
	}
}

// Discord webhook structures
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}
