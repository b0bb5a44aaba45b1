// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

/*
Package notify delivers campaign alerts to external channels.

Sink implements campaign.Sink. For every scored result it forwards each alert
at or above the configured severity to its notifiers:

  - WebhookNotifier posts a JSON envelope to a generic endpoint, with optional
    custom headers for authentication
  - DiscordNotifier posts a Discord embed coloured by severity

Each notifier is rate limited with golang.org/x/time/rate. A failing
notifier does not stop the others; Record joins their errors so the sink
fan-out can log them.

Usage:

	sink := notify.NewSink(campaign.SeverityHigh,
	    notify.NewWebhookNotifier(notify.WebhookConfig{URL: hookURL}),
	    notify.NewDiscordNotifier(notify.DiscordConfig{URL: discordURL}),
	)
	fanout.Add("notify", sink)
*/
package notify
