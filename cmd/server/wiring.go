// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package main

import (
	"time"

	"github.com/tomtom215/campaignwatch/internal/api"
	"github.com/tomtom215/campaignwatch/internal/auth"
	"github.com/tomtom215/campaignwatch/internal/authz"
	"github.com/tomtom215/campaignwatch/internal/config"
	"github.com/tomtom215/campaignwatch/internal/eventprocessor"
	"github.com/tomtom215/campaignwatch/internal/notify"
	"github.com/tomtom215/campaignwatch/internal/store"
)

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.Timeout > 0 && cfg.Server.Timeout < 10*time.Second {
		return cfg.Server.Timeout
	}
	return 10 * time.Second
}

func authMode(cfg *config.Config) string {
	if cfg.AuthEnabled() {
		return auth.ModeJWT
	}
	return auth.ModeNone
}

func storeConfig(cfg *config.Config) store.Config {
	sc := store.DefaultConfig(cfg.Store.Path)
	sc.InMemory = cfg.Store.InMemory
	sc.TTL = cfg.Store.TTL
	return sc
}

// eventConfig maps the NATS settings onto the processor defaults.
func eventConfig(cfg *config.Config) eventprocessor.Config {
	n := cfg.NATS
	ec := eventprocessor.DefaultConfig(n.URL)
	ec.EmbeddedServer = n.EmbeddedServer
	ec.Server.StoreDir = n.StoreDir
	ec.Server.MaxMemory = n.MaxMemory
	ec.Server.MaxStore = n.MaxStore

	if n.StreamName != "" {
		ec.StreamName = n.StreamName
		ec.Subscriber.StreamName = n.StreamName
	}
	setIfNotEmpty(&ec.Topics.Requests, n.RequestTopic)
	setIfNotEmpty(&ec.Topics.Scored, n.ScoredTopic)
	setIfNotEmpty(&ec.Topics.Alerts, n.AlertsTopic)
	setIfNotEmpty(&ec.Topics.Poison, n.RouterPoisonQueueTopic)
	setIfNotEmpty(&ec.Subscriber.DurableName, n.DurableName)
	setIfNotEmpty(&ec.Subscriber.QueueGroup, n.QueueGroup)
	if n.SubscribersCount > 0 {
		ec.Subscriber.SubscribersCount = n.SubscribersCount
	}

	ec.Router.PoisonQueueTopic = ec.Topics.Poison
	if n.RouterRetryCount > 0 {
		ec.Router.RetryMaxRetries = n.RouterRetryCount
	}
	if n.RouterRetryInitialInterval > 0 {
		ec.Router.RetryInitialInterval = n.RouterRetryInitialInterval
	}
	if n.RouterCloseTimeout > 0 {
		ec.Router.CloseTimeout = n.RouterCloseTimeout
	}
	if n.PublishBreaker.Name != "" {
		ec.PublishBreaker = n.PublishBreaker
	}
	return ec
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func handlerConfig(cfg *config.Config) api.HandlerConfig {
	return api.HandlerConfig{
		Version:      version,
		AuthMode:     authMode(cfg),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MaxBatchSize: cfg.Server.MaxBatchSize,
		CORSOrigins:  cfg.Security.CORSOrigins,
	}
}

func chiMiddlewareConfig(cfg *config.Config) api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mc.RateLimitRequests = cfg.Security.RateLimitReqs
	mc.RateLimitWindow = cfg.Security.RateLimitWindow
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}

func authzConfig(cfg *config.Config) authz.Config {
	ac := authz.DefaultConfig()
	ac.ModelPath = cfg.Security.Casbin.ModelPath
	ac.PolicyPath = cfg.Security.Casbin.PolicyPath
	if cfg.Security.Casbin.DefaultRole != "" {
		ac.DefaultRole = cfg.Security.Casbin.DefaultRole
	}
	return ac
}

// notifiers returns a notifier for every configured alert endpoint.
func notifiers(cfg *config.Config) []notify.Notifier {
	n := cfg.Notify
	var out []notify.Notifier
	if n.WebhookURL != "" {
		out = append(out, notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:       n.WebhookURL,
			Headers:   n.WebhookHeaders,
			RateLimit: n.RateLimit,
			Timeout:   n.Timeout,
		}))
	}
	if n.DiscordURL != "" {
		out = append(out, notify.NewDiscordNotifier(notify.DiscordConfig{
			URL:       n.DiscordURL,
			RateLimit: n.RateLimit,
			Timeout:   n.Timeout,
		}))
	}
	return out
}
