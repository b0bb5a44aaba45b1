// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package config

import (
	"fmt"
	"math"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{"json": true, "console": true}

// weightTolerance is how far a weight set may drift from summing to 1.
const weightTolerance = 0.01

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateSecurity,
		c.validateDetection,
		c.validateScoring,
		c.validateCollaborators,
		c.validateStore,
		c.validateDatabase,
		c.validateNATS,
		c.validateNotify,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Server.MaxBatchSize < 1 {
		return fmt.Errorf("server.max_batch_size must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case AuthModeNone:
	case AuthModeJWT:
		if err := c.validateJWTAuth(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}

	// Wildcard CORS with credentials is refused in production.
	if c.IsProduction() && c.AuthEnabled() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain '*' in production with AUTH_MODE=jwt")
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateJWTAuth() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is jwt")
	}
	if len(c.Security.AdminPassword) < 12 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 12 characters when AUTH_MODE is jwt")
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

func (c *Config) validateDetection() error {
	b := c.Detection.Burst
	if b.States < 2 {
		return fmt.Errorf("detection.burst.states must be at least 2")
	}
	if b.GrowthFactor <= 1 {
		return fmt.Errorf("detection.burst.growth_factor must be greater than 1")
	}
	if b.WindowHours < 1 {
		return fmt.Errorf("detection.burst.window_hours must be at least 1")
	}
	if b.MaxSpanHours < b.WindowHours {
		return fmt.Errorf("detection.burst.max_span_hours must be at least window_hours")
	}

	co := c.Detection.Coordination
	for name, v := range map[string]float64{
		"text_similarity_threshold":       co.TextSimilarityThreshold,
		"behavioral_similarity_threshold": co.BehavioralSimilarityThreshold,
		"min_coordination_score":          co.MinCoordinationScore,
	} {
		if err := checkUnit("detection.coordination."+name, v); err != nil {
			return err
		}
	}
	if co.MinAccounts < 2 {
		return fmt.Errorf("detection.coordination.min_accounts must be at least 2")
	}
	if err := checkWeightSum("detection.coordination.weights", co.Weights.Sum()); err != nil {
		return err
	}

	bot := c.Detection.Bot
	if err := checkUnit("detection.bot.bot_threshold", bot.BotThreshold); err != nil {
		return err
	}
	if err := checkUnit("detection.bot.suspicious_threshold", bot.SuspiciousThreshold); err != nil {
		return err
	}
	if bot.SuspiciousThreshold > bot.BotThreshold {
		return fmt.Errorf("detection.bot.suspicious_threshold must not exceed bot_threshold")
	}
	return checkWeightSum("detection.bot.weights", bot.Weights.Sum())
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	w := s.Weights
	for name, v := range map[string]float64{
		"toxicity": w.Toxicity, "stance": w.Stance, "coordination": w.Coordination,
		"bot_network": w.BotNetwork, "burst_activity": w.BurstActivity, "narrative_threat": w.NarrativeThreat,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative", name)
		}
	}
	if err := checkWeightSum("scoring.weights", w.Sum()); err != nil {
		return err
	}

	a := s.Alerts
	for name, v := range map[string]float64{
		"toxicity": a.Toxicity, "stance": a.Stance, "coordination": a.Coordination,
		"bot_network": a.BotNetwork, "burst_activity": a.BurstActivity,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("scoring.alerts.%s must be between 0 and 100", name)
		}
	}

	for name, v := range map[string]float64{
		"high_toxicity": s.HighToxicity, "anti_stance": s.AntiStance,
		"high_bot": s.HighBot, "narrative_toxicity": s.NarrativeToxicity,
	} {
		if err := checkUnit("scoring."+name, v); err != nil {
			return err
		}
	}
	if s.NarrativeStance < -1 || s.NarrativeStance > 1 {
		return fmt.Errorf("scoring.narrative_stance must be between -1 and 1")
	}
	if s.ReviewScore < 0 || s.ReviewScore > 100 {
		return fmt.Errorf("scoring.review_score must be between 0 and 100")
	}
	if s.BatchConcurrency < 1 || s.ClassifyConcurrency < 1 {
		return fmt.Errorf("scoring concurrency limits must be at least 1")
	}
	return nil
}

func (c *Config) validateCollaborators() error {
	col := c.Collaborators
	if col.RemoteURL == "" {
		return nil
	}
	if err := validateHTTPURL(col.RemoteURL, "NLP_REMOTE_URL"); err != nil {
		return err
	}
	if col.Timeout <= 0 {
		return fmt.Errorf("NLP_TIMEOUT must be positive")
	}
	if col.RatePerSecond <= 0 || col.Burst < 1 {
		return fmt.Errorf("collaborators.rate_per_second and burst must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.Enabled {
		return nil
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("BADGER_PATH is required when the snapshot store is enabled")
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("STORE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when the database is enabled")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateNATS() error {
	n := c.NATS
	if !n.Enabled {
		return nil
	}
	if !n.EmbeddedServer {
		if err := validateNATSURL(n.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}
	if n.EmbeddedServer && n.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
	}
	for name, topic := range map[string]string{
		"stream_name": n.StreamName, "request_topic": n.RequestTopic,
		"scored_topic": n.ScoredTopic, "alerts_topic": n.AlertsTopic,
	} {
		if topic == "" {
			return fmt.Errorf("nats.%s is required when NATS is enabled", name)
		}
	}
	if n.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1")
	}
	return nil
}

var validSeverities = map[string]bool{"low": true, "medium": true, "high": true, "critical": true}

func (c *Config) validateNotify() error {
	n := c.Notify
	if n.WebhookURL != "" {
		if err := validateHTTPURL(n.WebhookURL, "NOTIFY_WEBHOOK_URL"); err != nil {
			return err
		}
	}
	if n.DiscordURL != "" {
		if err := validateHTTPURL(n.DiscordURL, "NOTIFY_DISCORD_URL"); err != nil {
			return err
		}
	}
	if !validSeverities[n.MinSeverity] {
		return fmt.Errorf("NOTIFY_MIN_SEVERITY must be low, medium, high or critical, got %q", n.MinSeverity)
	}
	if n.RateLimit < 0 || n.Timeout < 0 {
		return fmt.Errorf("notify.rate_limit and notify.timeout must not be negative")
	}
	return nil
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1", name)
	}
	return nil
}

func checkWeightSum(name string, sum float64) error {
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%s must sum to 1, got %.3f", name, sum)
	}
	return nil
}

// placeholderPatterns mark values the operator forgot to replace.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
