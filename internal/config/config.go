// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package config

import (
	"time"

	"github.com/tomtom215/campaignwatch/internal/breaker"
	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/detection"
	"github.com/tomtom215/campaignwatch/internal/nlp"
)

// Config holds the complete service configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
	Security      SecurityConfig      `koanf:"security"`
	Detection     DetectionConfig     `koanf:"detection"`
	Scoring       ScoringConfig       `koanf:"scoring"`
	Collaborators CollaboratorsConfig `koanf:"collaborators"`
	Store         StoreConfig         `koanf:"store"`
	Database      DatabaseConfig      `koanf:"database"`
	NATS          NATSConfig          `koanf:"nats"`
	WebSocket     WebSocketConfig     `koanf:"websocket"`
	Notify        NotifyConfig        `koanf:"notify"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`

	// MaxBodyBytes caps request bodies on scoring and analysis endpoints.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MaxBatchSize caps the number of campaigns in one batch request.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds authentication, authorization and HTTP hardening
// settings. AuthMode is "none" or "jwt".
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	Casbin            CasbinConfig  `koanf:"casbin"`
}

// CasbinConfig locates the RBAC model and policy. Empty paths select the
// built-in admin/analyst/viewer policy.
type CasbinConfig struct {
	ModelPath   string `koanf:"model_path"`
	PolicyPath  string `koanf:"policy_path"`
	DefaultRole string `koanf:"default_role"`
}

// DetectionConfig holds the detector settings.
type DetectionConfig struct {
	Burst        detection.BurstConfig        `koanf:"burst"`
	Coordination detection.CoordinationConfig `koanf:"coordination"`
	Bot          detection.BotConfig          `koanf:"bot"`
}

// ScoringConfig holds the campaign scorer settings.
type ScoringConfig struct {
	Weights             campaign.Weights         `koanf:"weights"`
	Alerts              campaign.AlertThresholds `koanf:"alerts"`
	HighToxicity        float64                  `koanf:"high_toxicity"`
	AntiStance          float64                  `koanf:"anti_stance"`
	HighBot             float64                  `koanf:"high_bot"`
	NarrativeToxicity   float64                  `koanf:"narrative_toxicity"`
	NarrativeStance     float64                  `koanf:"narrative_stance"`
	ReviewScore         float64                  `koanf:"review_score"`
	BatchConcurrency    int                      `koanf:"batch_concurrency"`
	ClassifyConcurrency int                      `koanf:"classify_concurrency"`
	ClassifierBreaker   breaker.Config           `koanf:"classifier_breaker"`
	NarrativeBreaker    breaker.Config           `koanf:"narrative_breaker"`
}

// CollaboratorsConfig configures the text classifiers and the narrative
// clusterer. An empty RemoteURL keeps classification local.
type CollaboratorsConfig struct {
	RemoteURL     string              `koanf:"remote_url"`
	Timeout       time.Duration       `koanf:"timeout"`
	RatePerSecond float64             `koanf:"rate_per_second"`
	Burst         int                 `koanf:"burst"`
	Breaker       breaker.Config      `koanf:"breaker"`
	CacheSize     int                 `koanf:"cache_size"`
	CacheTTL      time.Duration       `koanf:"cache_ttl"`
	Narrative     nlp.NarrativeConfig `koanf:"narrative"`
}

// StoreConfig configures the Badger snapshot store.
type StoreConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Path     string        `koanf:"path"`
	InMemory bool          `koanf:"in_memory"`
	TTL      time.Duration `koanf:"ttl"`
}

// DatabaseConfig configures the DuckDB score history.
type DatabaseConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// NATSConfig configures event-driven scoring over NATS JetStream.
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	StreamName       string `koanf:"stream_name"`
	RequestTopic     string `koanf:"request_topic"`
	ScoredTopic      string `koanf:"scored_topic"`
	AlertsTopic      string `koanf:"alerts_topic"`
	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`

	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`

	PublishBreaker breaker.Config `koanf:"publish_breaker"`
}

// WebSocketConfig configures the live alert stream.
type WebSocketConfig struct {
	Enabled         bool `koanf:"enabled"`
	BroadcastBuffer int  `koanf:"broadcast_buffer"`
	ClientBuffer    int  `koanf:"client_buffer"`
}

// NotifyConfig configures outbound alert delivery. An empty URL disables
// that notifier.
type NotifyConfig struct {
	WebhookURL     string            `koanf:"webhook_url"`
	WebhookHeaders map[string]string `koanf:"webhook_headers"`
	DiscordURL     string            `koanf:"discord_url"`
	MinSeverity    string            `koanf:"min_severity"`
	RateLimit      time.Duration     `koanf:"rate_limit"`
	Timeout        time.Duration     `koanf:"timeout"`
}

// ScorerConfig assembles the campaign scorer configuration.
func (c *Config) ScorerConfig() campaign.Config {
	s := c.Scoring
	return campaign.Config{
		Weights:             s.Weights,
		Alerts:              s.Alerts,
		HighToxicity:        s.HighToxicity,
		AntiStance:          s.AntiStance,
		HighBot:             s.HighBot,
		NarrativeToxicity:   s.NarrativeToxicity,
		NarrativeStance:     s.NarrativeStance,
		ReviewScore:         s.ReviewScore,
		BatchConcurrency:    s.BatchConcurrency,
		ClassifyConcurrency: s.ClassifyConcurrency,
		Burst:               c.Detection.Burst,
		Coordination:        c.Detection.Coordination,
		Bot:                 c.Detection.Bot,
		ClassifierBreaker:   s.ClassifierBreaker,
		NarrativeBreaker:    s.NarrativeBreaker,
	}
}

// RemoteClassifierConfig returns the remote classifier settings, or false
// when no remote URL is configured.
func (c *Config) RemoteClassifierConfig() (nlp.RemoteConfig, bool) {
	col := c.Collaborators
	if col.RemoteURL == "" {
		return nlp.RemoteConfig{}, false
	}
	return nlp.RemoteConfig{
		URL:           col.RemoteURL,
		Timeout:       col.Timeout,
		RatePerSecond: col.RatePerSecond,
		Burst:         col.Burst,
		Breaker:       col.Breaker,
		CacheSize:     col.CacheSize,
		CacheTTL:      col.CacheTTL,
	}, true
}

// AuthEnabled reports whether requests must carry a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.Security.AuthMode == AuthModeJWT
}
